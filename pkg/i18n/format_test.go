package i18n_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subhakaryam/subhakaryam/pkg/i18n"
)

func TestLocaleFormat_FormatNumber(t *testing.T) {
	t.Parallel()

	t.Run("indian grouping", func(t *testing.T) {
		t.Parallel()
		lf := i18n.FormatEnIN()

		require.Equal(t, "0", lf.FormatNumber(0))
		require.Equal(t, "999", lf.FormatNumber(999))
		require.Equal(t, "1,000", lf.FormatNumber(1000))
		require.Equal(t, "1,00,000", lf.FormatNumber(100000))
		require.Equal(t, "12,34,567", lf.FormatNumber(1234567))
		require.Equal(t, "1,00,00,000", lf.FormatNumber(10000000))
		require.Equal(t, "-12,34,567", lf.FormatNumber(-1234567))
	})

	t.Run("western grouping", func(t *testing.T) {
		t.Parallel()
		lf := i18n.FormatEnUS()

		require.Equal(t, "1,234,567", lf.FormatNumber(1234567))
		require.Equal(t, "100,000", lf.FormatNumber(100000))
	})
}

func TestLocaleFormat_FormatMoney(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		paise int64
		want  string
	}{
		{"zero", 0, "₹0.00"},
		{"paise only", 5, "₹0.05"},
		{"rupees", 150000, "₹1,500.00"},
		{"lakh", 12345650, "₹1,23,456.50"},
		{"negative", -2500, "-₹25.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, i18n.FormatINR(tt.paise))
		})
	}

	assert.Equal(t, "$1,234.50", i18n.FormatEnUS().FormatMoney(123450))
}

func TestLocaleFormat_FormatDate(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 11, 22, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, "22 Nov 2026", i18n.FormatEnIN().FormatDate(ts))
	assert.Equal(t, "22 Nov 2026, 6:30 PM", i18n.FormatEnIN().FormatDateTime(ts))
	assert.Equal(t, "Nov 22, 2026", i18n.FormatEnUS().FormatDate(ts))
}

func TestForAcceptLanguage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "12,34,567", i18n.ForAcceptLanguage("").FormatNumber(1234567))
	assert.Equal(t, "12,34,567", i18n.ForAcceptLanguage("en-IN,en;q=0.8").FormatNumber(1234567))
	assert.Equal(t, "12,34,567", i18n.ForAcceptLanguage("te-IN").FormatNumber(1234567))
	assert.Equal(t, "1,234,567", i18n.ForAcceptLanguage("en-US").FormatNumber(1234567))
}
