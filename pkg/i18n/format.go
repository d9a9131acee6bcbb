// Package i18n formats money and dates for the locales the marketplace serves.
// Amounts are always integer minor units (paise for INR) and never floats.
package i18n

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// LocaleFormat holds formatting rules for one locale.
// It is immutable after creation and safe for concurrent use.
type LocaleFormat struct {
	decimalSeparator string
	groupSeparator   string
	primaryGroup     int
	secondaryGroup   int
	currency         currency.Unit
	currencySymbol   string
	dateFormat       string
	dateTimeFormat   string
}

// LocaleFormatOption configures a LocaleFormat during construction.
type LocaleFormatOption func(*LocaleFormat)

// NewLocaleFormat creates a LocaleFormat. Without options it formats like en-IN.
func NewLocaleFormat(opts ...LocaleFormatOption) *LocaleFormat {
	lf := &LocaleFormat{
		decimalSeparator: ".",
		groupSeparator:   ",",
		primaryGroup:     3,
		secondaryGroup:   2,
		currency:         currency.INR,
		currencySymbol:   "₹",
		dateFormat:       "2 Jan 2006",
		dateTimeFormat:   "2 Jan 2006, 3:04 PM",
	}
	for _, opt := range opts {
		opt(lf)
	}
	return lf
}

// WithDecimalSeparator sets the decimal separator.
func WithDecimalSeparator(sep string) LocaleFormatOption {
	return func(lf *LocaleFormat) { lf.decimalSeparator = sep }
}

// WithGrouping sets the group separator and sizes. Indian grouping is (",", 3, 2):
// 12,34,567. Western grouping is (",", 3, 3).
func WithGrouping(sep string, primary, secondary int) LocaleFormatOption {
	return func(lf *LocaleFormat) {
		lf.groupSeparator = sep
		lf.primaryGroup = primary
		lf.secondaryGroup = secondary
	}
}

// WithCurrency sets the currency unit and the symbol printed before amounts.
func WithCurrency(unit currency.Unit, symbol string) LocaleFormatOption {
	return func(lf *LocaleFormat) {
		lf.currency = unit
		lf.currencySymbol = symbol
	}
}

// WithDateFormat sets the time layouts used for dates and date-times.
func WithDateFormat(date, dateTime string) LocaleFormatOption {
	return func(lf *LocaleFormat) {
		lf.dateFormat = date
		lf.dateTimeFormat = dateTime
	}
}

// FormatEnIN is the default marketplace locale.
func FormatEnIN() *LocaleFormat { return NewLocaleFormat() }

// FormatEnUS is used for customers browsing with a US locale.
func FormatEnUS() *LocaleFormat {
	return NewLocaleFormat(
		WithGrouping(",", 3, 3),
		WithCurrency(currency.USD, "$"),
		WithDateFormat("Jan 2, 2006", "Jan 2, 2006 3:04 PM"),
	)
}

var (
	supported = []language.Tag{language.MustParse("en-IN"), language.AmericanEnglish}
	matcher   = language.NewMatcher(supported)
)

// ForAcceptLanguage picks a format from an Accept-Language header value.
// Unknown or malformed headers fall back to en-IN.
func ForAcceptLanguage(header string) *LocaleFormat {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return FormatEnIN()
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No || idx != 1 {
		return FormatEnIN()
	}
	return FormatEnUS()
}

// FormatNumber groups the digits of n.
func (lf *LocaleFormat) FormatNumber(n int64) string {
	if n < 0 {
		return "-" + lf.group(uint64(-n))
	}
	return lf.group(uint64(n))
}

// FormatMoney formats an amount in minor units with the currency symbol,
// for example 12345600 paise as "₹1,23,456.00".
func (lf *LocaleFormat) FormatMoney(minor int64) string {
	scale, _ := currency.Standard.Rounding(lf.currency)
	neg := minor < 0
	u := uint64(minor)
	if neg {
		u = uint64(-minor)
	}

	div := uint64(1)
	for range scale {
		div *= 10
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(lf.currencySymbol)
	b.WriteString(lf.group(u / div))
	if scale > 0 {
		frac := strconv.FormatUint(u%div, 10)
		b.WriteString(lf.decimalSeparator)
		b.WriteString(strings.Repeat("0", scale-len(frac)))
		b.WriteString(frac)
	}
	return b.String()
}

// FormatDate formats the calendar date of t.
func (lf *LocaleFormat) FormatDate(t time.Time) string { return t.Format(lf.dateFormat) }

// FormatDateTime formats t with date and time of day.
func (lf *LocaleFormat) FormatDateTime(t time.Time) string { return t.Format(lf.dateTimeFormat) }

func (lf *LocaleFormat) group(n uint64) string {
	s := strconv.FormatUint(n, 10)
	if lf.primaryGroup <= 0 || len(s) <= lf.primaryGroup {
		return s
	}

	head, tail := s[:len(s)-lf.primaryGroup], s[len(s)-lf.primaryGroup:]
	size := lf.secondaryGroup
	if size <= 0 {
		size = lf.primaryGroup
	}

	parts := []string{tail}
	for len(head) > size {
		parts = append(parts, head[len(head)-size:])
		head = head[:len(head)-size]
	}
	parts = append(parts, head)

	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, lf.groupSeparator)
}

// FormatINR is shorthand for FormatEnIN().FormatMoney(paise).
func FormatINR(paise int64) string { return FormatEnIN().FormatMoney(paise) }
