package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ctxKey struct{}

func bookingExtractor(ctx context.Context) (slog.Attr, bool) {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return slog.String("booking_id", v), true
	}
	return slog.Attr{}, false
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func TestDecorate(t *testing.T) {
	t.Parallel()

	t.Run("adds extracted attributes", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := slog.New(Decorate(jsonHandler(&buf, slog.LevelInfo), bookingExtractor))

		ctx := context.WithValue(context.Background(), ctxKey{}, "bk-1")
		log.InfoContext(ctx, "confirmed")

		entry := decode(t, &buf)
		assert.Equal(t, "confirmed", entry["msg"])
		assert.Equal(t, "bk-1", entry["booking_id"])
	})

	t.Run("skips missing values", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := slog.New(Decorate(jsonHandler(&buf, slog.LevelInfo), bookingExtractor, nil))

		log.InfoContext(context.Background(), "no booking")

		entry := decode(t, &buf)
		assert.NotContains(t, entry, "booking_id")
	})

	t.Run("keeps extractors across With", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := slog.New(Decorate(jsonHandler(&buf, slog.LevelInfo), bookingExtractor)).
			With("component", "payments")

		ctx := context.WithValue(context.Background(), ctxKey{}, "bk-2")
		log.InfoContext(ctx, "released")

		entry := decode(t, &buf)
		assert.Equal(t, "payments", entry["component"])
		assert.Equal(t, "bk-2", entry["booking_id"])
	})

	t.Run("respects level", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := slog.New(Decorate(jsonHandler(&buf, slog.LevelWarn)))

		log.Info("dropped")
		assert.Zero(t, buf.Len())
	})
}

func TestFanout(t *testing.T) {
	t.Parallel()

	var info, errs bytes.Buffer
	log := slog.New(fanout{jsonHandler(&info, slog.LevelInfo), jsonHandler(&errs, slog.LevelError)})

	log.Info("hello")
	assert.NotZero(t, info.Len())
	assert.Zero(t, errs.Len())

	log.Error("boom")
	assert.Contains(t, errs.String(), "boom")
}

func TestNewWithSentry_NoDSN(t *testing.T) {
	t.Parallel()

	log := NewWithSentry(SentryConfig{Level: slog.LevelInfo})
	require.NotNil(t, log)
	assert.True(t, log.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, log.Enabled(context.Background(), slog.LevelDebug))
}
