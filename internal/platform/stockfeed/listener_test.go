package stockfeed

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	ids []int64
	err error
}

func (r *recorder) InvalidateProduct(_ context.Context, id int64) error {
	r.ids = append(r.ids, id)
	return r.err
}

func TestNew_ValidatesArguments(t *testing.T) {
	_, err := New("", "stock_changed", &recorder{}, nil)
	assert.Error(t, err)
	_, err = New("postgres://x", " ", &recorder{}, nil)
	assert.Error(t, err)
	_, err = New("postgres://x", "stock_changed", nil, nil)
	assert.Error(t, err)
}

func TestHandle_InvalidatesParsedProduct(t *testing.T) {
	rec := &recorder{}
	feed, err := New("postgres://x", "stock_changed", rec, nil)
	require.NoError(t, err)

	feed.Handle(context.Background(), " 42 ")
	assert.Equal(t, []int64{42}, rec.ids)
}

func TestHandle_IgnoresMalformedPayloads(t *testing.T) {
	buf := &bytes.Buffer{}
	rec := &recorder{}
	feed, err := New("postgres://x", "stock_changed", rec, slog.New(slog.NewTextHandler(buf, nil)))
	require.NoError(t, err)

	feed.Handle(context.Background(), "abc")
	feed.Handle(context.Background(), "-3")
	assert.Empty(t, rec.ids)
	assert.Contains(t, buf.String(), "malformed stock notification")
}

func TestHandle_LogsInvalidationFailure(t *testing.T) {
	buf := &bytes.Buffer{}
	rec := &recorder{err: errors.New("redis down")}
	feed, err := New("postgres://x", "stock_changed", rec, slog.New(slog.NewTextHandler(buf, nil)))
	require.NoError(t, err)

	feed.Handle(context.Background(), "7")
	assert.Equal(t, []int64{7}, rec.ids)
	assert.Contains(t, buf.String(), "redis down")
}
