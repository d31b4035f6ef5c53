package health

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(context.Context) error { return f.err }

func newTestHandler(db Pinger) *Handler {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return NewHandler(log, db, nil)
}

func TestHealthCheckReportsService(t *testing.T) {
	h := newTestHandler(&fakePinger{})

	out, err := h.healthCheck(context.Background(), &Input{})
	require.NoError(t, err)
	assert.Equal(t, "OK", out.Body.Status)
	assert.Equal(t, "cogniflow-server", out.Body.Service)
	assert.Equal(t, "up", out.Body.Database)
}

func TestHealthCheckDegradedWhenDatabaseDown(t *testing.T) {
	h := newTestHandler(&fakePinger{err: errors.New("connection refused")})

	out, err := h.healthCheck(context.Background(), &Input{})
	require.NoError(t, err)
	assert.Equal(t, "DEGRADED", out.Body.Status)
	assert.Equal(t, "down", out.Body.Database)
}
