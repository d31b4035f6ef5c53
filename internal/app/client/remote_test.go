package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"cogniflow/internal/app/client/config"
	"cogniflow/internal/domain/item"
	"cogniflow/internal/domain/user"
)

func newRemoteForTest(t *testing.T, handler http.Handler) *remoteBackend {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		StorageMode:   config.ModeRemote,
		ServerAddress: strings.TrimPrefix(srv.URL, "http://"),
		TokenPath:     filepath.Join(t.TempDir(), "session.json"),
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	b, err := newRemoteBackend(cfg, log)
	require.NoError(t, err)
	return b
}

func TestRemoteLoginAttachesBearerToken(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(authResponse{
			Token: "tok-123",
			User:  user.Profile{ID: "u1", Username: "alice", Role: user.RoleUser},
		})
	})
	mux.HandleFunc("/api/items", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(itemsResponse{Items: []item.Item{}})
	})

	b := newRemoteForTest(t, mux)
	ctx := context.Background()

	p, err := b.Login(ctx, user.Credentials{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "u1", p.ID)
	assert.True(t, b.IsAuthenticated())

	_, err = b.Items(ctx, item.Filter{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestRemoteUserAndTagRoutes(t *testing.T) {
	var gotPaths []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(authResponse{
			Token: "tok-123",
			User:  user.Profile{ID: "u1", Username: "alice", Role: user.RoleUser},
		})
	})
	mux.HandleFunc("/api/users/change-password", func(w http.ResponseWriter, r *http.Request) {
		gotPaths = append(gotPaths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/items/tags/stats", func(w http.ResponseWriter, r *http.Request) {
		gotPaths = append(gotPaths, r.URL.Path)
		json.NewEncoder(w).Encode(struct {
			Tags []item.TagStat `json:"tags"`
		}{})
	})

	b := newRemoteForTest(t, mux)
	ctx := context.Background()

	_, err := b.Login(ctx, user.Credentials{Username: "alice", Password: "secret"})
	require.NoError(t, err)

	require.NoError(t, b.ChangePassword(ctx, "secret", "s3cret"))
	_, err = b.TagStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"/api/users/change-password", "/api/items/tags/stats"}, gotPaths)
}

func TestRemoteServerRejection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/items", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid filter"})
	})

	b := newRemoteForTest(t, mux)

	_, err := b.Items(context.Background(), item.Filter{})
	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusBadRequest, re.StatusCode)
	assert.Contains(t, re.Error(), "invalid filter")
}

func TestRemoteUnauthorizedMapsToSentinel(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/items", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	b := newRemoteForTest(t, mux)

	_, err := b.Items(context.Background(), item.Filter{})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRemoteNetworkFailure(t *testing.T) {
	b := newRemoteForTest(t, http.NewServeMux())
	// point at a port nothing listens on
	b.baseURL = "http://127.0.0.1:1"

	_, err := b.Items(context.Background(), item.Filter{})
	assert.ErrorIs(t, err, ErrNetworkFailure)
}

func TestRemoteItemNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/items/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "item not found"})
	})

	b := newRemoteForTest(t, mux)

	_, err := b.ItemByID(context.Background(), "nope")
	assert.ErrorIs(t, err, item.ErrNotFound)
}

func TestRemoteQuickLoginNotSupported(t *testing.T) {
	b := newRemoteForTest(t, http.NewServeMux())

	_, err := b.QuickLogin(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrNotSupportedInMode)
}

func TestRemoteSessionPersistsAcrossRestarts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(authResponse{
			Token: "tok-456",
			User:  user.Profile{ID: "u2", Username: "bob"},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	cfg := &config.Config{
		StorageMode:   config.ModeRemote,
		ServerAddress: strings.TrimPrefix(srv.URL, "http://"),
		TokenPath:     filepath.Join(t.TempDir(), "session.json"),
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	b1, err := newRemoteBackend(cfg, log)
	require.NoError(t, err)
	_, err = b1.Login(context.Background(), user.Credentials{Username: "bob", Password: "x"})
	require.NoError(t, err)

	b2, err := newRemoteBackend(cfg, log)
	require.NoError(t, err)
	require.True(t, b2.IsAuthenticated())
	assert.Equal(t, "u2", b2.CurrentUser().ID)
	assert.Equal(t, "tok-456", b2.token)

	require.NoError(t, b2.Logout(context.Background()))
	b3, err := newRemoteBackend(cfg, log)
	require.NoError(t, err)
	assert.False(t, b3.IsAuthenticated())
}
