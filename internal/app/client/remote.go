package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/exp/slog"

	"cogniflow/internal/app/client/config"
	"cogniflow/internal/domain/item"
	"cogniflow/internal/domain/template"
	"cogniflow/internal/domain/user"
)

// remoteBackend forwards every operation to the server over JSON HTTP with
// a bearer token. Requests are not retried: a failed call surfaces as
// ErrNetworkFailure or RemoteError and the caller decides what to do.
type remoteBackend struct {
	notifier

	client   *http.Client
	sessions *sessionStore
	log      *slog.Logger
	baseURL  string

	token   string
	current *user.Profile
}

func newRemoteBackend(cfg *config.Config, log *slog.Logger) (*remoteBackend, error) {
	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	scheme := "http://"
	if cfg.EnableTLS {
		scheme = "https://"
	}

	b := &remoteBackend{
		client:   client,
		sessions: newSessionStore(cfg.TokenPath),
		log:      log.With(slog.String("component", "remote")),
		baseURL:  scheme + cfg.ServerAddress,
	}

	if sess, err := b.sessions.Load(); err == nil && sess != nil && sess.Mode == config.ModeRemote {
		profile := sess.Profile
		b.current = &profile
		b.token = sess.Token
	}

	return b, nil
}

func (b *remoteBackend) Close() error { return nil }

func (b *remoteBackend) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	b.log.Debug("sending request", "method", method, "url", req.URL.String())

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}
	return resp, nil
}

func (b *remoteBackend) parseResponse(resp *http.Response, result any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrNetworkFailure, err)
	}

	b.log.Debug("received response", "status", resp.StatusCode)

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthenticated
	}
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error  string `json:"error"`
			Detail string `json:"detail"`
		}
		msg := ""
		if err := json.Unmarshal(body, &errResp); err == nil {
			msg = errResp.Error
			if msg == "" {
				msg = errResp.Detail
			}
		}
		return &RemoteError{StatusCode: resp.StatusCode, Message: msg}
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (b *remoteBackend) call(ctx context.Context, method, path string, body, result any) error {
	resp, err := b.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	return b.parseResponse(resp, result)
}

// --- auth ----------------------------------------------------------------

type authResponse struct {
	Token string       `json:"token"`
	User  user.Profile `json:"user"`
}

func (b *remoteBackend) Login(ctx context.Context, creds user.Credentials) (*user.Profile, error) {
	var out authResponse
	if err := b.call(ctx, http.MethodPost, "/api/auth/login", creds, &out); err != nil {
		return nil, err
	}
	return b.enter(out)
}

// QuickLogin needs local knowledge of registered accounts, which only the
// embedded backend has.
func (b *remoteBackend) QuickLogin(ctx context.Context, username string) (*user.Profile, error) {
	return nil, ErrNotSupportedInMode
}

func (b *remoteBackend) Register(ctx context.Context, reg user.Registration) (*user.Profile, error) {
	var out authResponse
	if err := b.call(ctx, http.MethodPost, "/api/auth/register", reg, &out); err != nil {
		return nil, err
	}
	return b.enter(out)
}

func (b *remoteBackend) enter(out authResponse) (*user.Profile, error) {
	b.token = out.Token
	profile := out.User
	b.current = &profile
	if err := b.sessions.Save(&session{
		Mode:      config.ModeRemote,
		Profile:   profile,
		Token:     out.Token,
		CreatedAt: time.Now(),
	}); err != nil {
		b.log.Error("persisting session failed", "error", err)
	}
	b.publish(AuthEvent{Type: AuthLoggedIn, UserID: profile.ID})
	return &profile, nil
}

func (b *remoteBackend) Logout(ctx context.Context) error {
	if b.current == nil {
		return nil
	}
	id := b.current.ID
	b.current = nil
	b.token = ""
	if err := b.sessions.Clear(); err != nil {
		return err
	}
	b.publish(AuthEvent{Type: AuthLoggedOut, UserID: id})
	return nil
}

func (b *remoteBackend) CurrentUser() *user.Profile { return b.current }

func (b *remoteBackend) IsAuthenticated() bool { return b.current != nil }

func (b *remoteBackend) IsAdmin() bool {
	return b.current != nil && b.current.IsAdmin()
}

func (b *remoteBackend) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	req := struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}{oldPassword, newPassword}
	return b.call(ctx, http.MethodPost, "/api/users/change-password", req, nil)
}

func (b *remoteBackend) ListUsers(ctx context.Context) ([]user.Profile, error) {
	var out struct {
		Users []user.Profile `json:"users"`
	}
	if err := b.call(ctx, http.MethodGet, "/api/users", nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// --- profile and settings -------------------------------------------------

func (b *remoteBackend) Profile(ctx context.Context) (*user.Profile, error) {
	var out user.Profile
	if err := b.call(ctx, http.MethodGet, "/api/users/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *remoteBackend) UpdateProfile(ctx context.Context, u user.ProfileUpdate) (*user.Profile, error) {
	var out user.Profile
	if err := b.call(ctx, http.MethodPut, "/api/users/me", u, &out); err != nil {
		return nil, err
	}
	b.current = &out
	return &out, nil
}

func (b *remoteBackend) Settings(ctx context.Context) (user.Settings, error) {
	var out user.Settings
	if err := b.call(ctx, http.MethodGet, "/api/users/me/settings", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *remoteBackend) UpdateSettings(ctx context.Context, values user.Settings) (user.Settings, error) {
	var out user.Settings
	if err := b.call(ctx, http.MethodPut, "/api/users/me/settings", values, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *remoteBackend) ResetSettings(ctx context.Context) (user.Settings, error) {
	var out user.Settings
	if err := b.call(ctx, http.MethodDelete, "/api/users/me/settings", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *remoteBackend) DeleteAccount(ctx context.Context) error {
	if err := b.call(ctx, http.MethodDelete, "/api/users/me", nil, nil); err != nil {
		return err
	}
	return b.Logout(ctx)
}

// --- items ----------------------------------------------------------------

type itemsResponse struct {
	Items []item.Item `json:"items"`
}

func (b *remoteBackend) CreateItem(ctx context.Context, d item.Draft) (*item.Item, error) {
	var out item.Item
	if err := b.call(ctx, http.MethodPost, "/api/items", d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *remoteBackend) Items(ctx context.Context, f item.Filter) ([]item.Item, error) {
	q := url.Values{}
	if f.Type != "" {
		q.Set("type", string(f.Type))
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Tag != "" {
		q.Set("tag", f.Tag)
	}
	if f.Archived != nil {
		q.Set("archived", fmt.Sprintf("%t", *f.Archived))
	}
	path := "/api/items"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out itemsResponse
	if err := b.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (b *remoteBackend) ItemByID(ctx context.Context, id string) (*item.Item, error) {
	var out item.Item
	err := b.call(ctx, http.MethodGet, "/api/items/"+id, nil, &out)
	if err != nil {
		var re *RemoteError
		if asRemote(err, &re) && re.StatusCode == http.StatusNotFound {
			return nil, item.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (b *remoteBackend) UpdateItem(ctx context.Context, id string, u item.Update) (*item.Item, error) {
	var out item.Item
	err := b.call(ctx, http.MethodPut, "/api/items/"+id, u, &out)
	if err != nil {
		var re *RemoteError
		if asRemote(err, &re) && re.StatusCode == http.StatusNotFound {
			return nil, item.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (b *remoteBackend) DeleteItem(ctx context.Context, id string) error {
	err := b.call(ctx, http.MethodDelete, "/api/items/"+id, nil, nil)
	var re *RemoteError
	if asRemote(err, &re) && re.StatusCode == http.StatusNotFound {
		return item.ErrNotFound
	}
	return err
}

func (b *remoteBackend) ArchiveItem(ctx context.Context, id string) error {
	return b.call(ctx, http.MethodPost, "/api/items/"+id+"/archive", nil, nil)
}

func (b *remoteBackend) UnarchiveItem(ctx context.Context, id string) error {
	return b.call(ctx, http.MethodPost, "/api/items/"+id+"/unarchive", nil, nil)
}

func (b *remoteBackend) BulkUpdate(ctx context.Context, ids []string, u item.Update) (int, error) {
	req := struct {
		IDs    []string    `json:"ids"`
		Update item.Update `json:"update"`
	}{ids, u}
	var out struct {
		Updated int `json:"updated"`
	}
	if err := b.call(ctx, http.MethodPost, "/api/items/bulk-update", req, &out); err != nil {
		return 0, err
	}
	return out.Updated, nil
}

// Derived views are computed client-side from the plain item list with the
// same helpers the embedded vault uses, so both modes agree on results.

func (b *remoteBackend) UpcomingItems(ctx context.Context) ([]item.Item, error) {
	items, err := b.Items(ctx, item.Filter{})
	if err != nil {
		return nil, err
	}
	return item.Upcoming(items, time.Now()), nil
}

func (b *remoteBackend) TodoItems(ctx context.Context) ([]item.Item, error) {
	items, err := b.Items(ctx, item.Filter{})
	if err != nil {
		return nil, err
	}
	return item.Todo(items), nil
}

func (b *remoteBackend) InboxItems(ctx context.Context) ([]item.Item, error) {
	items, err := b.Items(ctx, item.Filter{})
	if err != nil {
		return nil, err
	}
	return item.Inbox(items), nil
}

func (b *remoteBackend) SearchItems(ctx context.Context, terms []string) ([]item.Item, error) {
	q := url.Values{}
	for _, t := range terms {
		q.Add("q", t)
	}
	var out itemsResponse
	if err := b.call(ctx, http.MethodGet, "/api/items/search?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (b *remoteBackend) QueryItems(ctx context.Context, q item.Query) ([]item.Item, error) {
	var out itemsResponse
	if err := b.call(ctx, http.MethodPost, "/api/items/query", q, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (b *remoteBackend) CalendarItems(ctx context.Context, start, end time.Time) ([]item.Item, error) {
	q := url.Values{}
	q.Set("start", start.Format(time.RFC3339))
	q.Set("end", end.Format(time.RFC3339))
	var out itemsResponse
	if err := b.call(ctx, http.MethodGet, "/api/items/calendar?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (b *remoteBackend) HistoryByDateRange(ctx context.Context, start, end time.Time) ([]item.Item, error) {
	q := url.Values{}
	q.Set("start", start.Format(time.RFC3339))
	q.Set("end", end.Format(time.RFC3339))
	var out itemsResponse
	if err := b.call(ctx, http.MethodGet, "/api/items/history?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (b *remoteBackend) TagStats(ctx context.Context) ([]item.TagStat, error) {
	var out struct {
		Tags []item.TagStat `json:"tags"`
	}
	if err := b.call(ctx, http.MethodGet, "/api/items/tags/stats", nil, &out); err != nil {
		return nil, err
	}
	return out.Tags, nil
}

// --- templates ------------------------------------------------------------

func (b *remoteBackend) Templates(ctx context.Context) ([]template.Template, error) {
	var out struct {
		Templates []template.Template `json:"templates"`
	}
	if err := b.call(ctx, http.MethodGet, "/api/templates", nil, &out); err != nil {
		return nil, err
	}
	return out.Templates, nil
}

func (b *remoteBackend) CreateTemplate(ctx context.Context, d template.Draft) (*template.Template, error) {
	var out template.Template
	if err := b.call(ctx, http.MethodPost, "/api/templates", d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *remoteBackend) UpdateTemplate(ctx context.Context, id string, d template.Draft) (*template.Template, error) {
	var out template.Template
	if err := b.call(ctx, http.MethodPut, "/api/templates/"+id, d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *remoteBackend) DeleteTemplate(ctx context.Context, id string) error {
	return b.call(ctx, http.MethodDelete, "/api/templates/"+id, nil, nil)
}

// HealthCheck verifies the server is reachable before entering interactive
// use.
func (b *remoteBackend) HealthCheck(ctx context.Context) error {
	return b.call(ctx, http.MethodGet, "/api/health", nil, nil)
}
