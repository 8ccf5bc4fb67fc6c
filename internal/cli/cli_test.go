// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/genstudio-tui/internal/api"
	"github.com/jeranaias/genstudio-tui/internal/config"
	"github.com/jeranaias/genstudio-tui/internal/model"
	"github.com/jeranaias/genstudio-tui/internal/validate"
)

// =============================================================================
// FAKE SERVER
// =============================================================================

const sessionCookie = "access_token_cookie"

// fakeStudio is an in-memory GenStudio backend. A request is authenticated
// when it carries the session cookie handed out by /api/auth/login.
type fakeStudio struct {
	mu       sync.Mutex
	admin    bool
	chats    []model.ChatSession
	contents []model.Content
	renamed  map[model.ID]string
	deleted  []model.ID
}

func newFakeStudio(t *testing.T) (*fakeStudio, *httptest.Server) {
	t.Helper()
	f := &fakeStudio{
		renamed: map[model.ID]string{},
		chats: []model.ChatSession{
			{ID: "1", Title: "Bakery taglines"},
			{ID: "2", Title: "Old campaign", Archived: true},
		},
		contents: []model.Content{
			{ID: "10", Type: model.ContentImage, Title: "Logo", Model: "dall-e-3", Temperature: 0.2},
			{ID: "11", Type: model.ContentText, Title: "Blog post", Model: "gpt-4o", Temperature: 0.9},
			{ID: "12", Type: model.ContentImage, Title: "Banner", Model: "dall-e-3", Temperature: 0.7},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds api.Credentials
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "secret" {
			writeTestJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Invalid credentials"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "jwt", Path: "/"})
		writeTestJSON(w, http.StatusOK, map[string]any{"user": f.user(creds.Email)})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/users/me", f.authed(func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusOK, f.user("ada@example.com"))
	}))
	mux.HandleFunc("GET /api/chats/", f.authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeTestJSON(w, http.StatusOK, map[string]any{"chats": f.chats})
	}))
	mux.HandleFunc("GET /api/chats/{id}", f.authed(func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusOK, map[string]any{"chat": model.ChatDetail{
			ChatSession: model.ChatSession{ID: model.ID(r.PathValue("id")), Title: "Bakery taglines"},
			Messages: []model.Message{
				{Role: model.RoleUser, Content: "Write a tagline"},
				{Role: model.RoleAssistant, Content: "Fresh daily."},
			},
		}})
	}))
	mux.HandleFunc("PATCH /api/chats/{id}", f.authed(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Title string `json:"title"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.renamed[model.ID(r.PathValue("id"))] = body.Title
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("DELETE /api/chats/{id}", f.authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.deleted = append(f.deleted, model.ID(r.PathValue("id")))
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("GET /api/contents/", f.authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeTestJSON(w, http.StatusOK, f.contents)
	}))
	mux.HandleFunc("GET /api/contents/{id}/file", f.authed(func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "10":
			w.Header().Set("Content-Type", "image/png")
			w.Header().Set("Content-Disposition", `attachment; filename="logo.png"`)
		case "12":
			w.Header().Set("Content-Type", "image/png")
		default:
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("PNGDATA"))
	}))
	mux.HandleFunc("DELETE /api/contents/{id}", f.authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.deleted = append(f.deleted, model.ID(r.PathValue("id")))
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("POST /api/contents/batch-delete", f.authed(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			IDs []model.ID `json:"ids"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.deleted = append(f.deleted, body.IDs...)
		f.mu.Unlock()
		writeTestJSON(w, http.StatusOK, map[string]int{"deleted": len(body.IDs)})
	}))
	mux.HandleFunc("GET /api/admin/users", f.authed(func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusOK, []model.User{
			{ID: "1", Name: "Ada", Email: "ada@example.com", PlanName: "Pro", Active: true},
			{ID: "2", Name: "Bob", Email: "bob@example.com", PlanName: "Free", Active: true},
		})
	}))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeStudio) user(email string) model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return model.User{ID: "1", Name: "Ada", Email: email, PlanName: "Pro", IsAdmin: f.admin, Active: true}
}

func (f *fakeStudio) authed(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(sessionCookie); err != nil || c.Value != "jwt" {
			writeTestJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Missing cookie"})
			return
		}
		h(w, r)
	}
}

func (f *fakeStudio) deletedIDs() []model.ID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.ID(nil), f.deleted...)
}

func writeTestJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// =============================================================================
// HARNESS
// =============================================================================

type result struct {
	stdout string
	stderr string
	code   int
}

// isolate points the state directory at a temp dir and disables the cache.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("GENSTUDIO_HOME", home)
	t.Setenv("GENSTUDIO_CACHE_ENABLED", "false")
	t.Setenv("NO_COLOR", "1")
	return home
}

// run executes the root command against srv.
func run(t *testing.T, srv *httptest.Server, stdin string, args ...string) result {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	if srv != nil {
		args = append([]string{"--base-url", srv.URL}, args...)
	}
	cmd.SetArgs(args)
	code := execute(cmd)
	return result{stdout: out.String(), stderr: errOut.String(), code: code}
}

// login signs in through the CLI so later invocations reuse the cookie.
func login(t *testing.T, srv *httptest.Server) {
	t.Helper()
	res := run(t, srv, "secret\n", "login", "--email", "ada@example.com")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
}

func decodeEnvelope(t *testing.T, s string) JSONResponse {
	t.Helper()
	var resp JSONResponse
	require.NoError(t, json.Unmarshal([]byte(s), &resp), s)
	return resp
}

// =============================================================================
// ROOT
// =============================================================================

func TestVersion(t *testing.T) {
	isolate(t)
	res := run(t, nil, "", "version")
	require.Equal(t, ExitSuccess, res.code)
	assert.Equal(t, "genstudio dev (commit: none, built: unknown)\n", res.stdout)
}

func TestExecute_UsageErrors(t *testing.T) {
	isolate(t)
	tests := []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"frobnicate"}},
		{"unknown flag", []string{"version", "--loud"}},
		{"missing args", []string{"chats", "rename", "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, nil, "", tt.args...)
			assert.Equal(t, ExitUsageError, res.code)
			assert.Contains(t, res.stderr, "[ERROR]")
		})
	}
}

func TestRootCommand_RequiresTTY(t *testing.T) {
	if IsTTY() && IsStdoutTTY() {
		t.Skip("running in a terminal")
	}
	isolate(t)
	res := run(t, nil, "")
	assert.Equal(t, ExitGeneralError, res.code)
	assert.Contains(t, res.stderr, "terminal")
}

// =============================================================================
// AUTH
// =============================================================================

func TestLogin_PersistsSession(t *testing.T) {
	home := isolate(t)
	_, srv := newFakeStudio(t)

	res := run(t, srv, "secret\n", "login", "--email", "ada@example.com")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "[OK] Signed in as Ada")
	assert.FileExists(t, filepath.Join(home, "cookies.json"))

	res = run(t, srv, "", "whoami")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "ada@example.com")
	assert.Contains(t, res.stdout, "Pro")
}

func TestLogin_PromptsForEmail(t *testing.T) {
	isolate(t)
	_, srv := newFakeStudio(t)

	res := run(t, srv, "ada@example.com\nsecret\n", "login")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stderr, "Email: ")
	assert.Contains(t, res.stderr, "Password: ")
}

func TestLogin_Failures(t *testing.T) {
	isolate(t)
	_, srv := newFakeStudio(t)

	tests := []struct {
		name  string
		stdin string
		args  []string
		code  int
	}{
		{"wrong password", "nope\n", []string{"login", "-e", "ada@example.com"}, ExitAuthError},
		{"bad email", "secret\n", []string{"login", "-e", "not-an-email"}, ExitUsageError},
		{"json needs email", "secret\n", []string{"--json", "login"}, ExitUsageError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, srv, tt.stdin, tt.args...)
			assert.Equal(t, tt.code, res.code, res.stdout+res.stderr)
		})
	}
}

func TestWhoami_SignedOut(t *testing.T) {
	isolate(t)
	_, srv := newFakeStudio(t)

	res := run(t, srv, "", "whoami")
	assert.Equal(t, ExitAuthError, res.code)
	assert.Contains(t, res.stderr, "genstudio login")
}

func TestLogout_ForgetsSession(t *testing.T) {
	isolate(t)
	_, srv := newFakeStudio(t)
	login(t, srv)

	res := run(t, srv, "", "--json", "logout")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	resp := decodeEnvelope(t, res.stdout)
	assert.True(t, resp.Success)
	assert.Equal(t, map[string]any{"signed_out": true}, resp.Data)

	res = run(t, srv, "", "whoami")
	assert.Equal(t, ExitAuthError, res.code)
}

// =============================================================================
// CHATS
// =============================================================================

func TestChatsList(t *testing.T) {
	isolate(t)
	_, srv := newFakeStudio(t)
	login(t, srv)

	res := run(t, srv, "", "chats", "list")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Bakery taglines")
	assert.NotContains(t, res.stdout, "Old campaign")

	res = run(t, srv, "", "chats", "list", "--archived")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Old campaign")
	assert.NotContains(t, res.stdout, "Bakery taglines")

	res = run(t, srv, "", "--json", "chats", "list", "--all")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	resp := decodeEnvelope(t, res.stdout)
	assert.Equal(t, "genstudio chats list", resp.Command)
	assert.Len(t, resp.Data, 2)
}

func TestChatsList_Unauthorized(t *testing.T) {
	isolate(t)
	_, srv := newFakeStudio(t)

	res := run(t, srv, "", "chats", "list")
	assert.Equal(t, ExitAuthError, res.code)
}

func TestChatsRename(t *testing.T) {
	isolate(t)
	f, srv := newFakeStudio(t)
	login(t, srv)

	res := run(t, srv, "", "chats", "rename", "1", "Launch copy")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Renamed chat 1 to Launch copy")

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, "Launch copy", f.renamed["1"])
}

func TestChatsDelete_Confirmation(t *testing.T) {
	isolate(t)
	f, srv := newFakeStudio(t)
	login(t, srv)

	res := run(t, srv, "n\n", "chats", "delete", "1")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stderr, "Cancelled.")
	assert.Empty(t, f.deletedIDs())

	res = run(t, srv, "", "--json", "chats", "delete", "1")
	assert.Equal(t, ExitGeneralError, res.code)
	assert.False(t, decodeEnvelope(t, res.stdout).Success)
	assert.Empty(t, f.deletedIDs())

	res = run(t, srv, "", "chats", "delete", "1", "--yes")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, []model.ID{"1"}, f.deletedIDs())
}

func TestChatsExport(t *testing.T) {
	isolate(t)
	_, srv := newFakeStudio(t)
	login(t, srv)

	res := run(t, srv, "", "chats", "export", "1", "-o", "-")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "# Bakery taglines")
	assert.Contains(t, res.stdout, "Fresh daily.")

	path := filepath.Join(t.TempDir(), "chat.html")
	res = run(t, srv, "", "chats", "export", "1", "--format", "html", "-o", path)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<!DOCTYPE html>")

	res = run(t, srv, "", "chats", "export", "1", "--format", "html", "-o", path)
	assert.Equal(t, ExitUsageError, res.code, "existing files are not overwritten")

	res = run(t, srv, "", "chats", "export", "1", "--format", "pdf")
	assert.Equal(t, ExitUsageError, res.code)
}

// =============================================================================
// CONTENTS
// =============================================================================

func TestContentsList_Filters(t *testing.T) {
	isolate(t)
	_, srv := newFakeStudio(t)
	login(t, srv)

	tests := []struct {
		name string
		args []string
		want []string
		skip []string
	}{
		{"all", nil, []string{"Logo", "Blog post", "Banner"}, nil},
		{"by type", []string{"--type", "image"}, []string{"Logo", "Banner"}, []string{"Blog post"}},
		{"by model", []string{"--model", "gpt-4o"}, []string{"Blog post"}, []string{"Logo"}},
		{"temperature range", []string{"--min-temp", "0.5"}, []string{"Blog post", "Banner"}, []string{"Logo"}},
		{"text", []string{"-q", "logo"}, []string{"Logo"}, []string{"Banner"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, srv, "", append([]string{"contents", "list"}, tt.args...)...)
			require.Equal(t, ExitSuccess, res.code, res.stderr)
			for _, s := range tt.want {
				assert.Contains(t, res.stdout, s)
			}
			for _, s := range tt.skip {
				assert.NotContains(t, res.stdout, s)
			}
		})
	}
}

func TestContentsList_BadRange(t *testing.T) {
	isolate(t)
	_, srv := newFakeStudio(t)
	login(t, srv)

	res := run(t, srv, "", "contents", "list", "--min-temp", "0.9", "--max-temp", "0.1")
	assert.Equal(t, ExitUsageError, res.code)
}

func TestContentsDelete(t *testing.T) {
	isolate(t)
	f, srv := newFakeStudio(t)
	login(t, srv)

	res := run(t, srv, "", "contents", "delete", "--matching", "--type", "image", "--yes")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Deleted 2 content(s)")
	assert.ElementsMatch(t, []model.ID{"10", "12"}, f.deletedIDs())

	res = run(t, srv, "", "contents", "delete", "--matching", "--yes")
	assert.Equal(t, ExitUsageError, res.code)
}

func TestContentsDownload(t *testing.T) {
	isolate(t)
	_, srv := newFakeStudio(t)
	login(t, srv)
	dir := t.TempDir()
	t.Chdir(dir)

	res := run(t, srv, "", "contents", "download", "10")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Saved logo.png (7 bytes)")
	data, err := os.ReadFile(filepath.Join(dir, "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, "PNGDATA", string(data))

	res = run(t, srv, "", "--json", "contents", "download", "12")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	env := decodeEnvelope(t, res.stdout)
	assert.True(t, env.Success)
	_, err = os.Stat(filepath.Join(dir, "content-12.png"))
	require.NoError(t, err, "without a server name the id and type name the file")

	res = run(t, srv, "", "contents", "download", "10")
	assert.Equal(t, ExitUsageError, res.code, "existing files are not overwritten")

	res = run(t, srv, "", "contents", "download", "12", "-o", "-")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "PNGDATA", res.stdout)

	res = run(t, srv, "", "contents", "download", "99")
	assert.Equal(t, ExitNotFoundError, res.code)
}

// =============================================================================
// ADMIN
// =============================================================================

func TestAdminUsers_RequiresAdmin(t *testing.T) {
	isolate(t)
	f, srv := newFakeStudio(t)
	login(t, srv)

	res := run(t, srv, "", "admin", "users")
	assert.Equal(t, ExitAuthError, res.code)

	f.mu.Lock()
	f.admin = true
	f.mu.Unlock()

	res = run(t, srv, "", "admin", "users", "--plan", "Free")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "bob@example.com")
	assert.NotContains(t, res.stdout, "ada@example.com")
}

// =============================================================================
// CONFIG
// =============================================================================

func TestConfigSetGet(t *testing.T) {
	home := isolate(t)

	res := run(t, nil, "", "config", "set", "chat.default_model", "gpt-4o")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "[OK] chat.default_model = gpt-4o")

	res = run(t, nil, "", "config", "get", "chat.default_model")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "gpt-4o\n", res.stdout)

	cfg, err := config.LoadFromPath(filepath.Join(home, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.Chat.DefaultModel)
}

func TestConfigSet_Rejects(t *testing.T) {
	isolate(t)
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"unknown key", []string{"config", "set", "chat.colour", "red"}, ExitUsageError},
		{"bad value", []string{"config", "set", "chat.fade_millis", "fast"}, ExitUsageError},
		{"invalid result", []string{"config", "set", "log.level", "loud"}, ExitConfigError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, nil, "", tt.args...)
			assert.Equal(t, tt.code, res.code, res.stderr)
		})
	}
}

func TestConfigSet_DoesNotPersistEnv(t *testing.T) {
	home := isolate(t)
	t.Setenv("GENSTUDIO_CHAT_MAX_TOKENS", "1024")

	res := run(t, nil, "", "config", "set", "ui.markdown", "false")
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	data, err := os.ReadFile(filepath.Join(home, "config.toml"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "1024")
}

func TestConfigPath(t *testing.T) {
	home := isolate(t)
	res := run(t, nil, "", "config", "path")
	require.Equal(t, ExitSuccess, res.code)
	assert.Equal(t, filepath.Join(home, "config.toml")+"\n", res.stdout)
}

// =============================================================================
// HELPERS
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"validation", NewValidationError("id", "", "empty"), ExitUsageError},
		{"form", validate.Errors{"email": "required"}, ExitUsageError},
		{"config", &ConfigError{Err: errors.New("bad toml")}, ExitConfigError},
		{"unauthorized", fmt.Errorf("list: %w", api.ErrUnauthorized), ExitAuthError},
		{"forbidden", api.ErrForbidden, ExitAuthError},
		{"not found", api.ErrNotFound, ExitNotFoundError},
		{"timeout", context.DeadlineExceeded, ExitTimeoutError},
		{"other", errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestRequireConfirmation(t *testing.T) {
	tests := []struct {
		name    string
		opts    ConfirmationOptions
		want    bool
		wantErr bool
	}{
		{"yes flag", ConfirmationOptions{Yes: true}, true, false},
		{"json without yes", ConfirmationOptions{JSONMode: true}, false, true},
		{"answer y", ConfirmationOptions{In: strings.NewReader("y\n")}, true, false},
		{"answer yes", ConfirmationOptions{In: strings.NewReader("YES\n")}, true, false},
		{"answer no", ConfirmationOptions{In: strings.NewReader("n\n")}, false, false},
		{"empty answer", ConfirmationOptions{In: strings.NewReader("\n")}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			tt.opts.Out = &out
			tt.opts.Details = map[string]string{"Chat": "1"}
			got, err := RequireConfirmation("delete chat 1", tt.opts)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if !tt.opts.Yes {
				assert.Contains(t, out.String(), "delete chat 1? [y/N]")
			}
		})
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs("content", []string{"3", "1", "3"})
	require.NoError(t, err)
	assert.Equal(t, []model.ID{"3", "1"}, ids)

	_, err = parseIDs("content", nil)
	assert.Error(t, err)

	_, err = parseID("chat", "1/2")
	assert.Error(t, err)
	_, err = parseID("chat", " ")
	assert.Error(t, err)
}

func TestJSONResponse_Print(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONErrorResponse("genstudio whoami", api.ErrUnauthorized).Print(&buf))

	resp := decodeEnvelope(t, buf.String())
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "genstudio whoami", resp.Command)
	assert.NotEmpty(t, resp.Timestamp)
}
