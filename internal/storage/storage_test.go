// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/genstudio-tui/internal/model"
)

// =============================================================================
// COOKIE STORE TESTS
// =============================================================================

func newJar(t *testing.T) http.CookieJar {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return jar
}

func TestCookieStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	store := NewCookieStore(path)
	base, _ := url.Parse("https://studio.example.com")

	jar := newJar(t)
	jar.SetCookies(base, []*http.Cookie{
		{Name: "access_token_cookie", Value: "jwt", Path: "/"},
		{Name: "csrf_access_token", Value: "csrf", Path: "/"},
	})
	require.NoError(t, store.Save(jar, base))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	restored := newJar(t)
	n, err := store.Load(restored, base)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	got := map[string]string{}
	for _, c := range restored.Cookies(base) {
		got[c.Name] = c.Value
	}
	require.Equal(t, map[string]string{"access_token_cookie": "jwt", "csrf_access_token": "csrf"}, got)
}

func TestCookieStore_SeparatesOrigins(t *testing.T) {
	store := NewCookieStore(filepath.Join(t.TempDir(), "cookies.json"))
	a, _ := url.Parse("https://a.example.com")
	b, _ := url.Parse("https://b.example.com")

	jar := newJar(t)
	jar.SetCookies(a, []*http.Cookie{{Name: "s", Value: "1", Path: "/"}})
	require.NoError(t, store.Save(jar, a))

	n, err := store.Load(newJar(t), b)
	require.NoError(t, err)
	require.Zero(t, n)

	require.NoError(t, store.Clear(a))
	n, err = store.Load(newJar(t), a)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestCookieStore_MissingFile(t *testing.T) {
	store := NewCookieStore(filepath.Join(t.TempDir(), "none.json"))
	base, _ := url.Parse("https://x.example.com")
	n, err := store.Load(newJar(t), base)
	require.NoError(t, err)
	require.Zero(t, n)
	require.NoError(t, store.Clear(base))
}

func TestCookieStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))
	base, _ := url.Parse("https://x.example.com")
	_, err := NewCookieStore(path).Load(newJar(t), base)
	require.Error(t, err)
}

// =============================================================================
// CHAT CACHE TESTS
// =============================================================================

func TestChatCache_ReplaceAndList(t *testing.T) {
	cache, err := OpenChatCache(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	sessions := []model.ChatSession{
		{ID: "c2", Title: "Second", CreatedAt: created},
		{ID: "", Title: "draft"},
		{ID: "c1", Title: "First", Archived: true},
	}
	require.NoError(t, cache.Replace(ctx, "alice", sessions))
	require.NoError(t, cache.Replace(ctx, "bob", []model.ChatSession{{ID: "b1"}}))

	got, err := cache.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, model.ID("c2"), got[0].ID)
	require.True(t, got[0].CreatedAt.Equal(created))
	require.Equal(t, model.ID("c1"), got[1].ID)
	require.True(t, got[1].Archived)
	require.True(t, got[1].CreatedAt.IsZero())

	require.NoError(t, cache.Replace(ctx, "alice", nil))
	got, err = cache.List(ctx, "alice")
	require.NoError(t, err)
	require.Empty(t, got)

	got, err = cache.List(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, got, 1)
}
