// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"

	"github.com/jeranaias/genstudio-tui/internal/util"
)

// storedCookie is the persisted subset of an http.Cookie. A jar only
// reports name and value back, so nothing else is available to save.
type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// cookieFile maps a backend origin to its cookies.
type cookieFile map[string][]storedCookie

// CookieStore persists session cookies to a JSON file.
type CookieStore struct {
	path string
	mu   sync.Mutex
}

// NewCookieStore creates a store backed by path.
func NewCookieStore(path string) *CookieStore {
	return &CookieStore{path: path}
}

// Path returns the backing file path.
func (s *CookieStore) Path() string {
	return s.path
}

// Load copies the saved cookies for base into jar. A missing file is not
// an error. It returns the number of cookies restored.
func (s *CookieStore) Load(jar http.CookieJar, base *url.URL) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.read()
	if err != nil {
		return 0, err
	}
	saved := file[originKey(base)]
	if len(saved) == 0 {
		return 0, nil
	}

	cookies := make([]*http.Cookie, 0, len(saved))
	for _, c := range saved {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	jar.SetCookies(base, cookies)
	return len(cookies), nil
}

// Save writes the jar's current cookies for base, replacing what was saved.
func (s *CookieStore) Save(jar http.CookieJar, base *url.URL) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.read()
	if err != nil {
		return err
	}

	cookies := jar.Cookies(base)
	if len(cookies) == 0 {
		delete(file, originKey(base))
	} else {
		saved := make([]storedCookie, 0, len(cookies))
		for _, c := range cookies {
			saved = append(saved, storedCookie{Name: c.Name, Value: c.Value})
		}
		file[originKey(base)] = saved
	}
	return s.write(file)
}

// Clear forgets the cookies saved for base.
func (s *CookieStore) Clear(base *url.URL) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := file[originKey(base)]; !ok {
		return nil
	}
	delete(file, originKey(base))
	return s.write(file)
}

func (s *CookieStore) read() (cookieFile, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return cookieFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cookie file: %w", err)
	}
	file := cookieFile{}
	if len(data) == 0 {
		return file, nil
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse cookie file %s: %w", s.path, err)
	}
	return file, nil
}

func (s *CookieStore) write(file cookieFile) error {
	return util.AtomicWrite(s.path, 0600, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(file); err != nil {
			return fmt.Errorf("failed to marshal cookies: %w", err)
		}
		return nil
	})
}

func originKey(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}
