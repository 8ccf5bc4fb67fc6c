// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package blob hands out local object URLs for files that have not been
// uploaded yet. A URL stays resolvable until it is released; the chat
// controller releases it once the server has stored the file.
package blob

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Scheme prefixes every URL created by a Registry.
const Scheme = "blob:genstudio/"

// ErrUnknownURL is returned for URLs that were never created or were released.
var ErrUnknownURL = errors.New("blob: unknown or released url")

// Object is the local file behind a URL.
type Object struct {
	Name     string
	MimeType string

	// Exactly one of Path and Data is set
	Path string
	Data []byte
}

// Open returns a reader over the object's content.
func (o Object) Open() (io.ReadCloser, error) {
	if o.Path != "" {
		f, err := os.Open(o.Path)
		if err != nil {
			return nil, fmt.Errorf("blob: open %s: %w", o.Path, err)
		}
		return f, nil
	}
	return io.NopCloser(bytes.NewReader(o.Data)), nil
}

// Registry maps live blob URLs to their objects.
type Registry struct {
	mu      sync.Mutex
	objects map[string]Object
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{objects: make(map[string]Object)}
}

// Create registers a file on disk and returns its URL.
func (r *Registry) Create(name, mimeType, path string) string {
	return r.add(Object{Name: name, MimeType: mimeType, Path: path})
}

// CreateData registers in-memory content and returns its URL.
func (r *Registry) CreateData(name, mimeType string, data []byte) string {
	return r.add(Object{Name: name, MimeType: mimeType, Data: append([]byte(nil), data...)})
}

func (r *Registry) add(obj Object) string {
	url := Scheme + uuid.NewString()
	r.mu.Lock()
	r.objects[url] = obj
	r.mu.Unlock()
	return url
}

// Resolve returns the object behind url.
func (r *Registry) Resolve(url string) (Object, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, ok := r.objects[url]
	if !ok {
		return Object{}, ErrUnknownURL
	}
	return obj, nil
}

// Open is Resolve followed by Object.Open.
func (r *Registry) Open(url string) (io.ReadCloser, error) {
	obj, err := r.Resolve(url)
	if err != nil {
		return nil, err
	}
	return obj.Open()
}

// Release forgets url. Releasing an unknown URL is a no-op.
func (r *Registry) Release(url string) {
	r.mu.Lock()
	delete(r.objects, url)
	r.mu.Unlock()
}

// ReleaseAll forgets every URL and returns how many were live.
func (r *Registry) ReleaseAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.objects)
	r.objects = make(map[string]Object)
	return n
}

// Len returns the number of live URLs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.objects)
}

// IsBlobURL reports whether url was minted by a Registry.
func IsBlobURL(url string) bool {
	return strings.HasPrefix(url, Scheme)
}
