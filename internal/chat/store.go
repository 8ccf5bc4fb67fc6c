// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/genstudio-tui/internal/model"
)

// DefaultFade is the message view transition when switching chats.
const DefaultFade = 200 * time.Millisecond

// Backend is the slice of the API client the store needs.
type Backend interface {
	ListChats(ctx context.Context, q string) ([]model.ChatSession, error)
	GetChat(ctx context.Context, id model.ID) (*model.ChatDetail, error)
	RenameChat(ctx context.Context, id model.ID, title string) error
	SetArchived(ctx context.Context, id model.ID, archived bool) error
	DeleteChat(ctx context.Context, id model.ID) error
}

// Cache mirrors the chat list locally for offline start.
type Cache interface {
	Replace(ctx context.Context, scope string, sessions []model.ChatSession) error
	List(ctx context.Context, scope string) ([]model.ChatSession, error)
}

// =============================================================================
// SESSION STATE
// =============================================================================

// SessionState is the persistence state of the active chat.
type SessionState int

const (
	// Draft is a new chat the server does not know yet.
	Draft SessionState = iota

	// Persisting is a chat whose id arrived with the first reply and whose
	// history has not been reloaded yet.
	Persisting

	// Persisted is a chat with a stable server id.
	Persisted
)

// String returns the state name.
func (s SessionState) String() string {
	switch s {
	case Draft:
		return "draft"
	case Persisting:
		return "persisting"
	case Persisted:
		return "persisted"
	default:
		return "unknown"
	}
}

// Action is a chat list reducer action.
type Action string

const (
	ActionAdd       Action = "add"
	ActionRename    Action = "rename"
	ActionArchive   Action = "archive"
	ActionUnarchive Action = "unarchive"
	ActionDelete    Action = "delete"
)

// ParseAction converts a string into an Action.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case ActionAdd, ActionRename, ActionArchive, ActionUnarchive, ActionDelete:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// =============================================================================
// STORE
// =============================================================================

// Options configures a Store.
type Options struct {
	Logger *slog.Logger

	// Fade is the delay between hiding the view and swapping messages.
	// Zero means DefaultFade; negative disables the delay.
	Fade time.Duration

	// Sleep overrides the fade timer in tests.
	Sleep func(ctx context.Context, d time.Duration) error

	// Cache, when set, receives every full chat list under CacheScope.
	Cache      Cache
	CacheScope string
}

// Store holds the chat list and the active chat's messages.
type Store struct {
	mu sync.Mutex

	backend Backend
	logger  *slog.Logger
	fade    time.Duration
	sleep   func(ctx context.Context, d time.Duration) error

	cache      Cache
	cacheScope string

	// Chat list
	sessions []model.ChatSession
	offline  bool

	// Active chat
	activeID    model.ID
	persisting  bool
	messages    []model.Message
	visible     bool
	loadingChat bool

	// gen increases on every view change; a load only applies if the
	// generation it started with is still current.
	gen uint64

	listeners map[int]func()
	nextSub   int
}

// NewStore creates an empty store showing a draft chat.
func NewStore(backend Backend, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	fade := opts.Fade
	if fade == 0 {
		fade = DefaultFade
	}
	if fade < 0 {
		fade = 0
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	return &Store{
		backend:    backend,
		logger:     logger,
		fade:       fade,
		sleep:      sleep,
		cache:      opts.Cache,
		cacheScope: opts.CacheScope,
		visible:    true,
		listeners:  make(map[int]func()),
	}
}

// =============================================================================
// VIEW TRANSITIONS
// =============================================================================

// LoadChat switches the view to chat id: hide, fetch, replace, show.
// If another LoadChat or CreateNewChat starts before this one finishes,
// the fetched messages are discarded and ErrStaleLoad is returned.
func (s *Store) LoadChat(ctx context.Context, id model.ID) error {
	if id.IsZero() {
		return ErrUnsavedSession
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.visible = false
	s.loadingChat = true
	s.mu.Unlock()
	s.emit()

	if err := s.sleep(ctx, s.fade); err != nil {
		s.restoreView(gen)
		return err
	}

	detail, err := s.backend.GetChat(ctx, id)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.logger.Debug("discarding stale chat load", "chat_id", id)
		return ErrStaleLoad
	}
	if err != nil {
		s.visible = true
		s.loadingChat = false
		s.mu.Unlock()
		s.emit()
		return fmt.Errorf("load chat %s: %w", id, err)
	}

	msgs := model.CloneMessages(detail.Messages)
	model.AssignIDs(msgs)
	s.activeID = id
	s.persisting = false
	s.messages = msgs
	if i := s.indexLocked(id); i >= 0 {
		if detail.Title != "" {
			s.sessions[i].Title = detail.Title
		}
		s.sessions[i].Archived = detail.Archived
	}
	s.visible = true
	s.loadingChat = false
	s.mu.Unlock()
	s.emit()
	return nil
}

// CreateNewChat switches the view to an empty draft chat.
func (s *Store) CreateNewChat(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.visible = false
	s.mu.Unlock()
	s.emit()

	if err := s.sleep(ctx, s.fade); err != nil {
		s.restoreView(gen)
		return err
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return ErrStaleLoad
	}
	s.activeID = ""
	s.persisting = false
	s.messages = nil
	s.visible = true
	s.loadingChat = false
	s.mu.Unlock()
	s.emit()
	return nil
}

// restoreView shows the unchanged list again after an interrupted switch.
func (s *Store) restoreView(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.visible = true
	s.loadingChat = false
	s.mu.Unlock()
	s.emit()
}

// =============================================================================
// CHAT LIST
// =============================================================================

// UpdateChatList applies action to the chat list.
//
// ActionAdd inserts session at the front, or updates the entry with the
// same id, and then loads that chat. ActionRename, ActionArchive and
// ActionUnarchive update one field of the matching entry. ActionDelete
// removes the entry and, when it is the active chat, clears the view.
func (s *Store) UpdateChatList(ctx context.Context, session model.ChatSession, action Action, newTitle string) error {
	if !session.Saved() {
		return ErrUnsavedSession
	}

	s.mu.Lock()
	switch action {
	case ActionAdd:
		s.upsertLocked(session)
	case ActionRename:
		if i := s.indexLocked(session.ID); i >= 0 {
			s.sessions[i].Title = newTitle
		}
	case ActionArchive, ActionUnarchive:
		if i := s.indexLocked(session.ID); i >= 0 {
			s.sessions[i].Archived = action == ActionArchive
		}
	case ActionDelete:
		if i := s.indexLocked(session.ID); i >= 0 {
			s.sessions = append(s.sessions[:i:i], s.sessions[i+1:]...)
		}
		if s.activeID == session.ID {
			s.gen++
			s.activeID = ""
			s.persisting = false
			s.messages = nil
			s.visible = true
			s.loadingChat = false
		}
	default:
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	snapshot := s.sessionsLocked()
	s.mu.Unlock()

	s.emit()
	s.mirror(ctx, snapshot)

	if action == ActionAdd {
		return s.LoadChat(ctx, session.ID)
	}
	return nil
}

// updateExisting refreshes the entry for session's id and reports whether
// there was one. Unknown ids are not added.
func (s *Store) updateExisting(ctx context.Context, session model.ChatSession) bool {
	s.mu.Lock()
	if !session.Saved() || s.indexLocked(session.ID) < 0 {
		s.mu.Unlock()
		return false
	}
	s.upsertLocked(session)
	snapshot := s.sessionsLocked()
	s.mu.Unlock()
	s.emit()
	s.mirror(ctx, snapshot)
	return true
}

// upsertLocked replaces the entry with the same id or prepends a new one.
// The later call's fields win, except that a known CreatedAt or Title is
// never replaced by a zero value.
func (s *Store) upsertLocked(session model.ChatSession) {
	i := s.indexLocked(session.ID)
	if i < 0 {
		s.sessions = append([]model.ChatSession{session}, s.sessions...)
		return
	}
	prev := s.sessions[i]
	if session.CreatedAt.IsZero() {
		session.CreatedAt = prev.CreatedAt
	}
	if session.Title == "" {
		session.Title = prev.Title
	}
	s.sessions[i] = session
}

// RefreshList replaces the chat list with the server's, filtered by q when
// non-empty. Unfiltered lists are mirrored into the cache. When the server
// is unreachable and nothing is listed yet, the cached list is shown and
// the error is still returned.
func (s *Store) RefreshList(ctx context.Context, q string) error {
	sessions, err := s.backend.ListChats(ctx, q)
	if err != nil {
		if q == "" && s.loadCached(ctx) {
			return fmt.Errorf("list chats (showing cached list): %w", err)
		}
		return fmt.Errorf("list chats: %w", err)
	}

	s.mu.Lock()
	s.sessions = append([]model.ChatSession(nil), sessions...)
	s.offline = false
	s.mu.Unlock()
	s.emit()

	if q == "" {
		s.mirror(ctx, sessions)
	}
	return nil
}

func (s *Store) loadCached(ctx context.Context) bool {
	if s.cache == nil {
		return false
	}
	s.mu.Lock()
	empty := len(s.sessions) == 0
	s.mu.Unlock()
	if !empty {
		return false
	}

	cached, err := s.cache.List(ctx, s.cacheScope)
	if err != nil || len(cached) == 0 {
		return false
	}
	s.mu.Lock()
	s.sessions = cached
	s.offline = true
	s.mu.Unlock()
	s.emit()
	return true
}

func (s *Store) mirror(ctx context.Context, sessions []model.ChatSession) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Replace(ctx, s.cacheScope, sessions); err != nil {
		s.logger.Warn("failed to update chat cache", "error", err)
	}
}

// =============================================================================
// SERVER-BACKED LIST ACTIONS
// =============================================================================

// Rename renames a chat on the server, then in the list.
func (s *Store) Rename(ctx context.Context, id model.ID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("rename chat %s: title is empty", id)
	}
	if err := s.backend.RenameChat(ctx, id, title); err != nil {
		return fmt.Errorf("rename chat %s: %w", id, err)
	}
	return s.UpdateChatList(ctx, model.ChatSession{ID: id}, ActionRename, title)
}

// SetArchived archives or unarchives a chat on the server, then in the list.
func (s *Store) SetArchived(ctx context.Context, id model.ID, archived bool) error {
	if err := s.backend.SetArchived(ctx, id, archived); err != nil {
		return fmt.Errorf("archive chat %s: %w", id, err)
	}
	action := ActionUnarchive
	if archived {
		action = ActionArchive
	}
	return s.UpdateChatList(ctx, model.ChatSession{ID: id}, action, "")
}

// Delete deletes a chat on the server, then from the list.
func (s *Store) Delete(ctx context.Context, id model.ID) error {
	if err := s.backend.DeleteChat(ctx, id); err != nil {
		return fmt.Errorf("delete chat %s: %w", id, err)
	}
	return s.UpdateChatList(ctx, model.ChatSession{ID: id}, ActionDelete, "")
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Sessions returns every listed chat.
func (s *Store) Sessions() []model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionsLocked()
}

// Active returns the chats that are not archived, in list order.
func (s *Store) Active() []model.ChatSession {
	return s.partition(false)
}

// Archived returns the archived chats, in list order.
func (s *Store) Archived() []model.ChatSession {
	return s.partition(true)
}

func (s *Store) partition(archived bool) []model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.ChatSession{}
	for _, c := range s.sessions {
		if c.Archived == archived {
			out = append(out, c)
		}
	}
	return out
}

// Session returns the listed chat with id.
func (s *Store) Session(id model.ID) (model.ChatSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.sessions[i], true
	}
	return model.ChatSession{}, false
}

// ActiveID returns the id of the chat on screen; zero for a draft.
func (s *Store) ActiveID() model.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// SessionState returns the persistence state of the chat on screen.
func (s *Store) SessionState() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.activeID.IsZero():
		return Draft
	case s.persisting:
		return Persisting
	default:
		return Persisted
	}
}

// Messages returns a copy of the active chat's messages.
func (s *Store) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneMessages(s.messages)
}

// Visible reports whether the message view is shown.
func (s *Store) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// LoadingChat reports whether a LoadChat is in progress.
func (s *Store) LoadingChat() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadingChat
}

// Offline reports whether the list came from the cache.
func (s *Store) Offline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offline
}

// HasPlaceholder reports whether an assistant reply is pending.
func (s *Store) HasPlaceholder() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.placeholderIndexLocked() >= 0
}

func (s *Store) sessionsLocked() []model.ChatSession {
	return append([]model.ChatSession(nil), s.sessions...)
}

func (s *Store) indexLocked(id model.ID) int {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// Subscribe registers fn to run after every change and returns its cancel
// func. fn runs on the goroutine that made the change and must not block.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) emit() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
