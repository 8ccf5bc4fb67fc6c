// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	chatcore "github.com/jeranaias/genstudio-tui/internal/chat"
	"github.com/jeranaias/genstudio-tui/internal/config"
	"github.com/jeranaias/genstudio-tui/internal/debounce"
	"github.com/jeranaias/genstudio-tui/internal/filter"
	"github.com/jeranaias/genstudio-tui/internal/model"
	"github.com/jeranaias/genstudio-tui/internal/notify"
	"github.com/jeranaias/genstudio-tui/internal/session"
	"github.com/jeranaias/genstudio-tui/internal/ui/components"
	"github.com/jeranaias/genstudio-tui/internal/ui/styles"
)

// =============================================================================
// FOCUS
// =============================================================================

// Focus is the pane receiving key presses.
type Focus int

const (
	FocusInput Focus = iota
	FocusSidebar
	FocusSearch
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Deps are the services the chat screen drives. Store, Controller and
// Config are required.
type Deps struct {
	Store         *chatcore.Store
	Controller    *chatcore.Controller
	Session       *session.Manager
	Notifications *notify.Center
	Config        *config.Config

	// ConfigPath is watched for live reloads; empty disables watching.
	ConfigPath string

	Theme  *styles.Theme
	Logger *slog.Logger
	Now    func() time.Time
}

// bridge carries events from service goroutines into the update loop.
// It is shared by every copy of the Model.
type bridge struct {
	ctx    context.Context
	cancel context.CancelFunc

	changed chan struct{}
	events  chan tea.Msg

	unsubscribe func()
	search      *debounce.Debouncer[string]
	closeOnce   sync.Once
}

// post delivers msg to the update loop unless the screen has closed.
func (b *bridge) post(msg tea.Msg) {
	select {
	case b.events <- msg:
	case <-b.ctx.Done():
	}
}

// wait returns a command that blocks until the next store change or
// posted event.
func (b *bridge) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.changed:
			return storeChangedMsg{}
		case msg := <-b.events:
			return msg
		case <-b.ctx.Done():
			return nil
		}
	}
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	// Services
	store  *chatcore.Store
	ctrl   *chatcore.Controller
	sess   *session.Manager
	notes  *notify.Center
	cfg    *config.Config
	path   string
	logger *slog.Logger
	now    func() time.Time
	rt     *bridge

	// Styling
	theme *styles.Theme
	keys  KeyMap

	// Dimensions
	width  int
	height int

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	search   textinput.Model
	spinner  spinner.Model
	toasts   *components.ToastManager

	// Markdown rendering of assistant replies, keyed by content
	markdown *glamour.TermRenderer
	mdCache  map[string]string

	// Sidebar
	sidebar      *filter.Pipeline[model.ChatSession]
	cursor       int
	showArchived bool

	// Composer
	focus         Focus
	pending       []chatcore.File
	modelCfg      model.ModelConfig
	modelOverride bool

	showHelp     bool
	toastTicking bool
	followTail   bool
	quitting     bool
}

// New creates the chat screen. Nothing is fetched until Init runs.
func New(deps Deps) Model {
	theme := deps.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	rt := &bridge{
		ctx:     ctx,
		cancel:  cancel,
		changed: make(chan struct{}, 1),
		events:  make(chan tea.Msg, 16),
	}

	store := deps.Store
	rt.unsubscribe = store.Subscribe(func() {
		select {
		case rt.changed <- struct{}{}:
		default:
		}
	})
	rt.search = debounce.New(deps.Config.SearchDebounce(), func(q string) {
		err := store.RefreshList(ctx, q)
		rt.post(listRefreshedMsg{query: q, err: err})
	})

	input := textinput.New()
	input.Placeholder = "Type a message, or /help for commands"
	input.Prompt = "> "
	input.CharLimit = 0
	input.Focus()

	search := textinput.New()
	search.Placeholder = "Search chats"
	search.Prompt = ""

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Placeholder

	m := Model{
		store:    store,
		ctrl:     deps.Controller,
		sess:     deps.Session,
		notes:    deps.Notifications,
		cfg:      deps.Config,
		path:     deps.ConfigPath,
		logger:   logger,
		now:      now,
		rt:       rt,
		theme:    theme,
		keys:     DefaultKeyMap(),
		viewport: viewport.New(80, 20),
		input:    input,
		search:   search,
		spinner:  sp,
		toasts:   components.NewToastManager(now),
		mdCache:  make(map[string]string),
		sidebar:  filter.NewPipeline(filter.Chats, now),
		modelCfg: deps.Config.ModelConfig(),

		showArchived: deps.Config.UI.ShowArchived,
	}
	m.markdown = m.newRenderer(deps.Config.UI.WordWrap)
	return m
}

// Init fetches the chat list and notifications and starts listening for
// store changes and config reloads.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		m.rt.wait(),
		m.refreshList(""),
	}
	if m.notes != nil {
		notes, ctx := m.notes, m.rt.ctx
		cmds = append(cmds, func() tea.Msg {
			notes.Fetch(ctx)
			return notificationsFetchedMsg{}
		})
	}
	if m.path != "" {
		cmds = append(cmds, m.watchConfig())
	}
	return tea.Batch(cmds...)
}

// Close stops any pending send, cancels background work and releases
// preview URLs. It is safe to call more than once.
func (m Model) Close() {
	m.rt.closeOnce.Do(func() {
		m.rt.search.Cancel()
		m.rt.unsubscribe()
		m.ctrl.Close()
		m.rt.cancel()
	})
}

// =============================================================================
// GETTERS
// =============================================================================

// Focus returns the focused pane.
func (m Model) Focus() Focus {
	return m.focus
}

// ModelConfig returns the model used for the next send.
func (m Model) ModelConfig() model.ModelConfig {
	return m.modelCfg
}

// PendingFiles returns the files attached to the next send.
func (m Model) PendingFiles() []chatcore.File {
	return append([]chatcore.File(nil), m.pending...)
}

// Toasts returns the visible toasts.
func (m Model) Toasts() []components.Toast {
	return m.toasts.Toasts()
}

// SidebarItems returns the rows of the chat sidebar, most recent first.
func (m Model) SidebarItems() []model.ChatSession {
	q := filter.Query{Sort: "recent"}
	if !m.showArchived {
		q.Equals = map[string]string{"archived": "false"}
	}
	items, err := m.sidebar.Apply(m.store.Sessions(), q)
	if err != nil {
		m.logger.Error("sidebar filter rejected", "error", err)
		return nil
	}
	return items
}

// =============================================================================
// COMMANDS
// =============================================================================

// refreshList fetches the chat list now, bypassing the search debounce.
// The result arrives through the bridge like a debounced search.
func (m Model) refreshList(q string) tea.Cmd {
	store, rt := m.store, m.rt
	return func() tea.Msg {
		rt.post(listRefreshedMsg{query: q, err: store.RefreshList(rt.ctx, q)})
		return nil
	}
}

// watchConfig starts the config watcher; reloads arrive through the bridge.
func (m Model) watchConfig() tea.Cmd {
	rt, path := m.rt, m.path
	return func() tea.Msg {
		err := config.Watch(rt.ctx, path, func(cfg *config.Config, err error) {
			rt.post(configReloadedMsg{cfg: cfg, err: err})
		})
		if err != nil {
			rt.post(configReloadedMsg{err: err})
		}
		return nil
	}
}

// toastCmd starts the toast expiry ticker if it is not already running.
func (m *Model) toastCmd() tea.Cmd {
	if m.toastTicking || m.toasts.Len() == 0 {
		return nil
	}
	m.toastTicking = true
	return components.ToastTickCmd()
}

// newRenderer builds the markdown renderer, or nil when markdown is off.
func (m Model) newRenderer(wrap int) *glamour.TermRenderer {
	if !m.cfg.UI.Markdown {
		return nil
	}
	if wrap <= 0 {
		wrap = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		m.logger.Warn("markdown renderer unavailable", "error", err)
		return nil
	}
	return r
}
