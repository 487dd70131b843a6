// Copyright (c) 2025-2026 Prepped Health
// SPDX-License-Identifier: AGPL-3.0-or-later

// prepped is the terminal client for the Prepped medical-intake service.
// It runs a full-screen TUI by default and offers one-shot subcommands for
// scripted use.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/prepped-health/prepped-tui/internal/backend"
	"github.com/prepped-health/prepped-tui/internal/briefing"
	"github.com/prepped-health/prepped-tui/internal/call"
	"github.com/prepped-health/prepped-tui/internal/cli"
	"github.com/prepped-health/prepped-tui/internal/config"
	"github.com/prepped-health/prepped-tui/internal/identity"
	"github.com/prepped-health/prepped-tui/internal/model"
	"github.com/prepped-health/prepped-tui/internal/storage"
	"github.com/prepped-health/prepped-tui/internal/ui/chat"
	"github.com/prepped-health/prepped-tui/internal/ui/components"
	"github.com/prepped-health/prepped-tui/internal/ui/login"
	"github.com/prepped-health/prepped-tui/internal/ui/styles"
)

// Build metadata, injected via -ldflags at release time.
var (
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

// =============================================================================
// PROGRAM HANDLE
// =============================================================================

// programRef lets background goroutines (the call poller, the config
// watcher) deliver messages into the Bubble Tea event loop.
var (
	programMu  sync.Mutex
	programRef *tea.Program
)

func setProgram(p *tea.Program) {
	programMu.Lock()
	programRef = p
	programMu.Unlock()
}

// sendToProgram forwards a message to the running program, if any. Safe to
// call from any goroutine.
func sendToProgram(msg tea.Msg) {
	programMu.Lock()
	p := programRef
	programMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// =============================================================================
// ENTRY POINT
// =============================================================================

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		exitOnError(runTUI())
	case cli.CmdAsk:
		exitOnError(cli.HandleAsk(args))
	case cli.CmdChat:
		exitOnError(cli.HandleChat(args))
	case cli.CmdSessions:
		exitOnError(cli.HandleSessions(args))
	case cli.CmdBriefing:
		exitOnError(cli.HandleBriefing(args))
	case cli.CmdLogin:
		exitOnError(cli.HandleLogin(args))
	case cli.CmdLogout:
		exitOnError(cli.HandleLogout())
	case cli.CmdConfig:
		exitOnError(cli.HandleConfig(args))
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	default:
		cli.PrintUsage()
		os.Exit(1)
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI wires the clients, starts the config watcher and runs the
// full-screen program until the user quits.
func runTUI() error {
	if !cli.IsTTY() {
		return fmt.Errorf("the interactive interface needs a terminal; try: prepped ask \"...\"")
	}

	cfg := config.Global()
	dir, err := cfg.StorageDir()
	if err != nil {
		return fmt.Errorf("resolve storage directory: %w", err)
	}

	// The cache is a convenience; the TUI still works without it.
	store, serr := storage.Open(dir, cfg.Storage.EncryptCache)
	if serr != nil {
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	m := newAppModel(cfg, store, dir)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	setProgram(p)
	defer setProgram(nil)

	watcher, werr := config.NewWatcher(func(c *config.Config) {
		sendToProgram(configReloadedMsg{cfg: c})
	})
	if werr == nil {
		if err := watcher.Watch(); err == nil {
			defer watcher.Close()
		}
	}

	_, err = p.Run()
	return err
}

// =============================================================================
// APP MODEL
// =============================================================================

type appState int

const (
	stateAuthCheck appState = iota
	stateLogin
	stateChat
	stateBriefing
)

type modalKind int

const (
	modalNone modalKind = iota
	modalProfile
	modalSettings
	modalConfirmDelete
	modalConnError
	modalCall
)

const appRequestTimeout = 30 * time.Second

// appModel is the top-level Bubble Tea model. It owns navigation, the
// modal stack and all cross-surface side effects; the chat and login
// surfaces own their own widgets.
type appModel struct {
	theme *styles.Theme
	cfg   *config.Config

	state appState
	modal modalKind

	backend  *backend.Client
	identity *identity.Client
	store    *storage.Store

	login     *login.Model
	chat      *chat.Model
	sidebar   components.Sidebar
	statusBar components.StatusBar

	showSidebar  bool
	sidebarFocus bool

	// Modal state. Only the widget matching m.modal is live.
	profileCard components.ProfileCard
	settings    components.Settings
	confirm     components.Confirm
	confirmID   string
	connErr     components.ConnectionError
	callModal   components.CallModal
	callMachine *call.Machine

	// callCancel stops the live poller goroutine. Nil when no poll loop
	// is running.
	callCancel context.CancelFunc

	// Briefing view state.
	briefingID      string
	briefingDoc     *briefing.Document
	briefingContent string
	briefingScroll  int
	briefingNotice  string

	userID  string
	account string
	offline bool

	width  int
	height int
}

func newAppModel(cfg *config.Config, store *storage.Store, storageDir string) *appModel {
	theme := styles.NewTheme()
	identityClient := identity.New(cfg.Identity.Endpoint, cfg.Identity.ProjectID, storageDir)
	machine := call.NewMachine()

	return &appModel{
		theme:       theme,
		cfg:         cfg,
		state:       stateAuthCheck,
		backend:     backend.New(cfg.Backend.BaseURL),
		identity:    identityClient,
		store:       store,
		login:       login.New(theme, identityClient),
		sidebar:     components.NewSidebar(theme),
		statusBar:   components.NewStatusBar(theme),
		callMachine: machine,
		callModal:   components.NewCallModal(theme, machine),
		showSidebar: true,
	}
}

// =============================================================================
// MESSAGES
// =============================================================================

type authCheckedMsg struct {
	userID    string
	account   string
	needLogin bool
	offline   bool
}

type sessionsLoadedMsg struct {
	sessions  []model.SessionSummary
	fetchedAt time.Time
	stale     bool
	err       error
}

type sessionDeletedMsg struct {
	id  string
	err error
}

type callStartedMsg struct {
	sessionID string
	err       error
}

type briefingReadyMsg struct {
	sessionID string
	doc       *briefing.Document
	content   string
	err       error
}

type briefingSavedMsg struct {
	path string
	err  error
}

type configReloadedMsg struct {
	cfg *config.Config
}

type retryProbeMsg struct {
	err error
}

// =============================================================================
// INIT
// =============================================================================

func (m *appModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.checkAuthCmd())
}

// checkAuthCmd resolves who is signed in. The identity service is the
// source of truth; the local hint only covers the offline case.
func (m *appModel) checkAuthCmd() tea.Cmd {
	client := m.identity
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), appRequestTimeout)
		defer cancel()

		if !client.Configured() {
			return authCheckedMsg{}
		}
		if !client.HasSessionSecret() {
			return authCheckedMsg{needLogin: true}
		}

		account, err := client.CurrentAccount(ctx)
		if err != nil {
			if identity.IsUnauthorized(err) {
				if store != nil {
					_ = store.ClearAuthHint(ctx)
				}
				return authCheckedMsg{needLogin: true}
			}
			if store != nil {
				if hint, herr := store.GetAuthHint(ctx); herr == nil && hint.LoggedIn {
					return authCheckedMsg{userID: hint.UserID, offline: true}
				}
			}
			return authCheckedMsg{offline: true}
		}

		if store != nil {
			_ = store.SaveAuthHint(ctx, account.ID)
		}
		return authCheckedMsg{userID: account.ID, account: accountLabel(account)}
	}
}

func accountLabel(account *identity.Account) string {
	if account == nil {
		return ""
	}
	if account.Name != "" {
		return account.Name
	}
	return account.Email
}

// =============================================================================
// UPDATE
// =============================================================================

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case authCheckedMsg:
		return m.handleAuthChecked(msg)

	case login.ResultMsg:
		if msg.Err == nil && msg.Account != nil {
			return m.enterChat(msg.Account.ID, accountLabel(msg.Account), false)
		}
		return m, m.login.Update(msg)

	case sessionsLoadedMsg:
		return m.handleSessionsLoaded(msg)

	case sessionDeletedMsg:
		return m.handleSessionDeleted(msg)

	case chat.HandoffMsg:
		return m, m.openBriefingCmd(msg.SessionID)

	case chat.ConnectionFailedMsg:
		m.openConnError(msg.Detail)
		return m, nil

	case callStartedMsg:
		return m.handleCallStarted(msg)

	case call.TickMsg:
		if msg.SessionID == m.activeSessionID() {
			m.callMachine.Observe(msg.Status, msg.AgentStatus, msg.LastMessage)
			m.statusBar.Status = components.StatusCallLive
		}
		return m, nil

	case call.CompletedMsg:
		if msg.SessionID == m.activeSessionID() {
			_ = m.callMachine.Complete()
		}
		return m, nil

	case call.EndedMsg:
		if msg.SessionID == m.activeSessionID() {
			_ = m.callMachine.Fail(msg.Reason)
			m.stopPolling()
			m.refreshStatus()
		}
		return m, nil

	case call.NavigateMsg:
		m.stopPolling()
		m.callMachine.Reset()
		if m.modal == modalCall {
			m.modal = modalNone
		}
		m.refreshStatus()
		return m, m.openBriefingCmd(msg.SessionID)

	case briefingReadyMsg:
		return m.handleBriefingReady(msg)

	case briefingSavedMsg:
		if msg.err != nil {
			m.briefingNotice = "Could not save: " + msg.err.Error()
		} else {
			m.briefingNotice = "Saved " + msg.path
		}
		return m, nil

	case configReloadedMsg:
		return m.handleConfigReloaded(msg)

	case retryProbeMsg:
		if msg.err == nil && m.modal == modalConnError {
			m.modal = modalNone
			m.offline = false
			m.refreshStatus()
			return m, m.loadSessionsCmd()
		}
		return m, nil

	case components.SettingsSavedExpiredMsg:
		return m, m.settings.Update(msg)
	}

	// Everything else (spinner ticks, blink, mouse) goes to the active
	// surface.
	switch m.state {
	case stateLogin:
		return m, m.login.Update(msg)
	case stateChat:
		cmd := m.chat.Update(msg)
		m.refreshStatus()
		return m, cmd
	}
	return m, nil
}

// handleKey routes keyboard input by modal, then state.
func (m *appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.stopPolling()
		return m, tea.Quit
	}

	if m.modal != modalNone {
		return m.handleModalKey(msg)
	}

	switch m.state {
	case stateAuthCheck:
		return m, nil

	case stateLogin:
		return m, m.login.Update(msg)

	case stateBriefing:
		return m.handleBriefingKey(msg)

	case stateChat:
		return m.handleChatKey(msg)
	}
	return m, nil
}

func (m *appModel) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+n":
		m.chat.StartNewSession()
		m.sidebar.SetActive("")
		m.refreshStatus()
		return m, nil

	case "ctrl+b":
		if !m.showSidebar {
			m.showSidebar = true
			m.sidebarFocus = true
		} else if m.sidebarFocus {
			m.showSidebar = false
			m.sidebarFocus = false
		} else {
			m.sidebarFocus = true
		}
		m.layout()
		return m, nil

	case "ctrl+t":
		if m.chat.Conversation().IsEmpty() {
			return m, nil
		}
		m.modal = modalCall
		return m, nil

	case "ctrl+p":
		m.profileCard = components.NewProfileCard(m.theme, m.chat.Conversation().Profile)
		m.modal = modalProfile
		return m, nil

	case "ctrl+e":
		m.settings = components.NewSettings(m.theme, m.cfg)
		m.modal = modalSettings
		return m, nil

	case "ctrl+l":
		return m, m.loadSessionsCmd()
	}

	if m.sidebarFocus {
		return m.handleSidebarKey(msg)
	}

	cmd := m.chat.Update(msg)
	m.refreshStatus()
	return m, cmd
}

func (m *appModel) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.sidebar.CursorUp()
	case "down", "j":
		m.sidebar.CursorDown()
	case "enter":
		if sel := m.sidebar.Selected(); sel != nil {
			m.sidebar.SetActive(sel.ID)
			m.sidebarFocus = false
			return m, m.chat.OpenSession(sel.ID)
		}
	case "d", "x":
		if sel := m.sidebar.Selected(); sel != nil {
			title := sel.Title
			if title == "" {
				title = sel.ID
			}
			m.confirmID = sel.ID
			m.confirm = components.NewConfirm(m.theme,
				"Delete session?",
				"\""+title+"\" will be removed for good. This cannot be undone.",
				true)
			m.modal = modalConfirmDelete
		}
	case "esc":
		m.sidebarFocus = false
	}
	return m, nil
}

func (m *appModel) handleBriefingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.state = stateChat
		m.briefingNotice = ""
		return m, nil
	case "up", "k":
		m.briefingScroll = max(0, m.briefingScroll-1)
	case "down", "j":
		m.briefingScroll++
	case "pgup":
		m.briefingScroll = max(0, m.briefingScroll-(m.height-4))
	case "pgdown":
		m.briefingScroll += m.height - 4
	case "s":
		return m, m.saveBriefingCmd()
	}
	return m, nil
}

func (m *appModel) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalProfile:
		switch msg.String() {
		case "esc", "enter", "q", "ctrl+p":
			m.modal = modalNone
		}
		return m, nil

	case modalSettings:
		switch msg.String() {
		case "esc":
			m.modal = modalNone
			return m, nil
		case "ctrl+s", "enter":
			return m, m.settings.Save(m.cfg)
		}
		return m, m.settings.Update(msg)

	case modalConfirmDelete:
		switch msg.String() {
		case "esc":
			m.modal = modalNone
			m.confirmID = ""
			return m, nil
		case "left", "right", "tab":
			m.confirm.Toggle()
			return m, nil
		case "enter":
			m.modal = modalNone
			if m.confirm.Confirmed() && m.confirmID != "" {
				id := m.confirmID
				m.confirmID = ""
				return m, m.deleteSessionCmd(id)
			}
			m.confirmID = ""
			return m, nil
		}
		return m, nil

	case modalConnError:
		switch msg.String() {
		case "r", "enter":
			return m, m.retryProbeCmd()
		case "esc":
			m.modal = modalNone
		}
		return m, nil

	case modalCall:
		return m.handleCallModalKey(msg)
	}
	return m, nil
}

// handleCallModalKey drives the call state machine. Esc always closes the
// modal; a live poll loop is cancelled with it.
func (m *appModel) handleCallModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.stopPolling()
		m.callMachine.Reset()
		m.modal = modalNone
		m.refreshStatus()
		return m, nil
	}

	state := m.callMachine.State()
	if msg.String() == "enter" && (state == call.StateIdle || state == call.StateError) {
		if !m.callModal.ValidPhone() {
			return m, nil
		}
		if err := m.callMachine.Submit(); err != nil {
			return m, nil
		}
		return m, m.startCallCmd()
	}

	return m, m.callModal.Update(msg)
}

// =============================================================================
// STATE TRANSITIONS
// =============================================================================

func (m *appModel) handleAuthChecked(msg authCheckedMsg) (tea.Model, tea.Cmd) {
	if msg.needLogin {
		m.state = stateLogin
		m.layout()
		return m, nil
	}
	return m.enterChat(msg.userID, msg.account, msg.offline)
}

// enterChat builds the chat surface for a resolved identity and loads the
// session list.
func (m *appModel) enterChat(userID, account string, offline bool) (tea.Model, tea.Cmd) {
	m.userID = userID
	m.account = account
	m.offline = offline
	m.chat = chat.New(m.theme, m.backend, userID, m.cfg.UI.Markdown)
	m.state = stateChat
	m.statusBar.Account = account
	m.layout()
	m.refreshStatus()
	cmd := m.loadSessionsCmd()
	if m.store != nil && account != "" {
		store := m.store
		id := userID
		save := func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), appRequestTimeout)
			defer cancel()
			_ = store.SaveAuthHint(ctx, id)
			return nil
		}
		return m, tea.Batch(cmd, save)
	}
	return m, cmd
}

func (m *appModel) handleSessionsLoaded(msg sessionsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.offline = true
		m.refreshStatus()
		return m, nil
	}
	if msg.stale {
		m.sidebar.SetCachedSessions(msg.sessions, msg.fetchedAt)
		m.offline = true
	} else {
		m.sidebar.SetSessions(msg.sessions)
		m.offline = false
	}
	m.refreshStatus()
	return m, nil
}

func (m *appModel) handleSessionDeleted(msg sessionDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if errors.Is(msg.err, backend.ErrConnection) {
			m.openConnError("The session was not deleted.")
		}
		return m, nil
	}
	m.sidebar.Remove(msg.id)
	// Deleting the open conversation resets the surface; deleting any
	// other row leaves the active view alone.
	if m.chat != nil && msg.id == m.chat.SessionID() {
		m.chat.StartNewSession()
		m.sidebar.SetActive("")
	}
	return m, nil
}

func (m *appModel) handleCallStarted(msg callStartedMsg) (tea.Model, tea.Cmd) {
	if msg.sessionID != m.activeSessionID() {
		return m, nil
	}
	if msg.err != nil {
		var rejected *backend.CallRejectedError
		switch {
		case errors.As(msg.err, &rejected):
			_ = m.callMachine.Fail(rejected.Detail)
		case errors.Is(msg.err, backend.ErrConnection):
			_ = m.callMachine.Fail("Could not reach the intake service.")
		default:
			_ = m.callMachine.Fail(msg.err.Error())
		}
		return m, nil
	}
	_ = m.callMachine.Connected()
	m.startPolling(msg.sessionID)
	m.statusBar.Status = components.StatusCallLive
	return m, nil
}

func (m *appModel) handleBriefingReady(msg briefingReadyMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if errors.Is(msg.err, backend.ErrConnection) {
			m.openConnError("The briefing could not be loaded.")
		} else {
			m.openConnError(msg.err.Error())
		}
		return m, nil
	}
	m.briefingID = msg.sessionID
	m.briefingDoc = msg.doc
	m.briefingContent = msg.content
	m.briefingScroll = 0
	m.briefingNotice = ""
	m.state = stateBriefing
	return m, nil
}

// handleConfigReloaded applies an edited config file without a restart.
func (m *appModel) handleConfigReloaded(msg configReloadedMsg) (tea.Model, tea.Cmd) {
	old := m.cfg
	m.cfg = msg.cfg

	if old.Backend.BaseURL != msg.cfg.Backend.BaseURL {
		m.backend = backend.New(msg.cfg.Backend.BaseURL)
		if m.chat != nil {
			// Rebuilding the surface swaps the client while keeping the
			// open conversation.
			current := m.chat.Conversation()
			m.chat = chat.New(m.theme, m.backend, m.userID, msg.cfg.UI.Markdown)
			m.chat.Conversation().SessionID = current.SessionID
			m.chat.Conversation().Messages = current.Messages
			m.chat.Conversation().Profile = current.Profile
		}
	}
	m.layout()
	return m, nil
}

func (m *appModel) openConnError(detail string) {
	m.connErr = components.NewConnectionError(m.theme, detail)
	m.modal = modalConnError
	m.offline = true
	m.refreshStatus()
}

func (m *appModel) activeSessionID() string {
	if m.chat == nil {
		return ""
	}
	return m.chat.SessionID()
}

// refreshStatus recomputes the status bar from current state.
func (m *appModel) refreshStatus() {
	switch {
	case m.callMachine.State() == call.StateConnected:
		m.statusBar.Status = components.StatusCallLive
	case m.chat != nil && m.chat.Loading():
		if m.chat.LoadingPhase() == components.PhaseTranscribing {
			m.statusBar.Status = components.StatusTranscribing
		} else {
			m.statusBar.Status = components.StatusThinking
		}
	case m.offline:
		m.statusBar.Status = components.StatusOffline
	default:
		m.statusBar.Status = components.StatusReady
	}
}

// =============================================================================
// COMMANDS
// =============================================================================

// loadSessionsCmd fetches the session list, refreshing the cache on
// success and falling back to it when the backend is unreachable.
func (m *appModel) loadSessionsCmd() tea.Cmd {
	client := m.backend
	store := m.store
	userID := m.userID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), appRequestTimeout)
		defer cancel()

		sessions, err := client.ListSessions(ctx, userID)
		if err == nil {
			if store != nil {
				_ = store.ReplaceSessions(ctx, sessions)
			}
			return sessionsLoadedMsg{sessions: sessions, fetchedAt: time.Now()}
		}
		if errors.Is(err, backend.ErrConnection) && store != nil {
			cached, fetchedAt, cerr := store.CachedSessions(ctx)
			if cerr == nil && len(cached) > 0 {
				return sessionsLoadedMsg{sessions: cached, fetchedAt: fetchedAt, stale: true}
			}
		}
		return sessionsLoadedMsg{err: err}
	}
}

func (m *appModel) deleteSessionCmd(id string) tea.Cmd {
	client := m.backend
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), appRequestTimeout)
		defer cancel()

		if err := client.DeleteSession(ctx, id); err != nil {
			return sessionDeletedMsg{id: id, err: err}
		}
		if store != nil {
			_ = store.DeleteSession(ctx, id)
		}
		return sessionDeletedMsg{id: id}
	}
}

func (m *appModel) startCallCmd() tea.Cmd {
	client := m.backend
	sessionID := m.activeSessionID()
	phone := m.callModal.Phone()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), appRequestTimeout)
		defer cancel()
		err := client.InitiateCall(ctx, sessionID, phone)
		return callStartedMsg{sessionID: sessionID, err: err}
	}
}

// startPolling launches the status poll loop for an accepted call. The
// poller delivers messages through the program handle; cancelling the
// context stops it without a trailing message.
func (m *appModel) startPolling(sessionID string) {
	m.stopPolling()
	ctx, cancel := context.WithCancel(context.Background())
	m.callCancel = cancel

	client := m.backend
	poll := func(ctx context.Context) (*backend.SessionDetail, error) {
		return client.GetSession(ctx, sessionID)
	}
	poller := call.NewPoller(sessionID, poll, sendToProgram, call.Options{
		Interval:            time.Duration(m.cfg.Call.PollIntervalMs) * time.Millisecond,
		MaxAttempts:         m.cfg.Call.MaxPollAttempts,
		BackoffFactor:       m.cfg.Call.BackoffFactor,
		CompletedCloseDelay: time.Duration(m.cfg.Call.CompletedCloseDelayMs) * time.Millisecond,
	})
	go poller.Run(ctx)
}

func (m *appModel) stopPolling() {
	if m.callCancel != nil {
		m.callCancel()
		m.callCancel = nil
	}
}

// openBriefingCmd fetches a session and builds its briefing document,
// pre-rendered for the terminal. The markdown snapshot is cached for
// offline re-reads.
func (m *appModel) openBriefingCmd(sessionID string) tea.Cmd {
	client := m.backend
	store := m.store
	width := m.width
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), appRequestTimeout)
		defer cancel()

		detail, err := client.GetSession(ctx, sessionID)
		if err != nil {
			return briefingReadyMsg{sessionID: sessionID, err: err}
		}

		conv := model.NewConversation(sessionID)
		for _, msg := range detail.Messages {
			conv.AddMessage(msg)
		}
		conv.ReplaceProfile(detail.MemoryBank)
		doc := briefing.Build(conv)

		raw, err := briefing.NewMarkdownExporter(nil).Export(doc)
		if err != nil {
			return briefingReadyMsg{sessionID: sessionID, err: err}
		}
		if store != nil {
			_ = store.PutBriefing(ctx, sessionID, raw)
		}

		content := string(raw)
		renderer, rerr := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(min(width-6, 100)),
		)
		if rerr == nil {
			if out, oerr := renderer.Render(content); oerr == nil {
				content = out
			}
		}
		return briefingReadyMsg{sessionID: sessionID, doc: doc, content: content}
	}
}

func (m *appModel) saveBriefingCmd() tea.Cmd {
	doc := m.briefingDoc
	return func() tea.Msg {
		path, err := briefing.ExportToFile(doc, "md", nil)
		return briefingSavedMsg{path: path, err: err}
	}
}

// retryProbeCmd re-checks backend reachability for the connection-error
// modal's manual retry.
func (m *appModel) retryProbeCmd() tea.Cmd {
	client := m.backend
	userID := m.userID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), appRequestTimeout)
		defer cancel()
		_, err := client.ListSessions(ctx, userID)
		return retryProbeMsg{err: err}
	}
}

// =============================================================================
// LAYOUT AND VIEW
// =============================================================================

func (m *appModel) layout() {
	if m.width == 0 {
		return
	}

	m.statusBar.Width = m.width
	m.login.Width = m.width
	m.login.Height = m.height - 1

	sidebarWidth := 0
	if m.showSidebar {
		sidebarWidth = m.cfg.UI.SidebarWidth
		if sidebarWidth <= 0 {
			sidebarWidth = 28
		}
		m.sidebar.Width = sidebarWidth
		m.sidebar.Height = m.height - 1
	}
	if m.chat != nil {
		m.chat.SetSize(m.width-sidebarWidth, m.height-1)
	}
}

func (m *appModel) View() string {
	if m.width == 0 {
		return "Starting prepped..."
	}

	var body string
	switch m.state {
	case stateAuthCheck:
		body = components.CenterOverlay(m.width, m.height-1, "Checking your session...")
	case stateLogin:
		body = m.login.View()
	case stateBriefing:
		body = m.briefingView()
	case stateChat:
		body = m.chatView()
	}

	if m.modal != modalNone {
		body = components.CenterOverlay(m.width, m.height-1, m.modalView())
	}

	return body + "\n" + m.statusBar.View()
}

func (m *appModel) chatView() string {
	if m.chat == nil {
		return ""
	}
	chatView := m.chat.View()
	if !m.showSidebar {
		return chatView
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), chatView)
}

// briefingView renders the pre-rendered briefing text with simple line
// scrolling.
func (m *appModel) briefingView() string {
	lines := strings.Split(m.briefingContent, "\n")
	visible := m.height - 3
	if visible < 1 {
		visible = 1
	}
	if m.briefingScroll > len(lines)-visible {
		m.briefingScroll = max(0, len(lines)-visible)
	}
	end := min(m.briefingScroll+visible, len(lines))

	header := m.theme.ModalTitle.Render("Briefing") +
		m.theme.ShortcutDesc.Render("  s saves a copy, esc returns to the chat")
	if m.briefingNotice != "" {
		header += "\n" + m.theme.ShortcutDesc.Render(m.briefingNotice)
	}
	return header + "\n" + strings.Join(lines[m.briefingScroll:end], "\n")
}

func (m *appModel) modalView() string {
	switch m.modal {
	case modalProfile:
		return m.profileCard.View()
	case modalSettings:
		return m.settings.View()
	case modalConfirmDelete:
		return m.confirm.View()
	case modalConnError:
		return m.connErr.View()
	case modalCall:
		return m.callModal.View()
	}
	return ""
}

