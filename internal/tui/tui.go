// Copyright (c) 2026 ToeiRei
// Agekey - age-keygen front-end
// This source code is licensed under the MIT license found in the LICENSE file.

// Package tui provides the terminal user interface for Agekey. This file
// contains the single-screen model: two key panes, a status line, and the
// generate/copy/save actions. The generation work itself happens on a worker
// goroutine inside internal/keygen; its events are drained into the Bubble
// Tea loop one at a time, so all model state stays on the UI goroutine.
package tui // import "github.com/toeirei/agekey/internal/tui"

import (
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/toeirei/agekey/internal/i18n"
	"github.com/toeirei/agekey/internal/keygen"
	"github.com/toeirei/agekey/internal/logging"
)

// Default filenames offered in the save prompt.
const (
	defaultPrivateFilename = "age_private.key"
	defaultPublicFilename  = "age_public.txt"
)

// viewState represents which part of the UI is currently active.
type viewState int

const (
	// keysView is the main screen with the two key panes.
	keysView viewState = iota
	// savePromptView is the filename prompt for saving a key.
	savePromptView
)

// keygenEventMsg wraps one event from the running generation attempt.
type keygenEventMsg struct {
	ev keygen.Event
}

// model is the Bubble Tea model for the key generator screen.
type model struct {
	state viewState

	// Resolved once at startup, read-only afterwards.
	keygenPath    string
	runTimeout    time.Duration
	deriveTimeout time.Duration

	privateKey string
	publicKey  string

	status      string
	statusStyle lipgloss.Style

	// generating disarms the trigger while an attempt is in flight. There is
	// no cancellation; the attempt runs to completion or timeout.
	generating bool
	events     <-chan keygen.Event
	spin       spinner.Model

	saveInput     textinput.Model
	savingPrivate bool

	width, height int
}

// New creates the starting state of the TUI.
func New(keygenPath string, runTimeout, deriveTimeout time.Duration) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorHighlight)

	ti := textinput.New()
	ti.CharLimit = 128
	ti.Width = 48

	return model{
		state:         keysView,
		keygenPath:    keygenPath,
		runTimeout:    runTimeout,
		deriveTimeout: deriveTimeout,
		status:        i18n.T("status.ready"),
		statusStyle:   statusStyle,
		spin:          sp,
		saveInput:     ti,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.generating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case keygenEventMsg:
		return m.handleKeygenEvent(msg.ev)

	case tea.KeyMsg:
		if m.state == savePromptView {
			return m.updateSavePrompt(msg)
		}
		return m.updateKeysView(msg)
	}

	return m, nil
}

// handleKeygenEvent applies one worker event. Non-terminal events re-arm the
// listener; terminal events re-arm the generate trigger instead.
func (m model) handleKeygenEvent(ev keygen.Event) (tea.Model, tea.Cmd) {
	switch ev := ev.(type) {
	case keygen.StartedEvent:
		return m, listenForEvents(m.events)

	case keygen.ProgressEvent:
		m.status = ev.Stage.Message()
		m.statusStyle = specialStyle
		return m, listenForEvents(m.events)

	case keygen.DoneEvent:
		m.generating = false
		m.events = nil
		m.privateKey = ev.Pair.Private
		m.publicKey = ev.Pair.Public
		m.status = i18n.T("status.success")
		m.statusStyle = successStyle
		return m, nil

	case keygen.FailedEvent:
		m.generating = false
		m.events = nil
		m.status = ev.Err.Message()
		m.statusStyle = errorStyle
		return m, nil
	}
	return m, nil
}

// updateKeysView handles keystrokes on the main screen.
func (m model) updateKeysView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "g", "enter":
		return m.startGeneration()

	case "c":
		return m.copyKey(true), nil
	case "C":
		return m.copyKey(false), nil

	case "s":
		return m.openSavePrompt(true)
	case "S":
		return m.openSavePrompt(false)
	}
	return m, nil
}

// startGeneration kicks off one attempt. A second press while one is in
// flight is ignored; the trigger is re-armed by the terminal event.
func (m model) startGeneration() (tea.Model, tea.Cmd) {
	if m.generating {
		return m, nil
	}

	m.generating = true
	m.privateKey = ""
	m.publicKey = ""
	m.status = i18n.T("status.generating")
	m.statusStyle = specialStyle

	r := keygen.NewRunner(m.keygenPath)
	r.RunTimeout = m.runTimeout
	r.DeriveTimeout = m.deriveTimeout
	m.events = r.Start()

	return m, tea.Batch(m.spin.Tick, listenForEvents(m.events))
}

// copyKey puts the selected key on the system clipboard, trimmed.
func (m model) copyKey(private bool) model {
	key := m.publicKey
	if private {
		key = m.privateKey
	}
	key = strings.TrimSpace(key)
	if key == "" {
		m.status = i18n.T("msg.no_key")
		m.statusStyle = specialStyle
		return m
	}

	if err := clipboard.WriteAll(key); err != nil {
		m.status = i18n.T("msg.copy_failed", err)
		m.statusStyle = errorStyle
		return m
	}
	m.status = i18n.T("msg.copy_success")
	m.statusStyle = successStyle
	return m
}

// openSavePrompt switches to the filename prompt for the selected key.
func (m model) openSavePrompt(private bool) (tea.Model, tea.Cmd) {
	key := m.publicKey
	defaultName := defaultPublicFilename
	if private {
		key = m.privateKey
		defaultName = defaultPrivateFilename
	}
	if strings.TrimSpace(key) == "" {
		m.status = i18n.T("msg.no_key")
		m.statusStyle = specialStyle
		return m, nil
	}

	m.state = savePromptView
	m.savingPrivate = private
	m.saveInput.SetValue(defaultName)
	m.saveInput.CursorEnd()
	m.saveInput.Focus()
	return m, textinput.Blink
}

// updateSavePrompt handles keystrokes while the filename prompt is open.
func (m model) updateSavePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = keysView
		m.saveInput.Blur()
		return m, nil

	case "enter":
		return m.saveKey(), nil
	}

	var cmd tea.Cmd
	m.saveInput, cmd = m.saveInput.Update(msg)
	return m, cmd
}

// saveKey writes the selected key to the entered filename. Private keys get
// a .key suffix and a 0600 mode on POSIX; public keys are written with
// default permissions. A write failure is reported and changes nothing else.
func (m model) saveKey() model {
	filename := strings.TrimSpace(m.saveInput.Value())
	if filename == "" {
		return m
	}

	key := strings.TrimSpace(m.publicKey)
	if m.savingPrivate {
		key = strings.TrimSpace(m.privateKey)
		if !strings.HasSuffix(strings.ToLower(filename), ".key") {
			filename += ".key"
		}
	}

	var err error
	if m.savingPrivate {
		err = WritePrivateKeyFile(filename, []byte(key))
	} else {
		err = WritePublicKeyFile(filename, []byte(key))
	}

	m.state = keysView
	m.saveInput.Blur()

	if err != nil {
		m.status = i18n.T("msg.save_failed", err)
		m.statusStyle = errorStyle
		return m
	}
	m.status = i18n.T("msg.save_success")
	m.statusStyle = successStyle
	return m
}

func (m model) View() string {
	if m.state == savePromptView {
		return m.viewSavePrompt()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("🔐 " + i18n.T("app.title")))
	b.WriteString("\n\n")

	b.WriteString(m.renderPane(
		i18n.T("tui.label_private"), i18n.T("tui.hint_private"),
		m.privateKey, i18n.T("tui.placeholder_private"),
	))
	b.WriteString("\n")
	b.WriteString(m.renderPane(
		i18n.T("tui.label_public"), i18n.T("tui.hint_public"),
		m.publicKey, i18n.T("tui.placeholder_public"),
	))
	b.WriteString("\n")

	status := m.statusStyle.Render(m.status)
	if m.generating {
		status = m.spin.View() + status
	}
	b.WriteString(status)
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(i18n.T("tui.help")))

	return docStyle.Render(b.String())
}

// renderPane renders one labeled key pane.
func (m model) renderPane(label, hint, content, placeholder string) string {
	header := labelStyle.Render(label) + "  " + hintStyle.Render(hint)
	body := content
	if body == "" {
		body = placeholderStyle.Render(placeholder)
	}
	return header + "\n" + keyPaneStyle.Render(body) + "\n"
}

func (m model) viewSavePrompt() string {
	prompt := i18n.T("tui.save_prompt_public")
	if m.savingPrivate {
		prompt = i18n.T("tui.save_prompt_private")
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render(prompt))
	b.WriteString("\n\n")
	b.WriteString(m.saveInput.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(i18n.T("tui.save_help")))

	box := promptBoxStyle.Render(b.String())
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}

// listenForEvents is a tea.Cmd that waits for the next worker event. It is
// re-armed after each non-terminal event; once the channel is closed it
// yields nil and the loop stops.
func listenForEvents(events <-chan keygen.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return keygenEventMsg{ev: ev}
	}
}

// Run is the main entrypoint for the TUI. It initializes and runs the Bubble
// Tea program until the user quits.
func Run(keygenPath string, runTimeout, deriveTimeout time.Duration) {
	if _, err := tea.NewProgram(New(keygenPath, runTimeout, deriveTimeout)).Run(); err != nil {
		logging.Errorf("TUI run error: %v", err)
		os.Exit(1)
	}
}
