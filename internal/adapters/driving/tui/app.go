package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/medrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/medrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/medrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/medrag/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/medrag/internal/adapters/driving/tui/views/document"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	chatView     *chat.View
	documentView *document.View

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keymap:       km,
		chatView:     chat.NewView(s, km, ports.Engine),
		documentView: document.NewView(s, km, ports.Engine),
		currentView:  messages.ViewChat,
	}, nil
}

// WithContext sets the context questions are asked under.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	title := "medrag"
	if a.ports.Corpus != "" {
		title += " - " + a.ports.Corpus
	}
	return tea.Batch(
		tea.SetWindowTitle(title),
		a.chatView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.chatView.Close()
			return a, tea.Quit
		}
		switch a.currentView {
		case messages.ViewDocument:
			a.documentView, cmd = a.documentView.Update(msg)
		case messages.ViewHelp:
			a.currentView = messages.ViewChat
		default:
			if msg.String() == "?" && !a.chatView.InputFocused() {
				a.currentView = messages.ViewHelp
				return a, nil
			}
			a.chatView, cmd = a.chatView.Update(msg)
		}
		return a, cmd

	case messages.DocumentSelected:
		a.currentView = messages.ViewDocument
		return a, a.documentView.Load(msg.ID)

	case messages.DocumentLoaded:
		a.documentView, cmd = a.documentView.Update(msg)
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.Quit:
		a.chatView.Close()
		return a, tea.Quit
	}

	// Answer and stream messages keep flowing to the chat view while a
	// document is open.
	a.chatView, cmd = a.chatView.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewDocument:
		return a.documentView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.chatView.View()
	}
}

func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			fmt.Fprintf(&b, "  %-10s %s\n", h.Key, h.Desc)
		}
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Help.Render("[any key] back"))
	return b.String()
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Chat returns the chat view.
func (a *App) Chat() *chat.View {
	return a.chatView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.chatView.SetDimensions(width, height)
	a.documentView.SetDimensions(width, height)
}
