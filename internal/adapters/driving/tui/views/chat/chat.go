// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/medrag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/medrag/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/medrag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/medrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/medrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/medrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/medrag/internal/core/domain"
	"github.com/custodia-labs/medrag/internal/core/ports/driving"
)

// ErrNoAnswerService is returned when the view has no engine to ask.
var ErrNoAnswerService = errors.New("answer service not available")

// View is the chat view: question input, streamed answer and cited sources.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	sources   *list.SourceList
	statusbar *status.Bar

	answers driving.AnswerService
	ctx     context.Context

	seq      uint64
	question string
	answer   strings.Builder
	stream   domain.TextStream
	notFound bool

	width  int
	height int
	ready  bool
	err    error
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, answers driving.AnswerService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:    s,
		keymap:    km,
		input:     input.NewQuestionInput(s),
		sources:   list.NewSourceList(s),
		statusbar: status.NewBar(s, km),
		answers:   answers,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context used for asking.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReady:
		return v, v.handleAnswerReady(msg)

	case messages.StreamChunk:
		if msg.Stream != v.stream {
			// Abandoned by a newer question. No pull is in flight now.
			_ = msg.Stream.Close()
			return v, nil
		}
		v.answer.WriteString(msg.Text)
		return v, nextChunk(msg.Stream)

	case messages.StreamFinished:
		if msg.Stream != v.stream {
			_ = msg.Stream.Close()
			return v, nil
		}
		v.finishStream(msg.Err)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	if v.input.Focused() {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.input.Focused() {
		return v.handleInputKey(msg)
	}
	return v.handleSourcesKey(msg)
}

func (v *View) handleInputKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Ask):
		question := v.input.Question()
		if question == "" {
			return v, nil
		}
		return v, v.ask(question)

	case key.Matches(msg, v.keymap.Sources):
		if v.sources.Count() > 0 {
			v.focusSources()
		}
		return v, nil

	case key.Matches(msg, v.keymap.Back):
		if v.input.Value() != "" {
			v.input.Reset()
			return v, nil
		}
		return v, func() tea.Msg { return messages.Quit{} }
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleSourcesKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Up):
		v.sources.MoveUp()
	case key.Matches(msg, v.keymap.Down):
		v.sources.MoveDown()
	case key.Matches(msg, v.keymap.Open):
		if selected := v.sources.SelectedSource(); selected != nil {
			id := selected.Document.ID
			return v, func() tea.Msg { return messages.DocumentSelected{ID: id} }
		}
	case key.Matches(msg, v.keymap.NewQuestion), key.Matches(msg, v.keymap.Back),
		key.Matches(msg, v.keymap.Sources):
		return v, v.focusInput()
	case key.Matches(msg, v.keymap.Quit):
		return v, func() tea.Msg { return messages.Quit{} }
	}
	return v, nil
}

// ask starts answering a question. A stream still being read is
// abandoned; it is closed when its pending chunk arrives.
func (v *View) ask(question string) tea.Cmd {
	v.seq++
	seq := v.seq
	v.stream = nil
	v.question = question
	v.answer.Reset()
	v.notFound = false
	v.err = nil
	v.sources.SetSources("", nil)
	v.input.Reset()
	v.statusbar.SetState(status.StateThinking)

	answers, ctx := v.answers, v.ctx
	return func() tea.Msg {
		if answers == nil {
			return messages.AnswerReady{Seq: seq, Question: question, Err: ErrNoAnswerService}
		}
		answer, err := answers.Ask(ctx, question, domain.DeliveryStream)
		return messages.AnswerReady{Seq: seq, Question: question, Answer: answer, Err: err}
	}
}

func (v *View) handleAnswerReady(msg messages.AnswerReady) tea.Cmd {
	if msg.Seq == 0 || msg.Seq != v.seq {
		if msg.Answer != nil && msg.Answer.Stream != nil {
			_ = msg.Answer.Stream.Close()
		}
		return nil
	}
	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetError(msg.Err)
		return nil
	}

	answer := msg.Answer
	if answer.Query != nil {
		v.sources.SetSources(answer.Query.Route, answer.Query.Parents)
	}
	v.statusbar.SetSourceCount(v.sources.Count())

	v.notFound = answer.NotFound

	if answer.Stream == nil {
		v.answer.WriteString(answer.Text)
		v.statusbar.SetState(v.doneState())
		return nil
	}

	v.stream = answer.Stream
	v.statusbar.SetState(status.StateStreaming)
	return nextChunk(answer.Stream)
}

// nextChunk pulls one fragment from the stream off the update loop.
func nextChunk(stream domain.TextStream) tea.Cmd {
	return func() tea.Msg {
		if stream.Next() {
			return messages.StreamChunk{Stream: stream, Text: stream.Current()}
		}
		return messages.StreamFinished{Stream: stream, Err: stream.Err()}
	}
}

func (v *View) finishStream(err error) {
	_ = v.stream.Close()
	v.stream = nil
	if err != nil {
		v.err = err
		v.statusbar.SetError(err)
		return
	}
	v.statusbar.SetState(v.doneState())
}

// Close releases the answer stream being read and drops any answer still
// in flight.
func (v *View) Close() {
	v.seq++
	if v.stream != nil {
		_ = v.stream.Close()
		v.stream = nil
	}
}

func (v *View) doneState() status.State {
	if v.notFound {
		return status.StateNotFound
	}
	return status.StateAnswered
}

func (v *View) focusSources() {
	v.input.Blur()
	v.sources.SetActive(true)
	v.statusbar.SetFocus(status.FocusSources)
}

func (v *View) focusInput() tea.Cmd {
	v.sources.SetActive(false)
	v.statusbar.SetFocus(status.FocusInput)
	return v.input.Focus()
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("medrag"), "", v.input.View(), "")

	if v.question != "" {
		sections = append(sections, v.styles.Subtitle.Render("Q: "+v.question), "")
	}

	if v.answer.Len() > 0 {
		body := v.styles.Answer.Width(max(v.width-2, 20)).Render(v.answer.String())
		sections = append(sections, body, "")
	}

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if sources := v.sources.View(); sources != "" {
		sections = append(sections, sources, "")
	}

	sections = append(sections, v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.sources.SetDimensions(width, max(height/3, 4))
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Question returns the last question asked.
func (v *View) Question() string {
	return v.question
}

// Answer returns the answer text received so far.
func (v *View) Answer() string {
	return v.answer.String()
}

// Sources returns the parents cited by the last answer.
func (v *View) Sources() []domain.RankedParent {
	return v.sources.Sources()
}

// NotFound reports whether the last question matched no documents.
func (v *View) NotFound() bool {
	return v.notFound
}

// Streaming reports whether an answer stream is being read.
func (v *View) Streaming() bool {
	return v.stream != nil
}

// InputFocused returns whether the question input has focus.
func (v *View) InputFocused() bool {
	return v.input.Focused()
}

// State returns the status bar state.
func (v *View) State() status.State {
	return v.statusbar.State()
}

// Err returns the last error, if any.
func (v *View) Err() error {
	return v.err
}
