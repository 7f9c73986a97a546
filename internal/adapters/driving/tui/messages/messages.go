// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/medrag/internal/core/domain"
)

// AskRequested is a command to answer a question.
type AskRequested struct {
	Question string
}

// AnswerReady carries the result of Ask back to the model. In stream mode
// Answer.Stream has not been read yet. Seq identifies the request so a
// late answer to an earlier question, even an identical one, is dropped.
type AnswerReady struct {
	Seq      uint64
	Question string
	Answer   *domain.Answer
	Err      error
}

// StreamChunk carries one fragment pulled from an answer stream. Stream
// identifies the answer so chunks of an abandoned answer can be dropped.
type StreamChunk struct {
	Stream domain.TextStream
	Text   string
}

// StreamFinished signals the answer stream is exhausted or failed.
type StreamFinished struct {
	Stream domain.TextStream
	Err    error
}

// DocumentSelected is sent when a cited source is opened.
type DocumentSelected struct {
	ID string
}

// DocumentLoaded carries a parent document for the document view.
type DocumentLoaded struct {
	Document *domain.ParentDocument
	Err      error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewChat is the question input, answer and sources view.
	ViewChat ViewType = iota
	// ViewDocument shows the full text of a cited document.
	ViewDocument
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewChat:
		return "chat"
	case ViewDocument:
		return "document"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
