package llm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/medrag/internal/core/domain"
)

// maxLineSize bounds one line of a streamed response body.
const maxLineSize = 1024 * 1024

// ErrStreamDone is returned by a LineDecoder to mark the end of a stream.
var ErrStreamDone = errors.New("stream done")

// LineDecoder turns one line of a response body into text. An empty
// string with a nil error skips the line; ErrStreamDone ends the stream.
type LineDecoder func(line []byte) (string, error)

// LineStream is a domain.TextStream over a line-delimited response body.
// Nothing is read until Next is called; no goroutine is started.
type LineStream struct {
	body    io.ReadCloser
	cancel  context.CancelFunc
	scanner *bufio.Scanner
	decode  LineDecoder

	cur    string
	err    error
	done   bool
	closed atomic.Bool
	once   sync.Once
}

// Ensure LineStream implements the interface.
var _ domain.TextStream = (*LineStream)(nil)

// NewLineStream wraps body. cancel is called on Close to abort the request
// and may be nil.
func NewLineStream(body io.ReadCloser, cancel context.CancelFunc, decode LineDecoder) *LineStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &LineStream{
		body:    body,
		cancel:  cancel,
		scanner: scanner,
		decode:  decode,
	}
}

// Next reads lines until one decodes to text, the stream ends or fails.
func (s *LineStream) Next() bool {
	if s.done || s.closed.Load() {
		return false
	}

	for s.scanner.Scan() {
		text, err := s.decode(s.scanner.Bytes())
		if errors.Is(err, ErrStreamDone) {
			s.finish(nil)
			return false
		}
		if err != nil {
			s.finish(err)
			return false
		}
		if text == "" {
			continue
		}
		s.cur = text
		return true
	}

	if err := s.scanner.Err(); err != nil {
		s.finish(fmt.Errorf("read stream: %w", err))
	} else {
		s.finish(nil)
	}
	return false
}

// Current returns the text read by the last successful Next.
func (s *LineStream) Current() string {
	return s.cur
}

// Err returns the first error encountered, if any.
func (s *LineStream) Err() error {
	return s.err
}

// Close cancels the request and releases the body. Safe to call repeatedly
// and while another goroutine is blocked in Next.
func (s *LineStream) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		if s.cancel != nil {
			s.cancel()
		}
		err = s.body.Close()
	})
	return err
}

func (s *LineStream) finish(err error) {
	s.done = true
	s.cur = ""
	if err != nil && s.err == nil {
		s.err = err
	}
	_ = s.Close()
}
