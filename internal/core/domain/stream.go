package domain

import "strings"

// TextStream is a single-pass, pull-based sequence of text fragments.
//
// The consumer calls Next until it returns false, reading Current after
// each successful call, then checks Err. The producer does no work between
// calls. Close releases upstream resources and may be called at any point,
// including before the sequence is exhausted; it is safe to call twice.
type TextStream interface {
	Next() bool
	Current() string
	Err() error
	Close() error
}

// SliceStream is a TextStream over fixed fragments.
type SliceStream struct {
	parts  []string
	pos    int
	cur    string
	closed bool
}

// NewSliceStream creates a stream yielding parts in order.
func NewSliceStream(parts ...string) *SliceStream {
	return &SliceStream{parts: parts}
}

// Next advances to the next fragment.
func (s *SliceStream) Next() bool {
	if s.closed || s.pos >= len(s.parts) {
		return false
	}
	s.cur = s.parts[s.pos]
	s.pos++
	return true
}

// Current returns the fragment read by the last Next.
func (s *SliceStream) Current() string {
	return s.cur
}

// Err always returns nil.
func (s *SliceStream) Err() error {
	return nil
}

// Close stops the stream.
func (s *SliceStream) Close() error {
	s.closed = true
	return nil
}

// ReadAll drains a stream into a string and closes it.
func ReadAll(s TextStream) (string, error) {
	defer s.Close()
	var b strings.Builder
	for s.Next() {
		b.WriteString(s.Current())
	}
	return b.String(), s.Err()
}
