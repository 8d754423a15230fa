// Package speech models dictation as an explicit event stream. A Recognizer
// runs one recognition session per Start call and reports its progress on
// the returned channel: EventStart, then at most one EventResult or
// EventError, then EventEnd, after which the channel is closed.
package speech

import (
	"context"
	"errors"
)

type EventType int

const (
	EventStart EventType = iota
	EventResult
	EventError
	EventEnd
)

func (t EventType) String() string {
	switch t {
	case EventStart:
		return "start"
	case EventResult:
		return "result"
	case EventError:
		return "error"
	case EventEnd:
		return "end"
	}
	return "unknown"
}

type Event struct {
	Type       EventType
	Transcript string
	Err        error
}

// Options configure one recognition session.
type Options struct {
	Language        string
	Interim         bool
	MaxAlternatives int
}

// DefaultOptions is a single final utterance in US English.
var DefaultOptions = Options{Language: "en-US", Interim: false, MaxAlternatives: 1}

var (
	ErrPermissionDenied = errors.New("microphone permission denied")
	ErrAudioCapture     = errors.New("audio capture failed")
	ErrNetwork          = errors.New("speech recognition network error")
	ErrUnsupported      = errors.New("speech recognition not supported")
)

type Recognizer interface {
	// RequestPermission checks that audio can be captured.
	RequestPermission(ctx context.Context) error
	// Start begins a session. Cancelling ctx ends it early.
	Start(ctx context.Context, opts Options) (<-chan Event, error)
}

// Notice is the user-facing message for a recognition error. Errors outside
// the known categories have no notice and are only logged.
func Notice(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "Microphone access was denied. Please check your system's privacy permissions."
	case errors.Is(err, ErrAudioCapture):
		return "Microphone capture failed. Please ensure no other app is using the mic and that you have granted permission."
	case errors.Is(err, ErrNetwork):
		return "Network error occurred during speech recognition. Please check your connection."
	case errors.Is(err, ErrUnsupported):
		return "Speech recognition is not supported here. Configure an API key and an audio capture path, or type the text."
	}
	return ""
}

// session emits events for one recognition run. The buffer holds a full
// run so the producer never blocks on a consumer that stopped reading.
type session struct {
	ctx context.Context
	ch  chan Event
}

func newSession(ctx context.Context) *session {
	return &session{ctx: ctx, ch: make(chan Event, 4)}
}

func (s *session) emit(ev Event) bool {
	select {
	case s.ch <- ev:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *session) fail(err error) {
	s.emit(Event{Type: EventError, Err: err})
}

func (s *session) end() {
	s.emit(Event{Type: EventEnd})
	close(s.ch)
}
