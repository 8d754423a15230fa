package speech

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ConsoleRecognizer stands in for a microphone by reading one typed line.
// It shares the caller's reader so no buffered input is lost.
type ConsoleRecognizer struct {
	In     *bufio.Reader
	Out    io.Writer
	Prompt string
}

func NewConsoleRecognizer(in *bufio.Reader, out io.Writer) *ConsoleRecognizer {
	return &ConsoleRecognizer{In: in, Out: out, Prompt: "(dictate) > "}
}

func (r *ConsoleRecognizer) RequestPermission(_ context.Context) error {
	if r.In == nil {
		return ErrUnsupported
	}
	return nil
}

func (r *ConsoleRecognizer) Start(ctx context.Context, _ Options) (<-chan Event, error) {
	if r.In == nil {
		return nil, ErrUnsupported
	}

	s := newSession(ctx)
	go func() {
		defer s.end()
		if !s.emit(Event{Type: EventStart}) {
			return
		}
		if r.Out != nil {
			fmt.Fprint(r.Out, r.Prompt)
		}

		line, err := r.In.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			s.fail(fmt.Errorf("%w: %v", ErrAudioCapture, err))
			return
		}
		if text := strings.TrimSpace(line); text != "" {
			s.emit(Event{Type: EventResult, Transcript: text})
		}
	}()
	return s.ch, nil
}
