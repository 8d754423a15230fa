package editor

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/winvault/internal/speech"
)

// Dictate runs one recognition session for f and appends the transcript to
// the field, separated by a space. It is a no-op while f is already
// listening. Recognition errors are reported through the Notifier and
// returned; the listening flag is always cleared.
func (e *Editor) Dictate(ctx context.Context, f Field) error {
	e.mu.Lock()
	st := e.state(f)
	if st.listening {
		e.mu.Unlock()
		return nil
	}
	st.listening = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		st.listening = false
		e.mu.Unlock()
	}()

	log := e.deps.Log.With("field", f.String())
	rec := e.deps.Recognizer
	if rec == nil {
		e.notify(speech.Notice(speech.ErrUnsupported))
		return speech.ErrUnsupported
	}

	if err := rec.RequestPermission(ctx); err != nil {
		log.Warn(ctx, "microphone permission check failed", "error", err)
		e.notify(speech.Notice(err))
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := rec.Start(ctx, speech.DefaultOptions)
	if err != nil {
		log.Error(ctx, "failed to start recognition", "error", err)
		e.notify(speech.Notice(err))
		return err
	}

	for ev := range events {
		switch ev.Type {
		case speech.EventStart:
			log.Debug(ctx, "recognition started")
		case speech.EventResult:
			e.appendTranscript(st, ev.Transcript)
			return nil
		case speech.EventError:
			log.Error(ctx, "speech recognition error", "error", ev.Err)
			e.notify(speech.Notice(ev.Err))
			return ev.Err
		case speech.EventEnd:
			return nil
		}
	}
	return nil
}

func (e *Editor) appendTranscript(st *fieldState, transcript string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st.value == "" {
		st.value = transcript
		return
	}
	st.value += " " + transcript
}

// Refine replaces the value of f with the refiner's rewrite and remembers
// the previous value for Revert. It reports whether the value changed.
// Empty fields and fields with a refinement in flight are left alone;
// refiner failures are logged and leave the value untouched.
func (e *Editor) Refine(ctx context.Context, f Field) bool {
	e.mu.Lock()
	st := e.state(f)
	current := st.value
	if current == "" || st.refining {
		e.mu.Unlock()
		return false
	}
	st.refining = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		st.refining = false
		e.mu.Unlock()
	}()

	log := e.deps.Log.With("field", f.String())
	if e.deps.Refiner == nil {
		log.Warn(ctx, "refinement unavailable: no refiner configured")
		return false
	}

	refined, err := e.deps.Refiner.Refine(ctx, f.instruction(), current)
	if err != nil {
		log.Error(ctx, "refinement failed", "error", err)
		return false
	}
	refined = strings.TrimSpace(refined)
	if refined == "" {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	st.previous = &current
	st.value = refined
	return true
}

// Revert restores the value remembered by the last refinement of f. It
// reports false when there is nothing to restore.
func (e *Editor) Revert(f Field) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.state(f)
	if st.previous == nil {
		return false
	}
	st.value = *st.previous
	st.previous = nil
	return true
}
