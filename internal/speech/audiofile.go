package speech

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Transcriber turns recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType, language string) (string, error)
}

var audioMIME = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mp3",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".aac":  "audio/aac",
	".aiff": "audio/aiff",
	".aif":  "audio/aiff",
}

// AudioFileRecognizer treats the clip at Path as the captured utterance,
// typically written there by an external recorder, and transcribes it.
type AudioFileRecognizer struct {
	Path        string
	Transcriber Transcriber
}

func NewAudioFileRecognizer(path string, t Transcriber) *AudioFileRecognizer {
	return &AudioFileRecognizer{Path: path, Transcriber: t}
}

func (r *AudioFileRecognizer) mimeType() (string, error) {
	ext := strings.ToLower(filepath.Ext(r.Path))
	mt, ok := audioMIME[ext]
	if !ok {
		return "", fmt.Errorf("%w: audio format %q", ErrUnsupported, ext)
	}
	return mt, nil
}

func (r *AudioFileRecognizer) RequestPermission(_ context.Context) error {
	if r.Path == "" || r.Transcriber == nil {
		return ErrUnsupported
	}
	if _, err := r.mimeType(); err != nil {
		return err
	}
	f, err := os.Open(r.Path)
	if err != nil {
		return classifyOpenErr(err)
	}
	return f.Close()
}

func classifyOpenErr(err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return fmt.Errorf("%w: %v", ErrAudioCapture, err)
}

func (r *AudioFileRecognizer) Start(ctx context.Context, opts Options) (<-chan Event, error) {
	mt, err := r.mimeType()
	if err != nil {
		return nil, err
	}

	s := newSession(ctx)
	go func() {
		defer s.end()
		if !s.emit(Event{Type: EventStart}) {
			return
		}

		audio, err := os.ReadFile(r.Path)
		if err != nil {
			s.fail(classifyOpenErr(err))
			return
		}
		if len(audio) == 0 {
			s.fail(fmt.Errorf("%w: %s is empty", ErrAudioCapture, r.Path))
			return
		}

		text, err := r.Transcriber.Transcribe(ctx, audio, mt, opts.Language)
		if err != nil {
			s.fail(fmt.Errorf("%w: %v", ErrNetwork, err))
			return
		}
		if text = strings.TrimSpace(text); text != "" {
			s.emit(Event{Type: EventResult, Transcript: text})
		}
	}()
	return s.ch, nil
}
