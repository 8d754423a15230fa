package editor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/winvault/internal/speech"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictate_AppendsWithSpace(t *testing.T) {
	rec := &fakeRecognizer{script: result("reduced churn")}
	e := New(author, nil, Deps{Recognizer: rec})

	require.NoError(t, e.Dictate(context.Background(), Impact))
	assert.Equal(t, "reduced churn", e.Value(Impact), "no leading space on an empty field")

	rec.script = result("by five percent")
	require.NoError(t, e.Dictate(context.Background(), Impact))
	assert.Equal(t, "reduced churn by five percent", e.Value(Impact))

	assert.False(t, e.Listening(Impact))
	assert.Equal(t, speech.DefaultOptions, rec.gotOpts)
}

func TestDictate_StopsAtFirstResult(t *testing.T) {
	rec := &fakeRecognizer{script: []speech.Event{
		{Type: speech.EventStart},
		{Type: speech.EventResult, Transcript: "one"},
		{Type: speech.EventResult, Transcript: "two"},
		{Type: speech.EventEnd},
	}}
	e := New(author, nil, Deps{Recognizer: rec})

	require.NoError(t, e.Dictate(context.Background(), Title))
	assert.Equal(t, "one", e.Value(Title))
}

func TestDictate_EndWithoutResult(t *testing.T) {
	rec := &fakeRecognizer{script: []speech.Event{{Type: speech.EventStart}, {Type: speech.EventEnd}}}
	e := New(author, nil, Deps{Recognizer: rec})
	e.SetText(Title, "keep")

	require.NoError(t, e.Dictate(context.Background(), Title))
	assert.Equal(t, "keep", e.Value(Title))
	assert.False(t, e.Listening(Title))
}

func TestDictate_ErrorsNotifyAndReset(t *testing.T) {
	tests := []struct {
		name string
		rec  *fakeRecognizer
		want error
		msg  string
	}{
		{
			name: "permission denied",
			rec:  &fakeRecognizer{permErr: speech.ErrPermissionDenied},
			want: speech.ErrPermissionDenied,
			msg:  "denied",
		},
		{
			name: "start failure",
			rec:  &fakeRecognizer{startErr: speech.ErrAudioCapture},
			want: speech.ErrAudioCapture,
			msg:  "capture failed",
		},
		{
			name: "network error event",
			rec: &fakeRecognizer{script: []speech.Event{
				{Type: speech.EventStart},
				{Type: speech.EventError, Err: speech.ErrNetwork},
				{Type: speech.EventEnd},
			}},
			want: speech.ErrNetwork,
			msg:  "Network error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &notices{}
			e := New(author, nil, Deps{Recognizer: tt.rec, Notifier: n})
			e.SetText(Description, "before")

			err := e.Dictate(context.Background(), Description)
			require.ErrorIs(t, err, tt.want)
			require.Len(t, n.msgs, 1)
			assert.Contains(t, n.msgs[0], tt.msg)
			assert.Equal(t, "before", e.Value(Description))
			assert.False(t, e.Listening(Description))
		})
	}
}

func TestDictate_UncategorizedErrorIsSilent(t *testing.T) {
	n := &notices{}
	rec := &fakeRecognizer{script: []speech.Event{{Type: speech.EventError, Err: errors.New("no-speech")}}}
	e := New(author, nil, Deps{Recognizer: rec, Notifier: n})

	require.Error(t, e.Dictate(context.Background(), Title))
	assert.Empty(t, n.msgs)
}

func TestDictate_NoRecognizer(t *testing.T) {
	n := &notices{}
	e := New(author, nil, Deps{Notifier: n})

	require.ErrorIs(t, e.Dictate(context.Background(), Title), speech.ErrUnsupported)
	assert.Len(t, n.msgs, 1)
}

// blockingRecognizer holds its session open until release is closed.
type blockingRecognizer struct {
	started chan struct{}
	release chan struct{}
	starts  int
	mu      sync.Mutex
}

func (b *blockingRecognizer) RequestPermission(context.Context) error { return nil }

func (b *blockingRecognizer) Start(ctx context.Context, _ speech.Options) (<-chan speech.Event, error) {
	b.mu.Lock()
	b.starts++
	b.mu.Unlock()
	ch := make(chan speech.Event, 1)
	go func() {
		defer close(ch)
		close(b.started)
		select {
		case <-b.release:
			ch <- speech.Event{Type: speech.EventResult, Transcript: "late"}
		case <-ctx.Done():
		}
	}()
	return ch, nil
}

func TestDictate_SecondCallWhileListeningIsNoop(t *testing.T) {
	rec := &blockingRecognizer{started: make(chan struct{}), release: make(chan struct{})}
	e := New(author, nil, Deps{Recognizer: rec})

	done := make(chan error, 1)
	go func() { done <- e.Dictate(context.Background(), Title) }()

	<-rec.started
	assert.True(t, e.Listening(Title))
	require.NoError(t, e.Dictate(context.Background(), Title))

	close(rec.release)
	require.NoError(t, <-done)
	assert.Equal(t, "late", e.Value(Title))
	assert.Equal(t, 1, rec.starts)
}

func TestRefine_ReplacesAndRevertRestores(t *testing.T) {
	ref := &fakeRefiner{replies: []string{"  Shipped billing v2  "}}
	e := New(author, nil, Deps{Refiner: ref})
	e.SetText(Title, "did billing")

	assert.False(t, e.Revert(Title), "nothing to revert before a refinement")

	require.True(t, e.Refine(context.Background(), Title))
	assert.Equal(t, "Shipped billing v2", e.Value(Title))
	assert.True(t, e.CanRevert(Title))

	require.True(t, e.Revert(Title))
	assert.Equal(t, "did billing", e.Value(Title))
	assert.False(t, e.CanRevert(Title))
	assert.False(t, e.Revert(Title))

	require.Len(t, ref.calls, 1)
	assert.True(t, strings.HasPrefix(ref.calls[0], "Refine this project title"))
	assert.True(t, strings.HasSuffix(ref.calls[0], "|did billing"))
}

func TestRefine_SecondRefinementOverwritesRevertPoint(t *testing.T) {
	ref := &fakeRefiner{replies: []string{"v1", "v2"}}
	e := New(author, nil, Deps{Refiner: ref})
	e.SetText(Impact, "v0")

	require.True(t, e.Refine(context.Background(), Impact))
	require.True(t, e.Refine(context.Background(), Impact))
	assert.Equal(t, "v2", e.Value(Impact))

	require.True(t, e.Revert(Impact))
	assert.Equal(t, "v1", e.Value(Impact), "the original v0 is no longer reachable")
}

func TestRefine_NoopCases(t *testing.T) {
	ref := &fakeRefiner{err: errors.New("quota")}
	e := New(author, nil, Deps{Refiner: ref})

	assert.False(t, e.Refine(context.Background(), Description), "empty field")
	assert.Empty(t, ref.calls)

	e.SetText(Description, "text")
	assert.False(t, e.Refine(context.Background(), Description), "service failure")
	assert.Equal(t, "text", e.Value(Description))
	assert.False(t, e.CanRevert(Description))
	assert.False(t, e.Refining(Description))

	ref.err = nil
	ref.replies = []string{"   "}
	assert.False(t, e.Refine(context.Background(), Description), "blank output")
	assert.Equal(t, "text", e.Value(Description))

	noRefiner := New(author, nil, Deps{})
	noRefiner.SetText(Title, "x")
	assert.False(t, noRefiner.Refine(context.Background(), Title))
}

// gateRefiner blocks until release is closed.
type gateRefiner struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gateRefiner) Refine(context.Context, string, string) (string, error) {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return "refined", nil
}

func TestRefine_InFlightFieldIsNoop(t *testing.T) {
	g := &gateRefiner{entered: make(chan struct{}), release: make(chan struct{})}
	e := New(author, nil, Deps{Refiner: g})
	e.SetText(Title, "a")

	done := make(chan bool, 1)
	go func() { done <- e.Refine(context.Background(), Title) }()
	<-g.entered

	assert.True(t, e.Refining(Title))
	assert.False(t, e.Refine(context.Background(), Title))

	close(g.release)
	assert.True(t, <-done)
	assert.Equal(t, "refined", e.Value(Title))
}

func TestRefine_FieldsRefineConcurrently(t *testing.T) {
	ref := &fakeRefiner{replies: []string{"r", "r", "r"}}
	e := New(author, nil, Deps{Refiner: ref})
	for _, f := range Fields {
		e.SetText(f, "x")
	}

	var wg sync.WaitGroup
	for _, f := range Fields {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Refine(context.Background(), f)
		}()
	}
	wg.Wait()

	for _, f := range Fields {
		assert.Equal(t, "r", e.Value(f))
		assert.True(t, e.CanRevert(f))
	}
}
