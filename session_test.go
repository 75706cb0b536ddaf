package agenthub

import (
	"context"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prism-Shadow/AgentHub/messages"
	"github.com/Prism-Shadow/AgentHub/pkg/stdx"
	"github.com/Prism-Shadow/AgentHub/provider"
	"github.com/Prism-Shadow/AgentHub/tracer"
)

// scriptedProvider replays a canned event sequence and records the history
// it was called with.
type scriptedProvider struct {
	events  []messages.UniEvent
	err     error
	seen    [][]messages.UniMessage
	ready   chan struct{}
	release chan struct{}
}

func (p *scriptedProvider) Model() string { return "scripted-1" }

func (p *scriptedProvider) StreamingResponse(_ context.Context, msgs []messages.UniMessage, _ provider.Config) iter.Seq2[messages.UniEvent, error] {
	p.seen = append(p.seen, msgs)
	return func(yield func(messages.UniEvent, error) bool) {
		if p.ready != nil {
			close(p.ready)
		}
		if p.release != nil {
			<-p.release
		}
		for _, event := range p.events {
			if !yield(event, nil) {
				return
			}
		}
		if p.err != nil {
			yield(messages.UniEvent{}, p.err)
		}
	}
}

func helloEvents() []messages.UniEvent {
	stop := messages.Stop(messages.FinishStop)
	stop.Usage = &messages.UsageMetadata{ResponseTokens: stdx.Ptr(int64(2))}
	return []messages.UniEvent{
		messages.Start(),
		messages.Delta(messages.Text("Hel")),
		messages.Delta(messages.Text("lo")),
		stop,
	}
}

func TestSession(t *testing.T) {
	ctx := context.Background()

	t.Run("commits both turns after a clean stream", func(t *testing.T) {
		scripted := &scriptedProvider{events: helloEvents()}
		session := newSession(scripted, tracer.NewFile(t.TempDir()))

		var streamed int
		for event, err := range session.AppendAndStream(ctx, messages.User(messages.Text("hi")), provider.Config{}) {
			require.NoError(t, err)
			_ = event
			streamed++
		}
		assert.Equal(t, 4, streamed)

		history := session.History()
		require.Len(t, history, 2)
		assert.Equal(t, messages.RoleUser, history[0].Role)
		assert.Equal(t, messages.RoleAssistant, history[1].Role)
		require.Len(t, history[1].ContentItems, 1)
		assert.Equal(t, messages.Text("Hello"), history[1].ContentItems[0])
		assert.Equal(t, messages.FinishStop, history[1].FinishReason)
		require.NotNil(t, history[1].Usage)
		assert.Equal(t, int64(2), *history[1].Usage.ResponseTokens)
	})

	t.Run("history feeds the next turn", func(t *testing.T) {
		scripted := &scriptedProvider{events: helloEvents()}
		session := newSession(scripted, tracer.NewFile(t.TempDir()))

		for _, err := range session.AppendAndStream(ctx, messages.User(messages.Text("one")), provider.Config{}) {
			require.NoError(t, err)
		}
		for _, err := range session.AppendAndStream(ctx, messages.User(messages.Text("two")), provider.Config{}) {
			require.NoError(t, err)
		}

		require.Len(t, scripted.seen, 2)
		assert.Len(t, scripted.seen[0], 1)
		assert.Len(t, scripted.seen[1], 3)
		assert.Len(t, session.History(), 4)
	})

	t.Run("failed stream keeps the user turn only", func(t *testing.T) {
		scripted := &scriptedProvider{
			events: []messages.UniEvent{messages.Start(), messages.Delta(messages.Text("par"))},
			err:    errors.New("connection reset"),
		}
		session := newSession(scripted, tracer.NewFile(t.TempDir()))

		var lastErr error
		for _, err := range session.AppendAndStream(ctx, messages.User(messages.Text("hi")), provider.Config{}) {
			lastErr = err
		}
		require.Error(t, lastErr)

		history := session.History()
		require.Len(t, history, 1)
		assert.Equal(t, messages.RoleUser, history[0].Role)
	})

	t.Run("empty stream commits no assistant turn", func(t *testing.T) {
		session := newSession(&scriptedProvider{}, tracer.NewFile(t.TempDir()))
		for _, err := range session.AppendAndStream(ctx, messages.User(messages.Text("hi")), provider.Config{}) {
			require.NoError(t, err)
		}

		history := session.History()
		require.Len(t, history, 1)
		assert.Equal(t, messages.RoleUser, history[0].Role)
	})

	t.Run("user turn is sent as part of the streamed history", func(t *testing.T) {
		scripted := &scriptedProvider{events: helloEvents()}
		session := newSession(scripted, tracer.NewFile(t.TempDir()))
		for _, err := range session.AppendAndStream(ctx, messages.User(messages.Text("hi")), provider.Config{}) {
			require.NoError(t, err)
		}

		require.Len(t, scripted.seen, 1)
		require.Len(t, scripted.seen[0], 1)
		assert.Equal(t, messages.RoleUser, scripted.seen[0][0].Role)
	})

	t.Run("concurrent streams are refused", func(t *testing.T) {
		ready := make(chan struct{})
		release := make(chan struct{})
		scripted := &scriptedProvider{events: helloEvents(), ready: ready, release: release}
		session := newSession(scripted, tracer.NewFile(t.TempDir()))

		firstDone := make(chan struct{})
		go func() {
			defer close(firstDone)
			for _, err := range session.AppendAndStream(ctx, messages.User(messages.Text("first")), provider.Config{}) {
				assert.NoError(t, err)
			}
		}()

		<-ready
		var second error
		for _, err := range session.AppendAndStream(ctx, messages.User(messages.Text("second")), provider.Config{}) {
			second = err
		}
		require.Error(t, second)
		assert.Contains(t, second.Error(), "in flight")

		close(release)
		<-firstDone
		assert.Len(t, session.History(), 2)
	})

	t.Run("clear drops history", func(t *testing.T) {
		scripted := &scriptedProvider{events: helloEvents()}
		session := newSession(scripted, tracer.NewFile(t.TempDir()))
		for _, err := range session.AppendAndStream(ctx, messages.User(messages.Text("hi")), provider.Config{}) {
			require.NoError(t, err)
		}
		session.Clear()
		assert.Empty(t, session.History())
	})

	t.Run("snapshot does not alias session state", func(t *testing.T) {
		scripted := &scriptedProvider{events: helloEvents()}
		session := newSession(scripted, tracer.NewFile(t.TempDir()))
		for _, err := range session.AppendAndStream(ctx, messages.User(messages.Text("hi")), provider.Config{}) {
			require.NoError(t, err)
		}

		snapshot := session.History()
		snapshot[0] = messages.User(messages.Text("mutated"))
		assert.Equal(t, messages.Text("hi"), session.History()[0].ContentItems[0])
	})

	t.Run("trace id persists the conversation", func(t *testing.T) {
		dir := t.TempDir()
		scripted := &scriptedProvider{events: helloEvents()}
		session := newSession(scripted, tracer.NewFile(dir))

		cfg := provider.Config{TraceID: "run/0001"}
		for _, err := range session.AppendAndStream(ctx, messages.User(messages.Text("hi")), cfg) {
			require.NoError(t, err)
		}

		_, err := os.Stat(filepath.Join(dir, "run", "0001.json"))
		require.NoError(t, err)
		_, err = os.Stat(filepath.Join(dir, "run", "0001.txt"))
		require.NoError(t, err)
	})
}
