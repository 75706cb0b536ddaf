package agenthub

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"sync"

	"github.com/Prism-Shadow/AgentHub/messages"
	"github.com/Prism-Shadow/AgentHub/pkg/slogx"
	"github.com/Prism-Shadow/AgentHub/pkg/uuidx"
	"github.com/Prism-Shadow/AgentHub/provider"
	"github.com/Prism-Shadow/AgentHub/tracer"
)

// Session owns one conversation against one provider. The user turn joins
// history as soon as a stream starts; the assistant turn joins only when
// that stream completes with content.
//
// A session supports one in-flight stream at a time. Concurrent calls fail
// immediately instead of interleaving turns.
type Session struct {
	id       string
	provider provider.Provider
	tracer   tracer.Tracer

	mu      sync.Mutex
	history []messages.UniMessage
}

func newSession(p provider.Provider, t tracer.Tracer) *Session {
	if t == nil {
		t = tracer.NewFile("")
	}
	return &Session{
		id:       uuidx.NewString(),
		provider: p,
		tracer:   t,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Model returns the model the session converses with.
func (s *Session) Model() string { return s.provider.Model() }

// AppendAndStream pushes the message onto history, sends the whole history
// to the provider, and streams the canonical events back. The user turn is
// committed before any network call; the reassembled assistant turn is
// appended only when the stream exhausts with at least one event. The trace
// is persisted when the config names a trace id.
func (s *Session) AppendAndStream(ctx context.Context, msg messages.UniMessage, cfg provider.Config) iter.Seq2[messages.UniEvent, error] {
	return func(yield func(messages.UniEvent, error) bool) {
		if !s.mu.TryLock() {
			yield(messages.UniEvent{}, fmt.Errorf("session %s already has a stream in flight", s.id))
			return
		}
		defer s.mu.Unlock()

		s.history = append(s.history, msg)
		var events []messages.UniEvent
		for event, err := range s.provider.StreamingResponse(ctx, s.historyLocked(), cfg) {
			if err != nil {
				yield(messages.UniEvent{}, err)
				return
			}
			events = append(events, event)
			if !yield(event, nil) {
				return
			}
		}

		if len(events) == 0 {
			return
		}
		s.history = append(s.history, messages.Concat(events))

		if cfg.TraceID != "" {
			if err := s.tracer.SaveHistory(s.provider.Model(), s.history, cfg.TraceID, cfg); err != nil {
				slog.Warn("failed to persist trace",
					slogx.Model(s.provider.Model()), slog.String("trace_id", cfg.TraceID), slogx.Error(err))
			}
		}
	}
}

// Clear drops the conversation history.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

// History returns a snapshot of the conversation so far. The slice is the
// caller's to keep, appends to the session never alias into it.
func (s *Session) History() []messages.UniMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyLocked()
}

func (s *Session) historyLocked() []messages.UniMessage {
	snapshot := make([]messages.UniMessage, len(s.history))
	copy(snapshot, s.history)
	return snapshot
}
