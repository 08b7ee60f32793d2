package app

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/linguamates/callrelay/internal/core"
	"github.com/linguamates/callrelay/internal/domain"
)

// fakeSink records every frame per socket, standing in for the live
// connection table.
type fakeSink struct {
	mu     sync.Mutex
	frames map[domain.SocketID][]core.Frame
}

func newFakeSink() *fakeSink {
	return &fakeSink{frames: make(map[domain.SocketID][]core.Frame)}
}

func (s *fakeSink) TrySend(sid domain.SocketID, f core.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(core.Frame, len(f))
	copy(cp, f)
	s.frames[sid] = append(s.frames[sid], cp)
	return nil
}

// eventsOf decodes all frames delivered to sid.
func (s *fakeSink) eventsOf(t *testing.T, sid domain.SocketID) []map[string]any {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.frames[sid]))
	for _, f := range s.frames[sid] {
		var m map[string]any
		require.NoError(t, json.Unmarshal(f, &m))
		out = append(out, m)
	}
	return out
}

// eventsOfType filters eventsOf by the envelope type.
func (s *fakeSink) eventsOfType(t *testing.T, sid domain.SocketID, typ string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, e := range s.eventsOf(t, sid) {
		if e["type"] == typ {
			out = append(out, e)
		}
	}
	return out
}

func newTestCoordinator() (*Coordinator, *fakeSink) {
	sink := newFakeSink()
	return NewCoordinator(NewRegistry(), sink, NewMetrics(prometheus.NewRegistry())), sink
}
