package ws

import (
	"sync"

	"github.com/linguamates/callrelay/internal/core"
	"github.com/linguamates/callrelay/internal/domain"
)

// Table maps socket ids to live connections and is the coordinator's
// ConnectionSink. Sends to sockets that already went away just report
// backpressure; the caller drops the frame.
type Table struct {
	mu    sync.RWMutex
	conns map[domain.SocketID]*wsConn
}

func NewTable() *Table {
	return &Table{conns: make(map[domain.SocketID]*wsConn)}
}

func (t *Table) Add(sid domain.SocketID, c *wsConn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conns[sid] = c
}

func (t *Table) Remove(sid domain.SocketID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.conns, sid)
}

func (t *Table) TrySend(sid domain.SocketID, f core.Frame) error {
	t.mu.RLock()
	c, ok := t.conns[sid]
	t.mu.RUnlock()
	if !ok {
		return core.ErrBackpressure
	}
	return c.TrySend(f)
}
