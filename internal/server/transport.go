package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/coder/websocket"

	"github.com/hireloop-ai/hireloop/internal/protocol"
	"github.com/hireloop-ai/hireloop/internal/session"
)

// Compile-time interface check.
var _ session.Transport = (*wsTransport)(nil)

// wsTransport adapts a coder/websocket connection to the session.Transport
// interface. Writes are serialised under a mutex so events from background
// tasks and the message loop never interleave on the wire.
type wsTransport struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newWSTransport(conn *websocket.Conn) *wsTransport {
	return &wsTransport{conn: conn}
}

// Send marshals msg and writes it as one text frame.
func (t *wsTransport) Send(ctx context.Context, msg protocol.Outbound) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("server: marshal outbound: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("server: write frame: %w", err)
	}
	return nil
}

// Close performs a normal websocket closure. Safe to call after the peer has
// already disconnected; the resulting error is returned but harmless.
func (t *wsTransport) Close() error {
	return t.conn.Close(websocket.StatusNormalClosure, "session ended")
}
