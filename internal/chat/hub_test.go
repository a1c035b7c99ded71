package chat

import (
	"strconv"
	"sync"
	"testing"

	"github.com/coder/websocket"
)

func TestHubRegister(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	conn := &websocket.Conn{}

	hub.Register("sess-1", conn)

	if got := hub.Get("sess-1"); got != conn {
		t.Errorf("Expected connection %v, got %v", conn, got)
	}
}

func TestHubUnregister(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	conn := &websocket.Conn{}

	hub.Register("sess-1", conn)
	hub.Unregister("sess-1", conn)

	if got := hub.Get("sess-1"); got != nil {
		t.Errorf("Expected nil connection, got %v", got)
	}
}

func TestHubStaleUnregisterKeepsCurrent(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	conn1 := &websocket.Conn{}
	conn2 := &websocket.Conn{}

	hub.Register("sess-a", conn1)
	hub.Register("sess-b", conn2)

	// Unregistering a connection that is not current must be a no-op.
	hub.Unregister("sess-b", conn1)

	if got := hub.Get("sess-b"); got != conn2 {
		t.Errorf("Expected connection %v to remain, got %v", conn2, got)
	}
}

func TestHubConcurrentAccess(t *testing.T) {
	t.Parallel()
	hub := NewHub()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			hub.Register("sess-"+strconv.Itoa(i), &websocket.Conn{})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			hub.Get("sess-" + strconv.Itoa(i))
		}
	}()
	wg.Wait()
}
