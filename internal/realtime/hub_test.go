package realtime

import "testing"

// testConn builds a connection without a live websocket. Send only
// enqueues, so hub bookkeeping can be exercised directly.
func testConn(userID uint64) *Connection {
	return NewConnection(userID, nil)
}

func drain(c *Connection) [][]byte {
	var out [][]byte
	for {
		select {
		case msg := <-c.send:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestHubPresenceLastConnectionWins(t *testing.T) {
	h := NewHub()
	first := testConn(1)
	second := testConn(1)

	h.Attach(first)
	h.Join(10, first)
	h.Attach(second)

	if !h.NotifyUser(1, []byte("ping")) {
		t.Fatal("user should be online")
	}
	if got := drain(second); len(got) != 1 {
		t.Fatalf("newest connection should receive the push, got %d", len(got))
	}
	if got := drain(first); len(got) != 0 {
		t.Fatalf("older connection should not receive direct pushes, got %d", len(got))
	}

	// The older tab stays connected and keeps its room memberships.
	if n := h.Broadcast(10, []byte("room"), ""); n != 1 {
		t.Fatalf("older connection should still be in the room, delivered %d", n)
	}
	if got := drain(first); len(got) != 1 {
		t.Fatalf("older connection should receive room broadcasts, got %d", len(got))
	}
}

func TestHubDetachOldConnectionKeepsPresence(t *testing.T) {
	h := NewHub()
	first := testConn(1)
	second := testConn(1)
	h.Attach(first)
	h.Attach(second)

	h.Detach(first)

	if !h.Online(1) {
		t.Fatal("detaching a superseded connection must not clear presence")
	}

	h.Detach(second)
	if h.Online(1) {
		t.Fatal("detaching the current connection must clear presence")
	}
}

func TestHubBroadcastExcludesConnection(t *testing.T) {
	h := NewHub()
	a := testConn(1)
	b := testConn(2)
	h.Attach(a)
	h.Attach(b)
	h.Join(3, a)
	h.Join(3, b)
	h.Join(3, b) // idempotent

	if n := h.Broadcast(3, []byte("x"), a.ID); n != 1 {
		t.Fatalf("want 1 delivery, got %d", n)
	}
	if got := drain(a); len(got) != 0 {
		t.Fatalf("excluded connection received %d messages", len(got))
	}
	if got := drain(b); len(got) != 1 {
		t.Fatalf("want 1 message for b, got %d", len(got))
	}
}

func TestHubDetachLeavesRooms(t *testing.T) {
	h := NewHub()
	a := testConn(1)
	h.Attach(a)
	h.Join(7, a)

	h.Detach(a)

	if n := h.Broadcast(7, []byte("x"), ""); n != 0 {
		t.Fatalf("detached connection still in room, delivered %d", n)
	}
}

func TestHubLeaveUnjoinedRoomIsNoOp(t *testing.T) {
	h := NewHub()
	a := testConn(1)
	h.Attach(a)

	h.Leave(99, a)

	if !h.Online(1) {
		t.Fatal("leave must not disturb presence")
	}
}

func TestHubNotifyOfflineUser(t *testing.T) {
	h := NewHub()
	if h.NotifyUser(42, []byte("x")) {
		t.Fatal("offline user must report not delivered")
	}
}
