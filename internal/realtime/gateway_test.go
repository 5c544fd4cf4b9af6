package realtime

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/fixlater/fixlater-backend/internal/auth"
	"github.com/fixlater/fixlater-backend/internal/model"
	"github.com/fixlater/fixlater-backend/internal/repository"
	"github.com/fixlater/fixlater-backend/internal/service"
)

type fakeConversationService struct {
	mu        sync.Mutex
	sent      []string
	marked    []uint64
	sendErr   error
	recipient uint64
}

func (f *fakeConversationService) CreateOrGet(context.Context, uint64, uint64, uint64) (*model.Conversation, error) {
	return nil, nil
}

func (f *fakeConversationService) ListByUser(context.Context, uint64) ([]repository.ConversationSummary, error) {
	return nil, nil
}

func (f *fakeConversationService) Get(context.Context, uint64, uint64) (*repository.ConversationSummary, error) {
	return nil, nil
}

func (f *fakeConversationService) ListMessages(context.Context, uint64, uint64, int, int) ([]model.Message, error) {
	return nil, nil
}

func (f *fakeConversationService) SendMessage(_ context.Context, convID, senderID uint64, body string) (*service.SentMessage, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.mu.Lock()
	f.sent = append(f.sent, body)
	f.mu.Unlock()
	return &service.SentMessage{
		Message: model.Message{
			ID:             uint64(len(f.sent)),
			ConversationID: convID,
			SenderID:       senderID,
			Message:        body,
		},
		SenderName:  "Ana Requester",
		RecipientID: f.recipient,
		TaskID:      7,
	}, nil
}

func (f *fakeConversationService) MarkRead(_ context.Context, convID, _ uint64) error {
	f.mu.Lock()
	f.marked = append(f.marked, convID)
	f.mu.Unlock()
	return nil
}

func (f *fakeConversationService) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeNotificationService struct {
	mu       sync.Mutex
	notified []uint64
}

func (f *fakeNotificationService) Notify(_ context.Context, userID uint64, _, _ string, _ *uint64) {
	f.mu.Lock()
	f.notified = append(f.notified, userID)
	f.mu.Unlock()
}

func (f *fakeNotificationService) List(context.Context, uint64) ([]repository.NotificationDetail, int64, error) {
	return nil, 0, nil
}

func (f *fakeNotificationService) MarkRead(context.Context, uint64, uint64) error { return nil }

func (f *fakeNotificationService) MarkAllRead(context.Context, uint64) error { return nil }

type gatewayFixture struct {
	server  *httptest.Server
	hub     *Hub
	tokens  *auth.TokenManager
	convSvc *fakeConversationService
	notif   *fakeNotificationService
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()

	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	hub := NewHub()
	convSvc := &fakeConversationService{recipient: 2}
	notif := &fakeNotificationService{}

	e := echo.New()
	gw := NewGateway(hub, tokens, convSvc, notif)
	e.GET("/ws", gw.Handle)

	srv := httptest.NewServer(e)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return &gatewayFixture{server: srv, hub: hub, tokens: tokens, convSvc: convSvc, notif: notif}
}

func (fx *gatewayFixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(fx.server.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

// connect dials, authenticates as userID, and waits for the hub to register
// the connection.
func (fx *gatewayFixture) connect(t *testing.T, userID uint64) *websocket.Conn {
	t.Helper()
	ws := fx.dial(t)
	token, err := fx.tokens.Issue(userID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	sendEvent(t, ws, map[string]any{"type": "auth", "token": token})
	waitFor(t, func() bool { return fx.hub.Online(userID) })
	return ws
}

func sendEvent(t *testing.T, ws *websocket.Conn, ev map[string]any) {
	t.Helper()
	if err := ws.WriteJSON(ev); err != nil {
		t.Fatalf("write event: %v", err)
	}
}

func readEvent(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev map[string]any
	if err := ws.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return ev
}

func expectNoEvent(t *testing.T, ws *websocket.Conn) {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var ev map[string]any
	if err := ws.ReadJSON(&ev); err == nil {
		t.Fatalf("unexpected event: %v", ev)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestGatewayRejectsBadToken(t *testing.T) {
	fx := newGatewayFixture(t)
	ws := fx.dial(t)

	sendEvent(t, ws, map[string]any{"type": "auth", "token": "not-a-token"})

	ev := readEvent(t, ws)
	if ev["type"] != "error" || ev["message"] != "Authentication error" {
		t.Fatalf("want authentication error frame, got %v", ev)
	}
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := ws.ReadMessage(); err == nil {
		t.Fatal("connection should be closed after failed auth")
	}
}

func TestGatewayRejectsNonAuthFirstFrame(t *testing.T) {
	fx := newGatewayFixture(t)
	ws := fx.dial(t)

	sendEvent(t, ws, map[string]any{"type": "join_conversation", "conversation_id": 1})

	ev := readEvent(t, ws)
	if ev["message"] != "Authentication error" {
		t.Fatalf("want authentication error frame, got %v", ev)
	}
}

func TestGatewaySendMessageFansOut(t *testing.T) {
	fx := newGatewayFixture(t)
	sender := fx.connect(t, 1)
	other := fx.connect(t, 2)

	sendEvent(t, sender, map[string]any{"type": "join_conversation", "conversation_id": 5})
	sendEvent(t, other, map[string]any{"type": "join_conversation", "conversation_id": 5})
	waitFor(t, func() bool {
		fx.hub.mu.RLock()
		defer fx.hub.mu.RUnlock()
		return len(fx.hub.rooms[5]) == 2
	})

	sendEvent(t, sender, map[string]any{"type": "send_message", "conversation_id": 5, "message": "hello"})

	for name, ws := range map[string]*websocket.Conn{"sender": sender, "other": other} {
		ev := readEvent(t, ws)
		if ev["type"] != "new_message" {
			t.Fatalf("%s: want new_message, got %v", name, ev)
		}
		msg, ok := ev["message"].(map[string]any)
		if !ok {
			t.Fatalf("%s: missing message payload: %v", name, ev)
		}
		if msg["message"] != "hello" || msg["sender_name"] != "Ana Requester" {
			t.Fatalf("%s: message not hydrated: %v", name, msg)
		}
	}

	// The recipient is in the room, so the side-channel notification also
	// lands on their connection.
	ev := readEvent(t, other)
	if ev["type"] != "new_notification" {
		t.Fatalf("want new_notification, got %v", ev)
	}
	if ev["message"] != "New message from Ana Requester" {
		t.Fatalf("unexpected notification text: %v", ev)
	}

	fx.notif.mu.Lock()
	notified := append([]uint64(nil), fx.notif.notified...)
	fx.notif.mu.Unlock()
	if len(notified) != 1 || notified[0] != 2 {
		t.Fatalf("want persisted notification for user 2, got %v", notified)
	}
}

func TestGatewaySendMessageForbidden(t *testing.T) {
	fx := newGatewayFixture(t)
	fx.convSvc.sendErr = fmt.Errorf("%w: not a participant", service.ErrForbidden)
	ws := fx.connect(t, 3)

	sendEvent(t, ws, map[string]any{"type": "send_message", "conversation_id": 5, "message": "hi"})

	ev := readEvent(t, ws)
	if ev["type"] != "error" || ev["message"] != "Not authorized for this conversation" {
		t.Fatalf("want not-authorized error, got %v", ev)
	}
	if fx.convSvc.sentCount() != 0 {
		t.Fatal("message must not be persisted")
	}
}

func TestGatewaySendMessagePersistenceFailure(t *testing.T) {
	fx := newGatewayFixture(t)
	fx.convSvc.sendErr = fmt.Errorf("insert message: connection refused")
	sender := fx.connect(t, 1)
	other := fx.connect(t, 2)

	sendEvent(t, sender, map[string]any{"type": "join_conversation", "conversation_id": 6})
	sendEvent(t, other, map[string]any{"type": "join_conversation", "conversation_id": 6})
	waitFor(t, func() bool {
		fx.hub.mu.RLock()
		defer fx.hub.mu.RUnlock()
		return len(fx.hub.rooms[6]) == 2
	})

	sendEvent(t, sender, map[string]any{"type": "send_message", "conversation_id": 6, "message": "hello"})

	ev := readEvent(t, sender)
	if ev["type"] != "error" || ev["message"] != "Failed to send message" {
		t.Fatalf("want generic send failure, got %v", ev)
	}
	expectNoEvent(t, other)

	fx.notif.mu.Lock()
	notified := len(fx.notif.notified)
	fx.notif.mu.Unlock()
	if notified != 0 {
		t.Fatal("no notification may be recorded when the message is not stored")
	}
}

func TestGatewayTypingExcludesSender(t *testing.T) {
	fx := newGatewayFixture(t)
	sender := fx.connect(t, 1)
	other := fx.connect(t, 2)

	sendEvent(t, sender, map[string]any{"type": "join_conversation", "conversation_id": 9})
	sendEvent(t, other, map[string]any{"type": "join_conversation", "conversation_id": 9})
	waitFor(t, func() bool {
		fx.hub.mu.RLock()
		defer fx.hub.mu.RUnlock()
		return len(fx.hub.rooms[9]) == 2
	})

	sendEvent(t, sender, map[string]any{"type": "typing", "conversation_id": 9})

	ev := readEvent(t, other)
	if ev["type"] != "user_typing" || ev["userId"] != float64(1) {
		t.Fatalf("want user_typing from user 1, got %v", ev)
	}
	expectNoEvent(t, sender)

	sendEvent(t, sender, map[string]any{"type": "stop_typing", "conversation_id": 9})
	ev = readEvent(t, other)
	if ev["type"] != "user_stop_typing" {
		t.Fatalf("want user_stop_typing, got %v", ev)
	}
}

func TestGatewayMarkReadBroadcastsToOthers(t *testing.T) {
	fx := newGatewayFixture(t)
	reader := fx.connect(t, 2)
	sender := fx.connect(t, 1)

	sendEvent(t, reader, map[string]any{"type": "join_conversation", "conversation_id": 4})
	sendEvent(t, sender, map[string]any{"type": "join_conversation", "conversation_id": 4})
	waitFor(t, func() bool {
		fx.hub.mu.RLock()
		defer fx.hub.mu.RUnlock()
		return len(fx.hub.rooms[4]) == 2
	})

	sendEvent(t, reader, map[string]any{"type": "mark_read", "conversation_id": 4})

	ev := readEvent(t, sender)
	if ev["type"] != "messages_read" || ev["reader_id"] != float64(2) {
		t.Fatalf("want messages_read from user 2, got %v", ev)
	}
	expectNoEvent(t, reader)
}

func TestGatewayDisconnectClearsPresence(t *testing.T) {
	fx := newGatewayFixture(t)
	ws := fx.connect(t, 8)

	ws.Close()
	waitFor(t, func() bool { return !fx.hub.Online(8) })

	if delivered := fx.hub.NotifyUser(8, []byte(`{}`)); delivered {
		t.Fatal("offline user must not be reachable")
	}
}

func TestGatewayInvalidJSON(t *testing.T) {
	fx := newGatewayFixture(t)
	ws := fx.connect(t, 1)

	if err := ws.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	ev := readEvent(t, ws)
	if ev["type"] != "error" || ev["message"] != "Invalid message format" {
		t.Fatalf("want invalid format error, got %v", ev)
	}
}
