package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/fixlater/fixlater-backend/internal/auth"
	"github.com/fixlater/fixlater-backend/internal/model"
	"github.com/fixlater/fixlater-backend/internal/service"
)

const authWait = 10 * time.Second

// clientEvent is the envelope for every inbound frame.
type clientEvent struct {
	Type           string `json:"type"`
	Token          string `json:"token,omitempty"`
	ConversationID uint64 `json:"conversation_id,omitempty"`
	Message        string `json:"message,omitempty"`
}

// Gateway upgrades authenticated websocket connections and dispatches
// chat events between the hub and the conversation service.
type Gateway struct {
	hub      *Hub
	tokens   *auth.TokenManager
	convSvc  service.ConversationService
	notifSvc service.NotificationService
	upgrader websocket.Upgrader
}

func NewGateway(hub *Hub, tokens *auth.TokenManager, convSvc service.ConversationService, notifSvc service.NotificationService) *Gateway {
	return &Gateway{
		hub:      hub,
		tokens:   tokens,
		convSvc:  convSvc,
		notifSvc: notifSvc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients send the app's JWT in the first frame, so
			// origin checks add nothing here.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handle is the GET /ws endpoint.
func (g *Gateway) Handle(c echo.Context) error {
	ws, err := g.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	userID, err := g.authenticate(ws)
	if err != nil {
		writeErrorFrame(ws, "Authentication error")
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "authentication failed"),
			time.Now().Add(writeWait))
		_ = ws.Close()
		return nil
	}

	conn := NewConnection(userID, ws)
	conn.Start()
	g.hub.Attach(conn)
	defer func() {
		g.hub.Detach(conn)
		conn.Close(websocket.CloseNormalClosure, "")
	}()

	g.readLoop(conn, ws)
	return nil
}

// authenticate expects the first frame to carry the caller's JWT and
// returns the verified user id.
func (g *Gateway) authenticate(ws *websocket.Conn) (uint64, error) {
	if err := ws.SetReadDeadline(time.Now().Add(authWait)); err != nil {
		return 0, err
	}
	_, raw, err := ws.ReadMessage()
	if err != nil {
		return 0, err
	}
	if err := ws.SetReadDeadline(time.Time{}); err != nil {
		return 0, err
	}

	var ev clientEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return 0, err
	}
	if ev.Type != "auth" || ev.Token == "" {
		return 0, errors.New("first frame must authenticate")
	}
	return g.tokens.Verify(ev.Token)
}

func (g *Gateway) readLoop(conn *Connection, ws *websocket.Conn) {
	ws.SetPongHandler(func(string) error { return nil })
	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var ev clientEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			g.sendError(conn, "Invalid message format")
			continue
		}

		switch ev.Type {
		case "join_conversation":
			g.hub.Join(ev.ConversationID, conn)
		case "leave_conversation":
			g.hub.Leave(ev.ConversationID, conn)
		case "send_message":
			g.handleSendMessage(conn, ev)
		case "typing":
			g.broadcastTyping(conn, ev.ConversationID, "user_typing")
		case "stop_typing":
			g.broadcastTyping(conn, ev.ConversationID, "user_stop_typing")
		case "mark_read":
			g.handleMarkRead(conn, ev.ConversationID)
		default:
			g.sendError(conn, "Unknown event type")
		}
	}
}

func (g *Gateway) handleSendMessage(conn *Connection, ev clientEvent) {
	msg, err := g.convSvc.SendMessage(context.Background(), ev.ConversationID, conn.UserID, ev.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			g.sendError(conn, "Not authorized for this conversation")
		case errors.Is(err, service.ErrNotFound):
			g.sendError(conn, "Not authorized for this conversation")
		case errors.Is(err, service.ErrInvalid):
			g.sendError(conn, "Message body must not be empty")
		default:
			log.Printf("send_message: conversation %d: %v", ev.ConversationID, err)
			g.sendError(conn, "Failed to send message")
		}
		return
	}

	// The room echo includes the sender so all of their tabs stay in sync.
	g.broadcast(ev.ConversationID, map[string]any{
		"type":    "new_message",
		"message": msg,
	}, "")

	taskID := msg.TaskID
	g.notifSvc.Notify(context.Background(), msg.RecipientID, model.NotificationTypeNewMessage, msg.NotificationText(), &taskID)
	g.notifyUser(msg.RecipientID, map[string]any{
		"type":            "new_notification",
		"message":         msg.NotificationText(),
		"conversation_id": ev.ConversationID,
	})
}

func (g *Gateway) broadcastTyping(conn *Connection, convID uint64, eventType string) {
	g.broadcast(convID, map[string]any{
		"type":           eventType,
		"userId":         conn.UserID,
		"conversationId": convID,
	}, conn.ID)
}

func (g *Gateway) handleMarkRead(conn *Connection, convID uint64) {
	if err := g.convSvc.MarkRead(context.Background(), convID, conn.UserID); err != nil {
		log.Printf("mark_read: conversation %d: %v", convID, err)
		return
	}
	g.broadcast(convID, map[string]any{
		"type":            "messages_read",
		"conversation_id": convID,
		"reader_id":       conn.UserID,
	}, conn.ID)
}

func (g *Gateway) broadcast(convID uint64, payload any, excludeConnID string) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("marshal broadcast for conversation %d: %v", convID, err)
		return
	}
	g.hub.Broadcast(convID, raw, excludeConnID)
}

func (g *Gateway) notifyUser(userID uint64, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("marshal notification for user %d: %v", userID, err)
		return
	}
	g.hub.NotifyUser(userID, raw)
}

func (g *Gateway) sendError(conn *Connection, message string) {
	raw, _ := json.Marshal(map[string]string{"type": "error", "message": message})
	_ = conn.Send(raw)
}

func writeErrorFrame(ws *websocket.Conn, message string) {
	raw, _ := json.Marshal(map[string]string{"type": "error", "message": message})
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteMessage(websocket.TextMessage, raw)
}
