package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wedlii/wedbot/internal/protocol"
)

func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	inbound := make(chan any, 32)
	outbound := make(chan any, 32)

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		s.runChatConnection(ctx, userID, inbound, outbound)
	}()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-outbound:
				_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteJSON(msg); err != nil {
					s.logger.Debug("websocket write failed", zap.String("user_id", userID), zap.Error(err))
					cancel()
					return
				}
				if t, ok := messageTypeOf(msg); ok {
					s.metrics.ObserveWSMessage("outbound", string(t))
				}
			}
		}
	}()

	conn.SetReadLimit(64 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		return nil
	})

readLoop:
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
		if msgType != websocket.TextMessage {
			continue
		}
		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			parsed = protocol.ErrorEvent{
				Type:   protocol.TypeErrorEvent,
				Code:   "invalid_client_message",
				Detail: err.Error(),
			}
		} else if t, ok := messageTypeOf(parsed); ok {
			s.metrics.ObserveWSMessage("inbound", string(t))
		}
		select {
		case <-ctx.Done():
			break readLoop
		case inbound <- parsed:
		}
	}

	cancel()
	close(inbound)
	<-runDone
	<-writerDone
}

// runChatConnection answers frames one at a time so replies keep the order
// of the messages that produced them.
func (s *Server) runChatConnection(ctx context.Context, userID string, inbound <-chan any, outbound chan<- any) {
	send := func(msg any) bool {
		select {
		case <-ctx.Done():
			return false
		case outbound <- msg:
			return true
		}
	}

	if !send(protocol.SystemEvent{Type: protocol.TypeSystemEvent, Code: "ready"}) {
		return
	}
	for msg := range inbound {
		var out any
		switch m := msg.(type) {
		case protocol.ChatMessage:
			out = protocol.AssistantReply{
				Type:      protocol.TypeAssistantReply,
				MessageID: m.MessageID,
				Text:      s.deps.Chat.Reply(ctx, userID, m.Text),
			}
		case protocol.ClientControl:
			out = s.handleControl(ctx, userID, m)
		case protocol.ErrorEvent:
			out = m
		default:
			continue
		}
		if !send(out) {
			return
		}
	}
}

func (s *Server) handleControl(ctx context.Context, userID string, m protocol.ClientControl) any {
	switch m.Action {
	case protocol.ActionReset:
		if err := s.deps.Conversation.Clear(ctx, userID); err != nil {
			s.logger.Error("conversation reset failed", zap.String("user_id", userID), zap.Error(err))
			return protocol.ErrorEvent{Type: protocol.TypeErrorEvent, Code: "reset_failed", Retryable: true, Detail: "could not reset conversation"}
		}
		return protocol.SystemEvent{Type: protocol.TypeSystemEvent, Code: "conversation_reset"}
	default:
		return protocol.SystemEvent{Type: protocol.TypeSystemEvent, Code: "pong"}
	}
}

func messageTypeOf(v any) (protocol.MessageType, bool) {
	switch m := v.(type) {
	case protocol.ChatMessage:
		return m.Type, true
	case protocol.ClientControl:
		return m.Type, true
	case protocol.AssistantReply:
		return m.Type, true
	case protocol.SystemEvent:
		return m.Type, true
	case protocol.ErrorEvent:
		return m.Type, true
	default:
		return "", false
	}
}
