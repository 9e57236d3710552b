package lark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkIm "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"

	"github.com/garyjia/faction-bank/internal/application/port"
)

// sendFunc delivers one message body to a chat
type sendFunc func(ctx context.Context, body *larkIm.CreateMessageReqBody) (*larkIm.CreateMessageResp, error)

// Mirror posts text notices into one Lark group chat
type Mirror struct {
	chatID string
	send   sendFunc
	logger *zap.Logger
}

// NewMirror creates a Mirror over an SDK client
func NewMirror(client *lark.Client, chatID string, logger *zap.Logger) *Mirror {
	return &Mirror{
		chatID: chatID,
		send: func(ctx context.Context, body *larkIm.CreateMessageReqBody) (*larkIm.CreateMessageResp, error) {
			req := larkIm.NewCreateMessageReqBuilder().
				ReceiveIdType("chat_id").
				Body(body).
				Build()
			return client.Im.Message.Create(ctx, req)
		},
		logger: logger,
	}
}

// Publish sends one text message to the configured chat
func (m *Mirror) Publish(ctx context.Context, text string) error {
	if text == "" {
		return errors.New("mirror text cannot be empty")
	}

	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	body := larkIm.NewCreateMessageReqBodyBuilder().
		ReceiveId(m.chatID).
		MsgType("text").
		Content(string(content)).
		Build()

	resp, err := m.send(ctx, body)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	messageID := ""
	if resp.Data != nil && resp.Data.MessageId != nil {
		messageID = *resp.Data.MessageId
	}
	m.logger.Debug("Mirror message sent", zap.String("chat_id", m.chatID), zap.String("message_id", messageID))
	return nil
}

// NopMirror discards notices when Lark is not configured
type NopMirror struct{}

func (NopMirror) Publish(ctx context.Context, text string) error { return nil }

var (
	_ port.Mirror = (*Mirror)(nil)
	_ port.Mirror = NopMirror{}
)
