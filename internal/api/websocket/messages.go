package websocket

import (
	"time"

	"github.com/KevinKickass/OpenDACCore/internal/types"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Text addressed to the operator, usually an actor error
	MessageTypeUserMessage MessageType = "user_message"

	// Actor parameter updates
	MessageTypeParametersUpdated MessageType = "parameters_updated"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

type UserMessageData struct {
	Text string `json:"text"`
}

type ParametersData struct {
	Actor      string             `json:"actor"`
	Parameters types.ParameterMap `json:"parameters"`
	TxState    string             `json:"tx_state"`
}

// NewMessage creates a new message with current timestamp
func NewMessage(msgType MessageType, data interface{}) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func NewUserMessage(text string) Message {
	return NewMessage(MessageTypeUserMessage, UserMessageData{Text: text})
}

func NewParametersMessage(actor string, params types.ParameterMap, txState string) Message {
	return NewMessage(MessageTypeParametersUpdated, ParametersData{
		Actor:      actor,
		Parameters: params,
		TxState:    txState,
	})
}
