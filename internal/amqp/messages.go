package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message kinds carried on the worker queue.
const (
	KindTransactionSync = "transaction.sync"
	KindReceiptCleanup  = "receipt.cleanup"
)

// Message is the envelope for all async work. It stays lightweight on
// purpose: the worker fetches whatever it needs from the database, so stale
// payloads can never overwrite fresher state.
type Message struct {
	Kind          string    `json:"kind"`
	TransactionID string    `json:"transactionId,omitempty"`
	ObjectKey     string    `json:"objectKey,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionSyncMessage creates a message asking the worker to export
// the given transaction.
func NewTransactionSyncMessage(transactionID string) *Message {
	return &Message{
		Kind:          KindTransactionSync,
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}
}

// NewReceiptCleanupMessage creates a message asking the worker to delete an
// unreferenced receipt object.
func NewReceiptCleanupMessage(objectKey string) *Message {
	return &Message{
		Kind:      KindReceiptCleanup,
		ObjectKey: objectKey,
		Timestamp: time.Now(),
	}
}

// Validate checks that the message carries the field its kind requires.
func (m *Message) Validate() error {
	switch m.Kind {
	case KindTransactionSync:
		if m.TransactionID == "" {
			return fmt.Errorf("transaction sync message without transaction id")
		}
	case KindReceiptCleanup:
		if m.ObjectKey == "" {
			return fmt.Errorf("receipt cleanup message without object key")
		}
	default:
		return fmt.Errorf("unknown message kind: %q", m.Kind)
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MessageFromJSON creates a message from JSON bytes
func MessageFromJSON(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
