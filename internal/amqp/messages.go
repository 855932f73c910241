package amqp

import (
	"encoding/json"
	"time"
)

// TransactionEventMessage is a lightweight export trigger. It carries only
// the transaction ID; the worker fetches the full record from the database.
type TransactionEventMessage struct {
	TransactionID string    `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionEventMessage creates a new export message for a transaction
func NewTransactionEventMessage(transactionID string) *TransactionEventMessage {
	return &TransactionEventMessage{
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventMessageFromJSON creates a message from JSON bytes
func TransactionEventMessageFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
