package amqp

import (
	"encoding/json"
	"time"
)

// TransactionRecordedMessage announces that the recording collaborator has
// appended a transaction to the ledger. Amount is in cents.
type TransactionRecordedMessage struct {
	UserID      string    `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// AlertMessage carries one gated alert to the presentation collaborator.
type AlertMessage struct {
	UserID    string    `json:"user_id"`
	AlertType string    `json:"alert_type"`
	Category  string    `json:"category,omitempty"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	RaisedAt  time.Time `json:"raised_at"`
}

// ReportMessage carries a composed digest body. Kind is one of
// daily_summary, weekly_review or monthly_insights.
type ReportMessage struct {
	UserID      string    `json:"user_id"`
	Kind        string    `json:"kind"`
	Body        string    `json:"body"`
	GeneratedAt time.Time `json:"generated_at"`
}

func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) { return json.Marshal(m) }
func (m *AlertMessage) ToJSON() ([]byte, error)               { return json.Marshal(m) }
func (m *ReportMessage) ToJSON() ([]byte, error)              { return json.Marshal(m) }

func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func AlertMessageFromJSON(data []byte) (*AlertMessage, error) {
	var msg AlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func ReportMessageFromJSON(data []byte) (*ReportMessage, error) {
	var msg ReportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
