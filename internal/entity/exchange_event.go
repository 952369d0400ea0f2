package entity

import (
	"time"

	"github.com/guregu/null/v6"
)

type ExchangeEventType string

const (
	ExchangeEventCreated ExchangeEventType = "created"
	ExchangeEventRemoved ExchangeEventType = "removed"
)

type ExchangeEvent struct {
	ID         string            `db:"id" json:"id"`
	Type       ExchangeEventType `db:"type" json:"type"`
	Token      string            `db:"token" json:"token"`
	Factory    string            `db:"factory" json:"factory"`
	Server     string            `db:"server" json:"server"`
	RequestID  null.String       `db:"request_id" json:"request_id"`
	OccurredAt time.Time         `db:"occurred_at" json:"occurred_at"`
	RecordedAt null.Time         `db:"recorded_at" json:"recorded_at"`
}

func (ExchangeEvent) TableName() string {
	return "exchange_events"
}

// Exchange rebuilds the value the event was emitted for.
func (e ExchangeEvent) Exchange() Exchange {
	return NewExchange(e.Token, e.Factory, e.Server)
}

type ExchangeEventMessage struct {
	RetryCount int           `json:"retry"`
	Data       ExchangeEvent `json:"data"`
}
