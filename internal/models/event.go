package models

import "time"

// Journal event types published after successful mutations
const (
	EventTradeOpened     = "TRADE_OPENED"
	EventTradeClosed     = "TRADE_CLOSED"
	EventTradeCancelled  = "TRADE_CANCELLED"
	EventTradeDeleted    = "TRADE_DELETED"
	EventRitualCompleted = "RITUAL_COMPLETED"
	EventSettingsUpdated = "SETTINGS_UPDATED"
)

// JournalEvent represents a Kafka message describing a change to a user's journal
type JournalEvent struct {
	EventType string            `json:"event_type"`
	Source    string            `json:"source"`
	UserID    string            `json:"user_id"`
	TradeID   string            `json:"trade_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Data      map[string]string `json:"data,omitempty"`
}
