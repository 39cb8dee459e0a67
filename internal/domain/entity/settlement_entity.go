package entity

import "time"

// LedgerEntry is one processed webhook event in the settlement ledger.
type LedgerEntry struct {
	EventID    string
	Type       string
	ObjectID   string
	Amount     int64
	Currency   string
	Customer   string
	Account    string
	ReceivedAt time.Time
}
