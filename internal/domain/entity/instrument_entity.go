package entity

import "time"

// Instrument is a tokenized payment method as reported by the processor.
// It is only ever held for the duration of one orchestration call.
type Instrument struct {
	ID        string
	Kind      string // card
	Brand     string
	Last4     string
	Customer  string
	CreatedAt time.Time
}

// Instruments is an ordered list as returned by the processor.
type Instruments []Instrument

// Contains reports whether id is one of the listed instruments.
func (l Instruments) Contains(id string) bool {
	for _, in := range l {
		if in.ID == id {
			return true
		}
	}
	return false
}
