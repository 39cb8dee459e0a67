package helpers

import (
	"errors"
	"fmt"
	"testing"
)

type ackRecorder struct {
	acked, requeued, dropped int
}

func (a *ackRecorder) Ack(bool) error { a.acked++; return nil }
func (a *ackRecorder) Nack(_ bool, requeue bool) error {
	if requeue {
		a.requeued++
	} else {
		a.dropped++
	}
	return nil
}

func TestSettle(t *testing.T) {
	a := &ackRecorder{}
	_ = Settle(a, nil)
	_ = Settle(a, errors.New("db down"))
	_ = Settle(a, fmt.Errorf("decode: %w", ErrPoison))

	if a.acked != 1 || a.requeued != 1 || a.dropped != 1 {
		t.Fatalf("unexpected settle counts %+v", a)
	}
}
