package refund

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/oms-returns/internal/domain"
)

func TestLogNotifier(t *testing.T) {
	notifier := NewLogNotifier(nil)

	if err := notifier.RequestRefund(domain.ItemReturnedEvent{OrderID: 3, ProductID: 5}); err != nil {
		t.Fatalf("unexpected refund error: %v", err)
	}

	notifier.Err = errors.New("refund system down")
	if err := notifier.RequestRefund(domain.ItemReturnedEvent{OrderID: 3, ProductID: 6}); err == nil {
		t.Fatal("expected refund error")
	}

	events := notifier.Events()
	if len(events) != 2 || events[0].ProductID != 5 || events[1].ProductID != 6 {
		t.Fatalf("unexpected events: %+v", events)
	}
}
