package events

import "testing"

func TestHubPublishFansOut(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()
	defer h.Unsubscribe(a)
	defer h.Unsubscribe(b)

	h.Publish(DisplayUpdate, DisplayEvent{Band: "normal", Percentage: 50})

	for _, ch := range []chan Event{a, b} {
		ev := <-ch
		if ev.Name != DisplayUpdate {
			t.Fatalf("unexpected event name %q", ev.Name)
		}
		payload, err := DecodeAs[DisplayEvent](ev)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if payload.Percentage != 50 {
			t.Fatalf("unexpected payload %+v", payload)
		}
	}
}

func TestHubSlowSubscriberDropsEvents(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	// Overflow the subscriber buffer; Publish must not block.
	for i := 0; i < 100; i++ {
		h.Publish(AlertDismiss, AlertEvent{Ts: int64(i)})
	}
	if len(ch) != cap(ch) {
		t.Fatalf("expected a full buffer, got %d/%d", len(ch), cap(ch))
	}
}

func TestHubUnsubscribeCloses(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()
	h.Unsubscribe(ch)
	h.Unsubscribe(ch) // second call is a no-op

	if _, ok := <-ch; ok {
		t.Fatalf("expected a closed channel")
	}

	// Publishing after the only subscriber left must not panic.
	h.Publish(GraceCancel, AlertEvent{})
}

func TestDecodeAsEmptyData(t *testing.T) {
	payload, err := DecodeAs[AlertEvent](Event{Name: AlertNotify})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload != (AlertEvent{}) {
		t.Fatalf("expected the zero value, got %+v", payload)
	}
}

func TestNilHubPublish(t *testing.T) {
	var h *Hub
	h.Publish(Suspend, SuspendEvent{}) // must not panic
}
