package ipc

import "testing"

func TestSubscribeReplaysHistoryToLateJoiner(t *testing.T) {
	s := NewService("TEST", 8)
	s.Publish([]byte("one"))
	s.Publish([]byte("two"))

	sub, err := s.Subscribe(8)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	first, ok := sub.TryRecv()
	if !ok || string(first) != "one" {
		t.Fatalf("first = %q, ok=%v, want \"one\"", first, ok)
	}
	second, ok := sub.TryRecv()
	if !ok || string(second) != "two" {
		t.Fatalf("second = %q, ok=%v, want \"two\"", second, ok)
	}
}

func TestSubscribeCapAtEight(t *testing.T) {
	s := NewService("TEST", 0)
	for i := 0; i < MaxSubscribers; i++ {
		if _, err := s.Subscribe(4); err != nil {
			t.Fatalf("subscribe %d: %v", i, err)
		}
	}
	if _, err := s.Subscribe(4); err == nil {
		t.Fatalf("expected the 9th subscription to be rejected")
	}
}

func TestPublishNeverBlocksOnFullSubscriber(t *testing.T) {
	s := NewService("TEST", 0)
	sub, _ := s.Subscribe(1)
	s.Publish([]byte("a"))
	s.Publish([]byte("b")) // inbox capacity 1: this must drop, not block

	got, ok := sub.TryRecv()
	if !ok || string(got) != "a" {
		t.Fatalf("got %q, ok=%v, want first message to have survived", got, ok)
	}
	if _, ok := sub.TryRecv(); ok {
		t.Fatalf("expected no second message: backpressure should have dropped it")
	}
}

func TestUnsubscribeClosesSubscriber(t *testing.T) {
	s := NewService("TEST", 0)
	sub, _ := s.Subscribe(4)
	s.Unsubscribe(sub)

	if _, ok := sub.Recv(); ok {
		t.Fatalf("Recv after Unsubscribe should report ok=false")
	}
}
