package services

import (
	"context"
	"sync"
	"testing"
	"time"
)

func receive(t *testing.T, sub *Subscription) []byte {
	t.Helper()
	select {
	case payload, ok := <-sub.Events():
		if !ok {
			t.Fatal("subscription closed unexpectedly")
		}
		return payload
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return nil
}

func TestFeedHubFanOutOrder(t *testing.T) {
	hub := NewFeedHub(8)
	defer hub.Close()

	subs := []*Subscription{
		hub.Subscribe(context.Background()),
		hub.Subscribe(context.Background()),
		hub.Subscribe(context.Background()),
	}

	for _, p := range []string{"one", "two", "three"} {
		if n := hub.Publish([]byte(p)); n != 3 {
			t.Fatalf("Publish() delivered to %d, want 3", n)
		}
	}

	for i, sub := range subs {
		for _, want := range []string{"one", "two", "three"} {
			if got := string(receive(t, sub)); got != want {
				t.Errorf("sub %d got %q, want %q", i, got, want)
			}
		}
	}
}

func TestFeedHubNoReplay(t *testing.T) {
	hub := NewFeedHub(8)
	defer hub.Close()

	hub.Publish([]byte("before"))
	sub := hub.Subscribe(context.Background())
	hub.Publish([]byte("after"))

	if got := string(receive(t, sub)); got != "after" {
		t.Errorf("got %q, want only events published after subscribing", got)
	}
}

func TestFeedHubSlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewFeedHub(1)
	defer hub.Close()

	slow := hub.Subscribe(context.Background())
	fast := hub.Subscribe(context.Background())

	hub.Publish([]byte("a"))
	receive(t, fast)

	if n := hub.Publish([]byte("b")); n != 1 {
		t.Errorf("Publish() delivered to %d, want 1 (slow buffer full)", n)
	}
	if got := string(receive(t, fast)); got != "b" {
		t.Errorf("fast got %q, want b", got)
	}
	if got := string(receive(t, slow)); got != "a" {
		t.Errorf("slow got %q, want a", got)
	}
}

func TestFeedHubContextCancelCloses(t *testing.T) {
	hub := NewFeedHub(4)
	defer hub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sub := hub.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("subscription not closed after context cancel")
	}
	if hub.Count() != 0 {
		t.Errorf("Count() = %d, want 0", hub.Count())
	}
	sub.Close()
}

func TestFeedHubConcurrentSubscribeAndPublish(t *testing.T) {
	hub := NewFeedHub(64)
	defer hub.Close()

	stable := hub.Subscribe(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				sub := hub.Subscribe(context.Background())
				sub.Close()
			}
		}()
	}

	const events = 50
	for i := 0; i < events; i++ {
		hub.Publish([]byte{byte(i)})
	}
	wg.Wait()

	for i := 0; i < events; i++ {
		if got := receive(t, stable); got[0] != byte(i) {
			t.Fatalf("event %d out of order: got %d", i, got[0])
		}
	}
	if hub.Count() != 1 {
		t.Errorf("Count() = %d, want 1", hub.Count())
	}
}
