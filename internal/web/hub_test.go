package web

import "testing"

func TestUserHubs_NotifyOnlyThatUser(t *testing.T) {
	hubs := newUserHubs()
	annCh, annCancel := hubs.hubFor(1).subscribe()
	defer annCancel()
	edCh, edCancel := hubs.hubFor(2).subscribe()
	defer edCancel()

	hubs.notify(1)
	hubs.notify(1) // coalesces into the buffered channel
	hubs.notify(99)

	select {
	case <-annCh:
	default:
		t.Fatalf("expected a poke for user 1")
	}
	select {
	case <-edCh:
		t.Fatalf("user 2 must not be poked")
	default:
	}
}

func TestUserHub_CancelUnsubscribes(t *testing.T) {
	h := newUserHub()
	_, cancel := h.subscribe()
	if h.size() != 1 {
		t.Fatalf("expected one subscriber")
	}
	cancel()
	if h.size() != 0 {
		t.Fatalf("expected no subscribers")
	}
	h.broadcast()
}
