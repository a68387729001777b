package web

import "sync"

// userHub fans out "menus changed" pokes to every open stream of one user.
type userHub struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func newUserHub() *userHub {
	return &userHub{subs: map[chan struct{}]struct{}{}}
}

func (h *userHub) subscribe() (ch chan struct{}, cancel func()) {
	ch = make(chan struct{}, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		close(ch)
	}
}

func (h *userHub) broadcast() {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	h.mu.Unlock()
}

func (h *userHub) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

type userHubs struct {
	mu   sync.Mutex
	hubs map[int64]*userHub
}

func newUserHubs() *userHubs {
	return &userHubs{hubs: map[int64]*userHub{}}
}

func (b *userHubs) hubFor(userID int64) *userHub {
	b.mu.Lock()
	defer b.mu.Unlock()
	h := b.hubs[userID]
	if h == nil {
		h = newUserHub()
		b.hubs[userID] = h
	}
	return h
}

func (b *userHubs) notify(userID int64) {
	b.mu.Lock()
	h := b.hubs[userID]
	b.mu.Unlock()
	if h != nil {
		h.broadcast()
	}
}
