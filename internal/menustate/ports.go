package menustate

import (
	"context"
	"sync"
	"time"

	"quicklinks/internal/model"
)

// TabStorage is short-lived key/value storage scoped to one tab or session. A fresh session starts empty.
type TabStorage interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
}

type Timer interface {
	Stop() bool
}

type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules on the runtime timer.
type RealScheduler struct{}

func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Transport sends the three mutations to the server.
type Transport interface {
	TogglePin(ctx context.Context, id int64) (pinned bool, err error)
	UpdateStatus(ctx context.Context, id int64, status model.Status) error
	UpdateType(ctx context.Context, id int64, typ string) error
}

// Rejection is implemented by transport errors that carry the server's failure message.
// Any other error is treated as a transport failure.
type Rejection interface {
	RejectionMessage() string
}

// Notifier shows a blocking notice.
type Notifier interface {
	Notify(msg string)
}

type Confirmer interface {
	Confirm(msg string) bool
}

type ConfirmFunc func(msg string) bool

func (f ConfirmFunc) Confirm(msg string) bool { return f(msg) }

type NotifyFunc func(msg string)

func (f NotifyFunc) Notify(msg string) { f(msg) }

type Navigator interface {
	Navigate(url string)
	OpenInNewTab(url string)
}

type Clipboard interface {
	WriteText(text string) error
}

// MemoryStorage is an in-process TabStorage.
type MemoryStorage struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{m: map[string]string{}}
}

func (s *MemoryStorage) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *MemoryStorage) Set(key, value string) {
	s.mu.Lock()
	s.m[key] = value
	s.mu.Unlock()
}

func (s *MemoryStorage) Remove(key string) {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
}
