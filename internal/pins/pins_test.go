package pins

import (
	"context"
	"reflect"
	"testing"
)

type memMeta struct {
	vals map[string]string
}

func (m *memMeta) GetUserMeta(_ context.Context, userID int64, key string) (string, bool, error) {
	v, ok := m.vals[key]
	return v, ok, nil
}

func (m *memMeta) SetUserMeta(_ context.Context, userID int64, key, value string) error {
	if m.vals == nil {
		m.vals = map[string]string{}
	}
	m.vals[key] = value
	return nil
}

func TestToggle_TwiceRestoresOriginal(t *testing.T) {
	orig := Set{5, 4, 3}
	once, pinned := orig.Toggle(9)
	if !pinned {
		t.Fatalf("expected pinned")
	}
	twice, pinned := once.Toggle(9)
	if pinned {
		t.Fatalf("expected unpinned")
	}
	if !reflect.DeepEqual(twice, orig) {
		t.Fatalf("expected %v; got %v", orig, twice)
	}

	// Removing then re-adding an existing id moves it to the front.
	a, _ := orig.Toggle(3)
	b, _ := a.Toggle(3)
	if !reflect.DeepEqual(b, Set{3, 5, 4}) {
		t.Fatalf("expected [3 5 4]; got %v", b)
	}
}

func TestToggle_EvictsOldestAtCap(t *testing.T) {
	full := make(Set, 0, MaxPins)
	for i := MaxPins; i >= 1; i-- {
		full = append(full, int64(i))
	}
	next, pinned := full.Toggle(100)
	if !pinned || len(next) != MaxPins {
		t.Fatalf("expected pinned with len %d; got pinned=%v len=%d", MaxPins, pinned, len(next))
	}
	if next[0] != 100 || next.Contains(1) {
		t.Fatalf("expected 100 first and 1 evicted; got %v", next)
	}
	back, _ := next.Toggle(100)
	if len(back) != MaxPins-1 || back.Contains(1) {
		t.Fatalf("evicted id must not come back; got %v", back)
	}
}

func TestSanitize(t *testing.T) {
	got := Sanitize([]int64{3, 0, -2, 3, 7})
	if !reflect.DeepEqual(got, Set{3, 7}) {
		t.Fatalf("expected [3 7]; got %v", got)
	}
}

func TestDecode_ToleratesHostData(t *testing.T) {
	if got := Decode(`[7,"9"," 11 ",0,"x",7]`); !reflect.DeepEqual(got, Set{7, 9, 11}) {
		t.Fatalf("got %v", got)
	}
	if got := Decode(`{"not":"a list"}`); len(got) != 0 {
		t.Fatalf("expected empty; got %v", got)
	}
	if got := Decode(""); len(got) != 0 {
		t.Fatalf("expected empty; got %v", got)
	}
}

func TestMetaRepository_PinSequence(t *testing.T) {
	ctx := context.Background()
	repo := MetaRepository{Meta: &memMeta{}}

	set, pinned, err := Toggle(ctx, repo, 1, 7)
	if err != nil || !pinned || !reflect.DeepEqual(set, Set{7}) {
		t.Fatalf("pin 7: set=%v pinned=%v err=%v", set, pinned, err)
	}
	set, pinned, err = Toggle(ctx, repo, 1, 9)
	if err != nil || !pinned || !reflect.DeepEqual(set, Set{9, 7}) {
		t.Fatalf("pin 9: set=%v pinned=%v err=%v", set, pinned, err)
	}
	set, pinned, err = Toggle(ctx, repo, 1, 7)
	if err != nil || pinned || !reflect.DeepEqual(set, Set{9}) {
		t.Fatalf("unpin 7: set=%v pinned=%v err=%v", set, pinned, err)
	}

	stored, err := repo.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(stored, Set{9}) {
		t.Fatalf("expected stored [9]; got %v", stored)
	}
}
