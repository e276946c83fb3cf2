package engine

import (
	"errors"
	"testing"
)

type testFields struct {
	Group int
	Happy bool
}

func TestStoreCreateAssignsFreshIDs(t *testing.T) {
	s := NewStore[testFields]()

	a := s.Create(testFields{Group: 1})
	b := s.Create(testFields{Group: 2})
	if a == b {
		t.Fatalf("Create returned duplicate ID %d", a)
	}

	// IDs are never reused while the store lives, even after removal.
	if err := s.Remove(b); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	c := s.Create(testFields{Group: 3})
	if c == b {
		t.Errorf("ID %d reused after removal", b)
	}
}

func TestStoreGetSet(t *testing.T) {
	s := NewStore[testFields]()
	id := s.Create(testFields{Group: 1})

	if err := s.Set(id, testFields{Group: 1, Happy: true}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	f, ok := s.Get(id)
	if !ok || !f.Happy {
		t.Errorf("Get = %+v,%v, want Happy=true", f, ok)
	}

	if err := s.Set(999, testFields{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Set(unknown) = %v, want ErrNotFound", err)
	}
	if _, ok := s.Get(999); ok {
		t.Error("Get(unknown) reported ok")
	}
}

func TestStoreRemovePreservesInsertionOrder(t *testing.T) {
	s := NewStore[testFields]()

	var ids []ID
	for i := 0; i < 5; i++ {
		ids = append(ids, s.Create(testFields{Group: i}))
	}

	if err := s.Remove(ids[2]); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	got := s.IDs()
	want := []ID{ids[0], ids[1], ids[3], ids[4]}
	if len(got) != len(want) {
		t.Fatalf("IDs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("IDs = %v, want insertion order %v", got, want)
		}
	}
}

func TestStoreSnapshotIsStable(t *testing.T) {
	s := NewStore[testFields]()
	a := s.Create(testFields{})
	b := s.Create(testFields{})

	snap := s.IDs()
	if err := s.Remove(a); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	s.Create(testFields{})

	// The snapshot taken before the mutations is unchanged.
	if len(snap) != 2 || snap[0] != a || snap[1] != b {
		t.Errorf("snapshot mutated retroactively: %v", snap)
	}
}
