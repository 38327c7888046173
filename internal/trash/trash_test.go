package trash

import (
	"errors"
	"testing"
	"time"
)

func TestLedgerPutTake(t *testing.T) {
	l := NewLedger[int]()
	l.Put(Item[int]{Name: "a.txt", OriginalPath: "documents", Value: 1})
	l.Put(Item[int]{Name: "b.txt", OriginalPath: "documents/Work", Value: 2})

	if l.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", l.Len())
	}

	item, err := l.Take("b.txt")
	if err != nil {
		t.Fatalf("Take returned error: %v", err)
	}
	if item.Value != 2 || item.OriginalPath != "documents/Work" {
		t.Errorf("unexpected item: %+v", item)
	}
	if item.DeletedAt.IsZero() {
		t.Error("expected DeletedAt to be stamped")
	}
	if l.Len() != 1 {
		t.Errorf("expected 1 item after take, got %d", l.Len())
	}

	if _, err := l.Take("b.txt"); !errors.Is(err, ErrNotInTrash) {
		t.Errorf("expected ErrNotInTrash, got %v", err)
	}
}

func TestLedgerDuplicateNamesTakeOldestFirst(t *testing.T) {
	l := NewLedger[string]()
	l.Put(Item[string]{Name: "Untitled.txt", Value: "first"})
	l.Put(Item[string]{Name: "Untitled.txt", Value: "second"})

	item, _ := l.Take("Untitled.txt")
	if item.Value != "first" {
		t.Errorf("expected oldest item first, got %q", item.Value)
	}
	item, _ = l.Take("Untitled.txt")
	if item.Value != "second" {
		t.Errorf("expected second item, got %q", item.Value)
	}
}

func TestLedgerPurgeAll(t *testing.T) {
	l := NewLedger[int]()
	for i, name := range []string{"a", "b", "a", "c"} {
		l.Put(Item[int]{Name: name, Value: i})
	}

	if n := l.PurgeMany([]string{"a", "missing"}); n != 1 {
		t.Errorf("expected 1 purged, got %d", n)
	}
	if n := l.PurgeAll(); n != 3 {
		t.Errorf("expected 3 purged, got %d", n)
	}
	if l.Len() != 0 {
		t.Errorf("expected empty ledger, got %d", l.Len())
	}
}

func TestLedgerKeepsExplicitDeletedAt(t *testing.T) {
	l := NewLedger[int]()
	at := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	l.Put(Item[int]{Name: "x", DeletedAt: at})

	item, err := l.Take("x")
	if err != nil {
		t.Fatal(err)
	}
	if !item.DeletedAt.Equal(at) {
		t.Errorf("expected %v, got %v", at, item.DeletedAt)
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	l := NewLedger[int]()
	l.Put(Item[int]{Name: "x"})
	items := l.Items()
	items[0].Name = "changed"
	if names := l.Names(); names[0] != "x" {
		t.Errorf("ledger mutated through Items(): %v", names)
	}
}
