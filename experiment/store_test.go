package experiment

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

// Interface compliance (compile-time assertions)
var (
	_ OutputStore = (*MemoryStore)(nil)
	_ OutputStore = (*DirStore)(nil)
)

func TestMemoryStore_SaveGetIsolation(t *testing.T) {
	store := NewMemoryStore()
	data := []byte("hello")
	if err := store.Save("r1", "o1", data); err != nil {
		t.Fatalf("save: %v", err)
	}
	// mutate original slice
	data[0] = 'H'
	out, err := store.Get("r1", "o1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(out) != "hello" { // should not reflect mutation
		t.Fatalf("expected 'hello', got %q", string(out))
	}
	// mutate returned slice
	out[0] = 'x'
	out2, _ := store.Get("r1", "o1")
	if string(out2) != "hello" { // original stored should be unchanged
		t.Fatalf("expected isolation, got %q", string(out2))
	}
}

func TestMemoryStore_MissingRun(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.Get("absent", "o1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	names, err := store.List("absent")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 {
		t.Fatalf("expected empty list, got %v", names)
	}
}

func TestMemoryStore_Concurrency(t *testing.T) {
	store := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := i % 10
			if err := store.Save("r1", fmt.Sprintf("o%d", id), []byte("data")); err != nil {
				t.Errorf("save err: %v", err)
			}
			_, _ = store.List("r1")
		}()
	}
	wg.Wait()
	names, err := store.List("r1")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 10 {
		t.Fatalf("expected 10 outputs, got %d", len(names))
	}
}

func TestDirStore_SaveGetList(t *testing.T) {
	store := NewDirStore(t.TempDir())

	if err := store.Save("r1", "analysis.json", []byte("{}")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save("r1", "report.txt", []byte("summary")); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := store.Get("r1", "report.txt")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(out) != "summary" {
		t.Fatalf("expected 'summary', got %q", string(out))
	}

	names, err := store.List("r1")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 outputs, got %v", names)
	}

	if _, err := store.Get("r1", "missing.txt"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	names, err = store.List("absent")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 {
		t.Fatalf("expected empty list for unknown run, got %v", names)
	}
}
