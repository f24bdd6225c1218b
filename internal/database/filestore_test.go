package database

import (
	"errors"
	"testing"
)

type doc struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestFileCollectionEmpty(t *testing.T) {
	c, err := NewFileCollection[doc](t.TempDir(), "temples")
	if err != nil {
		t.Fatalf("NewFileCollection: %v", err)
	}
	items, err := c.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("fresh collection has %d items", len(items))
	}
}

func TestFileCollectionMutatePersists(t *testing.T) {
	dir := t.TempDir()
	c, err := NewFileCollection[doc](dir, "temples")
	if err != nil {
		t.Fatalf("NewFileCollection: %v", err)
	}

	err = c.Mutate(func(items []doc) ([]doc, error) {
		return append(items, doc{ID: "1", Name: "Somnath"}), nil
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}

	// A second handle over the same file sees the write.
	reopened, err := NewFileCollection[doc](dir, "temples")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	items, err := reopened.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Somnath" {
		t.Errorf("persisted items = %+v", items)
	}
}

func TestFileCollectionMutateAbortsOnError(t *testing.T) {
	c, err := NewFileCollection[doc](t.TempDir(), "temples")
	if err != nil {
		t.Fatalf("NewFileCollection: %v", err)
	}
	if err := c.Mutate(func(items []doc) ([]doc, error) {
		return append(items, doc{ID: "1"}), nil
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	boom := errors.New("boom")
	err = c.Mutate(func(items []doc) ([]doc, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Mutate error = %v, want boom", err)
	}

	items, _ := c.All()
	if len(items) != 1 {
		t.Errorf("failed mutation changed the collection: %+v", items)
	}
}
