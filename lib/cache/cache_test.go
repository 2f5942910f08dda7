package cache

import "testing"

func TestGetMiss(t *testing.T) {
	c := New(2)
	if _, ok := c.Get("x"); ok {
		t.Fatalf("expected miss")
	}
}

func TestPutGet(t *testing.T) {
	c := New(2)
	c.Put("k", []string{"a", "b"})
	got, ok := c.Get("k")
	if !ok || got[0] != "a" {
		t.Fatalf("got %v %v", got, ok)
	}
}

func TestEvictsOldestWhenFull(t *testing.T) {
	c := New(2)
	c.Put("a", []string{"1"})
	c.Put("b", []string{"2"})
	c.Put("c", []string{"3"})

	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected a to be evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatalf("expected b to remain")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatalf("expected c to remain")
	}
	if c.Len() != 2 {
		t.Fatalf("got len %d", c.Len())
	}
}

func TestClear(t *testing.T) {
	c := New(2)
	c.Put("a", []string{"1"})
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache")
	}
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected miss after clear")
	}
}
