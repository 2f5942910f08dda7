package datum

import (
	"reflect"
	"testing"
)

func TestNewFromStringsCollapse(t *testing.T) {
	if k := NewFromStrings(nil).Kind(); k != Absent {
		t.Fatalf("got %v", k)
	}
	if k := NewFromStrings([]string{"a"}).Kind(); k != String {
		t.Fatalf("got %v", k)
	}
	if k := NewFromStrings([]string{"a", "b"}).Kind(); k != List {
		t.Fatalf("got %v", k)
	}
}

func TestMappingOrderPreserved(t *testing.T) {
	m := NewMapping()
	m.Set("z", NewString("1"))
	m.Set("a", NewString("2"))
	m.Set("z", NewString("3")) // overwrite, should keep original position
	if got := m.Keys(); !reflect.DeepEqual(got, []string{"z", "a"}) {
		t.Fatalf("got %v", got)
	}
	if v, _ := m.Get("z").AsString(); v != "3" {
		t.Fatalf("got %v", v)
	}
}

func TestDeleteRemovesFromKeys(t *testing.T) {
	m := NewMapping()
	m.Set("a", NewString("1"))
	m.Set("b", NewString("2"))
	m.Delete("a")
	if got := m.Keys(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("got %v", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := NewMapping()
	m.Set("a", NewString("1"))
	clone := m.Clone()
	clone.Set("a", NewString("2"))
	clone.Set("b", NewString("3"))
	if v, _ := m.Get("a").AsString(); v != "1" {
		t.Fatalf("original mutated: %v", v)
	}
	if !m.Get("b").IsAbsent() {
		t.Fatalf("original mutated with new key")
	}
}

func TestRenderDict(t *testing.T) {
	m := NewMapping()
	m.Set("granny", NewString("good"))
	if got := m.RenderLines(); !reflect.DeepEqual(got, []string{"{'granny': 'good'}"}) {
		t.Fatalf("got %v", got)
	}
}

func TestRenderList(t *testing.T) {
	l := NewList([]string{"a", "b", "c"})
	if got := l.RenderLines(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("got %v", got)
	}
}

func TestJSONRoundTripPreservesOrder(t *testing.T) {
	m := NewMapping()
	m.Set("z", NewString("1"))
	m.Set("a", NewList([]string{"x", "y"}))

	b, err := m.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}

	var out Datum
	if err := out.UnmarshalJSON(b); err != nil {
		t.Fatal(err)
	}
	if got := out.Keys(); !reflect.DeepEqual(got, []string{"z", "a"}) {
		t.Fatalf("got %v", got)
	}
	if v, _ := out.Get("z").AsString(); v != "1" {
		t.Fatalf("got %v", v)
	}
}

func TestUnmarshalCoercesScalars(t *testing.T) {
	var out Datum
	if err := out.UnmarshalJSON([]byte(`{"n": 3, "b": true, "s": "hi"}`)); err != nil {
		t.Fatal(err)
	}
	if v, _ := out.Get("n").AsString(); v != "3" {
		t.Fatalf("got %v", v)
	}
	if v, _ := out.Get("b").AsString(); v != "true" {
		t.Fatalf("got %v", v)
	}
}

func TestUnmarshalListSingletonCollapses(t *testing.T) {
	var out Datum
	if err := out.UnmarshalJSON([]byte(`["only"]`)); err != nil {
		t.Fatal(err)
	}
	if out.Kind() != String {
		t.Fatalf("got %v", out.Kind())
	}
}
