package internal

import (
	"reflect"
	"testing"
)

func TestCommandRoundTrip(t *testing.T) {
	cases := []Command{
		{Tokens: []string{"apple", "sauce"}},
		{AddContext: true, Tokens: []string{"apple"}},
		{Strict: true, AddContext: true, Tokens: []string{"a", "b", "c", "="}},
		{Tokens: nil},
		{Tokens: []string{""}},
	}

	for _, want := range cases {
		data := want.Serialize()
		var got Command
		if err := got.Deserialize(data); err != nil {
			t.Fatalf("Deserialize(%+v): %v", want, err)
		}
		if got.AddContext != want.AddContext || got.Strict != want.Strict {
			t.Fatalf("flags mismatch: got %+v, want %+v", got, want)
		}
		if len(want.Tokens) == 0 {
			if len(got.Tokens) != 0 {
				t.Fatalf("tokens mismatch: got %v, want empty", got.Tokens)
			}
			continue
		}
		if !reflect.DeepEqual(got.Tokens, want.Tokens) {
			t.Fatalf("tokens mismatch: got %v, want %v", got.Tokens, want.Tokens)
		}
	}
}

func TestDeserializeRejectsTruncated(t *testing.T) {
	if err := (&Command{}).Deserialize(nil); err == nil {
		t.Fatal("expected error on empty input")
	}

	c := &Command{Tokens: []string{"longer-than-the-buffer"}}
	data := c.Serialize()
	if err := (&Command{}).Deserialize(data[:len(data)-3]); err == nil {
		t.Fatal("expected error on truncated token data")
	}
}
