package engine

import (
	"reflect"
	"testing"

	"github.com/ValentinKolb/apocrypha/lib/datum"
)

func run(t *testing.T, root *datum.Datum, query string) (*datum.Datum, Result) {
	t.Helper()
	tokens := splitQuery(query)
	res, err := Evaluate(root, tokens, Options{})
	if err != nil {
		t.Fatalf("query %q: unexpected error: %v", query, err)
	}
	return res.Root, res
}

func runErr(t *testing.T, root *datum.Datum, query string) error {
	t.Helper()
	tokens := splitQuery(query)
	_, err := Evaluate(root, tokens, Options{})
	return err
}

func runOpts(t *testing.T, root *datum.Datum, query string, opts Options) (*datum.Datum, Result) {
	t.Helper()
	tokens := splitQuery(query)
	res, err := Evaluate(root, tokens, opts)
	if err != nil {
		t.Fatalf("query %q: unexpected error: %v", query, err)
	}
	return res.Root, res
}

func runOptsErr(t *testing.T, root *datum.Datum, query string, opts Options) error {
	t.Helper()
	tokens := splitQuery(query)
	_, err := Evaluate(root, tokens, opts)
	return err
}

// splitQuery is a test-only convenience: real callers receive an already
// tokenized []string from the wire.
func splitQuery(q string) []string {
	var tokens []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, string(cur))
			cur = nil
		}
	}
	for _, r := range q {
		if r == ' ' {
			flush()
			continue
		}
		cur = append(cur, r)
	}
	flush()
	return tokens
}

func TestScenario1(t *testing.T) {
	root := datum.NewMapping()
	root, _ = run(t, root, "apples granny = good")
	root, res := run(t, root, "apples")
	if !reflect.DeepEqual(res.Lines, []string{"{'granny': 'good'}"}) {
		t.Fatalf("got %v", res.Lines)
	}
	_, res2 := run(t, root, "apples granny")
	if !reflect.DeepEqual(res2.Lines, []string{"good"}) {
		t.Fatalf("got %v", res2.Lines)
	}
}

func TestScenario2Append(t *testing.T) {
	root := datum.NewMapping()
	root, _ = run(t, root, "toppings = mushrooms")
	root, _ = run(t, root, "toppings + pineapple")
	_, res := run(t, root, "toppings")
	if !reflect.DeepEqual(res.Lines, []string{"mushrooms", "pineapple"}) {
		t.Fatalf("got %v", res.Lines)
	}
}

func TestScenario3Remove(t *testing.T) {
	root := datum.NewMapping()
	root, _ = run(t, root, "sweets = cake pie pizza")
	root, _ = run(t, root, "sweets - pizza")
	_, res := run(t, root, "sweets")
	if !reflect.DeepEqual(res.Lines, []string{"cake", "pie"}) {
		t.Fatalf("got %v", res.Lines)
	}
}

func TestScenario4Search(t *testing.T) {
	root := datum.NewMapping()
	root, _ = run(t, root, "rasp = berry")
	root, _ = run(t, root, "blue = berry")
	_, res := run(t, root, "@ berry")
	if !reflect.DeepEqual(res.Lines, []string{"rasp", "blue"}) {
		t.Fatalf("got %v", res.Lines)
	}
}

func TestScenario5Set(t *testing.T) {
	root := datum.NewMapping()
	root, _ = run(t, root, `pasta --set ["spaghetti","lasagna"]`)
	_, res := run(t, root, "pasta")
	if !reflect.DeepEqual(res.Lines, []string{"spaghetti", "lasagna"}) {
		t.Fatalf("got %v", res.Lines)
	}
}

func TestScenario6Del(t *testing.T) {
	root := datum.NewMapping()
	root, _ = run(t, root, "apple sauce = good")
	root, _ = run(t, root, "apple pie = great")
	root, _ = run(t, root, "apple sauce --del")
	_, res := run(t, root, "apple")
	if !reflect.DeepEqual(res.Lines, []string{"{'pie': 'great'}"}) {
		t.Fatalf("got %v", res.Lines)
	}
}

func TestAutovivify(t *testing.T) {
	root := datum.NewMapping()
	root, _ = run(t, root, "a b c = v")
	if _, res := run(t, root, "a"); !res.Root.Get("a").IsMapping() {
		t.Fatalf("expected a to be a mapping")
	}
	_, res := run(t, root, "a b c")
	if !reflect.DeepEqual(res.Lines, []string{"v"}) {
		t.Fatalf("got %v", res.Lines)
	}
}

func TestDelPrunesAncestors(t *testing.T) {
	root := datum.NewMapping()
	root, _ = run(t, root, "a b c = v")
	root, _ = run(t, root, "a b c --del")
	if !root.Get("a").IsAbsent() {
		t.Fatalf("expected a to be pruned, got %v", root.Get("a").Kind())
	}
}

func TestRemoveLastElementDeletes(t *testing.T) {
	root := datum.NewMapping()
	root, _ = run(t, root, "k = only")
	root, _ = run(t, root, "k - only")
	if !root.Get("k").IsAbsent() {
		t.Fatalf("expected k deleted")
	}
}

func TestAppendToDictErrors(t *testing.T) {
	root := datum.NewMapping()
	root, _ = run(t, root, "a b = v")
	if err := runErr(t, root, "a + x"); err == nil {
		t.Fatalf("expected error appending to dict")
	}
}

func TestRemoveMissingValueErrors(t *testing.T) {
	root := datum.NewMapping()
	root, _ = run(t, root, "k = a b")
	if err := runErr(t, root, "k - zzz"); err == nil {
		t.Fatalf("expected error removing missing value")
	}
}

func TestEditRoundTrip(t *testing.T) {
	root := datum.NewMapping()
	root, _ = run(t, root, `p --set {"a":"1","b":["x","y"]}`)
	_, res := run(t, root, "p --edit")
	want := `{"a":"1","b":["x","y"]}`
	if res.Lines[0] != want {
		t.Fatalf("got %q want %q", res.Lines[0], want)
	}
}

func TestMultipleOperatorsError(t *testing.T) {
	root := datum.NewMapping()
	if err := runErr(t, root, "a - b = c"); err == nil {
		t.Fatalf("expected multiple-operator error")
	}
}

func TestIndexOfAbsentIsEmpty(t *testing.T) {
	root := datum.NewMapping()
	_, res := run(t, root, "nope")
	if len(res.Lines) != 0 {
		t.Fatalf("got %v", res.Lines)
	}
}

func TestPop(t *testing.T) {
	root := datum.NewMapping()
	root, _ = run(t, root, "stack = a b c")
	root, popRes := run(t, root, "stack --pop")
	if !reflect.DeepEqual(popRes.Lines, []string{"c"}) {
		t.Fatalf("got %v", popRes.Lines)
	}
	_, res := run(t, root, "stack")
	if !reflect.DeepEqual(res.Lines, []string{"a", "b"}) {
		t.Fatalf("got %v", res.Lines)
	}
}

func TestKeysOrderPreserved(t *testing.T) {
	root := datum.NewMapping()
	root, _ = run(t, root, "m z = 1")
	root, _ = run(t, root, "m a = 2")
	_, res := run(t, root, "m --keys")
	if !reflect.DeepEqual(res.Lines, []string{"z", "a"}) {
		t.Fatalf("got %v", res.Lines)
	}
}

func TestSearchWithContext(t *testing.T) {
	root := datum.NewMapping()
	root, _ = run(t, root, "fruit rasp = berry")
	_, res := runOpts(t, root, "@ berry", Options{AddContext: true})
	if !reflect.DeepEqual(res.Lines, []string{"fruit = rasp"}) {
		t.Fatalf("got %v", res.Lines)
	}
	_, plain := run(t, root, "@ berry")
	if !reflect.DeepEqual(plain.Lines, []string{"rasp"}) {
		t.Fatalf("got %v", plain.Lines)
	}
}

func TestEditStrictErrorsOnMissingKey(t *testing.T) {
	root := datum.NewMapping()
	root, _ = run(t, root, "a b = v")
	if err := runOptsErr(t, root, "a missing --edit", Options{Strict: true}); err == nil {
		t.Fatalf("expected strict error through missing key")
	}
	if _, err := Evaluate(root, []string{"a", "missing", "--edit"}, Options{}); err != nil {
		t.Fatalf("non-strict --edit through missing key should autovivify, got error: %v", err)
	}
}
