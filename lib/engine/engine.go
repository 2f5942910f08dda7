package engine

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/apocrypha/lib/datum"
)

// Options carries the request-level modifiers recognized by the server
// before a query ever reaches Evaluate (spec.md §9's context/strict
// supplement, lifted from the original source's -c/-s request prefix).
type Options struct {
	// AddContext prefixes index and search output with
	// "<path joined by ' = '> = ".
	AddContext bool
	// Strict turns a missing key anywhere along a read path into an error
	// instead of silently treating it as absent.
	Strict bool
}

// Result is what a single query produces.
type Result struct {
	// Lines is the textual output, one entry per response line.
	Lines []string
	// Mutated reports whether Root differs from the Datum passed in.
	Mutated bool
	// Cacheable reports whether this was a pure-read query eligible for
	// the query cache.
	Cacheable bool
	// Root is the (possibly new) document root: the same pointer that was
	// passed in for reads and failed mutations, or a freshly cloned and
	// mutated tree on a successful write.
	Root *datum.Datum
}

// Evaluate interprets tokens as a single query against root. root is never
// mutated in place; on a successful write Result.Root points at a new tree
// and the caller (lib/store) is responsible for swapping it in and
// invalidating the cache.
func Evaluate(root *datum.Datum, tokens []string, opts Options) (Result, error) {
	if len(tokens) == 0 {
		return Result{}, fmt.Errorf("empty query")
	}

	normalized := NormalizeTokens(tokens)

	opIdx := -1
	count := 0
	for i, t := range normalized {
		if operatorSet[t] {
			count++
			if opIdx < 0 {
				opIdx = i
			}
		}
	}
	if count > 1 {
		return Result{}, fmt.Errorf("multiple operators in query")
	}

	if opIdx < 0 {
		lines, err := evalIndex(root, normalized, opts)
		if err != nil {
			return Result{}, err
		}
		return Result{Lines: lines, Root: root, Cacheable: true}, nil
	}

	op := normalized[opIdx]
	path := normalized[:opIdx]
	right := normalized[opIdx+1:]

	switch op {
	case OpAssign:
		clone := root.Clone()
		if err := evalAssign(clone, path, right); err != nil {
			return Result{}, err
		}
		return Result{Root: clone, Mutated: true}, nil

	case OpAppend:
		clone := root.Clone()
		if err := evalAppend(clone, path, right); err != nil {
			return Result{}, err
		}
		return Result{Root: clone, Mutated: true}, nil

	case OpRemove:
		clone := root.Clone()
		if err := evalRemove(clone, path, right); err != nil {
			return Result{}, err
		}
		return Result{Root: clone, Mutated: true}, nil

	case OpSearch:
		if len(path) != 0 {
			return Result{}, fmt.Errorf("@ takes no path")
		}
		if len(right) != 1 {
			return Result{}, fmt.Errorf("@ requires exactly one value")
		}
		lines := evalSearch(root, right[0], opts)
		return Result{Lines: lines, Root: root, Cacheable: true}, nil

	case OpKeys:
		lines, err := evalKeys(root, path, opts)
		if err != nil {
			return Result{}, err
		}
		return Result{Lines: lines, Root: root, Cacheable: true}, nil

	case OpSet:
		if len(right) != 1 {
			return Result{}, fmt.Errorf("--set requires exactly one JSON argument")
		}
		clone := root.Clone()
		newRoot, err := evalSet(clone, path, right[0])
		if err != nil {
			return Result{}, err
		}
		return Result{Root: newRoot, Mutated: true}, nil

	case OpEdit:
		if len(right) != 0 {
			return Result{}, fmt.Errorf("--edit takes no arguments")
		}
		line, err := evalEdit(root, path, opts)
		if err != nil {
			return Result{}, err
		}
		return Result{Lines: []string{line}, Root: root, Cacheable: true}, nil

	case OpDel:
		if len(right) != 0 {
			return Result{}, fmt.Errorf("--del takes no arguments")
		}
		if len(path) == 0 {
			return Result{}, fmt.Errorf("--del requires a path")
		}
		clone := root.Clone()
		if err := deleteAndPrune(clone, path); err != nil {
			return Result{}, err
		}
		return Result{Root: clone, Mutated: true}, nil

	case OpPop:
		if len(right) != 0 {
			return Result{}, fmt.Errorf("--pop takes no arguments")
		}
		clone := root.Clone()
		lines, err := evalPop(clone, path)
		if err != nil {
			return Result{}, err
		}
		return Result{Lines: lines, Root: clone, Mutated: true}, nil

	default:
		return Result{}, fmt.Errorf("unknown operator %q", op)
	}
}

func evalIndex(root *datum.Datum, path []string, opts Options) ([]string, error) {
	val, err := navigateRead(root, path, opts.Strict)
	if err != nil {
		return nil, err
	}
	lines := val.RenderLines()
	if opts.AddContext && len(path) > 0 && len(lines) > 0 {
		prefix := strings.Join(path, " = ") + " = "
		prefixed := make([]string, len(lines))
		for i, l := range lines {
			prefixed[i] = prefix + l
		}
		return prefixed, nil
	}
	return lines, nil
}

func evalKeys(root *datum.Datum, path []string, opts Options) ([]string, error) {
	val, err := navigateRead(root, path, opts.Strict)
	if err != nil {
		return nil, err
	}
	if val.IsAbsent() {
		return nil, nil
	}
	if !val.IsMapping() {
		return nil, fmt.Errorf("cannot retrieve keys of non-mapping (%s)", val.Kind())
	}
	return val.Keys(), nil
}

func evalEdit(root *datum.Datum, path []string, opts Options) (string, error) {
	val, err := navigateRead(root, path, opts.Strict)
	if err != nil {
		return "", err
	}
	return val.RenderEditJSON()
}

// evalSearch walks the whole tree looking for a mapping entry whose value is
// target, or a list containing target, per spec.md §4.6. The line emitted
// for a match is the matched key itself, with the path walked to reach it
// (not including the key) prefixed on when opts.AddContext is set - matching
// original_source/apocrypha/database.py's _search/_display pair, where the
// context-joined prefix is only added when self.add_context is true.
func evalSearch(root *datum.Datum, target string, opts Options) []string {
	var lines []string
	var walk func(node *datum.Datum, context []string)
	walk = func(node *datum.Datum, context []string) {
		if !node.IsMapping() {
			return
		}
		for _, k := range node.Keys() {
			child := node.Get(k)
			switch child.Kind() {
			case datum.String:
				s, _ := child.AsString()
				if s == target {
					lines = append(lines, searchLine(context, k, opts))
				}
			case datum.List:
				lst, _ := child.AsList()
				for _, e := range lst {
					if e == target {
						lines = append(lines, searchLine(context, k, opts))
						break
					}
				}
			case datum.Mapping:
				walk(child, append(append([]string(nil), context...), k))
			}
		}
	}
	walk(root, nil)
	return lines
}

func searchLine(context []string, key string, opts Options) string {
	if opts.AddContext && len(context) > 0 {
		return strings.Join(context, " = ") + " = " + key
	}
	return key
}

func evalAssign(clone *datum.Datum, path []string, right []string) error {
	if len(path) == 0 {
		return fmt.Errorf("assign requires a path")
	}
	if len(right) == 0 {
		return deleteAndPrune(clone, path)
	}
	parent, leafKey, err := autovivifyForWrite(clone, path)
	if err != nil {
		return err
	}
	parent.Set(leafKey, datum.NewFromStrings(right))
	return nil
}

func evalAppend(clone *datum.Datum, path []string, right []string) error {
	if len(path) == 0 {
		return fmt.Errorf("append requires a path")
	}
	if len(right) == 0 {
		return fmt.Errorf("append requires at least one value")
	}
	parent, leafKey, err := autovivifyForWrite(clone, path)
	if err != nil {
		return err
	}
	leaf := parent.Get(leafKey)
	switch leaf.Kind() {
	case datum.Mapping:
		return fmt.Errorf("cannot append to dict")
	case datum.String:
		s, _ := leaf.AsString()
		parent.Set(leafKey, datum.NewFromStrings(append([]string{s}, right...)))
	case datum.List:
		lst, _ := leaf.AsList()
		parent.Set(leafKey, datum.NewFromStrings(append(lst, right...)))
	default: // absent
		parent.Set(leafKey, datum.NewFromStrings(right))
	}
	return nil
}

func evalRemove(clone *datum.Datum, path []string, right []string) error {
	if len(path) == 0 {
		return fmt.Errorf("remove requires a path")
	}
	if len(right) == 0 {
		return fmt.Errorf("remove requires at least one value")
	}
	parent, leafKey, err := navigateExistingParent(clone, path)
	if err != nil {
		return err
	}
	leaf := parent.Get(leafKey)

	switch leaf.Kind() {
	case datum.List:
		lst, _ := leaf.AsList()
		remove := make(map[string]bool, len(right))
		for _, v := range right {
			present := false
			for _, e := range lst {
				if e == v {
					present = true
					break
				}
			}
			if !present {
				return fmt.Errorf("value not found: %s", v)
			}
			remove[v] = true
		}
		result := make([]string, 0, len(lst))
		for _, e := range lst {
			if !remove[e] {
				result = append(result, e)
			}
		}
		if len(result) == 0 {
			return deleteAndPrune(clone, path)
		}
		parent.Set(leafKey, datum.NewFromStrings(result))
		return nil

	case datum.String:
		s, _ := leaf.AsString()
		if len(right) == 1 && right[0] == s {
			return deleteAndPrune(clone, path)
		}
		return fmt.Errorf("value not found: %s", right[0])

	default:
		return fmt.Errorf("cannot remove from %s", leaf.Kind())
	}
}

func evalSet(clone *datum.Datum, path []string, jsonText string) (*datum.Datum, error) {
	parsed := datum.NewAbsent()
	if err := parsed.UnmarshalJSON([]byte(jsonText)); err != nil {
		return nil, fmt.Errorf("malformed json")
	}

	if len(path) == 0 {
		if !parsed.IsMapping() {
			return nil, fmt.Errorf("root must be a JSON object")
		}
		return parsed, nil
	}

	parent, leafKey, err := autovivifyForWrite(clone, path)
	if err != nil {
		return nil, err
	}
	parent.Set(leafKey, parsed)
	return clone, nil
}

func evalPop(clone *datum.Datum, path []string) ([]string, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("pop requires a path")
	}
	parent, leafKey, err := navigateExistingParent(clone, path)
	if err != nil {
		return nil, err
	}
	leaf := parent.Get(leafKey)

	switch leaf.Kind() {
	case datum.List:
		lst, _ := leaf.AsList()
		if len(lst) == 0 {
			return nil, fmt.Errorf("value not found")
		}
		last := lst[len(lst)-1]
		rest := lst[:len(lst)-1]
		if len(rest) == 0 {
			if err := deleteAndPrune(clone, path); err != nil {
				return nil, err
			}
		} else {
			parent.Set(leafKey, datum.NewFromStrings(rest))
		}
		return []string{last}, nil

	case datum.String, datum.Mapping:
		lines := leaf.RenderLines()
		if err := deleteAndPrune(clone, path); err != nil {
			return nil, err
		}
		return lines, nil

	default:
		return nil, fmt.Errorf("value not found")
	}
}
