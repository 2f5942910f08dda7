package engine

import (
	"fmt"

	"github.com/ValentinKolb/apocrypha/lib/datum"
)

// navigateRead walks path against root without ever mutating it. A missing
// intermediate key resolves to absent rather than raising an error, unless
// strict is set, in which case any missing key along the way is an error -
// this is the -s/--strict request modifier.
//
// A path is valid if every prefix except possibly the last resolves to a
// mapping; indexing through a present string or list is always an error.
func navigateRead(root *datum.Datum, path []string, strict bool) (*datum.Datum, error) {
	cur := root
	for _, key := range path {
		if cur.IsAbsent() {
			return datum.NewAbsent(), nil
		}
		if !cur.IsMapping() {
			return nil, fmt.Errorf("cannot index through %s", cur.Kind())
		}
		cur = cur.Get(key)
		if strict && cur.IsAbsent() {
			return nil, fmt.Errorf("%s not found", key)
		}
	}
	return cur, nil
}

// autovivifyForWrite walks path against root (which must be a clone the
// caller is free to mutate), creating missing intermediate mappings as it
// goes, and returns the direct parent mapping of the final key plus that
// key. An empty path returns a nil parent - callers that support a
// path-less form (currently only --set's global overwrite) handle that
// case themselves; every other mutating operator treats it as an error.
func autovivifyForWrite(root *datum.Datum, path []string) (parent *datum.Datum, leafKey string, err error) {
	if len(path) == 0 {
		return nil, "", nil
	}
	cur := root
	for _, key := range path[:len(path)-1] {
		child := cur.Get(key)
		if child.IsAbsent() {
			child = datum.NewMapping()
			cur.Set(key, child)
		} else if !child.IsMapping() {
			return nil, "", fmt.Errorf("cannot index through %s: %s", child.Kind(), key)
		}
		cur = child
	}
	return cur, path[len(path)-1], nil
}

// navigateExistingParent is autovivifyForWrite's read-only counterpart,
// used by operators that require the target to already exist (-, --del,
// --pop): no ancestor is created, and a missing ancestor or non-mapping
// ancestor is an error instead of silently producing absent.
func navigateExistingParent(root *datum.Datum, path []string) (parent *datum.Datum, leafKey string, err error) {
	if len(path) == 0 {
		return nil, "", nil
	}
	cur := root
	for _, key := range path[:len(path)-1] {
		child := cur.Get(key)
		if child.IsAbsent() {
			return nil, "", fmt.Errorf("%s not found", key)
		}
		if !child.IsMapping() {
			return nil, "", fmt.Errorf("cannot index through %s: %s", child.Kind(), key)
		}
		cur = child
	}
	return cur, path[len(path)-1], nil
}

// pruneEmptyAncestors walks ancestorPath from root and deletes the chain of
// mappings that have just become empty, starting from the deepest one,
// stopping as soon as a non-empty mapping (or the root) is reached. It
// never removes the root itself, since ancestorPath never includes it as a
// key to delete - only as the starting point of the walk.
func pruneEmptyAncestors(root *datum.Datum, ancestorPath []string) {
	if len(ancestorPath) == 0 {
		return
	}

	chain := make([]*datum.Datum, 1, len(ancestorPath)+1)
	chain[0] = root
	cur := root
	for _, key := range ancestorPath {
		cur = cur.Get(key)
		if cur.IsAbsent() || !cur.IsMapping() {
			return
		}
		chain = append(chain, cur)
	}

	for i := len(ancestorPath) - 1; i >= 0; i-- {
		child := chain[i+1]
		if child.Len() > 0 {
			break
		}
		chain[i].Delete(ancestorPath[i])
	}
}

// deleteAndPrune removes the value at path from its parent mapping and then
// prunes any ancestor mapping that became empty as a result. Shared by
// --del, `= ` with zero values, and every emptying mutation (-, --pop) so
// invariant M (no empty mapping but the root) holds everywhere, not just
// for the operator that documents it.
func deleteAndPrune(root *datum.Datum, path []string) error {
	parent, leafKey, err := navigateExistingParent(root, path)
	if err != nil {
		return err
	}
	if parent == nil {
		return fmt.Errorf("path required")
	}
	if parent.Get(leafKey).IsAbsent() {
		return fmt.Errorf("%s not found", leafKey)
	}
	parent.Delete(leafKey)
	pruneEmptyAncestors(root, path[:len(path)-1])
	return nil
}
