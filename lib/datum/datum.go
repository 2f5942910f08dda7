package datum

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Kind identifies which of the four shapes a Datum currently holds.
type Kind int

const (
	// Absent marks a position that has no value, used only transiently
	// while navigating a path.
	Absent Kind = iota
	String
	List
	Mapping
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case List:
		return "list"
	case Mapping:
		return "mapping"
	default:
		return "absent"
	}
}

// Datum is the tagged value stored at every position in the document tree.
// The zero value is Absent.
type Datum struct {
	kind Kind
	str  string
	list []string

	// keys preserves mapping insertion order; entries maps key to child.
	keys    []string
	entries map[string]*Datum
}

// NewAbsent returns the absent value.
func NewAbsent() *Datum { return &Datum{kind: Absent} }

// NewString wraps a single string.
func NewString(s string) *Datum { return &Datum{kind: String, str: s} }

// NewList wraps an ordered list of strings. Per invariant S, callers should
// prefer NewFromStrings, which collapses/absents degenerate lists.
func NewList(items []string) *Datum {
	cp := make([]string, len(items))
	copy(cp, items)
	return &Datum{kind: List, list: cp}
}

// NewMapping returns an empty mapping.
func NewMapping() *Datum {
	return &Datum{kind: Mapping, entries: map[string]*Datum{}}
}

// NewFromStrings builds the value that should be stored for a list of
// literal strings, applying invariant S: zero strings yields Absent (the
// caller is expected to delete rather than store it), one string yields a
// String, two or more yields a List.
func NewFromStrings(items []string) *Datum {
	switch len(items) {
	case 0:
		return NewAbsent()
	case 1:
		return NewString(items[0])
	default:
		return NewList(items)
	}
}

func (d *Datum) Kind() Kind {
	if d == nil {
		return Absent
	}
	return d.kind
}

func (d *Datum) IsAbsent() bool   { return d.Kind() == Absent }
func (d *Datum) IsString() bool   { return d.Kind() == String }
func (d *Datum) IsList() bool     { return d.Kind() == List }
func (d *Datum) IsMapping() bool  { return d.Kind() == Mapping }

// AsString returns the underlying string and true if this Datum is a String.
func (d *Datum) AsString() (string, bool) {
	if d.Kind() != String {
		return "", false
	}
	return d.str, true
}

// AsList returns the underlying list (copy) and true if this Datum is a List.
func (d *Datum) AsList() ([]string, bool) {
	if d.Kind() != List {
		return nil, false
	}
	cp := make([]string, len(d.list))
	copy(cp, d.list)
	return cp, true
}

// Keys returns the mapping's keys in insertion order. Empty for non-mappings.
func (d *Datum) Keys() []string {
	if d.Kind() != Mapping {
		return nil
	}
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len reports the number of entries (mapping), elements (list), or 1/0 for
// string/absent.
func (d *Datum) Len() int {
	switch d.Kind() {
	case Mapping:
		return len(d.keys)
	case List:
		return len(d.list)
	case String:
		return 1
	default:
		return 0
	}
}

// Get looks up a key in a mapping. Returns the absent Datum if this is not a
// mapping or the key is unset - it never mutates the receiver.
func (d *Datum) Get(key string) *Datum {
	if d.Kind() != Mapping {
		return NewAbsent()
	}
	if child, ok := d.entries[key]; ok {
		return child
	}
	return NewAbsent()
}

// Set inserts or overwrites a key in a mapping, preserving the existing
// position in iteration order if the key was already present. Panics if the
// receiver is not a mapping - callers are expected to check Kind() first.
func (d *Datum) Set(key string, value *Datum) {
	if d.Kind() != Mapping {
		panic("datum: Set called on non-mapping")
	}
	if _, exists := d.entries[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.entries[key] = value
}

// Delete removes a key from a mapping. No-op if absent or not a mapping.
func (d *Datum) Delete(key string) {
	if d.Kind() != Mapping {
		return
	}
	if _, ok := d.entries[key]; !ok {
		return
	}
	delete(d.entries, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Clone performs a deep copy of the Datum and everything it owns. The engine
// uses this for validate-before-mutate: a subtree is cloned, the mutation is
// applied to the clone, and only on success is the clone swapped back in.
func (d *Datum) Clone() *Datum {
	if d == nil {
		return NewAbsent()
	}
	switch d.kind {
	case String:
		return NewString(d.str)
	case List:
		return NewList(d.list)
	case Mapping:
		clone := NewMapping()
		for _, k := range d.keys {
			clone.Set(k, d.entries[k].Clone())
		}
		return clone
	default:
		return NewAbsent()
	}
}

// --------------------------------------------------------------------------
// Textual rendering (the `index` / no-operator output of the query engine)
// --------------------------------------------------------------------------

// RenderLines renders the value the way a bare index query does: absent
// produces no lines, a string produces itself, a list produces one element
// per line in stored order, and a mapping produces a single line holding its
// dict-literal rendering.
func (d *Datum) RenderLines() []string {
	switch d.Kind() {
	case Absent:
		return nil
	case String:
		return []string{d.str}
	case List:
		return append([]string(nil), d.list...)
	case Mapping:
		return []string{d.renderDict()}
	default:
		return nil
	}
}

// renderDict renders a mapping as a single-quoted, Python dict-literal style
// line, e.g. {'granny': 'good', 'nested': {'a': 'b'}}. This rendering is
// fixed by the wire-protocol test fixtures (spec Open Question: single vs
// double quotes).
func (d *Datum) renderDict() string {
	var sb strings.Builder
	d.writeValueRepr(&sb)
	return sb.String()
}

func (d *Datum) writeValueRepr(sb *strings.Builder) {
	switch d.Kind() {
	case String:
		writeQuoted(sb, d.str)
	case List:
		sb.WriteByte('[')
		for i, s := range d.list {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeQuoted(sb, s)
		}
		sb.WriteByte(']')
	case Mapping:
		sb.WriteByte('{')
		for i, k := range d.keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeQuoted(sb, k)
			sb.WriteString(": ")
			d.entries[k].writeValueRepr(sb)
		}
		sb.WriteByte('}')
	default:
		sb.WriteString("None")
	}
}

// writeQuoted writes s wrapped in single quotes, escaping backslashes and
// embedded single quotes.
func writeQuoted(sb *strings.Builder, s string) {
	sb.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '\'':
			sb.WriteString(`\'`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('\'')
}

// RenderEditJSON renders the value as compact JSON, used by the --edit
// operator to let clients round-trip a subtree through an external editor.
func (d *Datum) RenderEditJSON() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// --------------------------------------------------------------------------
// JSON (de)serialization
// --------------------------------------------------------------------------
//
// encoding/json's default map marshaling sorts keys alphabetically and
// unmarshaling into map[string]any loses field order entirely. Apocrypha's
// mapping order is observable (--keys, index of a mapping, @ search order)
// and must survive a disk round-trip, so Datum implements json.Marshaler and
// json.Unmarshaler itself, walking a json.Decoder token-by-token to capture
// object key order rather than reaching for a third-party ordered-map
// library (none appears anywhere in the retrieved pack).

func (d *Datum) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.encodeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *Datum) encodeJSON(buf *bytes.Buffer) error {
	switch d.Kind() {
	case Absent:
		buf.WriteString("null")
		return nil
	case String:
		b, err := json.Marshal(d.str)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	case List:
		buf.WriteByte('[')
		for i, s := range d.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := json.Marshal(s)
			if err != nil {
				return err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return nil
	case Mapping:
		buf.WriteByte('{')
		for i, k := range d.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := d.entries[k].encodeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	default:
		buf.WriteString("null")
		return nil
	}
}

func (d *Datum) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	val, err := decodeValue(dec)
	if err != nil {
		return err
	}
	*d = *val
	return nil
}

// decodeValue reads one JSON value from dec and converts it into a Datum,
// coercing non-string/array/object scalars (numbers, booleans, null) to
// their textual form per the --set coercion rule.
func decodeValue(dec *json.Decoder) (*Datum, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (*Datum, error) {
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			m := NewMapping()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("datum: expected object key, got %v", keyTok)
				}
				child, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				m.Set(key, child)
			}
			if _, err := dec.Token(); err != nil && err != io.EOF { // consume '}'
				return nil, err
			}
			return m, nil
		case '[':
			var items []string
			for dec.More() {
				child, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				items = append(items, scalarText(child))
			}
			if _, err := dec.Token(); err != nil && err != io.EOF { // consume ']'
				return nil, err
			}
			return NewFromStrings(items), nil
		default:
			return nil, fmt.Errorf("datum: unexpected delimiter %v", v)
		}
	case string:
		return NewString(v), nil
	case json.Number:
		return NewString(v.String()), nil
	case bool:
		return NewString(strconv.FormatBool(v)), nil
	case nil:
		return NewString("null"), nil
	default:
		return nil, fmt.Errorf("datum: unsupported JSON token %T", tok)
	}
}

// scalarText extracts the textual form of a value decoded as a single list
// element: a list may only contain strings, so a nested array/object inside
// one is flattened to its compact JSON text instead.
func scalarText(d *Datum) string {
	switch d.Kind() {
	case String:
		s, _ := d.AsString()
		return s
	default:
		s, err := d.RenderEditJSON()
		if err != nil {
			return ""
		}
		return s
	}
}
