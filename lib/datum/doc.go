// Package datum implements the tagged value type stored at every position in
// an Apocrypha document: a string, an ordered list of strings, an
// insertion-ordered mapping from string keys to further Datums, or absent.
//
// Mappings own their children and lists own their elements; there are no
// back-pointers, so a plain tree of ownership is enough and cloning a
// subtree (used by the engine for validate-before-mutate) is a simple deep
// copy.
package datum
