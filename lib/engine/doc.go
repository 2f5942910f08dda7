// Package engine implements the Apocrypha query language: the parser that
// classifies a token list into a left path and a right payload around its
// one operator, and the evaluator that walks/mutates a document.Datum tree
// accordingly.
//
// Evaluate never mutates the Datum it is given. Mutating queries clone the
// root, apply autovivification and the operator's effect to the clone, and
// only return the clone (as the new root) once every precondition has
// checked out - this is the validate-before-mutate discipline the spec
// requires: a failing mutation leaves the original root byte-identical to
// how it started.
package engine
