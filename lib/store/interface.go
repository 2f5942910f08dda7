package store

import "fmt"

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// RetCode classifies a store-level outcome. Within this package it marks
// snapshot failures; internal/cluster also returns these codes as the result
// of a replicated command, including one whose query the engine rejected.
type RetCode uint64

const (
	RetCSuccess    RetCode = iota // 0: operation completed normally
	RetCIOError                   // 1: snapshot failed, or (cluster) the query returned an error
	RetCBadArchive                // 2: (cluster) the replicated command could not be decoded
)

// Error is a store-level failure, distinguished from the plain errors the
// engine returns for malformed or semantically invalid queries.
type Error struct {
	Code RetCode
	Msg  string
}

func (e *Error) Error() string {
	var codeName string
	switch e.Code {
	case RetCIOError:
		codeName = "IOError"
	case RetCBadArchive:
		codeName = "BadArchive"
	default:
		codeName = "Unknown"
	}
	return fmt.Sprintf("store error (%s): %s", codeName, e.Msg)
}

// NewError constructs an *Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}
