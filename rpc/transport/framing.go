// Package transport implements Apocrypha's wire protocol: a 4-byte
// big-endian length prefix followed by that many bytes of UTF-8,
// newline-delimited tokens (request) or output lines (response), exactly as
// spec.md §2 describes it.
//
// Grounded on the teacher's rpc/transport/base package, which frames with an
// 8-byte shardID + 8-byte requestID + 4-byte length header for its
// RAFT-routed, pipelined RPCs. Apocrypha has no shards, and the server
// processes one request per connection at a time (the store's own lock
// would serialize concurrent requests anyway), so both ID fields are
// dropped and only the length prefix survives.
package transport

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxFrameSize bounds a single frame's payload, guarding the server against
// a corrupt or hostile length prefix causing an unbounded allocation.
const MaxFrameSize = 64 * 1024 * 1024

// WriteFrame writes payload to w prefixed with its 4-byte big-endian length,
// as a single Write call so a net.Conn only takes one trip through the
// kernel per frame.
func WriteFrame(w io.Writer, payload []byte) error {
	buf := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(buf[:4], uint32(len(payload)))
	copy(buf[4:], payload)
	_, err := w.Write(buf)
	return err
}

// ReadFrame reads one length-prefixed frame from r.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint32(header[:])
	if size > MaxFrameSize {
		return nil, fmt.Errorf("transport: frame of %d bytes exceeds maximum of %d", size, MaxFrameSize)
	}
	if size == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
