// Package internal holds the wire format for a single raft log entry: a
// tokenized Apocrypha query plus its request-level modifiers. Modeled on the
// teacher's dstore/internal Command (lib/store/dstore/internal/Command.go),
// which serializes a fixed key/value/expiry layout; ours is variable-length
// since a query is an arbitrary token sequence, so the layout is a small
// flags byte followed by length-prefixed tokens instead of fixed-width
// fields.
package internal

import (
	"encoding/binary"
	"fmt"
)

// Command is one query, as it travels through the raft log.
type Command struct {
	AddContext bool
	Strict     bool
	Tokens     []string
}

const (
	flagAddContext = 1 << 0
	flagStrict     = 1 << 1
)

// Serialize encodes the command as: 1 flags byte, 2-byte token count (big
// endian), then for each token a 4-byte length followed by its bytes.
func (c *Command) Serialize() []byte {
	size := 1 + 2
	for _, t := range c.Tokens {
		size += 4 + len(t)
	}
	buf := make([]byte, size)

	var flags byte
	if c.AddContext {
		flags |= flagAddContext
	}
	if c.Strict {
		flags |= flagStrict
	}
	buf[0] = flags
	binary.BigEndian.PutUint16(buf[1:3], uint16(len(c.Tokens)))

	off := 3
	for _, t := range c.Tokens {
		binary.BigEndian.PutUint32(buf[off:off+4], uint32(len(t)))
		off += 4
		copy(buf[off:off+len(t)], t)
		off += len(t)
	}
	return buf
}

// Deserialize fills c from bytes produced by Serialize.
func (c *Command) Deserialize(data []byte) error {
	if len(data) < 3 {
		return fmt.Errorf("cluster: command too short")
	}
	flags := data[0]
	c.AddContext = flags&flagAddContext != 0
	c.Strict = flags&flagStrict != 0

	count := binary.BigEndian.Uint16(data[1:3])
	off := 3
	tokens := make([]string, 0, count)
	for i := uint16(0); i < count; i++ {
		if len(data)-off < 4 {
			return fmt.Errorf("cluster: truncated token length at index %d", i)
		}
		tokLen := binary.BigEndian.Uint32(data[off : off+4])
		off += 4
		if uint32(len(data)-off) < tokLen {
			return fmt.Errorf("cluster: truncated token data at index %d", i)
		}
		tokens = append(tokens, string(data[off:off+int(tokLen)]))
		off += int(tokLen)
	}
	c.Tokens = tokens
	return nil
}
