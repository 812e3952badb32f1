package main

import (
	"bytes"
	"encoding/binary"
)

// codeBuffer is the growable byte vector every block is appended to. It
// supports the append1/2/4/8 and in-place set primitives spec.md requires.
// Grounded on the teacher's SafeBuffer (safe_buffer.go) write-then-commit
// idiom, trimmed to the assembler's actual needs: a plain growable buffer
// plus random-access patching, no commit/reset lifecycle (the assembler's
// own Block/Task bookkeeping already enforces "no writes after WriteTo").
type codeBuffer struct {
	buf bytes.Buffer
}

func (c *codeBuffer) Len() int64 {
	return int64(c.buf.Len())
}

func (c *codeBuffer) append1(v uint8) {
	c.buf.WriteByte(v)
}

func (c *codeBuffer) append2(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	c.buf.Write(tmp[:])
}

func (c *codeBuffer) append4(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	c.buf.Write(tmp[:])
}

func (c *codeBuffer) append8(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	c.buf.Write(tmp[:])
}

// appendAddress appends a word-sized (4 or 8 byte) zero placeholder, used
// where an ImmediateTask will later overwrite the field.
func (c *codeBuffer) appendAddress(wordSize int) {
	if wordSize == 8 {
		c.append8(0)
	} else {
		c.append4(0)
	}
}

func (c *codeBuffer) appendN(n int, v byte) {
	for i := 0; i < n; i++ {
		c.buf.WriteByte(v)
	}
}

// bytes returns the buffer's current contents without copying.
func (c *codeBuffer) bytes() []byte {
	return c.buf.Bytes()
}

// set overwrites length bytes at offset in place, used for local
// back-patches computed immediately at emission time rather than deferred
// through a Task (e.g. LongCompare's internal forward short-jumps, whose
// target and instruction positions are both already known within the
// block currently being built).
func (c *codeBuffer) set(offset int64, v uint32, length int) {
	raw := c.buf.Bytes()
	switch length {
	case 1:
		raw[offset] = byte(v)
	case 4:
		binary.LittleEndian.PutUint32(raw[offset:offset+4], v)
	default:
		fatalf("codeBuffer.set: unsupported patch length %d", length)
	}
}
