package main

import "encoding/binary"

// Task is a deferred byte patch applied once WriteTo has copied every block
// into the destination buffer and every block's final start is known.
// Grounded on x86.cpp's Task/OffsetTask/ImmediateTask hierarchy.
type Task interface {
	run(dst []byte)
}

// OffsetTask patches a 4-byte PC-relative displacement occupying the last
// four bytes of an instructionSize-byte instruction starting at
// instructionOffset. target is the jump/call destination. Both are
// Promises because neither the instruction's final position nor, in
// general, the target is known until block resolution.
type OffsetTask struct {
	instructionOffset Promise
	target            Promise
	instructionSize   int64
}

func (t *OffsetTask) run(dst []byte) {
	instructionStart := t.instructionOffset.Value()
	disp := t.target.Value() - (instructionStart + t.instructionSize)
	if disp < int64(minInt32) || disp > int64(maxInt32) {
		rangeErrorf("pc-relative displacement %d does not fit int32", disp)
	}
	patchOffset := instructionStart + t.instructionSize - 4
	binary.LittleEndian.PutUint32(dst[patchOffset:patchOffset+4], uint32(int32(disp)))
}

// ImmediateTask copies a promise's value verbatim (4 or 8 bytes) into the
// final buffer at the address offset resolves to.
type ImmediateTask struct {
	offset Promise
	value  Promise
	size   int
}

func (t *ImmediateTask) run(dst []byte) {
	base := t.offset.Value()
	v := t.value.Value()
	switch t.size {
	case 4:
		binary.LittleEndian.PutUint32(dst[base:base+4], uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(dst[base:base+8], uint64(v))
	default:
		fatalf("immediate task size must be 4 or 8, got %d", t.size)
	}
}

const (
	minInt32 = -2147483648
	maxInt32 = 2147483647
)

// appendOffsetTask registers an OffsetTask against the assembler. The task
// is always appended, even if both promises are already resolved; it runs
// at WriteTo, once block layout is known.
func (a *Assembler) appendOffsetTask(instructionOffset, target Promise, instructionSize int64) {
	a.tasks = append(a.tasks, &OffsetTask{
		instructionOffset: instructionOffset,
		target:            target,
		instructionSize:   instructionSize,
	})
}

func (a *Assembler) appendImmediateTask(offset, value Promise, size int) {
	a.tasks = append(a.tasks, &ImmediateTask{offset: offset, value: value, size: size})
}
