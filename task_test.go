package main

import "testing"

func TestOffsetTaskPatchesRelativeDisplacement(t *testing.T) {
	dst := make([]byte, 16)
	target := resolved(20)
	task := &OffsetTask{instructionOffset: resolved(0), target: target, instructionSize: 5}
	task.run(dst)
	disp := int32(uint32(dst[1]) | uint32(dst[2])<<8 | uint32(dst[3])<<16 | uint32(dst[4])<<24)
	if want := int32(20 - 5); disp != want {
		t.Fatalf("disp = %d, want %d", disp, want)
	}
}

func TestOffsetTaskAbortsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for an out-of-int32-range displacement")
		}
	}()
	dst := make([]byte, 16)
	task := &OffsetTask{instructionOffset: resolved(0), target: resolved(1 << 40), instructionSize: 5}
	task.run(dst)
}

func TestImmediateTaskWritesFourAndEightByteValues(t *testing.T) {
	dst := make([]byte, 16)
	task4 := &ImmediateTask{offset: resolved(0), value: resolved(0x11223344), size: 4}
	task4.run(dst)
	got4 := uint32(dst[0]) | uint32(dst[1])<<8 | uint32(dst[2])<<16 | uint32(dst[3])<<24
	if got4 != 0x11223344 {
		t.Fatalf("4-byte patch = %x, want 11223344", got4)
	}

	task8 := &ImmediateTask{offset: resolved(8), value: resolved(0x1122334455667788), size: 8}
	task8.run(dst)
	var got8 uint64
	for i := 0; i < 8; i++ {
		got8 |= uint64(dst[8+i]) << (8 * uint(i))
	}
	if got8 != 0x1122334455667788 {
		t.Fatalf("8-byte patch = %x, want 1122334455667788", got8)
	}
}
