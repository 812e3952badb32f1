package main

import (
	"testing"

	"golang.org/x/arch/x86/x86asm"
)

// decodeAll runs an independent decoder over buf and fails the test if it
// can't account for every byte, the round-trip property spec.md §8 names
// as Testable Property 1.
func decodeAll(t *testing.T, buf []byte, mode int) []x86asm.Inst {
	t.Helper()
	var insts []x86asm.Inst
	for len(buf) > 0 {
		inst, err := x86asm.Decode(buf, mode)
		if err != nil {
			t.Fatalf("decode failed with %d bytes left (% x): %v", len(buf), buf, err)
		}
		insts = append(insts, inst)
		buf = buf[inst.Len:]
	}
	return insts
}

func TestReturn(t *testing.T) {
	asm := NewAssembler(NewArchitecture(8, SystemV), nil)
	if err := asm.Apply(Return); err != nil {
		t.Fatal(err)
	}
	out := make([]byte, asm.OutputLength())
	asm.WriteTo(out)
	if len(out) != 1 || out[0] != 0xC3 {
		t.Fatalf("got % x, want c3", out)
	}
	decodeAll(t, out, 64)
}

func TestBarriersAreNoOps(t *testing.T) {
	asm := NewAssembler(NewArchitecture(8, SystemV), nil)
	for _, op := range []Operation{LoadBarrier, StoreStoreBarrier, StoreLoadBarrier} {
		if err := asm.Apply(op); err != nil {
			t.Fatal(err)
		}
	}
	if asm.Length() != 0 {
		t.Fatalf("expected barriers to emit nothing, got %d bytes", asm.Length())
	}
}

func TestCallConstantPatchesRelativeDisplacement(t *testing.T) {
	asm := NewAssembler(NewArchitecture(8, SystemV), nil)
	target := resolved(0x1000)
	op := operandForConstant(Constant{Value: target})
	if err := asm.ApplyUnary(Call, 8, TypeConstant, op); err != nil {
		t.Fatal(err)
	}
	if err := asm.Apply(Return); err != nil {
		t.Fatal(err)
	}
	out := make([]byte, asm.OutputLength())
	asm.WriteTo(out)

	if out[0] != 0xE8 {
		t.Fatalf("expected E8 call opcode, got %02x", out[0])
	}
	disp := int32(uint32(out[1]) | uint32(out[2])<<8 | uint32(out[3])<<16 | uint32(out[4])<<24)
	if want := int32(0x1000 - 5); disp != want {
		t.Fatalf("disp = %d, want %d", disp, want)
	}
	insts := decodeAll(t, out, 64)
	if insts[0].Op != x86asm.CALL {
		t.Fatalf("decoded %v, want CALL", insts[0].Op)
	}
}

func TestJumpIfConditionsEncodeCorrectOpcode(t *testing.T) {
	cases := []struct {
		op   UnaryOperation
		byte uint8
	}{
		{JumpIfEqual, 0x84},
		{JumpIfNotEqual, 0x85},
		{JumpIfGreater, 0x8F},
		{JumpIfGreaterOrEqual, 0x8D},
		{JumpIfLess, 0x8C},
		{JumpIfLessOrEqual, 0x8E},
	}
	for _, c := range cases {
		asm := NewAssembler(NewArchitecture(8, SystemV), nil)
		op := operandForConstant(Constant{Value: resolved(0)})
		if err := asm.ApplyUnary(c.op, 8, TypeConstant, op); err != nil {
			t.Fatal(err)
		}
		out := make([]byte, asm.OutputLength())
		asm.WriteTo(out)
		if out[0] != 0x0F || out[1] != c.byte {
			t.Fatalf("op %d: got %02x %02x, want 0f %02x", c.op, out[0], out[1], c.byte)
		}
		decodeAll(t, out, 64)
	}
}

func TestAlignedCallLandsOnFourByteBoundary(t *testing.T) {
	asm := NewAssembler(NewArchitecture(8, SystemV), nil)
	// emit a few odd-length instructions to push the buffer off alignment
	asm.code.append1(0x90)
	asm.code.append1(0x90)
	asm.code.append1(0x90)

	op := operandForConstant(Constant{Value: resolved(0)})
	if err := asm.ApplyUnary(AlignedCall, 8, TypeConstant, op); err != nil {
		t.Fatal(err)
	}
	out := make([]byte, asm.OutputLength())
	asm.WriteTo(out)

	// find the E8 byte; everything before it must be NOPs padding to a
	// 4-byte boundary so the 4-byte displacement field that follows lands
	// entirely inside one aligned word (spec.md §4.3).
	idx := -1
	for i, b := range out {
		if b == 0xE8 {
			idx = i
			break
		}
	}
	if idx == -1 {
		t.Fatal("no call opcode found")
	}
	if (idx+1)%4 != 0 {
		t.Fatalf("call displacement field starts at %d, not 4-byte aligned", idx+1)
	}
	decodeAll(t, out, 64)
}

func TestLongCallOn64BitUsesIndirectForm(t *testing.T) {
	asm := NewAssembler(NewArchitecture(8, SystemV), nil)
	op := operandForConstant(Constant{Value: resolved(0x123456789A)})
	if err := asm.ApplyUnary(LongCall, 8, TypeConstant, op); err != nil {
		t.Fatal(err)
	}
	out := make([]byte, asm.OutputLength())
	asm.WriteTo(out)

	if out[0] != 0x49 || out[1] != 0xBA {
		t.Fatalf("got %02x %02x, want 49 ba", out[0], out[1])
	}
	if out[10] != 0x41 || out[11] != 0xFF || out[12] != 0xD2 {
		t.Fatalf("got %02x %02x %02x, want 41 ff d2", out[10], out[11], out[12])
	}
	decodeAll(t, out, 64)
}

func TestLongCallOn32BitFallsBackToShortForm(t *testing.T) {
	asm := NewAssembler(NewArchitecture(4, SystemV), nil)
	op := operandForConstant(Constant{Value: resolved(0x1000)})
	if err := asm.ApplyUnary(LongCall, 4, TypeConstant, op); err != nil {
		t.Fatal(err)
	}
	out := make([]byte, asm.OutputLength())
	asm.WriteTo(out)
	if out[0] != 0xE8 || len(out) != 5 {
		t.Fatalf("got % x, want a 5-byte E8 call", out)
	}
}

func TestCallRegisterIndirect(t *testing.T) {
	asm := NewAssembler(NewArchitecture(8, SystemV), nil)
	op := operandFor(Reg(RAX))
	if err := asm.ApplyUnary(Call, 8, TypeRegister, op); err != nil {
		t.Fatal(err)
	}
	out := make([]byte, asm.OutputLength())
	asm.WriteTo(out)
	if out[0] != 0xFF || out[1] != modrm(3, RAX, 2) {
		t.Fatalf("got % x", out)
	}
	insts := decodeAll(t, out, 64)
	if insts[0].Op != x86asm.CALL {
		t.Fatalf("decoded %v, want CALL", insts[0].Op)
	}
}
