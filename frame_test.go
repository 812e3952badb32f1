package main

import (
	"testing"

	"golang.org/x/arch/x86/x86asm"
)

func TestAllocateAndPopFrameAreInverse(t *testing.T) {
	asm := NewAssembler(NewArchitecture(8, SystemV), nil)
	if err := asm.AllocateFrame(4); err != nil {
		t.Fatal(err)
	}
	if err := asm.PopFrame(); err != nil {
		t.Fatal(err)
	}
	if err := asm.Apply(Return); err != nil {
		t.Fatal(err)
	}
	out := make([]byte, asm.OutputLength())
	asm.WriteTo(out)

	insts := decodeAll(t, out, 64)
	if insts[0].Op != x86asm.PUSH {
		t.Fatalf("first instruction = %v, want PUSH (save caller's RBP)", insts[0].Op)
	}
	last := insts[len(insts)-1]
	if last.Op != x86asm.RET {
		t.Fatalf("last instruction = %v, want RET", last.Op)
	}
}

func TestSaveFrameStoresStackAndBasePointers(t *testing.T) {
	asm := NewAssembler(NewArchitecture(8, SystemV), nil)
	if err := asm.SaveFrame(8, 16); err != nil {
		t.Fatal(err)
	}
	out := make([]byte, asm.OutputLength())
	asm.WriteTo(out)
	insts := decodeAll(t, out, 64)
	if len(insts) != 2 || insts[0].Op != x86asm.MOV || insts[1].Op != x86asm.MOV {
		t.Fatalf("got %v, want two MOVs", insts)
	}
}

func TestPopFrameAndPopArgumentsAndReturnUsesPlainRetWhenWithinAlignment(t *testing.T) {
	asm := NewAssembler(NewArchitecture(8, SystemV), nil)
	if err := asm.PopFrameAndPopArgumentsAndReturn(0, 2); err != nil {
		t.Fatal(err)
	}
	out := make([]byte, asm.OutputLength())
	asm.WriteTo(out)
	insts := decodeAll(t, out, 64)
	if insts[len(insts)-1].Op != x86asm.RET {
		t.Fatalf("last instruction = %v, want RET", insts[len(insts)-1].Op)
	}
}

func TestPopFrameAndPopArgumentsAndReturnAdjustsStackWhenOverAligned(t *testing.T) {
	asm := NewAssembler(NewArchitecture(8, SystemV), nil)
	if err := asm.PopFrameAndPopArgumentsAndReturn(8, 2); err != nil {
		t.Fatal(err)
	}
	out := make([]byte, asm.OutputLength())
	asm.WriteTo(out)
	insts := decodeAll(t, out, 64)
	last := insts[len(insts)-1]
	if last.Op != x86asm.JMP {
		t.Fatalf("last instruction = %v, want an indirect JMP through the saved return address", last.Op)
	}
}

func TestPopFrameForTailCallWithZeroOffsetIsPlainPopFrame(t *testing.T) {
	asm := NewAssembler(NewArchitecture(8, SystemV), nil)
	if err := asm.PopFrameForTailCall(4, 0, NoRegister, NoRegister); err != nil {
		t.Fatal(err)
	}
	out := make([]byte, asm.OutputLength())
	asm.WriteTo(out)
	insts := decodeAll(t, out, 64)
	if insts[0].Op != x86asm.MOV || insts[1].Op != x86asm.POP {
		t.Fatalf("got %v, want mov rbp->rsp then pop rbp", insts)
	}
}

func TestPopFrameForTailCallWithOffsetSplicesFrame(t *testing.T) {
	client := newRecordingClient()
	asm := NewAssembler(NewArchitecture(8, SystemV), client)
	if err := asm.PopFrameForTailCall(4, 2, NoRegister, NoRegister); err != nil {
		t.Fatal(err)
	}
	if client.acquired != client.released {
		t.Fatalf("unbalanced scratch register use: acquired=%d released=%d", client.acquired, client.released)
	}
	out := make([]byte, asm.OutputLength())
	asm.WriteTo(out)
	decodeAll(t, out, 64)
}
