package main

import "testing"

func TestPaddingAlignsToFourByteBoundary(t *testing.T) {
	// start=0, padding point at offset=1: (start+index+padding+1) must hit a
	// multiple of 4, which takes 2 extra bytes (0+1+2+1 == 4).
	b := &Block{offset: 0, start: 0}
	b.addPadding(1)
	if got := paddingBefore(b, 1); got != 2 {
		t.Fatalf("padding before offset 1 = %d, want 2", got)
	}
}

func TestPaddingAccumulatesAcrossMultiplePoints(t *testing.T) {
	b := &Block{offset: 0, start: 0}
	b.addPadding(1)
	b.addPadding(5)
	p1 := paddingBefore(b, 1)
	p2 := paddingBefore(b, 5)
	if p2 < p1 {
		t.Fatalf("cumulative padding must not decrease: p1=%d p2=%d", p1, p2)
	}
}

func TestTotalPaddingMatchesWriteToLength(t *testing.T) {
	asm := NewAssembler(NewArchitecture(8, SystemV), nil)
	asm.code.append1(0x90)
	op := operandForConstant(Constant{Value: resolved(0)})
	if err := asm.ApplyUnary(AlignedCall, 8, TypeConstant, op); err != nil {
		t.Fatal(err)
	}
	want := asm.OutputLength()
	out := make([]byte, want)
	asm.WriteTo(out)
	if int64(len(out)) != want {
		t.Fatalf("OutputLength=%d but wrote into a %d-byte buffer", want, len(out))
	}
}

func TestEndBlockStartsNewBlockChain(t *testing.T) {
	asm := NewAssembler(NewArchitecture(8, SystemV), nil)
	if err := asm.Apply(Return); err != nil {
		t.Fatal(err)
	}
	first := asm.EndBlock(true)
	if first.size != 1 {
		t.Fatalf("first block size = %d, want 1", first.size)
	}
	if err := asm.Apply(Return); err != nil {
		t.Fatal(err)
	}
	second := asm.EndBlock(false)
	if first.next != second {
		t.Fatal("expected first.next to be the second block")
	}
	if asm.lastBlock != nil {
		t.Fatal("expected EndBlock(false) to close the block chain")
	}
}

func TestOffsetPromiseResolvesAfterWriteTo(t *testing.T) {
	asm := NewAssembler(NewArchitecture(8, SystemV), nil)
	mark := asm.Offset()
	if mark.Resolved() {
		t.Fatal("expected offset to be unresolved before layout is finalized")
	}
	if err := asm.Apply(Return); err != nil {
		t.Fatal(err)
	}
	out := make([]byte, asm.OutputLength())
	asm.WriteTo(out)
	if !mark.Resolved() {
		t.Fatal("expected offset to resolve once WriteTo has run")
	}
	if mark.Value() != 0 {
		t.Fatalf("offset = %d, want 0", mark.Value())
	}
}
