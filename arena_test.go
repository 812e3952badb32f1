package main

import "testing"

func TestArenaBumpAllocatesWithinCapacity(t *testing.T) {
	arena := NewArena(2)
	b1 := arena.newBlock(0)
	b2 := arena.newBlock(10)
	if b1 == b2 {
		t.Fatal("expected two distinct blocks")
	}
	if b1.offset != 0 || b2.offset != 10 {
		t.Fatalf("offsets = %d, %d", b1.offset, b2.offset)
	}
}

func TestArenaFallsBackToHeapPastCapacity(t *testing.T) {
	arena := NewArena(1)
	first := arena.newBlock(0)
	second := arena.newBlock(1) // exceeds the pre-sized capacity of 1
	if first.offset != 0 || second.offset != 1 {
		t.Fatal("both blocks should still carry their requested offsets")
	}
}

func TestArenaResetReleasesSlots(t *testing.T) {
	arena := NewArena(4)
	arena.newBlock(0)
	arena.newBlock(1)
	arena.Reset()
	if len(arena.blocks) != 0 {
		t.Fatalf("blocks len = %d after Reset, want 0", len(arena.blocks))
	}
}

func TestAssemblerWiresBlocksThroughArena(t *testing.T) {
	asm := NewAssembler(NewArchitecture(8, SystemV), nil)
	if asm.arena == nil {
		t.Fatal("expected NewAssembler to configure an arena")
	}
	if err := asm.Apply(Return); err != nil {
		t.Fatal(err)
	}
	asm.EndBlock(true)
	if len(asm.arena.blocks) < 2 {
		t.Fatal("expected EndBlock to allocate its new block through the arena")
	}
}
