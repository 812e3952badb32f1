package main

import "testing"

func TestNoopClientFatalsOnAcquire(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected noopClient.AcquireTemporary to panic without a real allocator")
		}
	}()
	var c noopClient
	c.AcquireTemporary(0)
}

func TestNoopClientReleaseAndSaveAreHarmless(t *testing.T) {
	var c noopClient
	c.ReleaseTemporary(RAX)
	c.Save(RAX)
}

func TestMoveViaScratchUsesClientForOversizeConstantOn64BitTarget(t *testing.T) {
	client := newRecordingClient()
	asm := NewAssembler(NewArchitecture(8, SystemV), client)
	c := operandForConstant(Constant{Value: resolved(0x200000001)})
	m := operandForMemory(Memory{Base: RSP, Index: NoRegister, Displacement: 0})
	if err := asm.ApplyBinary(Move, 8, TypeConstant, c, 8, TypeMemory, m); err != nil {
		t.Fatal(err)
	}
	if client.acquired != 1 || client.released != 1 {
		t.Fatalf("acquired=%d released=%d, want 1/1", client.acquired, client.released)
	}
}
