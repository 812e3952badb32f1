package main

import "testing"

func TestApplyUnsupportedShapeReturnsError(t *testing.T) {
	asm := NewAssembler(NewArchitecture(8, SystemV), nil)
	// MoveZ has no Constant->Register encoder registered.
	c := operandForConstant(Constant{Value: resolved(1)})
	r := operandFor(Reg(RAX))
	err := asm.ApplyBinary(MoveZ, 8, TypeConstant, c, 8, TypeRegister, r)
	if err == nil {
		t.Fatal("expected an error for an unpopulated dispatch cell")
	}
	ae, ok := err.(*AssemblerError)
	if !ok {
		t.Fatalf("got %T, want *AssemblerError", err)
	}
	if ae.Category != CategoryUnsupported {
		t.Fatalf("category = %v, want CategoryUnsupported", ae.Category)
	}
}

func TestApplyTernaryRejectsMismatchedBC(t *testing.T) {
	asm := NewAssembler(NewArchitecture(8, SystemV), nil)
	a := operandFor(Reg(RCX))
	b := operandFor(Reg(RAX))
	c := operandForMemory(Memory{Base: RAX, Index: NoRegister})
	err := asm.ApplyTernary(Add, 8, TypeRegister, a, 8, TypeRegister, b, 8, TypeMemory, c)
	if err == nil {
		t.Fatal("expected an error when b and c operand shapes differ")
	}
}

func TestRecoverAssemblerErrorRepanicsOtherPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected the non-AssemblerError panic to propagate")
		}
		if _, ok := r.(*AssemblerError); ok {
			t.Fatal("a bug panic should not be mistaken for an AssemblerError")
		}
	}()

	func() (err error) {
		defer recoverAssemblerError(&err)
		panic("not an assembler error")
	}()
}
