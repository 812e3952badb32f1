package main

// return_ emits a bare RET (spec.md nullary Return).
func return_(a *Assembler) {
	traceln("ret")
	a.code.append1(0xC3)
}

// ignore backs the three memory-barrier nullary operations, no-ops on x86
// (spec.md §1 non-goals: "barriers are no-ops on this ISA").
func ignore(a *Assembler) {}

// unconditional emits a 1-byte opcode (E8 call / E9 jump) followed by a
// 4-byte placeholder displacement and registers an OffsetTask to patch it
// once the target's final address is known. Grounded on x86.cpp's
// unconditional().
func unconditional(a *Assembler, opcodeByte uint8, target Promise) {
	instrStart := a.offsetPromise()
	a.code.append1(opcodeByte)
	a.code.append4(0)
	a.appendOffsetTask(instrStart, target, 5)
}

// conditional emits 0F <cond> followed by a 4-byte placeholder
// displacement, registering a 6-byte OffsetTask. Grounded on x86.cpp's
// conditional().
func conditional(a *Assembler, condByte uint8, target Promise) {
	instrStart := a.offsetPromise()
	a.code.append1(0x0F)
	a.code.append1(condByte)
	a.code.append4(0)
	a.appendOffsetTask(instrStart, target, 6)
}

func callC(a *Assembler, size int, operand *Operand) {
	traceln("call <promise>")
	unconditional(a, 0xE8, operand.Constant.Value)
}

func jumpC(a *Assembler, size int, operand *Operand) {
	traceln("jmp <promise>")
	unconditional(a, 0xE9, operand.Constant.Value)
}

func jumpIfC(cond JumpCondition) unaryEncoder {
	return func(a *Assembler, size int, operand *Operand) {
		conditional(a, conditionByte(cond), operand.Constant.Value)
	}
}

// alignedCallC/alignedJumpC insert an AlignmentPadding marker before the
// 5-byte relative instruction, so the atomic call-site patch spec.md §4.3
// requires lands entirely within one 4-byte-aligned region.
func alignedCallC(a *Assembler, size int, operand *Operand) {
	a.lastBlock.addPadding(a.code.Len())
	callC(a, size, operand)
}

func alignedJumpC(a *Assembler, size int, operand *Operand) {
	a.lastBlock.addPadding(a.code.Len())
	jumpC(a, size, operand)
}

func callR(a *Assembler, size int, operand *Operand) {
	r := operand.Register.Low
	traceln("call r%d", r)
	a.maybeRex(0, NoRegister, NoRegister, r, false)
	a.code.append1(0xFF)
	a.code.append1(modrm(3, r, 2))
}

func jumpR(a *Assembler, size int, operand *Operand) {
	r := operand.Register.Low
	traceln("jmp r%d", r)
	a.maybeRex(0, NoRegister, NoRegister, r, false)
	a.code.append1(0xFF)
	a.code.append1(modrm(3, r, 4))
}

func callM(a *Assembler, size int, operand *Operand) {
	m := operand.Memory
	a.maybeRex(0, NoRegister, m.Index, m.Base, false)
	a.code.append1(0xFF)
	a.modrmSibImm(2, m)
}

func jumpM(a *Assembler, size int, operand *Operand) {
	m := operand.Memory
	a.maybeRex(0, NoRegister, m.Index, m.Base, false)
	a.code.append1(0xFF)
	a.modrmSibImm(4, m)
}

// longCallC/longJumpC materialize an absolute 64-bit target into scratch
// register R10 (REX.W 0xBA + imm64) and then issue a 3-byte indirect
// call/jmp through R10. On a 32-bit target a long call/jump is identical
// to the short relative form; a 32-bit displacement always reaches any
// address in a flat 32-bit address space. Grounded on x86.cpp's
// longCallC/longJumpC (REX.B 0xFF 0xD2 for call, 0xE2 for jump).
func longCallC(a *Assembler, size int, operand *Operand) {
	if a.wordSize == 4 {
		callC(a, size, operand)
		return
	}
	longIndirect(a, operand.Constant.Value, 0xD2)
}

func longJumpC(a *Assembler, size int, operand *Operand) {
	if a.wordSize == 4 {
		jumpC(a, size, operand)
		return
	}
	longIndirect(a, operand.Constant.Value, 0xE2)
}

func longIndirect(a *Assembler, target Promise, modrmByte uint8) {
	a.code.append1(0x49) // REX.WB
	a.code.append1(0xBA) // mov r10, imm64
	immOffset := a.offsetPromise()
	a.code.append8(0)
	a.appendImmediateTask(immOffset, target, 8)

	a.code.append1(0x41) // REX.B
	a.code.append1(0xFF)
	a.code.append1(modrmByte)
}
