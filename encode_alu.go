package main

// aluRR emits a register-register ALU instruction: REX, opcode, ModR/M
// with mod=11, reg=src, rm=dst (the "reg op dst" direction spec.md's
// opcode table assumes for 01/29/21/09/31/39).
func aluRR(a *Assembler, size int, opcode uint8, srcLow, dstLow int) {
	a.maybeRex(size, srcLow, NoRegister, dstLow, false)
	a.code.append1(opcode)
	a.code.append1(modrm(3, dstLow, srcLow))
}

// aluCR emits a constant-register ALU instruction choosing the short imm8
// form (opcode 0x83 /ext) when the constant fits int8, else the full imm32
// form (opcode 0x81 /ext). A resolved 8-byte constant that fits neither is
// first moved into a scratch register from the Client and combined
// register-to-register (opcode 0x01 + 8*ext, the RR form of the same
// operation). Values not yet resolved at emission time use the 0x81 form
// and patch its 32-bit field later via ImmediateTask.
func aluCR(a *Assembler, size int, ext uint8, dstLow int, c Promise) {
	if size == 8 && a.wordSize == 8 && c.Resolved() && !fitsInt32(c.Value()) {
		tmp := a.client.AcquireTemporary(0)
		defer a.client.ReleaseTemporary(tmp)
		moveCR(a, 8, operandForConstant(Constant{Value: c}), 8, operandFor(Reg(tmp)))
		aluRR(a, 8, 0x01+ext<<3, tmp, dstLow)
		return
	}
	a.maybeRex(size, NoRegister, NoRegister, dstLow, false)
	if c.Resolved() && fitsInt8(c.Value()) {
		a.code.append1(0x83)
		a.code.append1(modrm(3, dstLow, int(ext)))
		a.code.append1(uint8(int8(c.Value())))
		return
	}
	a.code.append1(0x81)
	a.code.append1(modrm(3, dstLow, int(ext)))
	if c.Resolved() {
		a.code.append4(uint32(c.Value()))
		return
	}
	immOffset := a.offsetPromise()
	a.code.append4(0)
	a.appendImmediateTask(immOffset, c, 4)
}

// aluOpcodes is the shape shared by every two-register-operand ALU encoder:
// (opcode for RR, extension for CR). pairRRLow/pairRRHigh are the RR
// opcodes used for the low/high half of a 64-on-32 decomposition (e.g.
// plain ADD on the low half, ADC on the high half to propagate carry), and
// pairExt is the CR extension used for the high half.
type aluOpcodes struct {
	rr         uint8
	ext        uint8
	pairRRLow  uint8
	pairRRHigh uint8
	pairExt    uint8
}

func ternaryRR(a *Assembler, opcodes aluOpcodes, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	ar, br := aOp.Register, bOp.Register
	if a.wordSize == 4 && bSize == 8 {
		aluRR(a, 4, opcodes.pairRRLow, ar.Low, br.Low)
		aluRR(a, 4, opcodes.pairRRHigh, ar.High, br.High)
		return
	}
	aluRR(a, bSize, opcodes.rr, ar.Low, br.Low)
}

func ternaryCR(a *Assembler, opcodes aluOpcodes, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	br := bOp.Register
	c := aOp.Constant.Value
	if a.wordSize == 4 && bSize == 8 {
		lowC := shiftMask(c, 0, 0xFFFFFFFF)
		highC := shiftMask(c, 32, 0xFFFFFFFF)
		aluCR(a, 4, opcodes.ext, br.Low, lowC)
		aluCR(a, 4, opcodes.pairExt, br.High, highC)
		return
	}
	aluCR(a, bSize, opcodes.ext, br.Low, c)
}

var addOpcodes = aluOpcodes{rr: 0x01, ext: 0, pairRRLow: 0x01, pairRRHigh: 0x11, pairExt: 2}
var subtractOpcodes = aluOpcodes{rr: 0x29, ext: 5, pairRRLow: 0x29, pairRRHigh: 0x19, pairExt: 3}
var andOpcodes = aluOpcodes{rr: 0x21, ext: 4}
var orOpcodes = aluOpcodes{rr: 0x09, ext: 1}
var xorOpcodes = aluOpcodes{rr: 0x31, ext: 6}
var compareOpcodes = aluOpcodes{rr: 0x39, ext: 7}

func addRR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	ternaryRR(a, addOpcodes, aSize, aOp, bSize, bOp)
}
func addCR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	ternaryCR(a, addOpcodes, aSize, aOp, bSize, bOp)
}
func subtractRR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	ternaryRR(a, subtractOpcodes, aSize, aOp, bSize, bOp)
}
func subtractCR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	ternaryCR(a, subtractOpcodes, aSize, aOp, bSize, bOp)
}
func andRR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	ternaryRR(a, andOpcodes, aSize, aOp, bSize, bOp)
}
func andCR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	ternaryCR(a, andOpcodes, aSize, aOp, bSize, bOp)
}
func orRR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	ternaryRR(a, orOpcodes, aSize, aOp, bSize, bOp)
}
func orCR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	ternaryCR(a, orOpcodes, aSize, aOp, bSize, bOp)
}
func xorRR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	ternaryRR(a, xorOpcodes, aSize, aOp, bSize, bOp)
}
func xorCR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	ternaryCR(a, xorOpcodes, aSize, aOp, bSize, bOp)
}

func compareRR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	aluRR(a, bSize, compareOpcodes.rr, aOp.Register.Low, bOp.Register.Low)
}

func compareCR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	aluCR(a, bSize, compareOpcodes.ext, bOp.Register.Low, aOp.Constant.Value)
}

func compareRM(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	m := bOp.Memory
	a.maybeRex(bSize, aOp.Register.Low, m.Index, m.Base, false)
	a.code.append1(0x39)
	a.modrmSibImm(aOp.Register.Low, m)
}

func compareCM(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	m := bOp.Memory
	c := aOp.Constant.Value
	if bSize == 8 && a.wordSize == 8 && c.Resolved() && !fitsInt32(c.Value()) {
		tmp := a.client.AcquireTemporary(0)
		defer a.client.ReleaseTemporary(tmp)
		moveCR(a, 8, aOp, 8, operandFor(Reg(tmp)))
		compareRM(a, 8, operandFor(Reg(tmp)), bSize, bOp)
		return
	}
	a.maybeRex(bSize, NoRegister, m.Index, m.Base, false)
	if c.Resolved() && fitsInt8(c.Value()) {
		a.code.append1(0x83)
		a.modrmSibImm(7, m)
		a.code.append1(uint8(int8(c.Value())))
		return
	}
	a.code.append1(0x81)
	a.modrmSibImm(7, m)
	a.code.append4(uint32(c.Value()))
}

// negateRR negates a value in place. On a 32-bit target with a 64-bit
// value (register pair), negates via NEG low; ADC high,0; NEG high — the
// standard two's-complement-across-a-pair sequence (the ADC folds in the
// borrow NEG low's CF reports before the high half is itself negated),
// matching the planner's requirement that both halves live in RAX/RDX.
func negateRR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	r := bOp.Register
	if a.wordSize == 4 && bSize == 8 {
		a.maybeRex(4, NoRegister, NoRegister, r.Low, false)
		a.code.append1(0xF7)
		a.code.append1(modrm(3, r.Low, 3)) // NEG low

		a.maybeRex(4, NoRegister, NoRegister, r.High, false)
		a.code.append1(0x83)
		a.code.append1(modrm(3, r.High, 2)) // ADC high, 0
		a.code.append1(0)

		a.maybeRex(4, NoRegister, NoRegister, r.High, false)
		a.code.append1(0xF7)
		a.code.append1(modrm(3, r.High, 3)) // NEG high
		return
	}
	a.maybeRex(bSize, NoRegister, NoRegister, r.Low, false)
	a.code.append1(0xF7)
	a.code.append1(modrm(3, r.Low, 3))
}

// multiplyRR emits signed multiply. 0F AF takes "reg *= rm", matching the
// binary table's (a,b) -> b = a*b contract. On a 32-bit target multiplying
// a 64-bit pair, there's no single instruction: fall back to the classic
// three-partial-product sequence through RAX:EDX (planner keeps operand-a
// out of RAX/RDX and pins operand-b's high half to RDX so this sequence
// never clobbers a live value silently).
func multiplyRR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	ar, br := aOp.Register, bOp.Register
	if a.wordSize == 4 && bSize == 8 {
		// b = a * b, both 64-bit pairs. Classic partial-product sequence:
		// high = (a.low * b.high) + (a.high * b.low) + high32(a.low * b.low)
		// low  = low32(a.low * b.low)
		// The planner keeps a out of RAX/RDX and pins b's high half to RDX,
		// so RAX/RDX are always free scratch space here.
		a.client.Save(RAX)
		a.client.Save(RDX)
		tmp := a.client.AcquireTemporary(0)

		moveRR(a, 4, operandFor(Reg(br.High)), 4, operandFor(Reg(RAX)))
		mulUnsignedRAX(a, ar.Low)
		moveRR(a, 4, operandFor(Reg(RAX)), 4, operandFor(Reg(tmp)))

		moveRR(a, 4, operandFor(Reg(br.Low)), 4, operandFor(Reg(RAX)))
		mulUnsignedRAX(a, ar.High)
		addRR(a, 4, operandFor(Reg(RAX)), 4, operandFor(Reg(tmp)))

		moveRR(a, 4, operandFor(Reg(br.Low)), 4, operandFor(Reg(RAX)))
		mulUnsignedRAX(a, ar.Low)
		addRR(a, 4, operandFor(Reg(tmp)), 4, operandFor(Reg(RDX)))

		a.client.ReleaseTemporary(tmp)
		moveRR(a, 4, operandFor(Reg(RAX)), 4, operandFor(Reg(br.Low)))
		moveRR(a, 4, operandFor(Reg(RDX)), 4, operandFor(Reg(br.High)))
		return
	}
	a.maybeRex(bSize, br.Low, NoRegister, ar.Low, false)
	a.code.append1(0x0F)
	a.code.append1(0xAF)
	a.code.append1(modrm(3, ar.Low, br.Low))
}

// mulUnsignedRAX emits `mul src` (F7 /4): RDX:RAX = RAX * src, unsigned.
func mulUnsignedRAX(a *Assembler, srcLow int) {
	a.maybeRex(4, NoRegister, NoRegister, srcLow, false)
	a.code.append1(0xF7)
	a.code.append1(modrm(3, srcLow, 4))
}

// multiplyCR uses the imm8 (0x6B) or imm32 (0x69) three-operand IMUL
// immediate form: dst = dst * imm. A resolved 8-byte constant outside the
// int32 range is first moved into a scratch register and multiplied
// register-to-register.
func multiplyCR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	br := bOp.Register
	c := aOp.Constant.Value
	if bSize == 8 && a.wordSize == 8 && c.Resolved() && !fitsInt32(c.Value()) {
		tmp := a.client.AcquireTemporary(0)
		defer a.client.ReleaseTemporary(tmp)
		moveCR(a, 8, aOp, 8, operandFor(Reg(tmp)))
		multiplyRR(a, 8, operandFor(Reg(tmp)), bSize, bOp)
		return
	}
	a.maybeRex(bSize, br.Low, NoRegister, br.Low, false)
	if c.Resolved() && fitsInt8(c.Value()) {
		a.code.append1(0x6B)
		a.code.append1(modrm(3, br.Low, br.Low))
		a.code.append1(uint8(int8(c.Value())))
		return
	}
	a.code.append1(0x69)
	a.code.append1(modrm(3, br.Low, br.Low))
	a.code.append4(uint32(c.Value()))
}

// divideRR/remainderRR: dividend in RAX, CDQ/CQO to sign-extend into RDX,
// IDIV the divisor register. remainderRR additionally moves RDX (the
// remainder) into the destination. The planner keeps operand-b pinned to
// RAX and operand-a out of RAX/RDX so these clobbers are always safe.
func divideRR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	if a.wordSize == 4 && bSize == 8 {
		unsupportedf("64-bit divide/remainder on a 32-bit target has no inline encoding")
	}
	a.client.Save(RDX)
	cdqOrCqo(a, bSize)
	a.maybeRex(bSize, NoRegister, NoRegister, aOp.Register.Low, false)
	a.code.append1(0xF7)
	a.code.append1(modrm(3, aOp.Register.Low, 7)) // idiv
}

func remainderRR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	divideRR(a, aSize, aOp, bSize, bOp)
	moveRR(a, bSize, operandFor(Reg(RDX)), bSize, bOp)
}

func cdqOrCqo(a *Assembler, size int) {
	a.maybeRex(size, NoRegister, NoRegister, NoRegister, false)
	a.code.append1(0x99)
}

// doShiftRR emits a shift whose count lives in RCX (opcode D3 /ext): the
// planner requires this for any non-immediate shift count.
func doShiftRR(a *Assembler, ext uint8, size int, dst int) {
	if a.wordSize == 4 && size == 8 {
		unsupportedf("64-bit shift on a 32-bit target has no inline encoding")
	}
	a.maybeRex(size, NoRegister, NoRegister, dst, false)
	a.code.append1(0xD3)
	a.code.append1(modrm(3, dst, int(ext)))
}

// doShiftCR emits a shift by immediate count: D1 /ext for a count of
// exactly 1, else C1 /ext imm8.
func doShiftCR(a *Assembler, ext uint8, size int, dst int, count Promise) {
	if a.wordSize == 4 && size == 8 {
		unsupportedf("64-bit shift on a 32-bit target has no inline encoding")
	}
	a.maybeRex(size, NoRegister, NoRegister, dst, false)
	if count.Resolved() && count.Value() == 1 {
		a.code.append1(0xD1)
		a.code.append1(modrm(3, dst, int(ext)))
		return
	}
	a.code.append1(0xC1)
	a.code.append1(modrm(3, dst, int(ext)))
	a.code.append1(uint8(count.Value()))
}

// shiftLeftRR/shiftLeftCR and their Right/UnsignedRight counterparts only
// handle a value operand that fits in one register; a 64-bit shift on a
// 32-bit target is flagged Thunk by PlanTernary, and doShiftRR/doShiftCR
// abort with CategoryUnsupported if one is passed in anyway.
func shiftLeftRR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	doShiftRR(a, 4, bSize, bOp.Register.Low)
}
func shiftLeftCR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	doShiftCR(a, 4, bSize, bOp.Register.Low, aOp.Constant.Value)
}
func shiftRightRR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	doShiftRR(a, 7, bSize, bOp.Register.Low)
}
func shiftRightCR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	doShiftCR(a, 7, bSize, bOp.Register.Low, aOp.Constant.Value)
}
func unsignedShiftRightRR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	doShiftRR(a, 5, bSize, bOp.Register.Low)
}
func unsignedShiftRightCR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	doShiftCR(a, 5, bSize, bOp.Register.Low, aOp.Constant.Value)
}

// longCompareRR/longCompareCR implement the three-way compare spec.md
// describes: result (-1/0/+1) is materialized in the destination register
// rather than left in the flags, via a branch-and-move chain whose forward
// jumps are local to the current (unresolved) block and therefore patched
// directly with codeBuffer.set rather than through a Task. On a 32-bit
// target with an 8-byte operand there is no single CMP wide enough to
// compare the whole pair, so the high halves are compared first (signed
// jl/jg) and, only when they're equal, the low halves are compared too
// (unsigned ja/jb) to resolve the tri-state across the full 64 bits.
// Grounded on x86.cpp's longCompare, which takes the identical two-path
// shape keyed on BytesPerWord.
func longCompareRR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	ar, br := aOp.Register, bOp.Register
	if a.wordSize == 4 && bSize == 8 {
		longComparePair(a, br.Low,
			func() { aluRR(a, 4, compareOpcodes.rr, ar.High, br.High) },
			func() { aluRR(a, 4, compareOpcodes.rr, ar.Low, br.Low) },
		)
		return
	}
	longCompare(a, bSize, ar.Low, br.Low)
}

func longCompareCR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	br := bOp.Register

	if a.wordSize == 4 && bSize == 8 {
		tmpLow := a.client.AcquireTemporary(0)
		tmpHigh := a.client.AcquireTemporary(0)
		defer a.client.ReleaseTemporary(tmpLow)
		defer a.client.ReleaseTemporary(tmpHigh)
		moveCR(a, aSize, aOp, bSize, operandFor(RegPair(tmpLow, tmpHigh)))
		longComparePair(a, br.Low,
			func() { aluRR(a, 4, compareOpcodes.rr, tmpHigh, br.High) },
			func() { aluRR(a, 4, compareOpcodes.rr, tmpLow, br.Low) },
		)
		return
	}

	tmp := a.client.AcquireTemporary(0)
	defer a.client.ReleaseTemporary(tmp)
	moveCR(a, aSize, aOp, bSize, operandFor(Reg(tmp)))
	longCompare(a, bSize, tmp, br.Low)
}

func longCompare(a *Assembler, size int, aLow, bLow int) {
	aluRR(a, size, compareOpcodes.rr, aLow, bLow)

	jlPatch := a.emitShortJump(0x7C) // jl
	jgPatch := a.emitShortJump(0x7F) // jg

	moveCR(a, 4, operandForConstant(Constant{Value: resolved(0)}), 4, operandFor(Reg(bLow)))
	jmpDone := a.emitShortJump(0xEB) // jmp

	a.patchShortJump(jlPatch)
	moveCR(a, 4, operandForConstant(Constant{Value: resolved(-1)}), 4, operandFor(Reg(bLow)))
	jmpDone2 := a.emitShortJump(0xEB)

	a.patchShortJump(jgPatch)
	moveCR(a, 4, operandForConstant(Constant{Value: resolved(1)}), 4, operandFor(Reg(bLow)))

	a.patchShortJump(jmpDone)
	a.patchShortJump(jmpDone2)
}

// longComparePair is the 32-bit-target counterpart of longCompare: compareHigh
// resolves the tri-state immediately unless the high halves are equal, in
// which case compareLow (unsigned) breaks the tie.
func longComparePair(a *Assembler, bLow int, compareHigh, compareLow func()) {
	compareHigh()

	jlPatch := a.emitShortJump(0x7C) // jl
	jgPatch := a.emitShortJump(0x7F) // jg

	compareLow()

	jbPatch := a.emitShortJump(0x72) // jb (unsigned less)
	jaPatch := a.emitShortJump(0x77) // ja (unsigned greater)

	moveCR(a, 4, operandForConstant(Constant{Value: resolved(0)}), 4, operandFor(Reg(bLow)))
	jmpDone := a.emitShortJump(0xEB) // jmp

	a.patchShortJump(jlPatch)
	a.patchShortJump(jbPatch)
	moveCR(a, 4, operandForConstant(Constant{Value: resolved(-1)}), 4, operandFor(Reg(bLow)))
	jmpDone2 := a.emitShortJump(0xEB)

	a.patchShortJump(jgPatch)
	a.patchShortJump(jaPatch)
	moveCR(a, 4, operandForConstant(Constant{Value: resolved(1)}), 4, operandFor(Reg(bLow)))

	a.patchShortJump(jmpDone)
	a.patchShortJump(jmpDone2)
}

// emitShortJump emits a 2-byte short jump (opcode + 1-byte placeholder
// displacement) and returns the buffer offset of the displacement byte,
// for patchShortJump to fill in once the jump's target position is known.
func (a *Assembler) emitShortJump(opcode uint8) int64 {
	a.code.append1(opcode)
	pos := a.code.Len()
	a.code.append1(0)
	return pos
}

func (a *Assembler) patchShortJump(dispOffset int64) {
	target := a.code.Len()
	disp := target - (dispOffset + 1)
	if !fitsInt8(disp) {
		fatalf("longCompare: internal short jump out of int8 range")
	}
	a.code.set(dispOffset, uint32(uint8(int8(disp))), 1)
}
