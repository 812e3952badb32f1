package main

// moveRR emits a register-to-register move, choosing the encoding from
// aSize/bSize per spec.md §4.4. On a 32-bit target, an 8-byte value is a
// register pair and is handled as two parallel 4-byte moves over
// (Low,High): the high half moves first when the destination's low register
// is the source's high register, and the halves are exchanged with one
// xchg when the pairs mirror each other, so neither half clobbers a value
// the other still needs.
func moveRR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	ar, br := aOp.Register, bOp.Register

	if a.wordSize == 4 && aSize == 8 && bSize == 8 {
		if ar.High == br.Low {
			if ar.Low == br.High {
				a.code.append1(0x87) // xchg: the pairs are each other's mirror image
				a.code.append1(modrm(3, ar.Low, ar.High))
				return
			}
			moveRR(a, 4, operandFor(Reg(ar.High)), 4, operandFor(Reg(br.High)))
			moveRR(a, 4, operandFor(Reg(ar.Low)), 4, operandFor(Reg(br.Low)))
		} else {
			moveRR(a, 4, operandFor(Reg(ar.Low)), 4, operandFor(Reg(br.Low)))
			moveRR(a, 4, operandFor(Reg(ar.High)), 4, operandFor(Reg(br.High)))
		}
		return
	}

	if ar.Low == br.Low && aSize == bSize {
		return
	}

	traceln("mov a=%d:%d b=%d:%d", aSize, ar.Low, bSize, br.Low)

	switch {
	case aSize == 1 || aSize == 2:
		// In 64-bit mode, movsx/movzx out of an 8-bit source needs a REX
		// prefix to address SIL/DIL/BPL/SPL; always=true requests that even
		// when no other REX bit would be set. maybeRex is a no-op on a
		// 32-bit target, where the planner restricts 1-byte register moves
		// to RAX/RCX/RDX/RBX's legacy low-byte encodings and no REX is ever
		// valid.
		a.maybeRex(bSize, br.Low, NoRegister, ar.Low, true)
		a.code.append1(0x0F)
		if aSize == 1 {
			a.code.append1(0xBE)
		} else {
			a.code.append1(0xBF)
		}
		a.code.append1(modrm(3, ar.Low, br.Low))
	case aSize == 4 && bSize == 8:
		if a.wordSize == 8 {
			a.maybeRex(8, br.Low, NoRegister, ar.Low, false)
			a.code.append1(0x63) // movsxd
			a.code.append1(modrm(3, ar.Low, br.Low))
		} else {
			// 32-on-64: sign-extend into a register pair via cdq
			// (EAX->EDX:EAX), so the planner pins this case's
			// destination to (RAX,RDX).
			moveRR(a, 4, operandFor(Reg(ar.Low)), 4, operandFor(Reg(RAX)))
			a.code.append1(0x99) // cdq
			if br.Low != RAX {
				moveRR(a, 4, operandFor(Reg(RAX)), 4, operandFor(Reg(br.Low)))
			}
			if br.High != RDX {
				moveRR(a, 4, operandFor(Reg(RDX)), 4, operandFor(Reg(br.High)))
			}
		}
	default:
		a.maybeRex(bSize, ar.Low, NoRegister, br.Low, false)
		a.code.append1(0x89)
		a.code.append1(modrm(3, br.Low, ar.Low))
	}
}

// moveCR materializes a constant into a register. On a 32-bit target with
// an 8-byte constant, decomposes into two 32-bit `mov imm32,reg` sequences
// via ShiftMaskPromise halves (spec.md scenario S6).
func moveCR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	br := bOp.Register
	c := aOp.Constant.Value

	if a.wordSize == 4 && bSize == 8 {
		lowC := operandForConstant(Constant{Value: shiftMask(c, 0, 0xFFFFFFFF)})
		highC := operandForConstant(Constant{Value: shiftMask(c, 32, 0xFFFFFFFF)})
		moveCR(a, 4, lowC, 4, operandFor(Reg(br.Low)))
		moveCR(a, 4, highC, 4, operandFor(Reg(br.High)))
		return
	}

	traceln("mov $<const> r%d", br.Low)
	a.maybeRex(bSize, NoRegister, NoRegister, br.Low, false)
	a.code.append1(0xB8 + regCode(br.Low))
	if c.Resolved() {
		if bSize == 8 {
			a.code.append8(uint64(c.Value()))
		} else {
			a.code.append4(uint32(c.Value()))
		}
		return
	}
	immOffset := a.offsetPromise()
	a.code.appendAddress(bSize)
	a.appendImmediateTask(immOffset, c, bSize)
}

// moveMR/moveRM load from / store to memory, with a sign-extending load
// for byte/word sizes (0F BE/BF). On a 32-bit target, an 8-byte value at
// memory is two adjacent 32-bit slots (base,disp) and (base,disp+4).
func moveMR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	m := aOp.Memory
	br := bOp.Register

	if a.wordSize == 4 && aSize == 8 {
		lowM := operandForMemory(Memory{Base: m.Base, Index: m.Index, Scale: m.Scale, Displacement: m.Displacement})
		highM := operandForMemory(Memory{Base: m.Base, Index: m.Index, Scale: m.Scale, Displacement: m.Displacement + 4})
		moveMR(a, 4, lowM, 4, operandFor(Reg(br.Low)))
		moveMR(a, 4, highM, 4, operandFor(Reg(br.High)))
		return
	}

	a.maybeRex(bSize, br.Low, m.Index, m.Base, false)
	switch aSize {
	case 1:
		a.code.append1(0x0F)
		a.code.append1(0xBE)
	case 2:
		a.code.append1(0x0F)
		a.code.append1(0xBF)
	default:
		a.code.append1(0x8B)
	}
	a.modrmSibImm(br.Low, m)
}

func moveRM(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	ar := aOp.Register
	m := bOp.Memory

	if a.wordSize == 4 && bSize == 8 {
		lowM := operandForMemory(Memory{Base: m.Base, Index: m.Index, Scale: m.Scale, Displacement: m.Displacement})
		highM := operandForMemory(Memory{Base: m.Base, Index: m.Index, Scale: m.Scale, Displacement: m.Displacement + 4})
		moveRM(a, 4, operandFor(Reg(ar.Low)), 4, lowM)
		moveRM(a, 4, operandFor(Reg(ar.High)), 4, highM)
		return
	}

	a.maybeRex(aSize, ar.Low, m.Index, m.Base, false)
	a.code.append1(0x89)
	a.modrmSibImm(ar.Low, m)
}

// moveCM stores a constant directly to memory. On a 64-bit target with a
// constant that fits int32, uses the 0xC7 /0 imm32 form; a resolved 64-bit
// constant outside that range is materialized in a scratch register and
// stored from there. On a 32-bit target a 64-bit constant is stored as two
// 32-bit halves, at Displacement and Displacement+4.
func moveCM(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	m := bOp.Memory
	c := aOp.Constant.Value

	if a.wordSize == 4 && bSize == 8 {
		lowM := operandForMemory(Memory{Base: m.Base, Index: m.Index, Scale: m.Scale, Displacement: m.Displacement})
		highM := operandForMemory(Memory{Base: m.Base, Index: m.Index, Scale: m.Scale, Displacement: m.Displacement + 4})
		lowC := operandForConstant(Constant{Value: shiftMask(c, 0, 0xFFFFFFFF)})
		highC := operandForConstant(Constant{Value: shiftMask(c, 32, 0xFFFFFFFF)})
		moveCM(a, 4, lowC, 4, lowM)
		moveCM(a, 4, highC, 4, highM)
		return
	}

	if bSize == 8 && c.Resolved() && !fitsInt32(c.Value()) {
		moveViaScratch(a, aSize, aOp, bSize, bOp, moveCM)
		return
	}

	a.maybeRex(bSize, NoRegister, m.Index, m.Base, false)
	a.code.append1(0xC7)
	a.modrmSibImm(0, m)
	if c.Resolved() {
		a.code.append4(uint32(c.Value()))
		return
	}
	immOffset := a.offsetPromise()
	a.code.append4(0)
	a.appendImmediateTask(immOffset, c, 4)
}

// moveViaScratch spills an oversize constant into a temporary register
// (spec.md §7: "oversize immediate... handled by automatic spill to
// scratch register, never surfaced") and retries the store through it.
func moveViaScratch(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand, store func(*Assembler, int, *Operand, int, *Operand)) {
	tmp := a.client.AcquireTemporary(0)
	defer a.client.ReleaseTemporary(tmp)
	moveCR(a, aSize, aOp, bSize, operandFor(Reg(tmp)))
	moveRM(a, bSize, operandFor(Reg(tmp)), bSize, bOp)
}

// moveAR loads from an absolute address: materialize the address into the
// destination register, then load through it as (base=dst, disp=0).
// Grounded on x86.cpp's moveAR.
func moveAR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	br := bOp.Register
	addrConst := operandForConstant(Constant{Value: aOp.Address.Value})
	moveCR(a, a.wordSize, addrConst, bSize, bOp)
	mem := operandForMemory(Memory{Base: br.Low, Index: NoRegister, Displacement: 0})
	moveMR(a, aSize, mem, bSize, bOp)
}

// moveZRR/moveZMR zero-extend a 16-bit value via 0F B7.
func moveZRR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	ar, br := aOp.Register, bOp.Register
	a.maybeRex(bSize, br.Low, NoRegister, ar.Low, false)
	a.code.append1(0x0F)
	a.code.append1(0xB7)
	a.code.append1(modrm(3, ar.Low, br.Low))
}

func moveZMR(a *Assembler, aSize int, aOp *Operand, bSize int, bOp *Operand) {
	m := aOp.Memory
	br := bOp.Register
	a.maybeRex(bSize, br.Low, m.Index, m.Base, false)
	a.code.append1(0x0F)
	a.code.append1(0xB7)
	a.modrmSibImm(br.Low, m)
}
