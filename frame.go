package main

// pushR/popR are plain internal helpers the frame prologue/epilogue
// sequences below call directly; they are not part of the op dispatch
// tables (spec.md's Operation enum has no Push/Pop) but are exactly the
// primitives x86.cpp's MyAssembler methods use to build them. On a
// 32-bit target, pushing/popping a 64-bit value pushes/pops each half in
// turn, high half first on push so low ends up on top (mirroring the
// order a native 64-bit push would leave in memory), reversed on pop.
func pushR(a *Assembler, size int, r Register) {
	if a.wordSize == 4 && size == 8 {
		pushR(a, 4, Reg(r.High))
		pushR(a, 4, Reg(r.Low))
		return
	}
	a.maybeRex(0, NoRegister, NoRegister, r.Low, false)
	a.code.append1(0x50 + regCode(r.Low))
}

func popR(a *Assembler, size int, r Register) {
	if a.wordSize == 4 && size == 8 {
		popR(a, 4, Reg(r.Low))
		popR(a, 4, Reg(r.High))
		return
	}
	a.maybeRex(0, NoRegister, NoRegister, r.Low, false)
	a.code.append1(0x58 + regCode(r.Low))
}

func popM(a *Assembler, size int, m Memory) {
	if a.wordSize == 4 && size == 8 {
		popM(a, 4, Memory{Base: m.Base, Index: m.Index, Scale: m.Scale, Displacement: m.Displacement})
		popM(a, 4, Memory{Base: m.Base, Index: m.Index, Scale: m.Scale, Displacement: m.Displacement + 4})
		return
	}
	a.maybeRex(0, NoRegister, m.Index, m.Base, false)
	a.code.append1(0x8F)
	a.modrmSibImm(0, m)
}

// AllocateFrame reserves footprint words on the stack for a new frame,
// pushing the caller's RBP and setting RBP = RSP per a standard
// frame-pointer prologue (spec.md §6).
func (a *Assembler) AllocateFrame(footprint int) (err error) {
	defer recoverAssemblerError(&err)
	pushR(a, a.wordSize, Reg(RBP))
	moveRR(a, a.wordSize, operandFor(Reg(RSP)), a.wordSize, operandFor(Reg(RBP)))
	a.adjustFrame(footprint)
	return nil
}

// AdjustFrame grows or shrinks the current frame by footprint words
// without touching the saved RBP/return-address pair.
func (a *Assembler) AdjustFrame(footprint int) (err error) {
	defer recoverAssemblerError(&err)
	a.adjustFrame(footprint)
	return nil
}

func (a *Assembler) adjustFrame(footprint int) {
	if footprint == 0 {
		return
	}
	c := operandForConstant(Constant{Value: resolved(int64(footprint * a.wordSize))})
	subtractCR(a, a.wordSize, c, a.wordSize, operandFor(Reg(RSP)))
}

// PopFrame restores RSP from RBP and pops the saved RBP, the mirror image
// of AllocateFrame.
func (a *Assembler) PopFrame() (err error) {
	defer recoverAssemblerError(&err)
	a.popFrame()
	return nil
}

func (a *Assembler) popFrame() {
	moveRR(a, a.wordSize, operandFor(Reg(RBP)), a.wordSize, operandFor(Reg(RSP)))
	popR(a, a.wordSize, Reg(RBP))
}

// SaveFrame stores the current RSP and RBP into the two given memory
// offsets from the thread register (RBX), letting a collector or
// exception unwinder later locate this frame.
func (a *Assembler) SaveFrame(stackOffset, baseOffset int32) (err error) {
	defer recoverAssemblerError(&err)
	thread := Reg(RBX)
	moveRM(a, a.wordSize, operandFor(Reg(RSP)), a.wordSize,
		operandForMemory(Memory{Base: thread.Low, Index: NoRegister, Displacement: stackOffset}))
	moveRM(a, a.wordSize, operandFor(Reg(RBP)), a.wordSize,
		operandForMemory(Memory{Base: thread.Low, Index: NoRegister, Displacement: baseOffset}))
	return nil
}

// PushFrame pushes the arguments onto the stack from last to first, so that
// args[0] ends up on top of the stack; used to build
// an outgoing call's stack-passed argument area; argument registers are
// the caller's responsibility to load separately via ApplyBinary(Move,...).
func (a *Assembler) PushFrame(args []Operand, sizes []int) (err error) {
	defer recoverAssemblerError(&err)
	for i := len(args) - 1; i >= 0; i-- {
		if sizes[i] == a.wordSize {
			pushR(a, sizes[i], args[i].Register)
		} else {
			tmp := a.client.AcquireTemporary(0)
			moveRR(a, sizes[i], &args[i], a.wordSize, operandFor(Reg(tmp)))
			pushR(a, a.wordSize, Reg(tmp))
			a.client.ReleaseTemporary(tmp)
		}
	}
	return nil
}

// PopFrameAndPopArgumentsAndReturn pops the current frame, discards
// argumentFootprint words of stack-passed arguments, and returns.
// Grounded on x86.cpp's popFrameAndPopArgumentsAndReturn: when
// argumentFootprint exceeds the stack-alignment requirement the return
// happens via an explicit pop-adjust-jump sequence instead of a plain RET,
// so the caller's stack is corrected before control transfers.
func (a *Assembler) PopFrameAndPopArgumentsAndReturn(argumentFootprint int, stackAlignmentWords int) (err error) {
	defer recoverAssemblerError(&err)
	a.popFrame()

	if argumentFootprint > stackAlignmentWords {
		retAddr := Reg(RCX)
		popR(a, a.wordSize, retAddr)
		adjustment := operandForConstant(Constant{Value: resolved(int64((argumentFootprint - stackAlignmentWords) * a.wordSize))})
		addCR(a, a.wordSize, adjustment, a.wordSize, operandFor(Reg(RSP)))
		jumpR(a, a.wordSize, operandFor(retAddr))
		return nil
	}
	return_(a)
	return nil
}

// PopFrameAndUpdateStackAndReturn pops the current frame, loads a new
// stack pointer from a thread-local slot, and jumps to the saved return
// address through RCX (used for fiber/coroutine stack switches).
func (a *Assembler) PopFrameAndUpdateStackAndReturn(stackOffsetFromThread int32) (err error) {
	defer recoverAssemblerError(&err)
	a.popFrame()

	retAddr := Reg(RCX)
	popR(a, a.wordSize, retAddr)

	thread := Reg(RBX)
	stackSrc := operandForMemory(Memory{Base: thread.Low, Index: NoRegister, Displacement: stackOffsetFromThread})
	moveMR(a, a.wordSize, stackSrc, a.wordSize, operandFor(Reg(RSP)))

	jumpR(a, a.wordSize, operandFor(retAddr))
	return nil
}

// PopFrameForTailCall spices the current frame for a tail call: shifts the
// return address and saved frame pointer down the stack by offset words so
// the tail-called function inherits this frame's caller, optionally
// substituting surrogate registers already holding the values to splice
// in (used when the return address/frame pointer are already in
// registers rather than needing a round trip through memory). With
// offset == 0 this degenerates to a plain PopFrame. Grounded on x86.cpp's
// popFrameForTailCall.
func (a *Assembler) PopFrameForTailCall(footprint, offset int, returnAddressSurrogate, framePointerSurrogate int) (err error) {
	defer recoverAssemblerError(&err)
	if offset == 0 {
		a.popFrame()
		return nil
	}

	tmp := a.client.AcquireTemporary(0)

	retSrc := operandForMemory(Memory{Base: RSP, Index: NoRegister, Displacement: int32((footprint + 1) * a.wordSize)})
	moveMR(a, a.wordSize, retSrc, a.wordSize, operandFor(Reg(tmp)))
	retDst := operandForMemory(Memory{Base: RSP, Index: NoRegister, Displacement: int32((footprint - offset + 1) * a.wordSize)})
	moveRM(a, a.wordSize, operandFor(Reg(tmp)), a.wordSize, retDst)

	a.client.ReleaseTemporary(tmp)

	baseSrc := operandForMemory(Memory{Base: RSP, Index: NoRegister, Displacement: int32(footprint * a.wordSize)})
	moveMR(a, a.wordSize, baseSrc, a.wordSize, operandFor(Reg(RBP)))

	adjustment := operandForConstant(Constant{Value: resolved(int64((footprint - offset + 1) * a.wordSize))})
	addCR(a, a.wordSize, adjustment, a.wordSize, operandFor(Reg(RSP)))

	if returnAddressSurrogate != NoRegister {
		dst := operandForMemory(Memory{Base: RSP, Index: NoRegister, Displacement: int32(offset * a.wordSize)})
		moveRM(a, a.wordSize, operandFor(Reg(returnAddressSurrogate)), a.wordSize, dst)
	}
	if framePointerSurrogate != NoRegister {
		dst := operandForMemory(Memory{Base: RSP, Index: NoRegister, Displacement: int32((offset - 1) * a.wordSize)})
		moveRM(a, a.wordSize, operandFor(Reg(framePointerSurrogate)), a.wordSize, dst)
	}
	return nil
}
