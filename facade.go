package main

// Assembler is the top-level façade spec.md §6 describes: it owns the
// code buffer, the block list, the pending task list, and exposes Apply /
// WriteTo / EndBlock / frame helpers to the caller. One Assembler
// processes exactly one compilation unit.
type Assembler struct {
	wordSize int
	arch     *Architecture
	client   Client

	code       codeBuffer
	arena      *Arena
	firstBlock *Block
	lastBlock  *Block
	tasks      []Task
	resultBase *byte
}

// NewAssembler creates an Assembler parameterized on WordSize at
// construction time (spec.md §9: "parameterize core on WordSize{4,8} at
// construction time, not conditional compilation"), so one binary can
// target either i386 or x86-64.
func NewAssembler(arch *Architecture, client Client) *Assembler {
	if client == nil {
		client = noopClient{}
	}
	a := &Assembler{
		wordSize: arch.WordSize,
		arch:     arch,
		client:   client,
		arena:    NewArena(4),
	}
	a.lastBlock = a.arena.newBlock(0)
	a.firstBlock = a.lastBlock
	return a
}

func (a *Assembler) Architecture() *Architecture { return a.arch }

// Apply dispatches a nullary Operation. Recovers any AssemblerError raised
// during encoding and returns it as a normal error. Every exported
// Assembler method (the Apply family and the frame helpers) recovers the
// same way, as described in SPEC_FULL.md §7.
func (a *Assembler) Apply(op Operation) (err error) {
	defer recoverAssemblerError(&err)
	a.applyNullary(op)
	return nil
}

// ApplyUnary dispatches a UnaryOperation over one typed operand.
func (a *Assembler) ApplyUnary(op UnaryOperation, size int, aType OperandType, operand *Operand) (err error) {
	defer recoverAssemblerError(&err)
	a.applyUnary(op, size, aType, operand)
	return nil
}

// ApplyBinary dispatches a BinaryOperation over two typed operands.
func (a *Assembler) ApplyBinary(op BinaryOperation, aSize int, aType OperandType, a1 *Operand, bSize int, bType OperandType, b *Operand) (err error) {
	defer recoverAssemblerError(&err)
	a.applyBinary(int(op), aSize, aType, a1, bSize, bType, b)
	return nil
}

// ApplyTernary dispatches a TernaryOperation over three operands. The
// third operand must match the second in size and type (spec.md §3) and
// is otherwise unused: ternary ops route through the binary dispatch
// table, the destination being implicit in operand b.
func (a *Assembler) ApplyTernary(op TernaryOperation, aSize int, aType OperandType, a1 *Operand, bSize int, bType OperandType, b *Operand, cSize int, cType OperandType, c *Operand) (err error) {
	defer recoverAssemblerError(&err)
	if bSize != cSize || bType != cType {
		fatalf("ternary operand b/c must match in size and type")
	}
	a.applyBinary(int(BinaryOperationCount)+int(op), aSize, aType, a1, bSize, bType, b)
	return nil
}

// Offset returns a Promise resolving to the current end-of-buffer
// position once block layout is resolved.
func (a *Assembler) Offset() Promise {
	return a.offsetPromise()
}

// EndBlock closes the current block, recording its size, and optionally
// opens a new one starting at the current buffer position. Returns the
// closed Block.
func (a *Assembler) EndBlock(startNew bool) *Block {
	b := a.lastBlock
	b.size = a.code.Len() - b.offset
	if startNew {
		a.lastBlock = a.arena.newBlock(a.code.Len())
		b.next = a.lastBlock
	} else {
		a.lastBlock = nil
	}
	return b
}

// Length returns the number of bytes emitted so far, before any alignment
// padding WriteTo will insert.
func (a *Assembler) Length() int64 {
	return a.code.Len()
}

// resolveBlocks first records the size of the block still open (if any),
// then assigns each block's final start in sequence: the next
// block's start is the previous block's start plus its size plus whatever
// NOP padding its AlignmentPadding list requires (spec.md §4.1).
func (a *Assembler) resolveBlocks() {
	if a.lastBlock != nil {
		a.lastBlock.size = a.code.Len() - a.lastBlock.offset
	}
	var pos int64
	for b := a.firstBlock; b != nil; b = b.next {
		b.start = pos
		b.resolved = true
		pos += b.size + b.totalPadding()
	}
}

// WriteTo copies every block into dst with alignment NOPs interleaved,
// then runs every pending Task. dst must be at least Length()+total
// padding bytes long; callers determine the required length by summing
// block sizes and padding themselves, or by over-allocating and trimming.
func (a *Assembler) WriteTo(dst []byte) {
	a.resolveBlocks()
	if len(dst) > 0 {
		a.resultBase = &dst[0]
	}

	src := a.code.bytes()
	for b := a.firstBlock; b != nil; b = b.next {
		var index int64
		var padAccum int64
		for p := b.firstPadding; p != nil; p = p.next {
			size := p.offset - b.offset - index
			copy(dst[b.start+index+padAccum:], src[b.offset+index:b.offset+index+size])
			index += size
			for (b.start+index+padAccum+1)%4 != 0 {
				dst[b.start+index+padAccum] = 0x90
				padAccum++
			}
		}
		copy(dst[b.start+index+padAccum:], src[b.offset+index:b.offset+b.size])
	}

	for _, t := range a.tasks {
		t.run(dst)
	}
}

// OutputLength returns the total length WriteTo's destination buffer must
// have: the sum of every block's size plus the alignment padding it needs.
func (a *Assembler) OutputLength() int64 {
	a.resolveBlocks()
	if a.firstBlock == nil {
		return 0
	}
	last := a.firstBlock
	for last.next != nil {
		last = last.next
	}
	return last.start + last.size + last.totalPadding()
}

// Dispose releases the assembler's buffer. spec.md §5: "Code buffer owns
// its bytes, must be disposed explicitly." Go's GC reclaims the backing
// array once the Assembler is unreferenced, but Dispose makes reuse of an
// Assembler value after this point a documented error rather than a silent
// possibility, matching the teacher's explicit-lifecycle idiom in
// SafeBuffer.Commit.
func (a *Assembler) Dispose() {
	a.code = codeBuffer{}
	a.tasks = nil
	a.firstBlock = nil
	a.lastBlock = nil
	a.arena.Reset()
}
