package main

import "unsafe"

// Promise is a deferred value not necessarily known at the point it's
// referenced: a forward label, an address that depends on final code
// layout, or one 32-bit half of a 64-bit constant. Grounded on x86.cpp's
// Promise/ResolvedPromise/CodePromise/Offset/ShiftMaskPromise hierarchy.
type Promise interface {
	Resolved() bool
	Value() int64
}

// ResolvedPromise wraps a value that's known up front.
type ResolvedPromise struct {
	V int64
}

func resolved(v int64) Promise { return &ResolvedPromise{V: v} }

func (p *ResolvedPromise) Resolved() bool { return true }
func (p *ResolvedPromise) Value() int64   { return p.V }

// CodePromise resolves to an absolute address once the assembler's result
// buffer base is known (WriteTo has been called) and the owning offset has
// been fixed. offset is itself a Promise (typically a blockPromise).
type CodePromise struct {
	asm    *Assembler
	offset Promise
}

func (p *CodePromise) Resolved() bool {
	return p.asm.resultBase != nil && p.offset.Resolved()
}

func (p *CodePromise) Value() int64 {
	if p.asm.resultBase == nil {
		fatalf("CodePromise read before WriteTo")
	}
	base := uintptr(unsafe.Pointer(p.asm.resultBase))
	return int64(base) + p.offset.Value()
}

// blockPromise resolves once its owning Block's final start has been
// assigned during layout resolution. Mirrors x86.cpp's Offset class:
// value() == block.start + (rawOffset - block.offset) + padding(...).
type blockPromise struct {
	asm       *Assembler
	rawOffset int64
	block     *Block
}

func (p *blockPromise) Resolved() bool {
	return p.block.resolved
}

func (p *blockPromise) Value() int64 {
	if !p.block.resolved {
		fatalf("blockPromise read before block resolution")
	}
	pad := paddingBefore(p.block, p.rawOffset)
	return p.block.start + (p.rawOffset - p.block.offset) + pad
}

// offsetPromise returns a Promise for the current end-of-buffer position,
// exposed to callers via Assembler.Offset.
func (a *Assembler) offsetPromise() Promise {
	return &blockPromise{asm: a, rawOffset: int64(a.code.Len()), block: a.lastBlock}
}

// ShiftMaskPromise returns (base.Value() >> shift) & mask. Used to split a
// 64-bit constant into its low/high 32-bit halves when materializing a
// 64-bit value on a 32-bit target (spec.md §3).
type ShiftMaskPromise struct {
	Base  Promise
	Shift uint
	Mask  int64
}

func shiftMask(base Promise, shift uint, mask int64) Promise {
	if base.Resolved() {
		return resolved((base.Value() >> shift) & mask)
	}
	return &ShiftMaskPromise{Base: base, Shift: shift, Mask: mask}
}

func (p *ShiftMaskPromise) Resolved() bool { return p.Base.Resolved() }
func (p *ShiftMaskPromise) Value() int64   { return (p.Base.Value() >> p.Shift) & p.Mask }
