package main

// AlignmentPadding records a position, in block-relative terms, where one
// or more NOP bytes must be injected during WriteTo so the instruction
// following the padding point ends on a 4-byte boundary (spec.md §3/§4.1).
// offset is expressed in raw buffer-offset terms, matching the Block's own
// offset bookkeeping.
type AlignmentPadding struct {
	offset int64
	next   *AlignmentPadding
}

// Block is a contiguous region of emitted bytes. offset is its position in
// the assembler's internal (pre-resolution) buffer; start is its final
// position in the destination buffer, unknown until resolveBlocks runs.
type Block struct {
	offset        int64
	size          int64
	start         int64
	resolved      bool
	firstPadding  *AlignmentPadding
	lastPadding   *AlignmentPadding
	next          *Block
}

// addPadding appends a new AlignmentPadding entry in increasing offset
// order, matching x86.cpp's AlignmentPadding constructor which always
// appends to the block current at construction time.
func (b *Block) addPadding(offset int64) {
	p := &AlignmentPadding{offset: offset}
	if b.firstPadding == nil {
		b.firstPadding = p
	} else {
		b.lastPadding.next = p
	}
	b.lastPadding = p
}

// paddingBefore computes, for a position at rawOffset within block b's
// buffer range, the cumulative NOP padding that will have been inserted by
// WriteTo strictly before that position. It is a pure function of
// b.start (mod 4) and the padding list, safe to call repeatedly (spec.md
// invariant: padding(...) is idempotent).
func paddingBefore(b *Block, rawOffset int64) int64 {
	return padding(b.firstPadding, b.start, b.offset, rawOffset)
}

// padding walks the AlignmentPadding list up to and including any entry at
// or before limit, accumulating the minimal NOP count needed so that, after
// each padding point, the running position's last byte lands on a 4-byte
// boundary. Mirrors x86.cpp's free function of the same name exactly.
func padding(list *AlignmentPadding, start, offset, limit int64) int64 {
	var padding int64
	for p := list; p != nil && p.offset <= limit; p = p.next {
		index := p.offset - offset
		for (start+index+padding+1)%4 != 0 {
			padding++
		}
	}
	return padding
}

// totalPadding returns the number of NOP bytes that will be inserted into
// the block for alignment; the block's own size is not included (callers
// add b.size themselves).
func (b *Block) totalPadding() int64 {
	return padding(b.firstPadding, b.start, b.offset, b.offset+b.size)
}
