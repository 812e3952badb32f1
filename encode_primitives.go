package main

// REX prefix bits (spec.md §4.2, grounded on x86.cpp's REX_W/REX_R/REX_X/REX_B/REX_NONE).
const (
	rexNone uint8 = 0x40
	rexW    uint8 = 0x08
	rexR    uint8 = 0x04
	rexX    uint8 = 0x02
	rexB    uint8 = 0x01
)

func regCode(r int) uint8 { return uint8(r & 7) }

// isExtended reports whether a physical register index needs REX.B/R/X set
// (registers r8..r15, encoding bit 3 set).
func isExtended(r int) bool { return r&8 != 0 }

// maybeRex composes and, if needed, emits a REX prefix. Only meaningful in
// 64-bit mode: on a 32-bit target there is no REX prefix at all, and the
// 0x40-0x4F range instead decodes as INC/DEC r32, so this is a hard no-op
// when a.wordSize != 8 (grounded on x86.cpp's maybeRex, which only touches
// REX.W inside `if(BytesPerWord==8)`). size==8 always forces emission
// (REX.W). always forces emission even when no other bit would be set,
// needed for byte-register access to SIL/DIL/BPL/SPL and for sign-extending
// moves out of an 8/16-bit source register (spec.md §4.2) — both only valid
// in 64-bit mode, so always is likewise moot when a.wordSize != 8.
func (a *Assembler) maybeRex(size int, r, x, b int, always bool) {
	if a.wordSize != 8 {
		return
	}
	var rex uint8 = rexNone
	var any bool
	if size == 8 {
		rex |= rexW
		any = true
	}
	if r != NoRegister && isExtended(r) {
		rex |= rexR
		any = true
	}
	if x != NoRegister && isExtended(x) {
		rex |= rexX
		any = true
	}
	if b != NoRegister && isExtended(b) {
		rex |= rexB
		any = true
	}
	if any || always {
		a.code.append1(rex)
	}
}

// modrm packs mod/reg/rm into a single ModR/M byte (spec.md §4.2).
func modrm(mod uint8, rm, reg int) uint8 {
	return (mod << 6) | (regCode(reg) << 3) | regCode(rm)
}

// sib packs scale/index/base into a single SIB byte.
func sib(scale uint8, index, base int) uint8 {
	return (log2Scale(scale) << 6) | (regCode(index) << 3) | regCode(base)
}

func log2Scale(scale uint8) uint8 {
	switch scale {
	case 1:
		return 0
	case 2:
		return 1
	case 4:
		return 2
	case 8:
		return 3
	default:
		fatalf("invalid SIB scale %d", scale)
		return 0
	}
}

const rsp = 4
const rbp = 5

// modrmSibImm emits ModR/M (and SIB and displacement, if the operand is a
// Memory) addressing reg against m, following the x86 encoding rules in
// spec.md §4.2: mod=00 when disp==0 and base != RBP (RBP requires an
// explicit disp8=0 encoding, since mod=00/rm=101 means RIP-relative); when
// base-low == RSP and there's no index, a SIB byte with scale=0,
// index=RSP, base=RSP must still be emitted (RSP can't be encoded directly
// in the rm field). Those mod rules apply to operands without an index; an
// indexed operand always uses mod=10 with a SIB byte and a 4-byte
// displacement, whatever the displacement's value.
func (a *Assembler) modrmSibImm(reg int, m Memory) {
	if m.Index == NoRegister {
		a.modrmSibImmNoIndex(reg, m)
		return
	}
	a.code.append1(modrm(2, rsp, reg))
	a.code.append1(sib(m.Scale, m.Index, m.Base))
	a.code.append4(uint32(m.Displacement))
}

func (a *Assembler) modrmSibImmNoIndex(reg int, m Memory) {
	base := m.Base
	mod, dispLen := modForDisplacement(base, m.Displacement)

	if base&7 == rsp {
		a.code.append1(modrm(mod, rsp, reg))
		a.code.append1(sib(1, rsp, rsp))
	} else {
		a.code.append1(modrm(mod, base, reg))
	}

	switch dispLen {
	case 0:
	case 1:
		a.code.append1(uint8(int8(m.Displacement)))
	case 4:
		a.code.append4(uint32(m.Displacement))
	}
}

// modForDisplacement picks mod=00/01/10 and the resulting displacement
// field width, per spec.md §4.2. RBP always needs an explicit displacement
// (mod=00/rm=101 is the RIP-relative encoding, not "no displacement").
func modForDisplacement(base int, disp int32) (mod uint8, dispLen int) {
	if disp == 0 && base&7 != rbp {
		return 0, 0
	}
	if disp >= -128 && disp <= 127 {
		return 1, 1
	}
	return 2, 4
}

func fitsInt8(v int64) bool  { return v >= -128 && v <= 127 }
func fitsInt32(v int64) bool { return v >= minInt32 && v <= maxInt32 }

// opcode1/opcode2 append one or two raw opcode bytes.
func (a *Assembler) opcode1(b uint8)      { a.code.append1(b) }
func (a *Assembler) opcode2(b1, b2 uint8) { a.code.append1(b1); a.code.append1(b2) }
