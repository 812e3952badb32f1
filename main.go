package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/xyproto/env/v2"
)

// demo assembles a tiny function: add two registers and return the sum.
// It exists to exercise the public Assembler surface end to end, not as a
// general-purpose tool.
func demo(wordSize int, verbose bool) ([]byte, error) {
	VerboseMode = verbose

	arch := NewArchitecture(wordSize, SystemV)
	asm := NewAssembler(arch, nil)

	a := operandFor(Reg(RDI))
	b := operandFor(Reg(RAX))
	if err := asm.ApplyBinary(Move, wordSize, TypeRegister, a, wordSize, TypeRegister, b); err != nil {
		return nil, err
	}
	c := operandFor(Reg(RSI))
	if err := asm.ApplyTernary(Add, wordSize, TypeRegister, c, wordSize, TypeRegister, b, wordSize, TypeRegister, operandFor(Reg(RAX))); err != nil {
		return nil, err
	}
	if err := asm.Apply(Return); err != nil {
		return nil, err
	}

	out := make([]byte, asm.OutputLength())
	asm.WriteTo(out)
	return out, nil
}

func main() {
	defaultWordSize := env.Int("C67_WORDSIZE")
	if defaultWordSize == 0 {
		defaultWordSize = 8
	}
	wordSize := flag.Int("wordsize", defaultWordSize, "target word size in bytes (4 or 8)")
	verbose := flag.Bool("verbose", env.Bool("C67_VERBOSE"), "trace each emitted instruction to stderr")
	flag.Parse()

	code, err := demo(*wordSize, *verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "assemble:", err)
		os.Exit(1)
	}

	os.Stdout.Write(code)
}
