package main

import (
	"fmt"
	"os"
)

// VerboseMode gates instruction-trace output to stderr, the same
// package-level toggle the teacher uses (safe_buffer.go, jmp.go) rather
// than a structured logging library: the teacher never imports one for
// this kind of low-level trace, so neither does this package.
var VerboseMode bool

func trace(format string, args ...any) {
	if !VerboseMode {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

func traceln(format string, args ...any) {
	if !VerboseMode {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
