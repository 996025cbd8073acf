package compiler

import (
	"fmt"

	"github.com/Mayan-101/c85c/pkg/asm"
)

// Compile runs the whole pipeline on one source text: lex, parse, generate,
// then assemble the generated text into an 8085 machine-code image.
// The assembly text is returned alongside the image so callers can show it.
func Compile(src string) (string, []byte, error) {
	tokens, err := Lex(src)
	if err != nil {
		return "", nil, fmt.Errorf("lex error: %w", err)
	}

	stmts, err := Parse(tokens, src)
	if err != nil {
		return "", nil, fmt.Errorf("parse error: %w", err)
	}

	assembly := Generate(stmts)

	machineCode, _, err := asm.Assemble(assembly)
	if err != nil {
		return assembly, nil, fmt.Errorf("assembly error: %w", err)
	}

	return assembly, machineCode, nil
}
