package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Mayan-101/c85c/pkg/asm"
	"github.com/Mayan-101/c85c/pkg/compiler"
)

func main() {
	dump := flag.Bool("dump", false, "print tokens and AST")
	bin := flag.Bool("bin", false, "also write the assembled machine-code image")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: c85c [-dump] [-bin] <input.c85>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	inputPath := flag.Arg(0)

	data, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read error:", err)
		os.Exit(1)
	}
	src := string(data)

	tokens, err := compiler.Lex(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lex error:", err)
		os.Exit(1)
	}

	if *dump {
		fmt.Printf("Tokens (%d)\n", len(tokens))
		for _, tok := range tokens {
			fmt.Println(" ", tok)
		}
		fmt.Println()
	}

	stmts, err := compiler.Parse(tokens, src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse error:", err)
		os.Exit(1)
	}

	if *dump {
		fmt.Println("AST")
		for _, s := range stmts {
			fmt.Println(" ", s)
		}
		fmt.Println()
	}

	assembly := compiler.Generate(stmts)

	asmPath := withExtension(inputPath, ".asm")
	if err := os.WriteFile(asmPath, []byte(assembly), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "write error:", err)
		os.Exit(1)
	}
	fmt.Println("Compilation successful! Output written to", asmPath)

	if *bin {
		machineCode, _, err := asm.Assemble(assembly)
		if err != nil {
			fmt.Fprintln(os.Stderr, "assembly error:", err)
			os.Exit(1)
		}
		binPath := withExtension(inputPath, ".bin")
		if err := os.WriteFile(binPath, machineCode, 0o644); err != nil {
			fmt.Fprintln(os.Stderr, "write error:", err)
			os.Exit(1)
		}
		fmt.Println("Machine code written to", binPath)
	}
}

// withExtension swaps the path's extension for ext.
func withExtension(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
