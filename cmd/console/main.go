package main

import (
	"fmt"
	"log"
	"os"

	"github.com/Mayan-101/c85c/pkg/asm"
	"github.com/Mayan-101/c85c/pkg/compiler"
	"github.com/Mayan-101/c85c/pkg/cpu"
)

const maxSteps = 1_000_000

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: console <input.c85> [--show-asm]")
		os.Exit(1)
	}
	filename := os.Args[1]
	showAsm := false
	for _, arg := range os.Args[2:] {
		showAsm = showAsm || arg == "--show-asm"
	}

	sourceBytes, err := os.ReadFile(filename)
	if err != nil {
		log.Fatalf("Failed to read source file: %v", err)
	}

	assembly, _, err := compiler.Compile(string(sourceBytes))
	if err != nil {
		log.Fatalf("Compilation failed: %v", err)
	}

	if showAsm {
		fmt.Println("Generated Assembly:")
		fmt.Print(assembly)
		fmt.Println()
	}

	// The generated program just falls off the end, so cap it with a HLT
	// before assembling the runnable image.
	machineCode, _, err := asm.Assemble(assembly + "HLT;\n")
	if err != nil {
		log.Fatalf("Assembly failed: %v", err)
	}

	vm := cpu.NewCPU()
	if err := vm.Load(machineCode, 0); err != nil {
		log.Fatalf("Load failed: %v", err)
	}
	if err := vm.Run(maxSteps); err != nil {
		log.Fatalf("Execution failed: %v", err)
	}

	fmt.Println("Registers:")
	fmt.Println(" ", vm)
	fmt.Println("Static variables (8000H..800FH):")
	fmt.Print("  ")
	for i := 0; i < 16; i++ {
		fmt.Printf("%02X ", vm.Memory[int(compiler.StaticBase)+i])
	}
	fmt.Println()
}
