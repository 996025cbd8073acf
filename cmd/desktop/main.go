package main

import (
	"fmt"
	"image/color"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"github.com/Mayan-101/c85c/pkg/asm"
	"github.com/Mayan-101/c85c/pkg/compiler"
	"github.com/Mayan-101/c85c/pkg/cpu"
)

const (
	screenWidth  = 560
	screenHeight = 320
	lineHeight   = 16
	// stepsPerFrame keeps a runaway program from freezing the UI.
	stepsPerFrame = 1000
)

// Game steps the emulated 8085 and draws its state each frame.
type Game struct {
	vm          *cpu.CPU
	machineCode []byte
	paused      bool
	stepErr     error
}

func (g *Game) reset() {
	g.vm = cpu.NewCPU()
	if err := g.vm.Load(g.machineCode, 0); err != nil {
		log.Fatalf("Load failed: %v", err)
	}
	g.stepErr = nil
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.reset()
	}

	if g.stepErr != nil || g.vm.Halted {
		return nil
	}

	if g.paused {
		if inpututil.IsKeyJustPressed(ebiten.KeyS) {
			g.stepErr = g.vm.Step()
		}
		return nil
	}

	for i := 0; i < stepsPerFrame; i++ {
		if g.vm.Halted {
			break
		}
		if g.stepErr = g.vm.Step(); g.stepErr != nil {
			break
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	face := basicfont.Face7x13
	row := lineHeight

	drawLine := func(format string, args ...any) {
		text.Draw(screen, fmt.Sprintf(format, args...), face, 8, row, color.White)
		row += lineHeight
	}

	drawLine("c85c monitor    [space] pause/resume  [s] step  [r] reset")
	row += lineHeight / 2

	v := g.vm
	drawLine("A=%02X  B=%02X  C=%02X  D=%02X  E=%02X  H=%02X  L=%02X", v.A, v.B, v.C, v.D, v.E, v.H, v.L)
	drawLine("PC=%04X  SP=%04X  BC=%04X  DE=%04X  HL=%04X", v.PC, v.SP, v.BC(), v.DE(), v.HL())
	drawLine("Z=%-5t S=%-5t P=%-5t CY=%-5t AC=%-5t", v.Z, v.S, v.P, v.CY, v.AC)
	row += lineHeight / 2

	drawLine("static variables at %04XH:", compiler.StaticBase)
	base := int(compiler.StaticBase)
	for line := 0; line < 4; line++ {
		offset := line * 8
		s := fmt.Sprintf("%04X:", base+offset)
		for i := 0; i < 8; i++ {
			s += fmt.Sprintf(" %02X", v.Memory[base+offset+i])
		}
		drawLine("%s", s)
	}
	row += lineHeight / 2

	switch {
	case g.stepErr != nil:
		drawLine("fault: %v", g.stepErr)
	case v.Halted:
		drawLine("halted")
	case g.paused:
		drawLine("paused")
	default:
		drawLine("running")
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: desktop <input.c85>")
		os.Exit(1)
	}

	sourceBytes, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to read source file: %v", err)
	}

	assembly, _, err := compiler.Compile(string(sourceBytes))
	if err != nil {
		log.Fatalf("Compilation failed: %v", err)
	}

	machineCode, _, err := asm.Assemble(assembly + "HLT;\n")
	if err != nil {
		log.Fatalf("Assembly failed: %v", err)
	}

	ebiten.SetWindowSize(screenWidth*2, screenHeight*2)
	ebiten.SetWindowTitle("c85c Monitor")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	game := &Game{machineCode: machineCode, paused: true}
	game.reset()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
