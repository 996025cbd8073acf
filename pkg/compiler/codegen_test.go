package compiler

import (
	"strings"
	"testing"
)

// assertContains checks if the generated code contains the expected substring.
func assertContains(t *testing.T, code, expected string) {
	t.Helper()
	if !strings.Contains(code, expected) {
		t.Errorf("Expected code to contain %q, but it didn't.\nCode:\n%s", expected, code)
	}
}

// generateSource runs the whole front half of the pipeline and returns the
// assembly text.
func generateSource(t *testing.T, src string) string {
	t.Helper()
	stmts, err := parseSource(t, src)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	return Generate(stmts)
}

func TestGenerate_ExactOutput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Move Immediate",
			input: "main{ reg C = 0x08; }",
			want:  "MVI C,08H;\n",
		},
		{
			name:  "Immediate Digits Uppercased Not Padded",
			input: "main{ reg A = 0xab; }",
			want:  "MVI A,ABH;\n",
		},
		{
			name:  "Malloc Becomes LXI",
			input: "main{ reg DE = malloc(0x9000); }",
			want:  "LXI DE,9000H;\n",
		},
		{
			name:  "Static 8 Bit Bound To Accumulator",
			input: "main{ counter = 0x06; }",
			want:  "MVI A,06H;\nSTA 8000H;\n",
		},
		{
			name:  "Static 8 Bit Bound Past Accumulator",
			input: "main{ x = 0x01; y = 0x02; }",
			want:  "MVI A,01H;\nSTA 8000H;\nMVI A,02H;\nSTA 8001H;\nMOV B,A;\n",
		},
		{
			name:  "Static 16 Bit Stages Through HL",
			input: "main{ big = 0x1234; }",
			want:  "LXI H,1234H;\nSHLD 8000H;\nMOV A,L;\n",
		},
		{
			name:  "Binary Op On Accumulator",
			input: "main{ A + B; }",
			want:  "ADD B;\n",
		},
		{
			name:  "Binary Op Shuffles Through Accumulator",
			input: "main{ C - B; }",
			want:  "MOV A,C;\nSUB B;\nMOV C,A;\n",
		},
		{
			name:  "Logical Ops",
			input: "main{ A & B; A | B; A ^ B; }",
			want:  "ANA B;\nORA B;\nXRA B;\n",
		},
		{
			name:  "Pointer Increment And Decrement",
			input: "main{ HL++; SP--; }",
			want:  "INX HL;\nDCX SP;\n",
		},
		{
			name:  "If Equal",
			input: "main{ if(C == D){ HL++; } }",
			want:  "MOV A,C;\nCMP D;\nJNZ SKIP_0;\nINX HL;\nSKIP_0:\n",
		},
		{
			name:  "If Greater",
			input: "main{ if(A > C){ A + B; } }",
			want:  "CMP C;\nJZ SKIP_0;\nJC SKIP_0;\nADD B;\nSKIP_0:\n",
		},
		{
			name:  "If Less",
			input: "main{ if(A < C){ A + B; } }",
			want:  "CMP C;\nJZ SKIP_0;\nJNC SKIP_0;\nADD B;\nSKIP_0:\n",
		},
		{
			name: "Round Trip",
			input: `main{
  reg A = 0x08;
  counter = 0x06;
  if(A > counter){
    A + B;
  }
}`,
			want: "MVI A,08H;\nMVI A,06H;\nSTA 8000H;\nCPI 00H;\nJZ SKIP_0;\nJC SKIP_0;\nADD B;\nSKIP_0:\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := generateSource(t, tt.input)
			if got != tt.want {
				t.Errorf("Generate() =\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestGenerate_StaticAllocation(t *testing.T) {
	// Slots are handed out in first discovery order, one byte of the slot
	// space per variable regardless of width.
	code := generateSource(t, "main{ a = 0x01; wide = 0x1234; c = 0x03; a = 0x04; }")

	assertContains(t, code, "STA 8000H;")  // a
	assertContains(t, code, "SHLD 8001H;") // wide
	assertContains(t, code, "STA 8002H;")  // c

	// Re-assigning a keeps its original slot.
	assertContains(t, code, "MVI A,04H;\nSTA 8000H;")
}

func TestGenerate_RegisterPoolExhaustion(t *testing.T) {
	code := generateSource(t, "main{ v1 = 0x01; v2 = 0x02; v3 = 0x03; v4 = 0x04; v5 = 0x05; v6 = 0x06; }")

	// The first five variables get A, B, C, D, E.
	assertContains(t, code, "MVI A,02H;\nSTA 8001H;\nMOV B,A;")
	assertContains(t, code, "MVI A,05H;\nSTA 8004H;\nMOV E,A;")

	// The sixth lives in memory only: store, no register copy after it.
	assertContains(t, code, "MVI A,06H;\nSTA 8005H;\n")
	if strings.Contains(code, "STA 8005H;\nMOV") {
		t.Errorf("sixth variable should not get a register copy.\nCode:\n%s", code)
	}
}

func TestGenerate_ConditionsReadBoundRegisters(t *testing.T) {
	// x binds to A, y binds to B; the comparison reads the registers, not
	// memory.
	code := generateSource(t, "main{ x = 0x01; y = 0x02; if(x == y){ HL++; } }")

	assertContains(t, code, "CMP B;\nJNZ SKIP_0;")
	if strings.Contains(code, "LDA") {
		t.Errorf("condition should not reload from memory.\nCode:\n%s", code)
	}
}

func TestGenerate_SelfCompareUsesImmediateZero(t *testing.T) {
	// counter binds to A, so comparing A against it would be CMP A. The
	// generator substitutes the immediate zero compare.
	code := generateSource(t, "main{ counter = 0x06; if(A > counter){ A + B; } }")

	assertContains(t, code, "CPI 00H;")
	if strings.Contains(code, "CMP") {
		t.Errorf("self-compare must not emit CMP.\nCode:\n%s", code)
	}
}

func TestGenerate_LabelNumbering(t *testing.T) {
	code := generateSource(t, `main{
  if(A > C){
    if(C == D){ HL++; }
  }
  if(A < C){ SP--; }
}`)

	// Outer if claims 0 before its body runs, the nested one claims 1, the
	// sibling claims 2. The nested label closes before the outer one.
	assertContains(t, code, "JZ SKIP_0;")
	assertContains(t, code, "JNZ SKIP_1;")
	assertContains(t, code, "SKIP_1:\nSKIP_0:\n")
	assertContains(t, code, "JNC SKIP_2;")
	assertContains(t, code, "SKIP_2:\n")
}

func TestGenerate_EmptyProgram(t *testing.T) {
	if got := Generate(nil); got != "" {
		t.Errorf("Generate(nil) = %q, want empty", got)
	}
}
