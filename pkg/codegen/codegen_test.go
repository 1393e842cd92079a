package codegen_test

import (
	"testing"

	"its-hmny.dev/zontanos/pkg/codegen"
	"its-hmny.dev/zontanos/pkg/lexer"
	"its-hmny.dev/zontanos/pkg/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs the whole pipeline on 'src' and returns the emitted textual IR.
func compile(t *testing.T, src string) string {
	tree, err := parser.New(lexer.New(src).Lex()).Parse()
	require.NoError(t, err)

	module, err := codegen.New().Compile(tree)
	require.NoError(t, err)
	return module.String()
}

// Runs the whole pipeline on 'src', requiring codegen to fail.
func compileErr(t *testing.T, src string) error {
	tree, err := parser.New(lexer.New(src).Lex()).Parse()
	require.NoError(t, err)

	_, err = codegen.New().Compile(tree)
	require.Error(t, err)
	return err
}

func TestFunctionCodegen(t *testing.T) {
	t.Run("Add function with math return", func(t *testing.T) {
		got := compile(t, "fn add(a: i32, b: i32) i32 { return a + b }")
		assert.Contains(t, got, "define i32 @add(i32 %a, i32 %b)")
		assert.Contains(t, got, "add i32 %a, %b")
		assert.Contains(t, got, "ret i32")
	})

	t.Run("Void function gets a bare return", func(t *testing.T) {
		got := compile(t, "fn noop() void { }")
		assert.Contains(t, got, "define void @noop()")
		assert.Contains(t, got, "ret void")
	})

	t.Run("Call result stored then returned", func(t *testing.T) {
		got := compile(t, `
fn add(a: i32, b: i32) i32 { return a + b }
fn main() i32 { let n: i32 = add(10, 20) return n }
`)
		assert.Contains(t, got, "%n = alloca i32")
		assert.Contains(t, got, "call i32 @add(i32 10, i32 20)")
		assert.Contains(t, got, "load i32, i32* %n")
		assert.Contains(t, got, "ret i32")
	})
}

func TestVariableCodegen(t *testing.T) {
	t.Run("Scalar alloca and store", func(t *testing.T) {
		got := compile(t, "fn f() void { let a: i32 = 20 }")
		assert.Contains(t, got, "%a = alloca i32")
		assert.Contains(t, got, "store i32 20, i32* %a")
	})

	t.Run("String as const byte array", func(t *testing.T) {
		got := compile(t, `fn f() void { let s: string[12] = "testing this" }`)
		assert.Contains(t, got, "%s = alloca [12 x i8]")
		assert.Contains(t, got, `c"testing this"`)
	})

	t.Run("Array literal", func(t *testing.T) {
		got := compile(t, "fn f() void { let xs: i32[3] = [1, 2, 3] }")
		assert.Contains(t, got, "%xs = alloca [3 x i32]")
		assert.Contains(t, got, "[i32 1, i32 2, i32 3]")
	})

	t.Run("Global variable", func(t *testing.T) {
		got := compile(t, "let g: i32 = 7")
		assert.Contains(t, got, "@g = global i32 7")
	})
}

func TestMathCodegen(t *testing.T) {
	t.Run("Eager multiplication, deferred addition", func(t *testing.T) {
		got := compile(t, "fn calc() i32 { return 2 + 3 * 4 }")
		assert.Contains(t, got, "mul i32 3, 4")
		assert.Contains(t, got, "add i32 2")
	})

	t.Run("Signed division", func(t *testing.T) {
		got := compile(t, "fn calc() i32 { return 8 / 2 }")
		assert.Contains(t, got, "sdiv i32 8, 2")
	})

	t.Run("Parenthesised group", func(t *testing.T) {
		got := compile(t, "fn calc() i32 { return (1 + 2) * 3 }")
		assert.Contains(t, got, "add i32 1, 2")
		assert.Contains(t, got, "mul i32")
	})

	t.Run("Identifiers are loaded", func(t *testing.T) {
		got := compile(t, "fn calc() i32 { let a: i32 = 5 return a * 2 }")
		assert.Contains(t, got, "load i32, i32* %a")
		assert.Contains(t, got, "mul i32")
	})
}

func TestLogicalCodegen(t *testing.T) {
	t.Run("If else with or joiner", func(t *testing.T) {
		got := compile(t, `fn main() void { if (1 > 2 || 2 == 2) { printf(^"hit") } else { printf(^"miss") } }`)

		assert.Contains(t, got, "icmp sgt i32 1, 2")
		assert.Contains(t, got, "icmp eq i32 2, 2")
		assert.Contains(t, got, "or i1")
		assert.Contains(t, got, "br i1")
		assert.Contains(t, got, "if_then_do")
		assert.Contains(t, got, "else_do")
		assert.Contains(t, got, "declare i32 @printf")
		assert.Contains(t, got, `c"hit\00"`)
		assert.Contains(t, got, `c"miss\00"`)
	})

	t.Run("Comparison against identifier", func(t *testing.T) {
		got := compile(t, "fn f(a: i32) void { if a > 2 { putchar('y') } }")
		assert.Contains(t, got, "icmp sgt i32 %a, 2")
		assert.Contains(t, got, "call i8 @putchar(i8 121)")
	})

	t.Run("And joiner", func(t *testing.T) {
		got := compile(t, "fn f(a: i32) void { if a >= 1 && a <= 9 { } }")
		assert.Contains(t, got, "icmp sge i32 %a, 1")
		assert.Contains(t, got, "icmp sle i32 %a, 9")
		assert.Contains(t, got, "and i1")
	})
}

func TestReassignmentCodegen(t *testing.T) {
	t.Run("Compound assignments load, apply and store", func(t *testing.T) {
		got := compile(t, "fn counter() i32 { let n: i32 = 1 n += 2 n *= 3 n -= 1 return n }")
		assert.Contains(t, got, "add i32")
		assert.Contains(t, got, "mul i32")
		assert.Contains(t, got, "sub i32")
		assert.Contains(t, got, "store i32")
	})

	t.Run("Plain reassignment stores directly", func(t *testing.T) {
		got := compile(t, "fn f() void { let n: i32 = 1 n = 5 }")
		assert.Contains(t, got, "store i32 5, i32* %n")
	})

	t.Run("Unknown target is a hard error", func(t *testing.T) {
		err := compileErr(t, "fn f() void { n += 1 }")
		assert.Contains(t, err.Error(), "couldn't find any identifier named 'n'")
	})
}

func TestLibcShims(t *testing.T) {
	t.Run("Lazy declarations", func(t *testing.T) {
		got := compile(t, "fn main() void { let c: i8 = getchar() putchar('a') }")
		assert.Contains(t, got, "declare i8 @getchar()")
		assert.Contains(t, got, "declare i8 @putchar")
		assert.Contains(t, got, "call i8 @putchar(i8 97)")
	})

	t.Run("Abs shim", func(t *testing.T) {
		got := compile(t, "fn f() i32 { return abs(-5) }")
		assert.Contains(t, got, "declare i32 @abs")
		assert.Contains(t, got, "call i32 @abs(i32 -5)")
	})

	t.Run("Unknown function is a hard error", func(t *testing.T) {
		err := compileErr(t, "fn main() void { missing(1) }")
		assert.Contains(t, err.Error(), "couldn't find any function named 'missing'")
	})
}

func TestIdentResolution(t *testing.T) {
	t.Run("Parameters resolve before instructions", func(t *testing.T) {
		got := compile(t, "fn f(a: i32) i32 { return a }")
		assert.Contains(t, got, "ret i32 %a")
	})

	t.Run("Unknown identifier in return", func(t *testing.T) {
		err := compileErr(t, "fn f() i32 { return x }")
		assert.Contains(t, err.Error(), "couldn't find any identifier named 'x'")
	})
}
