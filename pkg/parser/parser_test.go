package parser_test

import (
	"testing"

	"its-hmny.dev/zontanos/pkg/ast"
	"its-hmny.dev/zontanos/pkg/lexer"
	"its-hmny.dev/zontanos/pkg/parser"
	"its-hmny.dev/zontanos/pkg/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Lexes and parses 'src', requiring the parse to succeed.
func parse(t *testing.T, src string) *ast.Ast {
	tree, err := parser.New(lexer.New(src).Lex()).Parse()
	require.NoError(t, err)
	require.NotNil(t, tree)
	return tree
}

// Lexes and parses 'src', requiring the parse to fail and returning the error.
func parseErr(t *testing.T, src string) error {
	_, err := parser.New(lexer.New(src).Lex()).Parse()
	require.Error(t, err)
	return err
}

func TestLetDeclaration(t *testing.T) {
	t.Run("Scalar i32", func(t *testing.T) {
		tree := parse(t, "let a: i32 = 20")
		require.Len(t, tree.Body, 1)

		node := tree.Body[0]
		variable, ok := node.Kind.(ast.VariableNode)
		require.True(t, ok)
		assert.Equal(t, "a", variable.Variable.Ident)
		assert.Equal(t, ast.I32, variable.Variable.VarType.Base)

		// Left child holds the assignment operator, right child the value
		op, ok := node.Left.Kind.(ast.OperatorNode)
		require.True(t, ok)
		assert.Equal(t, token.Eq, op.Op)

		value, ok := node.Right.Kind.(ast.ValueNode)
		require.True(t, ok)
		assert.Equal(t, ast.I32Lit{Value: 20}, value.Value.Val)
	})

	t.Run("String array", func(t *testing.T) {
		tree := parse(t, `let s: string[12] = "testing this"`)
		require.Len(t, tree.Body, 1)

		variable := tree.Body[0].Kind.(ast.VariableNode).Variable
		assert.Equal(t, ast.String, variable.VarType.Base)
		assert.True(t, variable.VarType.IsArray)
		assert.Equal(t, uint32(12), variable.VarType.Size)

		value := tree.Body[0].Right.Kind.(ast.ValueNode)
		assert.Equal(t, ast.StringLit{Value: "testing this"}, value.Value.Val)
	})

	t.Run("Array literal", func(t *testing.T) {
		tree := parse(t, "let xs: i32[3] = [1, 2, 3]")
		variable := tree.Body[0].Kind.(ast.VariableNode).Variable
		assert.True(t, variable.VarType.IsArray)
		assert.Equal(t, uint32(3), variable.VarType.Size)

		value := tree.Body[0].Right.Kind.(ast.ValueNode)
		expected := ast.ArrayLit{Elems: []ast.TypeValue{
			ast.I32Lit{Value: 1}, ast.I32Lit{Value: 2}, ast.I32Lit{Value: 3},
		}}
		assert.Equal(t, expected, value.Value.Val)
	})

	t.Run("Negative literal", func(t *testing.T) {
		tree := parse(t, "let a: i32 = -5")
		value := tree.Body[0].Right.Kind.(ast.ValueNode)
		assert.Equal(t, ast.I32Neg{Value: -5}, value.Value.Val)
	})
}

func TestTypeExpressions(t *testing.T) {
	t.Run("Generic recursion", func(t *testing.T) {
		tree := parse(t, "fn f(xs: array<array<i32>>) void { }")
		fn := tree.Body[0].Kind.(ast.FunctionNode).Fn

		require.Len(t, fn.Params, 1)
		paramType := fn.Params[0].Type
		assert.Equal(t, ast.Array, paramType.Base)
		require.Len(t, paramType.Generics, 1)
		assert.Equal(t, ast.Array, paramType.Generics[0].Base)
		require.Len(t, paramType.Generics[0].Generics, 1)
		assert.Equal(t, ast.I32, paramType.Generics[0].Generics[0].Base)
	})

	t.Run("Pointer suffix", func(t *testing.T) {
		tree := parse(t, "fn f(s: string^) void { }")
		fn := tree.Body[0].Kind.(ast.FunctionNode).Fn
		assert.True(t, fn.Params[0].Type.IsPointer)
	})

	t.Run("Generics without end", func(t *testing.T) {
		err := parseErr(t, "let xs: array<i32")
		assert.Contains(t, err.Error(), "Expected a end to generics '>'")
	})

	t.Run("Array type without size", func(t *testing.T) {
		err := parseErr(t, "let xs: i32[] = [1]")
		assert.Contains(t, err.Error(), "expected array size")
	})

	t.Run("Array size of zero", func(t *testing.T) {
		err := parseErr(t, "let xs: i32[0] = []")
		assert.Contains(t, err.Error(), "expected array size")
	})
}

func TestFunctions(t *testing.T) {
	t.Run("Math body", func(t *testing.T) {
		tree := parse(t, "fn add(a: i32, b: i32) i32 { return a + b }")
		fn := tree.Body[0].Kind.(ast.FunctionNode).Fn

		assert.Equal(t, "add", fn.Ident)
		require.Len(t, fn.Params, 2)
		assert.Equal(t, ast.I32, fn.Returns.Base)

		require.Len(t, fn.Body, 1)
		ret := fn.Body[0]
		_, ok := ret.Kind.(ast.Return)
		require.True(t, ok)

		// The returned expression is a flat Math sequence: a, +, b
		math, ok := ret.Right.Kind.(ast.MathNode)
		require.True(t, ok)
		require.Len(t, math.Math.Terms, 3)
		assert.Equal(t, ast.IdentRef{Name: "a"}, math.Math.Terms[0].Val)
		assert.Equal(t, ast.OpTerm{Op: token.Plus}, math.Math.Terms[1].Val)
		assert.Equal(t, ast.IdentRef{Name: "b"}, math.Math.Terms[2].Val)
	})

	t.Run("Empty parameter list", func(t *testing.T) {
		tree := parse(t, "fn main() void { }")
		fn := tree.Body[0].Kind.(ast.FunctionNode).Fn
		assert.Empty(t, fn.Params)
		assert.Equal(t, ast.Void, fn.Returns.Base)
	})

	t.Run("Param index lookup", func(t *testing.T) {
		tree := parse(t, "fn add(a: i32, b: i32) i32 { return a }")
		fn := tree.Body[0].Kind.(ast.FunctionNode).Fn

		idx, found := fn.ParamIndex("b")
		assert.True(t, found)
		assert.Equal(t, 1, idx)
		_, found = fn.ParamIndex("missing")
		assert.False(t, found)
	})

	t.Run("Call stored then returned", func(t *testing.T) {
		tree := parse(t, "fn main() i32 { let n: i32 = add(10, 20) return n }")
		fn := tree.Body[0].Kind.(ast.FunctionNode).Fn
		require.Len(t, fn.Body, 2)

		// The variable's right child is the call, its arguments on the left node
		let := fn.Body[0]
		call, ok := let.Right.Kind.(ast.FunctionCallNode)
		require.True(t, ok)
		assert.Equal(t, "add", call.Call.CallsTo)

		args := call.Call.Args(let.Right)
		require.Len(t, args, 2)
		assert.Equal(t, ast.I32Lit{Value: 10}, args[0].Val)
		assert.Equal(t, ast.I32Lit{Value: 20}, args[1].Val)

		ret := fn.Body[1]
		value, ok := ret.Right.Kind.(ast.ValueNode)
		require.True(t, ok)
		assert.Equal(t, ast.IdentRef{Name: "n"}, value.Value.Val)
	})
}

func TestReassignments(t *testing.T) {
	t.Run("Compound operators", func(t *testing.T) {
		tree := parse(t, "fn f() void { n += 1 n -= 2 n *= 3 n = 4 }")
		fn := tree.Body[0].Kind.(ast.FunctionNode).Fn
		require.Len(t, fn.Body, 4)

		expected := []token.Kind{token.PlusIs, token.MinusIs, token.TimesIs, token.Eq}
		for idx, node := range fn.Body {
			assignment, ok := node.Kind.(ast.AssignmentNode)
			require.True(t, ok)
			assert.Equal(t, "n", assignment.Assignment.AssignsTo)
			assert.Equal(t, expected[idx], assignment.Assignment.Op)
		}
	})

	t.Run("Unsupported operator", func(t *testing.T) {
		err := parseErr(t, "fn f() void { n &= 1 }")
		assert.Contains(t, err.Error(), "is not a valid reassignment operator")
	})
}

func TestArrays(t *testing.T) {
	t.Run("Array of arrays rejected", func(t *testing.T) {
		err := parseErr(t, "let xs: i32[2] = [1, [2]]")
		assert.Contains(t, err.Error(), "arrays of arrays are not supported")
	})

	t.Run("Comma in place of value", func(t *testing.T) {
		err := parseErr(t, "let xs: i32[2] = [, 1]")
		assert.Contains(t, err.Error(), "Expected a value but got a comma")
	})
}

func TestDiagnostics(t *testing.T) {
	t.Run("Missing type separator", func(t *testing.T) {
		err := parseErr(t, "let a i32 = 2")
		assert.Contains(t, err.Error(), "Expected a type seperator ':'")
	})

	t.Run("Missing body end", func(t *testing.T) {
		err := parseErr(t, "fn f() void { let a: i32 = 2")
		assert.Contains(t, err.Error(), "Expected a end to body '}'")
	})

	t.Run("Invalid statement", func(t *testing.T) {
		err := parseErr(t, "fn f() void { while }")
		assert.Contains(t, err.Error(), "Found a invalid token while parsing body")
	})

	t.Run("Errors carry the line", func(t *testing.T) {
		err := parseErr(t, "let ok: i32 = 2\nfn f() void {\nlet broken i32 = 2 }")
		assert.Contains(t, err.Error(), "on line 2")
	})
}

func TestLiteralRoundTrip(t *testing.T) {
	// Parsing a literal then formatting its value yields the normalised lexeme
	test := func(base ast.BaseType, lexeme, normalised string) {
		value, err := ast.ParseLiteral(base, lexeme)
		require.NoError(t, err)
		assert.Equal(t, normalised, ast.FormatLiteral(value))
	}

	test(ast.I32, "20", "20")
	test(ast.I32, "1_000", "1000")
	test(ast.I32, "-5", "-5")
	test(ast.I8, "-128", "-128")
	test(ast.U8, "255", "255")
	test(ast.F32, "3.14", "3.14")
	test(ast.Char, "a", "a")
	test(ast.String, "hello world!", "hello world!")
}
