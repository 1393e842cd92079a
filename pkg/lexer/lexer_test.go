package lexer_test

import (
	"testing"

	"its-hmny.dev/zontanos/pkg/lexer"
	"its-hmny.dev/zontanos/pkg/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scans 'src' and asserts the produced token kinds match 'expected' exactly.
func testKinds(t *testing.T, src string, expected ...token.Kind) []token.Token {
	tokens := lexer.New(src).Scan()

	kinds := []token.Kind{}
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
	}

	require.Equal(t, expected, kinds, "unexpected token sequence for %q", src)
	return tokens
}

func TestOperators(t *testing.T) {
	t.Run("Single char operators", func(t *testing.T) {
		testKinds(t, "= < > ! & | + * /",
			token.Eq, token.Less, token.More, token.Bang, token.And,
			token.Or, token.Plus, token.Times, token.Slash,
		)
	})

	t.Run("Multi char operators", func(t *testing.T) {
		testKinds(t, "== <= >= != && || += *=",
			token.EqEq, token.LessEq, token.MoreEq, token.Nq,
			token.AndAnd, token.OrOr, token.PlusIs, token.TimesIs,
		)
	})

	t.Run("Adjacent operators consume greedily", func(t *testing.T) {
		// The first two '=' pair up into '==', the leftover one stays alone
		testKinds(t, "===", token.EqEq, token.Eq)
		testKinds(t, "<=<", token.LessEq, token.Less)
	})

	t.Run("Minus family", func(t *testing.T) {
		// After a number '-' is subtraction, at the start of a value it negates
		testKinds(t, "5 - 3", token.Number, token.Min, token.Number)
		testKinds(t, "-3", token.NegativeNumber)
		testKinds(t, "a -= 1", token.Identifier, token.MinusIs, token.Number)
		testKinds(t, "= -3", token.Eq, token.NegativeNumber)
	})
}

func TestKeywords(t *testing.T) {
	testKinds(t, "let if else for while return fn pub struct enum",
		token.KwLet, token.KwIf, token.KwElse, token.KwFor, token.KwWhile,
		token.KwReturn, token.KwFn, token.KwPub, token.KwStruct, token.KwEnum,
	)
	testKinds(t, "void string char i8 u8 i32 f32 array",
		token.KwVoid, token.KwString, token.KwChar, token.KwI8,
		token.KwU8, token.KwI32, token.KwF32, token.KwArray,
	)
	testKinds(t, "true false", token.BoolTrue, token.BoolFalse)
}

func TestIdentifiers(t *testing.T) {
	tokens := testKinds(t, "hello hello_world hello1 letter",
		token.Identifier, token.Identifier, token.Identifier, token.Identifier,
	)
	assert.Equal(t, "hello", tokens[0].Lexeme)
	assert.Equal(t, "hello_world", tokens[1].Lexeme)
	assert.Equal(t, "hello1", tokens[2].Lexeme)
	// 'letter' starts with the 'let' keyword but must stay one identifier
	assert.Equal(t, "letter", tokens[3].Lexeme)
}

func TestNumbers(t *testing.T) {
	t.Run("Integers", func(t *testing.T) {
		tokens := testKinds(t, "100 1_000 42", token.Number, token.Number, token.Number)
		// Underscores are readability separators, dropped from the lexeme
		assert.Equal(t, "100", tokens[0].Lexeme)
		assert.Equal(t, "1000", tokens[1].Lexeme)
	})

	t.Run("Floats", func(t *testing.T) {
		tokens := testKinds(t, "3.14 0.5", token.FloatNumber, token.FloatNumber)
		assert.Equal(t, "3.14", tokens[0].Lexeme)
	})

	t.Run("Negative numbers", func(t *testing.T) {
		tokens := testKinds(t, "-42", token.NegativeNumber)
		assert.Equal(t, "-42", tokens[0].Lexeme)
	})
}

func TestStrings(t *testing.T) {
	t.Run("Complete string", func(t *testing.T) {
		tokens := testKinds(t, `"hello world!"`, token.String)
		assert.Equal(t, "hello world!", tokens[0].Lexeme)
	})

	t.Run("Unterminated string", func(t *testing.T) {
		tokens := lexer.New(`"no end in sight`).Scan()
		require.Len(t, tokens, 1)
		assert.Equal(t, token.Invalid, tokens[0].Kind)
		assert.Equal(t, token.StringNoEnd, tokens[0].Reason)
	})
}

func TestChars(t *testing.T) {
	t.Run("Letters and escapes", func(t *testing.T) {
		tokens := testKinds(t, `'a' '\n' '\t' '\\' '\0'`,
			token.Char, token.Char, token.Char, token.Char, token.Char,
		)
		assert.Equal(t, "a", tokens[0].Lexeme)
		assert.Equal(t, "\n", tokens[1].Lexeme)
		assert.Equal(t, "\t", tokens[2].Lexeme)
		assert.Equal(t, "\\", tokens[3].Lexeme)
		assert.Equal(t, "\x00", tokens[4].Lexeme)
	})

	t.Run("Missing closing quote", func(t *testing.T) {
		tokens := lexer.New("'a").Scan()
		require.NotEmpty(t, tokens)
		assert.Equal(t, token.Invalid, tokens[0].Kind)
		assert.Equal(t, token.CharNoEnd, tokens[0].Reason)
	})

	t.Run("Invalid first char", func(t *testing.T) {
		tokens := lexer.New("'1'").Scan()
		require.NotEmpty(t, tokens)
		assert.Equal(t, token.Invalid, tokens[0].Kind)
		assert.Equal(t, token.InvalidChar, tokens[0].Reason)
	})
}

func TestComments(t *testing.T) {
	tokens := testKinds(t, "// a comment\nlet", token.Comment, token.KwLet)
	assert.Equal(t, " a comment", tokens[0].Lexeme)
	// The newline closing the comment still separates the lines
	assert.Equal(t, 0, tokens[0].Line)
	assert.Equal(t, 1, tokens[1].Line)
}

func TestLineNumbers(t *testing.T) {
	tokens := lexer.New("let\nlet\n\nlet").Scan()
	require.Len(t, tokens, 3)
	assert.Equal(t, 0, tokens[0].Line)
	assert.Equal(t, 1, tokens[1].Line)
	assert.Equal(t, 3, tokens[2].Line)

	// Lines must be monotonically non-decreasing over any source
	prev := 0
	for _, tok := range lexer.New("let a: i32 = 5\nfn main() void {\n}\n").Scan() {
		assert.GreaterOrEqual(t, tok.Line, prev)
		prev = tok.Line
	}
}

func TestLexFiltersInvalid(t *testing.T) {
	scanner := lexer.New("let @ a")
	tokens := scanner.Lex()

	// The '@' maps to no token: Lex drops it but keeps it as a diagnostic
	require.Len(t, tokens, 2)
	assert.Equal(t, token.KwLet, tokens[0].Kind)
	assert.Equal(t, token.Identifier, tokens[1].Kind)

	dropped := scanner.Diagnostics()
	require.Len(t, dropped, 1)
	assert.Equal(t, token.TokenInvalid, dropped[0].Reason)
	assert.Equal(t, "@", dropped[0].Lexeme)
}

func TestLexingIsIdempotent(t *testing.T) {
	src := "fn add(a: i32, b: i32) i32 { return a + b }\nlet g: i32 = -1_000\n// done"
	assert.Equal(t, lexer.New(src).Scan(), lexer.New(src).Scan())
}
