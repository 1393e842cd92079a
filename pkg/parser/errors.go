package parser

import (
	"errors"
	"fmt"

	"its-hmny.dev/zontanos/pkg/token"
)

// ----------------------------------------------------------------------------
// Parse diagnostics

// This section defines the diagnostic constructors shared by every parse
// function. All of them produce a '[Parse Error] <reason> on line N' error
// value, the line being the position the cursor is currently blaming. The
// parser halts at the first unrecoverable error within a statement, these
// messages are what the caller surfaces to the user.

var errNotANumber = errors.New("not a number")

// The token after ':' was not a type.
func (p *Parser) expectedType() error {
	return fmt.Errorf("[Parse Error] Expected a type after ':' on line %d", p.line())
}

// An identifier was needed (variable or function name) but not found.
func (p *Parser) expectedIdent() error {
	return fmt.Errorf("[Parse Error] Expected a variable identifier on line %d", p.line())
}

// The ':' between a name and its type was missing.
func (p *Parser) expectedTypeSeparator(name string) error {
	return fmt.Errorf("[Parse Error] Expected a type seperator ':' on line %d for %s", p.line(), name)
}

// A declaration was missing its '=' before the value.
func (p *Parser) expectedAssignment(name string) error {
	return fmt.Errorf("[Parse Error] Expected a assignment '=' on line %d for %s", p.line(), name)
}

// A closing delimiter ('>' for generics, '}' for bodies, ...) never came.
func (p *Parser) expectedEndExpr(to, end string) error {
	return fmt.Errorf("[Parse Error] Expected a end to %s '%s' on line %d", to, end, p.line())
}

// Two generic types were not separated by a comma.
func (p *Parser) expectedGenericSeparator() error {
	return fmt.Errorf("[Parse Error] Expected a comma after a type <T, T> on line %d", p.line())
}

// An array type suffix '[' was not followed by a numeric size > 0.
func (p *Parser) expectedArraySize() error {
	return fmt.Errorf("[Parse Error] expected array size on line %d", p.line())
}

// Arrays of arrays are a documented limitation, rejected with a dedicated message.
func (p *Parser) arrayOfArray() error {
	return fmt.Errorf("[Parse Error] arrays of arrays are not supported on line %d", p.line())
}

// A comma was found where a value was expected.
func (p *Parser) commaInPlaceOfValue() error {
	return fmt.Errorf("[Parse Error] Expected a value but got a comma on line %d", p.line())
}

// A literal could not be converted to the declared type.
func (p *Parser) typeMismatch(line int, detail error) error {
	return fmt.Errorf("[Parse Error] Expected the value to be the same type as the variable on line %d: %s", line, detail)
}

// An operator that is not '=', '+=', '-=' or '*=' was used in a reassignment.
func (p *Parser) invalidReassignmentOp(tok token.Token) error {
	return fmt.Errorf("[Parse Error] '%s' is not a valid reassignment operator on line %d", tok.Lexeme, tok.Line)
}

// Catch-all for a token that has no meaning in the construct being parsed.
func (p *Parser) invalidTokenInExpr(expr, expected string, got token.Token) error {
	return fmt.Errorf(
		"[Parse Error] Found a invalid token while parsing %s on line %d, expected %s got %s",
		expr, got.Line, expected, got.Lexeme,
	)
}
