package parser

import (
	"fmt"

	"its-hmny.dev/zontanos/pkg/ast"
	"its-hmny.dev/zontanos/pkg/token"
)

// ----------------------------------------------------------------------------
// Value parsing

// This section defines the parse functions for everything that can stand in
// value position: literals (converted against the expected type), arrays,
// identifiers, function calls and arithmetic expressions. Whenever a numeric
// term is followed by an arithmetic operator the whole expression is collected
// into a flat Math sequence (source order preserved) that codegen evaluates
// with the two-stack Shunting-Yard walk.

// ParseValue parses a single value against the expected 'base' type and
// returns the node carrying it: a ValueNode for literals and identifiers, a
// FunctionCall node for calls, a MathNode when the value continues with an
// arithmetic operator. A '^' prefix marks the value as pointer.
func (p *Parser) ParseValue(base ast.Type) (*ast.Node, error) {
	isPtr := p.consumeIfNext(token.Pointer)

	tok, ok := p.next()
	if !ok {
		return nil, p.expectedValue()
	}
	line := tok.Line

	switch tok.Kind {
	case token.OpenBracket: // An array literal, delegated to ParseArray
		p.walkBack(1)
		elems, err := p.ParseArray(base)
		if err != nil {
			return nil, err
		}
		value := ast.Value{Val: ast.ArrayLit{Elems: elems}, IsPtr: isPtr}
		return ast.NewNode(ast.ValueNode{Value: value}, line), nil

	case token.OpenBrace: // A parenthesised arithmetic group
		group, err := p.parseMathGroup()
		if err != nil {
			return nil, err
		}
		first := ast.Value{Val: ast.MathExpr{Math: group}}
		return p.parseMathTerms(first, line)

	case token.Identifier: // Either a call or a plain identifier reference
		if next, ok := p.peek(); ok && next.Kind == token.OpenBrace {
			call, args, err := p.ParseFnCall(tok.Lexeme)
			if err != nil {
				return nil, err
			}
			if p.startsMath() {
				first := ast.Value{Val: ast.CallExpr{Call: call, Args: args}}
				return p.parseMathTerms(first, line)
			}
			return ast.NewFunctionCall(call, args, line), nil
		}
		value := ast.Value{Val: ast.IdentRef{Name: tok.Lexeme}, IsPtr: isPtr}
		if p.startsMath() {
			return p.parseMathTerms(value, line)
		}
		return ast.NewNode(ast.ValueNode{Value: value}, line), nil

	case token.Number, token.NegativeNumber, token.FloatNumber:
		literal, err := p.numericLiteral(base, tok)
		if err != nil {
			return nil, err
		}
		value := ast.Value{Val: literal, IsPtr: isPtr}
		if p.startsMath() {
			return p.parseMathTerms(value, line)
		}
		return ast.NewNode(ast.ValueNode{Value: value}, line), nil

	case token.String:
		if base.Base != ast.String && base.Base != ast.None {
			return nil, p.typeMismatch(line, fmt.Errorf("'%s' is not a %s value", tok.Lexeme, base.Base))
		}
		value := ast.Value{Val: ast.StringLit{Value: tok.Lexeme}, IsPtr: isPtr}
		return ast.NewNode(ast.ValueNode{Value: value}, line), nil

	case token.Char:
		if base.Base != ast.Char && base.Base != ast.None {
			return nil, p.typeMismatch(line, fmt.Errorf("'%s' is not a %s value", tok.Lexeme, base.Base))
		}
		literal, err := ast.ParseLiteral(ast.Char, tok.Lexeme)
		if err != nil {
			return nil, p.typeMismatch(line, err)
		}
		return ast.NewNode(ast.ValueNode{Value: ast.Value{Val: literal, IsPtr: isPtr}}, line), nil

	case token.BoolTrue, token.BoolFalse:
		value := ast.Value{Val: ast.BoolLit{Value: tok.Kind == token.BoolTrue}}
		return ast.NewNode(ast.ValueNode{Value: value}, line), nil

	case token.Comma:
		return nil, p.commaInPlaceOfValue()
	}

	return nil, p.invalidTokenInExpr("value", "a literal, identifier or call", tok)
}

// Converts a numeric literal token against the expected base type, defaulting
// to i32 (or f32 for float literals) when the expected type is still unknown.
func (p *Parser) numericLiteral(base ast.Type, tok token.Token) (ast.TypeValue, error) {
	target := base.Base
	if target == ast.None {
		target = ast.I32
		if tok.Kind == token.FloatNumber {
			target = ast.F32
		}
	}

	if tok.Kind == token.FloatNumber && target != ast.F32 {
		return nil, p.typeMismatch(tok.Line, fmt.Errorf("'%s' is not a %s value", tok.Lexeme, target))
	}

	literal, err := ast.ParseLiteral(target, tok.Lexeme)
	if err != nil {
		return nil, p.typeMismatch(tok.Line, err)
	}
	return literal, nil
}

// ParseArray parses a '[ val, val, ... ]' literal against the expected
// element type. Arrays of arrays are rejected with a dedicated diagnostic.
func (p *Parser) ParseArray(base ast.Type) ([]ast.TypeValue, error) {
	open, ok := p.next()
	if !ok || open.Kind != token.OpenBracket {
		return nil, p.expectedEndExpr("array", "[")
	}

	elems, sawValue := []ast.TypeValue{}, false
	for {
		tok, ok := p.next()
		if !ok {
			return nil, p.expectedEndExpr("array", "]")
		}

		switch tok.Kind {
		case token.CloseBracket:
			return elems, nil

		case token.Comma:
			if !sawValue {
				return nil, p.commaInPlaceOfValue()
			}
			sawValue = false

		case token.OpenBracket:
			return nil, p.arrayOfArray()

		case token.Identifier:
			elems, sawValue = append(elems, ast.IdentRef{Name: tok.Lexeme}), true

		case token.Number, token.NegativeNumber, token.FloatNumber, token.String, token.Char:
			literal, err := ast.ParseLiteral(base.Base, tok.Lexeme)
			if err != nil {
				return nil, p.typeMismatch(tok.Line, err)
			}
			elems, sawValue = append(elems, literal), true

		default:
			return nil, p.invalidTokenInExpr("array", "a value", tok)
		}
	}
}

// ParseFnCall parses the '( args )' tail of a call to 'callee' (the callee
// identifier has already been consumed) and returns the call plus its
// evaluated argument values.
func (p *Parser) ParseFnCall(callee string) (ast.FunctionCall, []ast.Value, error) {
	call := ast.FunctionCall{CallsTo: callee}
	args, err := p.ParseArgs()
	if err != nil {
		return call, nil, err
	}
	return call, args, nil
}

// ParseArgs parses a '( value, value, ... )' argument list. Argument values
// carry no expected type so default numeric types are assumed (Number -> i32,
// FloatNumber -> f32 and so on).
func (p *Parser) ParseArgs() ([]ast.Value, error) {
	open, ok := p.next()
	if !ok || open.Kind != token.OpenBrace {
		return nil, p.expectedEndExpr("arguments", "(")
	}

	args, sawValue := []ast.Value{}, false
	for {
		tok, ok := p.next()
		if !ok {
			return nil, p.expectedEndExpr("arguments", ")")
		}

		switch tok.Kind {
		case token.CloseBrace:
			return args, nil

		case token.Comma:
			if !sawValue {
				return nil, p.commaInPlaceOfValue()
			}
			sawValue = false

		default:
			value, err := p.parseUnknownTypeValue(tok)
			if err != nil {
				return nil, err
			}
			args, sawValue = append(args, value), true
		}
	}
}

// Parses a single value whose type cannot be known from context, assuming the
// default numeric types. A leading '^' marks the value as pointer (the way a
// string argument becomes a pointer-to-byte at IR time).
func (p *Parser) parseUnknownTypeValue(tok token.Token) (ast.Value, error) {
	isPtr := false
	if tok.Kind == token.Pointer {
		isPtr = true
		next, ok := p.next()
		if !ok {
			return ast.Value{}, p.expectedValue()
		}
		tok = next
	}

	switch tok.Kind {
	case token.Number, token.NegativeNumber:
		literal, err := ast.ParseLiteral(ast.I32, tok.Lexeme)
		if err != nil {
			return ast.Value{}, p.typeMismatch(tok.Line, err)
		}
		return ast.Value{Val: literal, IsPtr: isPtr}, nil

	case token.FloatNumber:
		literal, err := ast.ParseLiteral(ast.F32, tok.Lexeme)
		if err != nil {
			return ast.Value{}, p.typeMismatch(tok.Line, err)
		}
		return ast.Value{Val: literal, IsPtr: isPtr}, nil

	case token.String:
		return ast.Value{Val: ast.StringLit{Value: tok.Lexeme}, IsPtr: isPtr}, nil

	case token.Char:
		literal, err := ast.ParseLiteral(ast.Char, tok.Lexeme)
		if err != nil {
			return ast.Value{}, p.typeMismatch(tok.Line, err)
		}
		return ast.Value{Val: literal, IsPtr: isPtr}, nil

	case token.BoolTrue, token.BoolFalse:
		return ast.Value{Val: ast.BoolLit{Value: tok.Kind == token.BoolTrue}}, nil

	case token.Identifier:
		if next, ok := p.peek(); ok && next.Kind == token.OpenBrace {
			call, args, err := p.ParseFnCall(tok.Lexeme)
			if err != nil {
				return ast.Value{}, err
			}
			return ast.Value{Val: ast.CallExpr{Call: call, Args: args}}, nil
		}
		return ast.Value{Val: ast.IdentRef{Name: tok.Lexeme}, IsPtr: isPtr}, nil
	}

	return ast.Value{}, p.invalidTokenInExpr("arguments", "a value", tok)
}

// ParseReassignment parses an 'IDENT op VALUE' statement, the identifier has
// already been consumed by the caller. Supported operators are '=', '+=',
// '-=' and '*=', anything else is rejected with a dedicated diagnostic.
func (p *Parser) ParseReassignment(ident token.Token) (*ast.Node, error) {
	op, ok := p.next()
	if !ok {
		return nil, p.expectedValue()
	}

	switch op.Kind {
	case token.Eq, token.PlusIs, token.MinusIs, token.TimesIs:
	default:
		return nil, p.invalidReassignmentOp(op)
	}

	value, err := p.ParseValue(ast.NoneType())
	if err != nil {
		return nil, err
	}

	assignment := ast.Assignment{AssignsTo: ident.Lexeme, Op: op.Kind}
	node := ast.NewAssignment(assignment, ident.Line)
	node.Right = value
	return node, nil
}

// ParseReturn parses a 'return VALUE' statement ('return' already consumed),
// typing the value against the declared return type of the enclosing
// function. A bare return right before '}' yields a None value (void).
func (p *Parser) ParseReturn(expected ast.Type) (*ast.Node, error) {
	line := p.current().Line

	if next, ok := p.peek(); ok && next.Kind == token.CloseCurly {
		none := ast.NewNode(ast.ValueNode{Value: ast.Value{Val: ast.NoneVal{}}}, line)
		return ast.NewReturn(none, line), nil
	}

	value, err := p.ParseValue(expected)
	if err != nil {
		return nil, err
	}
	return ast.NewReturn(value, line), nil
}

// A value needed to be present but the stream ended or held no value.
func (p *Parser) expectedValue() error {
	return fmt.Errorf("[Parse Error] Expected a value on line %d", p.line())
}
