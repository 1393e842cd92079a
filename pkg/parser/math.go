package parser

import (
	"its-hmny.dev/zontanos/pkg/ast"
	"its-hmny.dev/zontanos/pkg/token"
)

// ----------------------------------------------------------------------------
// Arithmetic expression parsing

// This section collects arithmetic expressions into a flat Math sequence.
//
// A math expression is a sequence of terms (numeric literals, identifiers,
// parenthesised groups, calls) joined by '+ - * /'. The parser does not build
// a precedence tree: the terms are stored in source order and the classical
// two-stack Shunting-Yard evaluation happens at code generation time ('* /'
// applied eagerly, '+ -' deferred to a draining post-pass).

// Reports whether the upcoming token continues the current value into an
// arithmetic expression.
func (p *Parser) startsMath() bool {
	tok, ok := p.peek()
	if !ok {
		return false
	}
	switch tok.Kind {
	case token.Plus, token.Min, token.Times, token.Slash:
		return true
	}
	return false
}

// Collects the remaining terms of a math expression that started with
// 'first', stopping at the first token that cannot be part of it.
func (p *Parser) parseMathTerms(first ast.Value, line int) (*ast.Node, error) {
	terms := []ast.Value{first}
	afterTerm := true // Set while the last collected element is a term, not an operator

	for {
		tok, ok := p.peek()
		if !ok {
			break
		}

		// A term right after a term is not joined by an operator: it starts the next statement
		if afterTerm && !p.startsMath() {
			break
		}
		afterTerm = tok.Kind != token.Plus && tok.Kind != token.Min &&
			tok.Kind != token.Times && tok.Kind != token.Slash

		switch tok.Kind {
		case token.Plus, token.Min, token.Times, token.Slash:
			p.next()
			terms = append(terms, ast.Value{Val: ast.OpTerm{Op: tok.Kind}})

		case token.Number, token.NegativeNumber:
			p.next()
			literal, err := ast.ParseLiteral(ast.I32, tok.Lexeme)
			if err != nil {
				return nil, p.typeMismatch(tok.Line, err)
			}
			terms = append(terms, ast.Value{Val: literal})

		case token.Identifier:
			p.next()
			term, err := p.mathIdentTerm(tok)
			if err != nil {
				return nil, err
			}
			terms = append(terms, term)

		case token.OpenBrace:
			p.next()
			group, err := p.parseMathGroup()
			if err != nil {
				return nil, err
			}
			terms = append(terms, ast.Value{Val: ast.MathExpr{Math: group}})

		default: // First token that is not part of the expression, leave it be
			return ast.NewNode(ast.MathNode{Math: ast.Math{Terms: terms}}, line), nil
		}
	}

	return ast.NewNode(ast.MathNode{Math: ast.Math{Terms: terms}}, line), nil
}

// Parses a parenthesised '( ... )' arithmetic group into its own sub-Math,
// the opening brace has already been consumed.
func (p *Parser) parseMathGroup() (ast.Math, error) {
	terms := []ast.Value{}

	for {
		tok, ok := p.next()
		if !ok {
			return ast.Math{}, p.expectedEndExpr("math expression", ")")
		}

		switch tok.Kind {
		case token.CloseBrace:
			return ast.Math{Terms: terms}, nil

		case token.Plus, token.Min, token.Times, token.Slash:
			terms = append(terms, ast.Value{Val: ast.OpTerm{Op: tok.Kind}})

		case token.Number, token.NegativeNumber:
			literal, err := ast.ParseLiteral(ast.I32, tok.Lexeme)
			if err != nil {
				return ast.Math{}, p.typeMismatch(tok.Line, err)
			}
			terms = append(terms, ast.Value{Val: literal})

		case token.Identifier:
			term, err := p.mathIdentTerm(tok)
			if err != nil {
				return ast.Math{}, err
			}
			terms = append(terms, term)

		case token.OpenBrace: // A nested group recurses into its own sub-Math
			group, err := p.parseMathGroup()
			if err != nil {
				return ast.Math{}, err
			}
			terms = append(terms, ast.Value{Val: ast.MathExpr{Math: group}})

		default:
			return ast.Math{}, p.invalidTokenInExpr("math expression", "a number or operator", tok)
		}
	}
}

// Turns an identifier token inside a math expression into its term: a call
// when followed by '(', a plain identifier reference otherwise.
func (p *Parser) mathIdentTerm(tok token.Token) (ast.Value, error) {
	if next, ok := p.peek(); ok && next.Kind == token.OpenBrace {
		call, args, err := p.ParseFnCall(tok.Lexeme)
		if err != nil {
			return ast.Value{}, err
		}
		return ast.Value{Val: ast.CallExpr{Call: call, Args: args}}, nil
	}
	return ast.Value{Val: ast.IdentRef{Name: tok.Lexeme}}, nil
}
