package parser

import (
	"its-hmny.dev/zontanos/pkg/ast"
	"its-hmny.dev/zontanos/pkg/token"
)

// ----------------------------------------------------------------------------
// Zontanos Parser

// This section defines the Parser for the Zontanos language.
//
// It is a hand-written recursive-descent parser over the token stream produced
// by the lexer: an integer cursor with one-token peek and a one-step 'walkBack'
// for local backtracking. Each parse function consumes the tokens of exactly one
// construct and returns its typed AST counterpart or a '[Parse Error] ... on
// line N' diagnostic. The parser never guesses: the first unrecoverable error
// within a statement is surfaced to the caller and parsing of the enclosing
// top-level declaration stops there.
type Parser struct {
	tokens []token.Token // The filtered token stream (Invalid tokens already dropped)
	pos    int           // Cursor, index of the next token to be consumed
}

// New initializes and returns to the caller a brand new 'Parser' struct.
// Expects 'tokens' to be the filtered stream coming from the lexer.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Consumes and returns the next token, reporting false at end of stream.
func (p *Parser) next() (token.Token, bool) {
	if p.pos >= len(p.tokens) {
		return token.Token{}, false
	}
	tok := p.tokens[p.pos]
	p.pos++
	return tok, true
}

// Peeks at the next token without consuming it.
func (p *Parser) peek() (token.Token, bool) {
	if p.pos >= len(p.tokens) {
		return token.Token{}, false
	}
	return p.tokens[p.pos], true
}

// Returns the last consumed token (the one current parse steps reason about).
func (p *Parser) current() token.Token {
	if p.pos == 0 || p.pos > len(p.tokens) {
		return token.Token{}
	}
	return p.tokens[p.pos-1]
}

// Walks the cursor back by 'n' tokens so they can be consumed again.
func (p *Parser) walkBack(n int) {
	p.pos -= n
	if p.pos < 0 {
		p.pos = 0
	}
}

// Consumes the next token only when it matches 'kind', reporting whether it did.
func (p *Parser) consumeIfNext(kind token.Kind) bool {
	tok, ok := p.peek()
	if !ok || tok.Kind != kind {
		return false
	}
	p.next()
	return true
}

// Returns the line to blame in diagnostics: the current token's line, or the
// last line seen when the stream already ended.
func (p *Parser) line() int {
	if tok, ok := p.peek(); ok {
		return tok.Line
	}
	return p.current().Line
}

// ----------------------------------------------------------------------------
// Program parsing

// Parse is the parser entrypoint: it accepts top-level 'let' (global
// variables) and 'fn' declarations and returns the Ast root owning them.
func (p *Parser) Parse() (*ast.Ast, error) {
	tree := ast.NewAst()

	for {
		tok, ok := p.next()
		if !ok {
			return tree, nil
		}

		switch tok.Kind {
		case token.Comment: // Comment tokens are just skipped
			continue

		case token.KwLet: // Global variable declaration
			node, err := p.ParseLet()
			if err != nil {
				return nil, err
			}
			tree.Insert(node)

		case token.KwFn: // Function declaration
			node, err := p.ParseFn()
			if err != nil {
				return nil, err
			}
			tree.Insert(node)

		default: // Error case, any other token is invalid at the top level
			return nil, p.invalidTokenInExpr("program", "'let' or 'fn'", tok)
		}
	}
}

// ParseLet parses a 'let IDENT : TYPE = VALUE' declaration, the 'let' keyword
// has already been consumed by the caller. The type annotation is mandatory,
// there is no inference.
func (p *Parser) ParseLet() (*ast.Node, error) {
	letLine := p.current().Line

	ident, ok := p.next()
	if !ok || ident.Kind != token.Identifier {
		return nil, p.expectedIdent()
	}

	if !p.consumeIfNext(token.Colon) {
		return nil, p.expectedTypeSeparator(ident.Lexeme)
	}

	varType, err := p.ParseType()
	if err != nil {
		return nil, err
	}

	if !p.consumeIfNext(token.Eq) {
		return nil, p.expectedAssignment(ident.Lexeme)
	}

	value, err := p.ParseValue(varType)
	if err != nil {
		return nil, err
	}

	variable := ast.Variable{Ident: ident.Lexeme, VarType: varType}
	node := ast.NewVariable(variable, token.Eq, letLine)
	node.Right = value
	return node, nil
}

// ParseType parses a type expression: a base type keyword (or type name)
// optionally followed by an '[N]' array suffix, a '<...>' generic list and a
// '^' pointer suffix. The array suffix requires a numeric size > 0.
func (p *Parser) ParseType() (ast.Type, error) {
	base, ok := p.next()
	if !ok {
		return ast.Type{}, p.expectedType()
	}
	if !token.IsTypeKeyword(base.Kind) && base.Kind != token.Identifier {
		return ast.Type{}, p.expectedType()
	}

	parsed := ast.BaseTypeFrom(base.Kind, base.Lexeme)

	if p.consumeIfNext(token.OpenBracket) {
		size, ok := p.next()
		if !ok || size.Kind != token.Number {
			return ast.Type{}, p.expectedArraySize()
		}
		length, err := parseArrayLength(size.Lexeme)
		if err != nil || length == 0 {
			return ast.Type{}, p.expectedArraySize()
		}
		if !p.consumeIfNext(token.CloseBracket) {
			return ast.Type{}, p.expectedEndExpr("array size", "]")
		}
		parsed.IsArray, parsed.Size = true, length
	}

	if p.consumeIfNext(token.Less) {
		if err := p.parseGenerics(&parsed); err != nil {
			return ast.Type{}, err
		}
	}

	if p.consumeIfNext(token.Pointer) {
		parsed.IsPointer = true
	}

	return parsed, nil
}

// Parses a generic list into 'base', the opening '<' has already been
// consumed. Each generic is itself a (possibly nested) type parsed the same
// way, a comma separates siblings and a nested '<' recurses.
func (p *Parser) parseGenerics(base *ast.Type) error {
	current := ast.Type{Base: ast.Unknown}

	for {
		tok, ok := p.next()
		if !ok {
			return p.expectedEndExpr("generics", ">")
		}

		switch {
		case token.IsTypeKeyword(tok.Kind) || tok.Kind == token.Identifier:
			if current.Base != ast.Unknown || current.Name != "" {
				return p.expectedGenericSeparator()
			}
			current = ast.BaseTypeFrom(tok.Kind, tok.Lexeme)

		case tok.Kind == token.Comma:
			if current.Base == ast.Unknown && current.Name == "" {
				continue
			}
			base.Generics = append(base.Generics, current)
			current = ast.Type{Base: ast.Unknown}

		case tok.Kind == token.Less: // A nested generic list on the current type
			if err := p.parseGenerics(&current); err != nil {
				return err
			}
			base.Generics = append(base.Generics, current)
			current = ast.Type{Base: ast.Unknown}

		case tok.Kind == token.More: // End of this generic list
			if current.Base != ast.Unknown || current.Name != "" {
				base.Generics = append(base.Generics, current)
			}
			return nil

		default:
			return p.invalidTokenInExpr("generics", "type", tok)
		}
	}
}

// ParseParams parses a '( ident : type, ... )' parameter list, returning zero
// parameters for an empty '()' list.
func (p *Parser) ParseParams() ([]ast.Parameter, error) {
	if !p.consumeIfNext(token.OpenBrace) {
		return nil, p.expectedEndExpr("paramaters", "(")
	}

	params := []ast.Parameter{}
	for {
		tok, ok := p.next()
		if !ok {
			return nil, p.expectedEndExpr("paramaters", ")")
		}

		switch tok.Kind {
		case token.CloseBrace:
			return params, nil

		case token.Comma:
			continue

		case token.Identifier:
			if !p.consumeIfNext(token.Colon) {
				return nil, p.expectedTypeSeparator(tok.Lexeme)
			}
			paramType, err := p.ParseType()
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Parameter{Ident: tok.Lexeme, Type: paramType})

		default:
			return nil, p.invalidTokenInExpr("paramaters", "identifier", tok)
		}
	}
}

// ParseFn parses a 'fn ident ( params ) return_type { body }' declaration,
// the 'fn' keyword has already been consumed by the caller.
func (p *Parser) ParseFn() (*ast.Node, error) {
	fnLine := p.current().Line

	ident, ok := p.next()
	if !ok || ident.Kind != token.Identifier {
		return nil, p.expectedIdent()
	}

	params, err := p.ParseParams()
	if err != nil {
		return nil, err
	}

	returns, err := p.ParseType()
	if err != nil {
		return nil, err
	}

	body, err := p.ParseBlock(returns)
	if err != nil {
		return nil, err
	}

	fn := &ast.Function{Ident: ident.Lexeme, Params: params, Returns: returns, Body: body}
	return ast.NewNode(ast.FunctionNode{Fn: fn}, fnLine), nil
}

// ParseBlock parses a '{ body }' scope and returns its statements. The body
// admits 'let', nested 'fn', nested blocks, 'return', identifier-starting
// statements (call or reassignment) and 'if'. 'expected' is the return type
// of the enclosing function, threaded down to returns and branches.
func (p *Parser) ParseBlock(expected ast.Type) ([]*ast.Node, error) {
	open, ok := p.next()
	if !ok || open.Kind != token.OpenCurly {
		return nil, p.expectedEndExpr("body", "{")
	}

	body := []*ast.Node{}
	for {
		tok, ok := p.next()
		if !ok {
			return nil, p.expectedEndExpr("body", "}")
		}

		switch tok.Kind {
		case token.CloseCurly: // End of the block
			return body, nil

		case token.Comment:
			continue

		case token.KwLet:
			node, err := p.ParseLet()
			if err != nil {
				return nil, err
			}
			body = append(body, node)

		case token.KwFn:
			node, err := p.ParseFn()
			if err != nil {
				return nil, err
			}
			body = append(body, node)

		case token.OpenCurly: // A nested anonymous block
			p.walkBack(1)
			nested, err := p.ParseBlock(expected)
			if err != nil {
				return nil, err
			}
			body = append(body, ast.NewNode(ast.Block{Body: nested}, tok.Line))

		case token.KwReturn:
			node, err := p.ParseReturn(expected)
			if err != nil {
				return nil, err
			}
			body = append(body, node)

		case token.KwIf:
			node, err := p.ParseLogical(expected)
			if err != nil {
				return nil, err
			}
			body = append(body, node)

		case token.Identifier: // Either a call statement or a reassignment
			if next, ok := p.peek(); ok && next.Kind == token.OpenBrace {
				call, args, err := p.ParseFnCall(tok.Lexeme)
				if err != nil {
					return nil, err
				}
				body = append(body, ast.NewFunctionCall(call, args, tok.Line))
				continue
			}
			node, err := p.ParseReassignment(tok)
			if err != nil {
				return nil, err
			}
			body = append(body, node)

		default:
			return nil, p.invalidTokenInExpr("body", "a statement", tok)
		}
	}
}

func parseArrayLength(lexeme string) (uint32, error) {
	var length uint32
	for _, char := range lexeme {
		if char < '0' || char > '9' {
			return 0, errNotANumber
		}
		length = length*10 + uint32(char-'0')
	}
	return length, nil
}
