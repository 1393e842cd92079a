package parser

import (
	"its-hmny.dev/zontanos/pkg/ast"
	"its-hmny.dev/zontanos/pkg/token"
)

// ----------------------------------------------------------------------------
// Logical expression parsing

// This section defines the parse functions for if/else constructs.
//
// The condition is a left-to-right sequence of clauses: each clause is either
// a 'value OP value' comparison (operators > >= < <= ==) or an atomic value,
// and between two clauses a '&&' or '||' joiner is consumed as an And/Or
// statement. The sequence terminates at the '{' opening the then-block.
// Parentheses around (parts of) the condition are grouping only.

// ParseLogical parses an 'if <cases> { block } (else { block })?' construct,
// the 'if' keyword has already been consumed by the caller. 'expected' is the
// return type of the enclosing function, threaded into both branch blocks.
func (p *Parser) ParseLogical(expected ast.Type) (*ast.Node, error) {
	line := p.current().Line

	cases, err := p.parseLogicalCases()
	if err != nil {
		return nil, err
	}

	ifBody, err := p.ParseBlock(expected)
	if err != nil {
		return nil, err
	}
	ifDo := ast.NewNode(ast.Block{Body: ifBody}, line)

	var elseDo *ast.Node
	if p.consumeIfNext(token.KwElse) {
		elseBody, err := p.ParseBlock(expected)
		if err != nil {
			return nil, err
		}
		elseDo = ast.NewNode(ast.Block{Body: elseBody}, line)
	}

	statement := &ast.LogicalStatement{Cases: cases, IfDo: ifDo, ElseDo: elseDo}
	return ast.NewNode(ast.LogicalNode{Statement: statement}, line), nil
}

// Parses the condition clauses left-to-right up to (but not including) the
// '{' that opens the then-block.
func (p *Parser) parseLogicalCases() ([]ast.Stmt, error) {
	cases := []ast.Stmt{}

	for {
		tok, ok := p.peek()
		if !ok {
			return nil, p.expectedEndExpr("if statement", "{")
		}

		switch tok.Kind {
		case token.OpenCurly: // The then-block starts here, leave it for ParseBlock
			return cases, nil

		case token.OpenBrace, token.CloseBrace: // Grouping parentheses
			p.next()

		case token.AndAnd:
			p.next()
			cases = append(cases, ast.AndStmt{})

		case token.OrOr:
			p.next()
			cases = append(cases, ast.OrStmt{})

		default:
			clause, err := p.parseLogicalClause()
			if err != nil {
				return nil, err
			}
			cases = append(cases, clause)
		}
	}
}

// Parses a single clause: a comparison when the first value is followed by a
// comparison operator, an atomic value otherwise.
func (p *Parser) parseLogicalClause() (ast.Stmt, error) {
	tok, ok := p.next()
	if !ok {
		return nil, p.expectedValue()
	}
	lhs, err := p.parseUnknownTypeValue(tok)
	if err != nil {
		return nil, err
	}

	op, ok := p.peek()
	if !ok {
		return nil, p.expectedEndExpr("if statement", "{")
	}

	switch op.Kind {
	case token.More, token.MoreEq, token.Less, token.LessEq, token.EqEq:
		p.next()
		rhsTok, ok := p.next()
		if !ok {
			return nil, p.expectedValue()
		}
		rhs, err := p.parseUnknownTypeValue(rhsTok)
		if err != nil {
			return nil, err
		}
		return ast.Compare{Op: op.Kind, Lhs: lhs, Rhs: rhs}, nil
	}

	return ast.Atomic{Val: lhs}, nil
}
