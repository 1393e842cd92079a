package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"its-hmny.dev/zontanos/pkg/ast"
	"its-hmny.dev/zontanos/pkg/token"
	"its-hmny.dev/zontanos/pkg/utils"
)

// ----------------------------------------------------------------------------
// Logical statement generation

// This section generates if/else constructs. The case sequence is folded into
// a single i1: each comparison becomes an 'icmp' with the matching signed
// predicate while the And/Or joiners consume two predicates off a stack into
// an 'and'/'or' of i1. The folded condition then drives a conditional branch
// from the current block into two freshly-materialised child blocks whose
// bodies are generated recursively with the enclosing return type.

// Specialized function to generate an if/else construct.
func (cg *CodeGen) genLogicalStatement(blk *ir.Block, statement *ast.LogicalStatement, blockName string) error {
	cond, err := cg.genCase(blk, statement.Cases, blockName)
	if err != nil {
		return err
	}

	ifName, elseName := "if_then_do", "else_do"
	if cg.blocks > 0 {
		ifName = fmt.Sprintf("if_then_do.%d", cg.blocks)
		elseName = fmt.Sprintf("else_do.%d", cg.blocks)
	}
	cg.blocks++

	ifBlk := cg.scope.irFn.NewBlock(ifName)
	ifBody, ok := statement.IfDo.Kind.(ast.Block)
	if !ok {
		return fmt.Errorf("expected a block as the if branch on line %d", statement.IfDo.Line)
	}
	if err := cg.genBlock(ifBlk, ifBody.Body, ifName); err != nil {
		return err
	}

	elseBlk := cg.scope.irFn.NewBlock(elseName)
	if statement.ElseDo != nil {
		elseBody, ok := statement.ElseDo.Kind.(ast.Block)
		if !ok {
			return fmt.Errorf("expected a block as the else branch on line %d", statement.ElseDo.Line)
		}
		if err := cg.genBlock(elseBlk, elseBody.Body, elseName); err != nil {
			return err
		}
	}

	blk.NewCondBr(cond, ifBlk, elseBlk)
	return nil
}

// Folds a whole case sequence into a single i1 value: comparisons and atomic
// clauses are pushed, every And/Or joiner pops its left side off the stack
// and combines it with the freshly generated right side.
func (cg *CodeGen) genCase(blk *ir.Block, cases []ast.Stmt, blockName string) (value.Value, error) {
	stack := utils.NewStack[value.Value]()

	for i := 0; i < len(cases); i++ {
		switch cases[i].(type) {
		case ast.OrStmt:
			lhs, err := stack.Pop()
			if err != nil {
				return nil, fmt.Errorf("can't generate a 'or' case with no value on the left hand side")
			}
			i++
			if i >= len(cases) {
				return nil, fmt.Errorf("can't generate a 'or' case with no value on the right hand side")
			}
			rhs, err := cg.statementCase(blk, cases[i], blockName)
			if err != nil {
				return nil, err
			}
			stack.Push(blk.NewOr(lhs, rhs))

		case ast.AndStmt:
			lhs, err := stack.Pop()
			if err != nil {
				return nil, fmt.Errorf("can't generate a 'and' case with no value on the left hand side")
			}
			i++
			if i >= len(cases) {
				return nil, fmt.Errorf("can't generate a 'and' case with no value on the right hand side")
			}
			rhs, err := cg.statementCase(blk, cases[i], blockName)
			if err != nil {
				return nil, err
			}
			stack.Push(blk.NewAnd(lhs, rhs))

		default:
			clause, err := cg.statementCase(blk, cases[i], blockName)
			if err != nil {
				return nil, err
			}
			stack.Push(clause)
		}
	}

	cond, err := stack.Pop()
	if err != nil {
		return nil, fmt.Errorf("got no cases to branch on")
	}
	return cond, nil
}

// Generates the i1 of a single clause: an 'icmp' for comparisons, a
// truthiness test for atomic values.
func (cg *CodeGen) statementCase(blk *ir.Block, clause ast.Stmt, blockName string) (value.Value, error) {
	switch tClause := clause.(type) {
	case ast.Compare:
		pred, err := comparePredicate(tClause.Op)
		if err != nil {
			return nil, err
		}
		return cg.genIntCase(blk, tClause.Lhs, tClause.Rhs, pred, blockName)

	case ast.Atomic:
		operand, err := cg.genOperand(blk, tClause.Val, blockName)
		if err != nil {
			return nil, err
		}
		intType, ok := operand.Type().(*types.IntType)
		if !ok {
			return nil, fmt.Errorf("can't branch on a non integer value")
		}
		if intType.BitSize == 1 {
			return operand, nil
		}
		return blk.NewICmp(enum.IPredNE, operand, constant.NewInt(intType, 0)), nil
	}

	return nil, fmt.Errorf("clause %T cannot produce a branch condition", clause)
}

// Generates the 'icmp' of a binary comparison clause, both sides must
// evaluate down to integers of the same type.
func (cg *CodeGen) genIntCase(blk *ir.Block, lhs, rhs ast.Value, pred enum.IPred, blockName string) (value.Value, error) {
	left, err := cg.genOperand(blk, lhs, blockName)
	if err != nil {
		return nil, err
	}
	right, err := cg.genOperand(blk, rhs, blockName)
	if err != nil {
		return nil, err
	}

	if _, ok := left.Type().(*types.IntType); !ok {
		return nil, fmt.Errorf("can't compare non integer values")
	}
	if !types.Equal(left.Type(), right.Type()) {
		return nil, fmt.Errorf("when comparing values they must be of the same type")
	}
	return blk.NewICmp(pred, left, right), nil
}

// Maps a comparison operator onto its signed icmp predicate.
func comparePredicate(op token.Kind) (enum.IPred, error) {
	switch op {
	case token.More:
		return enum.IPredSGT, nil
	case token.Less:
		return enum.IPredSLT, nil
	case token.MoreEq:
		return enum.IPredSGE, nil
	case token.LessEq:
		return enum.IPredSLE, nil
	case token.EqEq, token.OrOr, token.AndAnd:
		return enum.IPredEQ, nil
	}
	return 0, fmt.Errorf("'%s' is not a valid comparison operator", op)
}
