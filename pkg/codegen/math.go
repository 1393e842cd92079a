package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"its-hmny.dev/zontanos/pkg/ast"
	"its-hmny.dev/zontanos/pkg/token"
	"its-hmny.dev/zontanos/pkg/utils"
)

// ----------------------------------------------------------------------------
// Shunting-Yard arithmetic evaluation

// This section evaluates a Math term sequence with the classical two-stack
// walk: a number stack of IR integer values and an operator stack. The higher
// precedence '*' and '/' are applied eagerly (pop the left operand, fetch the
// next term as right, emit mul/sdiv, push the result back), while '+' and '-'
// are deferred onto the operator stack and drained in order by a post-pass.
// All operations are signed i32: overflow is not checked and division by zero
// is not prevented.

// genMathValue evaluates a whole Math sequence down to a single IR integer.
func (cg *CodeGen) genMathValue(blk *ir.Block, math ast.Math, blockName string) (value.Value, error) {
	nums := utils.NewDeque[value.Value]()
	ops := utils.NewDeque[token.Kind]()

	terms := math.Terms
	for i := 0; i < len(terms); i++ {
		switch kind := terms[i].Val.(type) {
		case ast.I32Lit:
			nums.PushBack(constant.NewInt(types.I32, int64(kind.Value)))

		case ast.I32Neg:
			// Unary minus: the absolute value plus an implicit '-' on the operator stack
			abs := kind.Value
			if abs < 0 {
				abs = -abs
			}
			ops.PushBack(token.Min)
			nums.PushBack(constant.NewInt(types.I32, int64(abs)))

		case ast.MathExpr, ast.IdentRef, ast.CallExpr:
			operand, err := cg.mathOperand(blk, terms[i], blockName)
			if err != nil {
				return nil, err
			}
			nums.PushBack(operand)

		case ast.OpTerm:
			switch kind.Op {
			case token.Plus, token.Min: // Deferred to the draining post-pass
				ops.PushBack(kind.Op)

			case token.Times, token.Slash: // Applied eagerly on the spot
				lhs, err := nums.PopBack()
				if err != nil {
					return nil, fmt.Errorf("no number on the left hand side of the '%s' operator", kind.Op)
				}
				i++
				if i >= len(terms) {
					return nil, fmt.Errorf("no number on the right hand side of the '%s' operator", kind.Op)
				}
				rhs, err := cg.mathOperand(blk, terms[i], blockName)
				if err != nil {
					return nil, err
				}
				if kind.Op == token.Times {
					nums.PushBack(blk.NewMul(lhs, rhs))
				} else {
					nums.PushBack(blk.NewSDiv(lhs, rhs))
				}

			default:
				return nil, fmt.Errorf("'%s' is not a valid math operator", kind.Op)
			}

		default:
			return nil, fmt.Errorf("value %T cannot appear in a math expression", terms[i].Val)
		}
	}

	// Draining post-pass: the deferred '+' and '-' are applied in source order
	for ops.Count() > 0 {
		op, _ := ops.PopFront()
		lhs, err := nums.PopFront()
		if err != nil {
			return nil, fmt.Errorf("no number on the left hand side of the '%s' operator", op)
		}
		rhs, err := nums.PopFront()
		if err != nil {
			return nil, fmt.Errorf("no number on the right hand side of the '%s' operator", op)
		}

		if op == token.Plus {
			nums.PushFront(blk.NewAdd(lhs, rhs))
		} else {
			nums.PushFront(blk.NewSub(lhs, rhs))
		}
	}

	result, err := nums.PopFront()
	if err != nil {
		return nil, fmt.Errorf("no value left on the math stack")
	}
	return result, nil
}

// Materialises a single math term (a literal, a sub-expression, a call or an
// identifier) checking that it evaluates down to an integer.
func (cg *CodeGen) mathOperand(blk *ir.Block, term ast.Value, blockName string) (value.Value, error) {
	switch kind := term.Val.(type) {
	case ast.I32Lit:
		return constant.NewInt(types.I32, int64(kind.Value)), nil
	case ast.I32Neg:
		return constant.NewInt(types.I32, int64(kind.Value)), nil
	case ast.MathExpr:
		return cg.genMathValue(blk, kind.Math, blockName)
	}

	operand, err := cg.genOperand(blk, term, blockName)
	if err != nil {
		return nil, err
	}
	if _, ok := operand.Type().(*types.IntType); !ok {
		return nil, fmt.Errorf("expected an integer value in math expression, got %s", operand.Type())
	}
	return operand, nil
}
