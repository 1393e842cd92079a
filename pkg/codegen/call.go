package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"its-hmny.dev/zontanos/pkg/ast"
	"its-hmny.dev/zontanos/pkg/token"
)

// ----------------------------------------------------------------------------
// Function calls

// Specialized function to generate the IR for a function call: the callee is
// looked up in the module first and in the libc shim registry second (which
// declares the external function lazily on hit). Returns nil for calls to
// void functions.
func (cg *CodeGen) genFuncCall(blk *ir.Block, call ast.FunctionCall, args []ast.Value, blockName string) (value.Value, error) {
	callee := cg.findFunc(call.CallsTo)
	if callee == nil {
		callee = cg.genCFunction(call.CallsTo)
	}
	if callee == nil {
		return nil, fmt.Errorf("couldn't find any function named '%s'", call.CallsTo)
	}

	irArgs, err := cg.genArgs(blk, args, blockName)
	if err != nil {
		return nil, err
	}

	result := blk.NewCall(callee, irArgs...)
	if types.Equal(callee.Sig.RetType, types.Void) {
		return nil, nil
	}
	return result, nil
}

// Locates a function already present in the module by name, nil when absent.
func (cg *CodeGen) findFunc(name string) *ir.Func {
	for _, fn := range cg.module.Funcs {
		if fn.Name() == name {
			return fn
		}
	}
	return nil
}

// Specialized function to materialise the argument list of a call: every
// value goes through the operand path (consts stay consts, strings become
// global string pointers, identifiers are loaded, calls and math recurse).
func (cg *CodeGen) genArgs(blk *ir.Block, args []ast.Value, blockName string) ([]value.Value, error) {
	irArgs := []value.Value{}
	for _, arg := range args {
		operand, err := cg.genOperand(blk, arg, blockName)
		if err != nil {
			return nil, err
		}
		irArgs = append(irArgs, operand)
	}
	return irArgs, nil
}

// ----------------------------------------------------------------------------
// Reassignments

// Specialized function to generate the IR for a reassignment: the target must
// resolve to a pointer. '=' stores the new value directly, the compound
// operators load the current integer value, apply the operation with the RHS
// and store the result back.
func (cg *CodeGen) genReassignment(blk *ir.Block, assignment ast.Assignment, rhs *ast.Node, blockName string) error {
	target, err := cg.getIdent(assignment.AssignsTo, blockName)
	if err != nil {
		return err
	}
	ptrType, ok := target.Type().(*types.PointerType)
	if !ok {
		return fmt.Errorf("expected '%s' to resolve to a pointer for reassignment", assignment.AssignsTo)
	}

	newValue, err := cg.genReassignmentValue(blk, rhs, blockName)
	if err != nil {
		return err
	}

	if assignment.Op == token.Eq {
		blk.NewStore(newValue, target)
		return nil
	}

	// Compound assignment, integer targets only
	if _, ok := ptrType.ElemType.(*types.IntType); !ok {
		return fmt.Errorf("'%s' does not hold an integer, compound assignment is not supported", assignment.AssignsTo)
	}

	current := blk.NewLoad(ptrType.ElemType, target)
	switch assignment.Op {
	case token.PlusIs:
		blk.NewStore(blk.NewAdd(current, newValue), target)
	case token.MinusIs:
		blk.NewStore(blk.NewSub(current, newValue), target)
	case token.TimesIs:
		blk.NewStore(blk.NewMul(current, newValue), target)
	default:
		return fmt.Errorf("'%s' is not a supported reassignment operator", assignment.Op)
	}
	return nil
}

// Materialises the RHS of a reassignment (a literal, identifier, call or
// math expression hanging off the right child).
func (cg *CodeGen) genReassignmentValue(blk *ir.Block, rhs *ast.Node, blockName string) (value.Value, error) {
	if rhs == nil {
		return nil, fmt.Errorf("reassignment is missing its value")
	}

	switch kind := rhs.Kind.(type) {
	case ast.ValueNode:
		return cg.genOperand(blk, kind.Value, blockName)

	case ast.MathNode:
		return cg.genMathValue(blk, kind.Math, blockName)

	case ast.FunctionCallNode:
		result, err := cg.genFuncCall(blk, kind.Call, kind.Call.Args(rhs), blockName)
		if err != nil {
			return nil, err
		}
		if result == nil {
			return nil, fmt.Errorf("call to void function '%s' in value position", kind.Call.CallsTo)
		}
		return result, nil
	}

	return nil, fmt.Errorf("unsupported reassignment value on line %d", rhs.Line)
}
