package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"its-hmny.dev/zontanos/pkg/ast"
)

// ----------------------------------------------------------------------------
// Allocations, stores & value materialisation

// Specialized function to generate the IR for a 'let' statement: selects an
// array or scalar alloca based on the declared type, then dispatches the
// store on the value variant hanging off the right child of the node.
func (cg *CodeGen) genAllocaStore(blk *ir.Block, variable ast.Variable, rhs *ast.Node, blockName string) error {
	varType, err := cg.genType(variable.VarType)
	if err != nil {
		return fmt.Errorf("variable '%s': %w", variable.Ident, err)
	}

	alloca := blk.NewAlloca(varType)
	alloca.SetName(variable.Ident)

	if rhs == nil {
		return fmt.Errorf("variable '%s' is missing its value", variable.Ident)
	}

	switch kind := rhs.Kind.(type) {
	case ast.ValueNode:
		return cg.genStore(blk, kind.Value, alloca, variable.VarType, blockName)

	case ast.MathNode:
		result, err := cg.genMathValue(blk, kind.Math, blockName)
		if err != nil {
			return err
		}
		blk.NewStore(result, alloca)
		return nil

	case ast.FunctionCallNode:
		result, err := cg.genFuncCall(blk, kind.Call, kind.Call.Args(rhs), blockName)
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("variable '%s': call to void function in value position", variable.Ident)
		}
		blk.NewStore(result, alloca)
		return nil
	}

	return fmt.Errorf("variable '%s' has an unsupported value on line %d", variable.Ident, rhs.Line)
}

// Specialized function to store a single value through 'ptr': literals become
// constants, identifier and math stores load/recompute the source expression
// and store the resulting IR value.
func (cg *CodeGen) genStore(blk *ir.Block, val ast.Value, ptr value.Value, srcType ast.Type, blockName string) error {
	switch kind := val.Val.(type) {
	case ast.IdentRef:
		resolved, err := cg.getIdent(kind.Name, blockName)
		if err != nil {
			return err
		}
		blk.NewStore(cg.loadIfPointer(blk, resolved), ptr)
		return nil

	case ast.CallExpr:
		result, err := cg.genFuncCall(blk, kind.Call, kind.Args, blockName)
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("call to void function '%s' in value position", kind.Call.CallsTo)
		}
		blk.NewStore(result, ptr)
		return nil

	case ast.MathExpr:
		result, err := cg.genMathValue(blk, kind.Math, blockName)
		if err != nil {
			return err
		}
		blk.NewStore(result, ptr)
		return nil
	}

	init, err := cg.genConst(val.Val, srcType)
	if err != nil {
		return err
	}
	blk.NewStore(init, ptr)
	return nil
}

// Specialized function to convert a literal TypeValue to an IR constant,
// 'srcType' drives the element type of array constants.
func (cg *CodeGen) genConst(val ast.TypeValue, srcType ast.Type) (constant.Constant, error) {
	switch kind := val.(type) {
	case ast.I8Lit:
		return constant.NewInt(types.I8, int64(kind.Value)), nil
	case ast.U8Lit:
		return constant.NewInt(types.I8, int64(kind.Value)), nil
	case ast.CharLit:
		return constant.NewInt(types.I8, int64(kind.Value)), nil
	case ast.I32Lit:
		return constant.NewInt(types.I32, int64(kind.Value)), nil
	case ast.I32Neg:
		return constant.NewInt(types.I32, int64(kind.Value)), nil
	case ast.F32Lit:
		return constant.NewFloat(types.Float, float64(kind.Value)), nil
	case ast.BoolLit:
		if kind.Value {
			return constant.NewInt(types.I1, 1), nil
		}
		return constant.NewInt(types.I1, 0), nil

	case ast.StringLit: // A string value is a const-initialised array of i8
		return constant.NewCharArrayFromString(kind.Value), nil

	case ast.ArrayLit:
		scalar := srcType
		scalar.IsArray, scalar.Size = false, 0
		elemType, err := cg.genType(scalar)
		if err != nil {
			return nil, err
		}

		elems := []constant.Constant{}
		for _, elem := range kind.Elems {
			init, err := cg.genConst(elem, scalar)
			if err != nil {
				return nil, err
			}
			elems = append(elems, init)
		}
		return constant.NewArray(types.NewArray(uint64(len(elems)), elemType), elems...), nil
	}

	return nil, fmt.Errorf("value %T has no constant form", val)
}

// Materialises a single value as an IR operand: constants stay constants, a
// string becomes a global string pointer, identifiers are loaded through
// their pointer, calls and math expressions are generated recursively. A
// failed identifier lookup here is a hard error.
func (cg *CodeGen) genOperand(blk *ir.Block, val ast.Value, blockName string) (value.Value, error) {
	switch kind := val.Val.(type) {
	case ast.StringLit:
		return cg.globalStringPtr(kind.Value), nil

	case ast.IdentRef:
		resolved, err := cg.getIdent(kind.Name, blockName)
		if err != nil {
			return nil, err
		}
		return cg.loadIfPointer(blk, resolved), nil

	case ast.CallExpr:
		result, err := cg.genFuncCall(blk, kind.Call, kind.Args, blockName)
		if err != nil {
			return nil, err
		}
		if result == nil {
			return nil, fmt.Errorf("call to void function '%s' in value position", kind.Call.CallsTo)
		}
		return result, nil

	case ast.MathExpr:
		return cg.genMathValue(blk, kind.Math, blockName)

	case ast.ArrayLit:
		return nil, fmt.Errorf("array literals cannot be materialised as operands")
	}

	return cg.genConst(val.Val, ast.NoneType())
}

// Interns 'str' as a NUL-terminated module-level byte array and returns the
// i8* pointer to its first character.
func (cg *CodeGen) globalStringPtr(str string) value.Value {
	name := ".str"
	if cg.strs > 0 {
		name = fmt.Sprintf(".str.%d", cg.strs)
	}
	cg.strs++

	global := cg.module.NewGlobalDef(name, constant.NewCharArrayFromString(str+"\x00"))
	zero := constant.NewInt(types.I64, 0)
	return constant.NewGetElementPtr(global.ContentType, global, zero, zero)
}

// ----------------------------------------------------------------------------
// Returns

// Specialized function to generate a 'return' statement, typed by the
// enclosing function's declared return type.
func (cg *CodeGen) genReturn(blk *ir.Block, right *ast.Node, blockName string) error {
	returns := cg.scope.astFn.Returns

	if right == nil {
		blk.NewRet(nil)
		return nil
	}

	switch kind := right.Kind.(type) {
	case ast.ValueNode:
		return cg.genReturnValue(blk, kind.Value, returns, blockName)

	case ast.MathNode:
		result, err := cg.genMathValue(blk, kind.Math, blockName)
		if err != nil {
			return err
		}
		blk.NewRet(result)
		return nil

	case ast.FunctionCallNode:
		result, err := cg.genFuncCall(blk, kind.Call, kind.Call.Args(right), blockName)
		if err != nil {
			return err
		}
		blk.NewRet(result)
		return nil
	}

	return fmt.Errorf("unsupported return value in function '%s' on line %d", cg.scope.astFn.Ident, right.Line)
}

// Generates the IR value of a returned ValueNode and emits the terminator.
func (cg *CodeGen) genReturnValue(blk *ir.Block, val ast.Value, returns ast.Type, blockName string) error {
	switch kind := val.Val.(type) {
	case ast.NoneVal:
		blk.NewRet(nil)
		return nil

	case ast.IdentRef:
		resolved, err := cg.getIdent(kind.Name, blockName)
		if err != nil {
			return err
		}
		blk.NewRet(cg.loadIfPointer(blk, resolved))
		return nil

	case ast.CallExpr:
		result, err := cg.genFuncCall(blk, kind.Call, kind.Args, blockName)
		if err != nil {
			return err
		}
		blk.NewRet(result)
		return nil

	case ast.MathExpr:
		result, err := cg.genMathValue(blk, kind.Math, blockName)
		if err != nil {
			return err
		}
		blk.NewRet(result)
		return nil
	}

	init, err := cg.genConst(val.Val, returns)
	if err != nil {
		return fmt.Errorf("unsupported return type in function '%s': %w", cg.scope.astFn.Ident, err)
	}
	blk.NewRet(init)
	return nil
}
