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
// Code Generator

// Takes a parsed Ast and spits out its LLVM-IR counterpart.
//
// The generator is a forward walk over the tree: every function declaration
// becomes an IR function with an 'entry' basic block, every statement inside a
// body becomes the IR sequence its §contract describes (alloca+store for let,
// call for calls, icmp/and/or plus a conditional branch for if/else, ...).
// The IR module is the sole accumulating resource: it is scoped to a single
// compilation run and only serialised when the entire walk succeeded.
type CodeGen struct {
	module *ir.Module // The IR module every definition accumulates into
	scope  *scope     // The current (IR function, AST function) pair, nil at top level

	strs   int // Counter used to derive unique global string names
	blocks int // Counter used to derive unique branch block names
}

// The current scope of the walk: the pair of handles everything below a
// function declaration needs to resolve identifiers and type returns.
type scope struct {
	irFn  *ir.Func      // The IR function being filled in
	astFn *ast.Function // The AST declaration it was generated from
}

// New initializes and returns to the caller a brand new 'CodeGen' struct
// with a fresh module to accumulate into.
func New() *CodeGen {
	return &CodeGen{module: ir.NewModule()}
}

// Compile walks the whole Ast and returns the accumulated IR module. Any
// failure is fatal to the compilation: the module is only returned when
// every node was generated successfully.
func (cg *CodeGen) Compile(tree *ast.Ast) (*ir.Module, error) {
	for _, node := range tree.Body {
		switch kind := node.Kind.(type) {
		case ast.FunctionNode:
			if err := cg.genFunction(kind.Fn); err != nil {
				return nil, err
			}

		case ast.VariableNode:
			if err := cg.genGlobal(kind.Variable, node); err != nil {
				return nil, err
			}

		default:
			return nil, fmt.Errorf("unsupported top level node on line %d", node.Line)
		}
	}
	return cg.module, nil
}

// Specialized function to generate the IR for a 'Function' node: declares the
// function with its translated signature, opens the 'entry' basic block and
// walks the body with the scope recorded for the duration of the walk.
func (cg *CodeGen) genFunction(fn *ast.Function) error {
	returns, err := cg.genType(fn.Returns)
	if err != nil {
		return fmt.Errorf("function '%s': %w", fn.Ident, err)
	}

	params, err := cg.genParams(fn.Params)
	if err != nil {
		return fmt.Errorf("function '%s': %w", fn.Ident, err)
	}

	irFn := cg.module.NewFunc(fn.Ident, returns, params...)

	enclosing, enclosingBlocks := cg.scope, cg.blocks
	cg.scope, cg.blocks = &scope{irFn: irFn, astFn: fn}, 0
	defer func() { cg.scope, cg.blocks = enclosing, enclosingBlocks }()

	entry := irFn.NewBlock("entry")
	if err := cg.genBlock(entry, fn.Body, "entry"); err != nil {
		return err
	}

	cg.terminate(irFn)
	return nil
}

// Specialized function to generate the IR for a block body: iterates the
// statements and dispatches on the node kind. 'blockName' identifies the
// basic block being filled and is threaded through every generation step so
// that identifier lookup can locate the right block.
func (cg *CodeGen) genBlock(blk *ir.Block, body []*ast.Node, blockName string) error {
	for _, node := range body {
		switch kind := node.Kind.(type) {
		case ast.VariableNode:
			if err := cg.genAllocaStore(blk, kind.Variable, node.Right, blockName); err != nil {
				return err
			}

		case ast.FunctionCallNode:
			if _, err := cg.genFuncCall(blk, kind.Call, kind.Call.Args(node), blockName); err != nil {
				return err
			}

		case ast.Return:
			if err := cg.genReturn(blk, node.Right, blockName); err != nil {
				return err
			}

		case ast.LogicalNode:
			if err := cg.genLogicalStatement(blk, kind.Statement, blockName); err != nil {
				return err
			}

		case ast.AssignmentNode:
			if err := cg.genReassignment(blk, kind.Assignment, node.Right, blockName); err != nil {
				return err
			}

		case ast.Block: // A nested anonymous block shares the enclosing basic block
			if err := cg.genBlock(blk, kind.Body, blockName); err != nil {
				return err
			}

		case ast.FunctionNode: // A nested declaration becomes its own module function
			if err := cg.genFunction(kind.Fn); err != nil {
				return err
			}

		default:
			return fmt.Errorf("unsupported statement in function '%s' on line %d", cg.scope.astFn.Ident, node.Line)
		}
	}
	return nil
}

// Specialized function to generate a global 'let' declaration: the value must
// be a constant literal since no code runs at the top level.
func (cg *CodeGen) genGlobal(variable ast.Variable, node *ast.Node) error {
	valueNode, ok := node.Right.Kind.(ast.ValueNode)
	if !ok {
		return fmt.Errorf("global '%s' must be initialised with a constant value", variable.Ident)
	}

	init, err := cg.genConst(valueNode.Value.Val, variable.VarType)
	if err != nil {
		return fmt.Errorf("global '%s': %w", variable.Ident, err)
	}

	cg.module.NewGlobalDef(variable.Ident, init)
	return nil
}

// ----------------------------------------------------------------------------
// Type translation

// Specialized function to translate a source Type to its IR counterpart,
// following the translation table: i8/u8/char -> i8, i32 -> i32, f32 ->
// float, T[N] -> [N x T], T^ -> T*, void -> void and string (as a value)
// an i8 array of its declared size.
func (cg *CodeGen) genType(srcType ast.Type) (types.Type, error) {
	var elem types.Type

	switch srcType.Base {
	case ast.I8, ast.U8, ast.Char:
		elem = types.I8
	case ast.I32:
		elem = types.I32
	case ast.F32:
		elem = types.Float
	case ast.String:
		elem = types.I8
	case ast.Void, ast.None:
		elem = types.Void
	default:
		return nil, fmt.Errorf("type '%s' cannot be translated to IR", srcType.Base)
	}

	switch {
	case srcType.IsArray:
		var arr types.Type = types.NewArray(uint64(srcType.Size), elem)
		if srcType.IsPointer {
			arr = types.NewPointer(arr)
		}
		return arr, nil

	case srcType.Base == ast.String || srcType.IsPointer:
		// A bare 'string' (and any '^' suffixed type) is a pointer at IR level
		return types.NewPointer(elem), nil
	}

	return elem, nil
}

// Specialized function to translate the parameter list of a function: every
// parameter goes through genType, so a bare 'string' parameter is
// pointer-to-byte while a 'string[N]' one stays an [N x i8] array.
func (cg *CodeGen) genParams(params []ast.Parameter) ([]*ir.Param, error) {
	irParams := []*ir.Param{}
	for _, param := range params {
		paramType, err := cg.genType(param.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter '%s': %w", param.Ident, err)
		}
		irParams = append(irParams, ir.NewParam(param.Ident, paramType))
	}
	return irParams, nil
}

// ----------------------------------------------------------------------------
// Terminators

// Closes every dangling basic block of 'irFn' with a zero-value return of the
// declared return type so the emitted module is always well-formed.
func (cg *CodeGen) terminate(irFn *ir.Func) {
	for _, blk := range irFn.Blocks {
		if blk.Term != nil {
			continue
		}
		if types.Equal(irFn.Sig.RetType, types.Void) {
			blk.NewRet(nil)
			continue
		}
		blk.NewRet(zeroValue(irFn.Sig.RetType))
	}
}

// Returns the zero value of an IR type (used to close dangling blocks).
func zeroValue(typ types.Type) value.Value {
	switch tTyp := typ.(type) {
	case *types.IntType:
		return constant.NewInt(tTyp, 0)
	case *types.FloatType:
		return constant.NewFloat(tTyp, 0)
	case *types.PointerType:
		return constant.NewNull(tTyp)
	default:
		return constant.NewZeroInitializer(typ)
	}
}
