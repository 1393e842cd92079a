package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// ----------------------------------------------------------------------------
// Identifier resolution

// This section implements scoped identifier lookup during the codegen walk.
//
// Resolution order for a name inside the current function: (1) locate the
// basic block identified by 'blockName' (default 'entry'), (2) search the
// function's parameters, (3) scan the block's instructions for one bearing
// the name (the alloca of a local variable). Callers decide whether to load
// when the resolved value turns out to be a pointer.

// getIdent resolves 'name' against the current scope following the order
// above. A miss is a hard error naming both the identifier and the function.
func (cg *CodeGen) getIdent(name, blockName string) (value.Value, error) {
	if cg.scope == nil {
		return nil, fmt.Errorf("identifier '%s' referenced outside of any function", name)
	}

	for _, param := range cg.scope.irFn.Params {
		if param.Name() == name {
			return param, nil
		}
	}

	blk := cg.findBlock(blockName)
	if blk != nil {
		for _, inst := range blk.Insts {
			named, ok := inst.(value.Named)
			if ok && named.Name() == name {
				return named, nil
			}
		}
	}

	// Fall back to the entry block, locals of the function scope live there
	if entry := cg.findBlock("entry"); entry != nil && entry != blk {
		for _, inst := range entry.Insts {
			named, ok := inst.(value.Named)
			if ok && named.Name() == name {
				return named, nil
			}
		}
	}

	return nil, fmt.Errorf(
		"couldn't find any identifier named '%s' in function '%s'", name, cg.scope.astFn.Ident,
	)
}

// Locates a basic block of the current function by name, nil when absent.
func (cg *CodeGen) findBlock(blockName string) *ir.Block {
	if blockName == "" {
		blockName = "entry"
	}
	for _, blk := range cg.scope.irFn.Blocks {
		if blk.Name() == blockName {
			return blk
		}
	}
	return nil
}

// Dereferences 'resolved' when it is a pointer (the alloca of a local),
// returning the loaded value, parameters and plain values pass through.
func (cg *CodeGen) loadIfPointer(blk *ir.Block, resolved value.Value) value.Value {
	ptrType, ok := resolved.Type().(*types.PointerType)
	if !ok {
		return resolved
	}
	return blk.NewLoad(ptrType.ElemType, resolved)
}
