package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
)

// ----------------------------------------------------------------------------
// Libc shims

// This section contains the lazy declarations of the external C functions the
// generated code can rely on. The call codegen consults this registry only
// after a module-local lookup missed: on hit the external function is added
// to the module (a body-less func emits as a 'declare') and linked by clang.

// Declares 'i32 @printf(i8*, ...)', the variadic formatted printing shim.
func (cg *CodeGen) genPrintf() *ir.Func {
	printf := cg.module.NewFunc("printf", types.I32, ir.NewParam("", types.NewPointer(types.I8)))
	printf.Sig.Variadic = true
	return printf
}

// Declares 'i32 @abs(i32)', the integer absolute value shim.
func (cg *CodeGen) genAbs() *ir.Func {
	return cg.module.NewFunc("abs", types.I32, ir.NewParam("", types.I32))
}

// Declares 'i8 @getchar()', the single character input shim.
func (cg *CodeGen) genGetchar() *ir.Func {
	return cg.module.NewFunc("getchar", types.I8)
}

// Declares 'i8 @putchar(i8)', the single character output shim.
func (cg *CodeGen) genPutchar() *ir.Func {
	return cg.module.NewFunc("putchar", types.I8, ir.NewParam("", types.I8))
}

// genCFunction maps a callee name onto its libc shim, declaring it lazily.
// Returns nil when the name matches no shim at all.
func (cg *CodeGen) genCFunction(name string) *ir.Func {
	switch name {
	case "printf":
		return cg.genPrintf()
	case "abs":
		return cg.genAbs()
	case "getchar":
		return cg.genGetchar()
	case "putchar":
		return cg.genPutchar()
	}
	return nil
}
