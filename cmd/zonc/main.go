package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"its-hmny.dev/zontanos/pkg/codegen"
	"its-hmny.dev/zontanos/pkg/lexer"
	"its-hmny.dev/zontanos/pkg/parser"

	"github.com/fatih/color"
	"github.com/teris-io/cli"
)

var Description = strings.ReplaceAll(`
The Zontanos compiler translates programs written in the Zontanos language (a small
statically-typed systems language) into native executables: the source is compiled
down to textual LLVM-IR, assembled with 'llvm-as' and finally linked with 'clang'.
`, "\n", " ")

var Zonc = cli.New(Description).
	WithArg(cli.NewArg("path", "The source (.zon) file to be compiled").
		WithType(cli.TypeString)).
	WithOption(cli.NewOption("out", "The output executable path (defaults to 'a.out')").
		WithChar('o').WithType(cli.TypeString)).
	WithAction(Handler)

// The colored prefixes of the compiler front-end diagnostics.
var (
	errorTag   = color.New(color.FgRed, color.Bold).Sprint("ERROR:")
	warningTag = color.New(color.FgYellow, color.Bold).Sprint("WARNING:")
)

func Handler(args []string, options map[string]string) int {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "%s Not enough arguments provided, use --help\n", errorTag)
		return -1
	}

	input := args[0]
	if filepath.Ext(input) != ".zon" {
		fmt.Fprintf(os.Stderr, "%s A Zontanos source file must end with .zon\n", errorTag)
		return -1
	}

	content, err := os.ReadFile(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s Unable to open input file: %s\n", errorTag, err)
		return -1
	}

	// Instantiate a scanner for the source and produce the filtered token stream,
	// the dropped invalid tokens are surfaced as warnings but do not stop the pipeline.
	scanner := lexer.New(string(content))
	tokens := scanner.Lex()
	for _, dropped := range scanner.Diagnostics() {
		fmt.Fprintf(os.Stderr, "%s Dropped invalid token '%s' on line %d (%s)\n",
			warningTag, dropped.Lexeme, dropped.Line, dropped.Reason)
	}

	// Parses the token stream and extracts the Ast from it.
	tree, err := parser.New(tokens).Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s Unable to complete 'parsing' pass: %s\n", errorTag, err)
		return -1
	}

	// Walks the Ast and accumulates the LLVM-IR module.
	module, err := codegen.New().Compile(tree)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s Unable to complete 'codegen' pass: %s\n", errorTag, err)
		return -1
	}

	// The textual IR is handed over to the LLVM toolchain: 'llvm-as' assembles the
	// bitcode and 'clang' links the final executable. Both intermediate artifacts
	// ('main.l' and 'main.l.bc') are transient and removed on every exit path.
	if err := os.WriteFile("main.l", []byte(module.String()), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "%s Unable to write output file: %s\n", errorTag, err)
		return -1
	}
	defer os.Remove("main.l")

	if out, err := exec.Command("llvm-as", "main.l").CombinedOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "%s Couldn't run llvm-as, perhaps you don't have llvm installed: %s\n",
			errorTag, strings.TrimSpace(string(out)))
		return -1
	}
	defer os.Remove("main.l.bc")

	output := options["out"]
	if output == "" {
		output = "a.out"
	}
	if out, err := exec.Command("clang", "main.l.bc", "-o", output).CombinedOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "%s Couldn't run clang, perhaps you don't have it installed: %s\n",
			errorTag, strings.TrimSpace(string(out)))
		return -1
	}

	return 0
}

func main() { os.Exit(Zonc.Run(os.Args, os.Stdout)) }
