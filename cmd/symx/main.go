package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/symflow/symx"
)

func main() {
	if err := run(os.Args[1:]); err == flag.ErrHelp {
		os.Exit(1)
	} else if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var cmd string
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "", "-h", "--help", "help":
		usage()
		return flag.ErrHelp
	case "simplify":
		return runSimplify(args)
	case "repl":
		return runREPL(args)
	default:
		return fmt.Errorf(`symx %s: unknown command`, cmd)
	}
}

// runSimplify parses one expression from the arguments and prints its
// simplified form.
func runSimplify(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("symx simplify: expression required")
	}
	expr, err := parseExpr(strings.Join(args, " "))
	if err != nil {
		return err
	}
	simplified, err := safeSimplify(expr)
	if err != nil {
		return err
	}
	fmt.Println(simplified)
	return nil
}

// safeSimplify runs the simplifier, converting engine assertion panics
// (width mismatches and the like from hand-typed input) into errors.
func safeSimplify(expr *symx.Expr) (simplified *symx.Expr, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("simplify: %v", r)
		}
	}()
	return symx.SimplifyExpr(expr), nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `
Symx is a rewrite engine for bit-vector expressions.

Usage:

	symx <command> [arguments]

The commands are:

	simplify    simplify a single expression
	repl        interactive session
	help        this screen
`[1:])
}
