package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/ergochat/readline"
	"github.com/symflow/symx"
)

// runREPL starts an interactive session: each line is parsed, simplified
// and printed alongside its complexity score.
func runREPL(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("symx repl: unexpected arguments")
	}

	rl, err := readline.NewFromConfig(&readline.Config{
		Prompt:          "symx> ",
		HistoryFile:     historyPath(),
		HistoryLimit:    500,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline init: %w", err)
	}
	defer func() { _ = rl.Close() }()

	fmt.Println("Symx REPL. Type 'help' for commands, 'exit' to quit.")

	for {
		line, err := rl.ReadLine()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) || err != nil {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		if err := execute(line); err != nil {
			fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
		}
	}
	return nil
}

// execute handles one REPL line: a command or a bare expression.
func execute(line string) error {
	cmd, rest := line, ""
	if i := strings.IndexByte(line, ' '); i >= 0 {
		cmd, rest = line[:i], strings.TrimSpace(line[i+1:])
	}

	switch cmd {
	case "help":
		fmt.Println("  <expr>        simplify an expression, e.g. (a:32 + 0) & a:32")
		fmt.Println("  dump <expr>   print the parsed tree without simplifying")
		fmt.Println("  rules         list the built-in rule table")
		fmt.Println("  exit          quit")
		return nil

	case "rules":
		for _, rule := range symx.DefaultRules() {
			fmt.Printf("  %-16s %s => %s\n", rule.Name, rule.From, rule.To)
		}
		return nil

	case "dump":
		expr, err := parseExpr(rest)
		if err != nil {
			return err
		}
		fmt.Print(spew.Sdump(expr))
		return nil

	default:
		expr, err := parseExpr(line)
		if err != nil {
			return err
		}
		simplified, err := safeSimplify(expr)
		if err != nil {
			return err
		}
		fmt.Printf("  in:  %s  (complexity %.0f)\n", expr, expr.Complexity())
		fmt.Printf("  out: %s  (complexity %.0f)\n", simplified, simplified.Complexity())
		return nil
	}
}

// historyPath returns the REPL history file location, or "" if no home
// directory is available.
func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".symx_history")
}
