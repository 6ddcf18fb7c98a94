package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"rowlite/pager"
	"rowlite/table"
)

// newLogger builds the diagnostics logger. All protocol output goes to
// stdout via fmt; the logger writes to stderr only and never participates
// in the REPL protocol. Set ROWLITE_DEBUG to see split/flush events.
func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if os.Getenv("ROWLITE_DEBUG") != "" {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Must supply a database filename.")
		os.Exit(1)
	}

	logger := newLogger()
	defer logger.Sync()

	t, err := table.Open(afero.NewOsFs(), os.Args[1], logger)
	if err != nil {
		if errors.Is(err, pager.ErrCorruptFile) {
			fmt.Println("Db file is not a whole number of pages. Corrupt file.")
		} else {
			fmt.Println("Unable to open file.")
		}
		os.Exit(1)
	}

	rl, err := newLineReader()
	if err != nil {
		fmt.Printf("Unable to open terminal: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	for {
		input, err := readInput(rl)
		if err != nil {
			// EOF or a broken terminal; close cleanly, as the protocol
			// offers no way to continue
			fmt.Printf("Error reading input: %v\n", err)
			t.Close()
			os.Exit(1)
		}
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, ".") {
			result, err := doMetaCommand(input, t, os.Stdout)
			if err != nil {
				fmt.Printf("Fatal: %v\n", err)
				os.Exit(1)
			}
			switch result {
			case MetaCommandExit:
				if err := t.Close(); err != nil {
					fmt.Println("Error closing db file.")
					os.Exit(1)
				}
				os.Exit(0)
			case MetaCommandSuccess:
				continue
			case MetaCommandUnrecognizedCommand:
				fmt.Printf("Unrecognized command '%s'\n", input)
				continue
			}
		}

		stmt, prepareResult := prepareStatement(input)
		switch prepareResult {
		case PrepareSuccess:
		case PrepareNegativeID:
			fmt.Println("ID must be positive.")
			continue
		case PrepareStringTooLong:
			fmt.Println("String is too long.")
			continue
		case PrepareSyntaxError:
			fmt.Println("Syntax error. Could not parse statement.")
			continue
		case PrepareUnrecognizedStatement:
			fmt.Printf("Unrecognized keyword at start of '%s'.\n", input)
			continue
		}

		executeResult, err := executeStatement(stmt, t, os.Stdout)
		if err != nil {
			// any error surfacing here is a broken invariant or failed I/O
			fmt.Printf("Fatal: %v\n", err)
			os.Exit(1)
		}
		switch executeResult {
		case ExecuteSuccess:
			fmt.Println("Executed.")
		case ExecuteDuplicateKey:
			fmt.Println("Error: Duplicate key.")
		}
	}
}
