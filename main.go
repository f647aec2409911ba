//go:build !js

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v2"

	"minitac/pkg/compiler"
	"minitac/pkg/tac"
	"minitac/pkg/utils"
	"minitac/pkg/vm"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("minitac: ")
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		// cli.Exit errors have already been reported and exited.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var traceFlag = &cli.BoolFlag{
	Name:    "trace",
	Usage:   "write one line per executed instruction to stderr",
	EnvVars: []string{"MINITAC_TRACE"},
}

var showTACFlag = &cli.BoolFlag{
	Name:  "show-tac",
	Usage: "print the generated three-address code",
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "minitac",
		Usage:     "compile and run programs through three-address code",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log pipeline stages to stderr",
				EnvVars: []string{"MINITAC_VERBOSE"},
			},
		},
		Before: func(c *cli.Context) error {
			log.SetOutput(c.App.ErrWriter)
			if !c.Bool("verbose") {
				log.SetOutput(io.Discard)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "compile",
				Usage:     "compile a source file to TAC",
				ArgsUsage: "<file.src>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "output TAC path (default: input with .tac extension)",
					},
					showTACFlag,
				},
				Action: compileAction,
			},
			{
				Name:      "run",
				Usage:     "run a TAC file",
				ArgsUsage: "<file.tac>",
				Flags:     []cli.Flag{traceFlag},
				Action:    runAction,
			},
			{
				Name:      "exec",
				Usage:     "compile a source file and run it without writing TAC",
				ArgsUsage: "<file.src>",
				Flags:     []cli.Flag{traceFlag, showTACFlag},
				Action:    execAction,
			},
			{
				Name:      "dump",
				Usage:     "print tokens, syntax tree, symbols and TAC for a source file",
				ArgsUsage: "<file.src>",
				Action:    dumpAction,
			},
			{
				Name:      "test",
				Usage:     "compile and run every .src file in a directory",
				ArgsUsage: "<dir>",
				Action:    testAction,
			},
		},
	}
}

func requireArg(c *cli.Context, what string) (string, error) {
	if c.NArg() != 1 {
		return "", cli.Exit(fmt.Sprintf("%s: expected exactly one %s argument", c.Command.Name, what), 2)
	}
	return c.Args().First(), nil
}

// compileFile reads and compiles path. Compile failures come back as exit
// errors in the "<stage> error: <msg>" form.
func compileFile(path string) (*compiler.Unit, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("failed to read input file %q: %v", path, err), 1)
	}
	log.Printf("compiling %s (%d bytes)", path, len(source))
	unit, err := compiler.Compile(string(source))
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("%s error: %v", compiler.Stage(err), err), 1)
	}
	log.Printf("%d symbols, %d instructions", unit.Symbols.Len(), len(unit.Code))
	return unit, nil
}

func compileAction(c *cli.Context) error {
	inPath, err := requireArg(c, "source file")
	if err != nil {
		return err
	}
	unit, err := compileFile(inPath)
	if err != nil {
		return err
	}

	output := c.String("output")
	if output == "" {
		output = utils.ReplaceExt(inPath, ".tac")
	}
	text := unit.TAC()
	if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
		return cli.Exit(fmt.Sprintf("failed to write TAC file %q: %v", output, err), 1)
	}
	if c.Bool("show-tac") {
		fmt.Fprint(c.App.Writer, text)
	}
	fmt.Fprintf(c.App.Writer, "compiled %d instructions -> %s\n", len(unit.Code), output)
	return nil
}

// execute runs machine to completion, wiring its output and trace to the
// app's writers.
func execute(c *cli.Context, machine *vm.VM) error {
	machine.Output = c.App.Writer
	if c.Bool("trace") {
		machine.Trace = c.App.ErrWriter
	}
	if err := machine.Run(); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	log.Printf("halted after %d steps", machine.Steps)
	return nil
}

func runAction(c *cli.Context) error {
	path, err := requireArg(c, "TAC file")
	if err != nil {
		return err
	}
	text, err := os.ReadFile(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to read TAC file %q: %v", path, err), 1)
	}
	machine, err := vm.Load(string(text))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return execute(c, machine)
}

func execAction(c *cli.Context) error {
	path, err := requireArg(c, "source file")
	if err != nil {
		return err
	}
	unit, err := compileFile(path)
	if err != nil {
		return err
	}
	if c.Bool("show-tac") {
		fmt.Fprint(c.App.ErrWriter, unit.TAC())
	}
	prog, err := tac.Assemble(unit.Code)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return execute(c, vm.New(prog))
}

func dumpAction(c *cli.Context) error {
	path, err := requireArg(c, "source file")
	if err != nil {
		return err
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to read input file %q: %v", path, err), 1)
	}
	w := c.App.Writer

	fmt.Fprintln(w, "== tokens ==")
	tokens, err := compiler.Lex(string(source))
	if err != nil {
		return cli.Exit(fmt.Sprintf("%s error: %v", compiler.Stage(err), err), 1)
	}
	for _, tok := range tokens {
		fmt.Fprintln(w, tok)
	}

	unit, err := compiler.Compile(string(source))
	if err != nil {
		return cli.Exit(fmt.Sprintf("%s error: %v", compiler.Stage(err), err), 1)
	}
	fmt.Fprintln(w, "== ast ==")
	fmt.Fprint(w, unit.Program)
	fmt.Fprintln(w, "== symbols ==")
	fmt.Fprint(w, unit.Symbols)
	fmt.Fprintln(w, "== tac ==")
	fmt.Fprint(w, unit.TAC())
	return nil
}

// testAction compiles each .src file in a directory to a .tac file beside it
// and runs it. Failures are reported and do not stop the remaining files.
func testAction(c *cli.Context) error {
	dir, err := requireArg(c, "directory")
	if err != nil {
		return err
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.src"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	sort.Strings(files)
	w := c.App.Writer

	fmt.Fprintln(w, "=== Running All Tests ===")
	fmt.Fprintln(w)
	for _, path := range files {
		fmt.Fprintf(w, "=== Running %s ===\n", filepath.Base(path))
		unit, err := compileFile(path)
		if err != nil {
			fmt.Fprintln(w, "Compiler error:")
			fmt.Fprintln(w, err)
			fmt.Fprintln(w)
			continue
		}
		text := unit.TAC()
		if err := os.WriteFile(utils.ReplaceExt(path, ".tac"), []byte(text), 0o644); err != nil {
			return cli.Exit(fmt.Sprintf("failed to write TAC file: %v", err), 1)
		}

		var out bytes.Buffer
		runErr := runText(text, &out)
		fmt.Fprintln(w, "[OUTPUT]")
		fmt.Fprint(w, out.String())
		if runErr != nil {
			fmt.Fprintln(w, runErr)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, "=== DONE ===")
	return nil
}

// runText loads TAC text into a fresh VM and runs it, printing to out.
func runText(text string, out io.Writer) error {
	machine, err := vm.Load(text)
	if err != nil {
		return err
	}
	machine.Output = out
	if err := machine.Run(); err != nil {
		var rerr *vm.RuntimeError
		if errors.As(err, &rerr) {
			log.Printf("stopped at pc %d after %d steps", rerr.PC, machine.Steps)
		}
		return err
	}
	return nil
}
