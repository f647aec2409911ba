package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"minitac/pkg/compiler"
	"minitac/pkg/grid"
	"minitac/pkg/tac"
	"minitac/pkg/utils"
	"minitac/pkg/vm"
)

// Debugger is the window-independent state of the step debugger.
type Debugger struct {
	path string
	prog *tac.Program
	vm   *vm.VM
	out  bytes.Buffer

	// srcIndex[pc] is the position of Code[pc] within prog.Source.
	srcIndex []int

	Running       bool
	StepsPerFrame int
	Status        string
}

// loadProgram reads a source file, a TAC file or a snapshot archive. A
// snapshot also yields the VM to resume.
func loadProgram(path string) (*tac.Program, *vm.VM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".src":
		unit, err := compiler.Compile(string(data))
		if err != nil {
			return nil, nil, fmt.Errorf("%s error: %w", compiler.Stage(err), err)
		}
		prog, err := tac.Assemble(unit.Code)
		return prog, nil, err
	case ".zip":
		machine, err := vm.Restore(data)
		if err != nil {
			return nil, nil, err
		}
		return machine.Program(), machine, nil
	}
	prog, err := tac.AssembleText(string(data))
	return prog, nil, err
}

// NewDebugger prepares prog for stepping. resume, if non-nil, is used
// instead of a fresh VM.
func NewDebugger(path string, prog *tac.Program, resume *vm.VM) *Debugger {
	d := &Debugger{path: path, prog: prog, StepsPerFrame: 200}
	for i, in := range prog.Source {
		if in.Op != tac.OpLabel {
			d.srcIndex = append(d.srcIndex, i)
		}
	}
	if resume != nil {
		d.vm = resume
		d.vm.Output = &d.out
		d.Status = fmt.Sprintf("resumed at pc %d", resume.PC)
	} else {
		d.Restart()
	}
	return d
}

// Restart discards all state and positions at the first instruction.
func (d *Debugger) Restart() {
	d.out.Reset()
	d.vm = vm.New(d.prog)
	d.vm.Output = &d.out
	d.Running = false
	d.Status = "ready"
}

func (d *Debugger) VM() *vm.VM {
	return d.vm
}

func (d *Debugger) Output() string {
	return d.out.String()
}

func (d *Debugger) updateStatus(err error) {
	switch {
	case err != nil:
		d.Running = false
		d.Status = err.Error()
	case d.vm.Halted:
		d.Running = false
		d.Status = fmt.Sprintf("halted after %d steps", d.vm.Steps)
	case d.Running:
		d.Status = fmt.Sprintf("running, %d steps", d.vm.Steps)
	default:
		d.Status = fmt.Sprintf("paused at pc %d", d.vm.PC)
	}
}

// Step executes a single instruction.
func (d *Debugger) Step() {
	d.Running = false
	d.updateStatus(d.vm.Step())
}

func (d *Debugger) ToggleRun() {
	if d.vm.Halted || d.vm.Err != nil {
		return
	}
	d.Running = !d.Running
	d.updateStatus(nil)
}

// Tick advances a running program by up to StepsPerFrame instructions.
func (d *Debugger) Tick() {
	if !d.Running {
		return
	}
	_, err := d.vm.RunSteps(d.StepsPerFrame)
	d.updateStatus(err)
}

// SnapshotPath is where Snapshot writes.
func (d *Debugger) SnapshotPath() string {
	return utils.ReplaceExt(d.path, ".snapshot.zip")
}

func (d *Debugger) Snapshot() error {
	data, err := d.vm.Snapshot()
	if err != nil {
		return err
	}
	path := d.SnapshotPath()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	d.Status = "snapshot saved to " + path
	return nil
}

// Listing renders up to max source lines centred on the current
// instruction, which is marked with "> ".
func (d *Debugger) Listing(max int) []string {
	src := d.prog.Source
	current := len(src)
	if d.vm.PC >= 0 && d.vm.PC < len(d.srcIndex) {
		current = d.srcIndex[d.vm.PC]
	}

	first := current - max/2
	if first > len(src)-max {
		first = len(src) - max
	}
	if first < 0 {
		first = 0
	}

	var lines []string
	for i := first; i < len(src) && len(lines) < max; i++ {
		marker := "  "
		if i == current {
			marker = "> "
		}
		indent := "  "
		if src[i].Op == tac.OpLabel {
			indent = ""
		}
		lines = append(lines, marker+indent+src[i].String())
	}
	if current == len(src) && len(lines) < max {
		lines = append(lines, "> <end>")
	}
	return lines
}

// VarCells returns "name = value" for every variable, sorted by name.
func (d *Debugger) VarCells() []string {
	names := d.vm.VarNames()
	cells := make([]string, len(names))
	for i, name := range names {
		val, _ := d.vm.Lookup(name)
		cells[i] = fmt.Sprintf("%s = %d", name, val)
	}
	return cells
}

// OutputTail returns the last n lines printed by the program.
func (d *Debugger) OutputTail(n int) []string {
	text := strings.TrimRight(d.out.String(), "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

var (
	panelBG = color.RGBA{0x1D, 0x2B, 0x53, 0xFF}
	panelFG = color.RGBA{0xFF, 0xF1, 0xE8, 0xFF}
)

// renderVarPanel draws cells onto a width×height bitmap, cols cells per row.
func renderVarPanel(cells []string, cols, cellW, cellH, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: panelBG}, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	d := &font.Drawer{Dst: img, Src: image.NewUniform(panelFG), Face: face}
	for i, cell := range cells {
		x, y := grid.GetGridCoords(i, cols)
		d.Dot = fixed.P(x*cellW+4, y*cellH+face.Ascent+2)
		d.DrawString(cell)
	}
	return img
}
