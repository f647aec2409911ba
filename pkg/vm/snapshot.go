package vm

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"minitac/pkg/tac"
)

const (
	snapshotProgram = "program.tac"
	snapshotState   = "state.json"
)

// snapshotStateJSON is the serialisable execution state.
type snapshotStateJSON struct {
	PC     int              `json:"pc"`
	Steps  int              `json:"steps"`
	Halted bool             `json:"halted"`
	Vars   map[string]int64 `json:"vars"`
}

// Snapshot serialises the program and its execution state into an in-memory
// ZIP archive. A VM that has failed cannot be snapshotted.
func (v *VM) Snapshot() ([]byte, error) {
	if v.Err != nil {
		return nil, fmt.Errorf("snapshot of failed vm: %w", v.Err)
	}
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	if err := writeZipEntry(zw, snapshotProgram, []byte(v.prog.Text())); err != nil {
		return nil, err
	}

	state := snapshotStateJSON{
		PC:     v.PC,
		Steps:  v.Steps,
		Halted: v.Halted,
		Vars:   v.Vars(),
	}
	jsonData, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	if err := writeZipEntry(zw, snapshotState, jsonData); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// Restore rebuilds a VM from a Snapshot archive. The result continues from
// exactly where the snapshot was taken; Output and Trace must be set again.
func Restore(data []byte) (*VM, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	fileMap := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		fileMap[f.Name] = f
	}

	text, err := readZipEntry(fileMap, snapshotProgram)
	if err != nil {
		return nil, err
	}
	prog, err := tac.AssembleText(string(text))
	if err != nil {
		return nil, fmt.Errorf("reassemble program: %w", err)
	}

	jsonData, err := readZipEntry(fileMap, snapshotState)
	if err != nil {
		return nil, err
	}
	var state snapshotStateJSON
	if err := json.Unmarshal(jsonData, &state); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	if state.PC < 0 || state.PC > len(prog.Code) {
		return nil, fmt.Errorf("snapshot pc %d outside program of %d instructions", state.PC, len(prog.Code))
	}

	v := New(prog)
	v.PC = state.PC
	v.Steps = state.Steps
	v.Halted = state.Halted || state.PC == len(prog.Code)
	for k, val := range state.Vars {
		v.vars[k] = val
	}
	return v, nil
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create zip entry %q: %w", name, err)
	}
	_, err = w.Write(data)
	return err
}

func readZipEntry(fileMap map[string]*zip.File, name string) ([]byte, error) {
	f, ok := fileMap[name]
	if !ok {
		return nil, fmt.Errorf("zip entry %q not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open zip entry %q: %w", name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
