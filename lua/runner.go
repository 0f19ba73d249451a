package lua

import (
	"context"
	"strings"

	glua "github.com/yuin/gopher-lua"
)

// Runner owns a Lua VM with the fhttp module registered.
type Runner struct {
	L      *glua.LState
	module *Module
}

// NewRunner creates a fresh VM. Scripts run under ctx: cancelling it
// interrupts the VM and any board call made after that point.
func NewRunner(ctx context.Context, module *Module) *Runner {
	L := glua.NewState()
	L.SetContext(ctx)
	module.Register(L)
	return &Runner{L: L, module: module}
}

// DoString executes a raw string of Lua code.
// The name parameter is used for stack traces.
func (r *Runner) DoString(name, code string) error {
	fn, err := r.L.Load(strings.NewReader(code), name)
	if err != nil {
		return err
	}
	r.L.Push(fn)
	return r.L.PCall(0, 0, nil)
}

// DoFile executes a Lua file from the filesystem.
func (r *Runner) DoFile(path string) error {
	return r.L.DoFile(path)
}

// Close releases the board, if still open, and the VM.
func (r *Runner) Close() error {
	err := r.module.Close()
	r.L.Close()
	return err
}
