// Package shell interprets terminal command lines against a virtual
// filesystem.
package shell

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"deskfs/internal/logging"
	"deskfs/internal/metrics"
	"deskfs/internal/vfs"
)

var (
	logger = logging.GetLogger().WithPrefix("shell")
)

// FileSystem is the part of the virtual filesystem the engine needs.
// *vfs.FileSystem satisfies it.
type FileSystem interface {
	Get(path string) (vfs.Entry, bool)
	List(path string) ([]vfs.Entry, bool)
	CreateFile(path, content string) error
	CreateDirectory(path string) error
	Delete(path string) error
	Rename(oldPath, newPath string) error
}

// Result is the outcome of one command line. NewCwd is empty unless the
// command changed the working directory.
type Result struct {
	Output string
	NewCwd string

	failed bool
}

// Failed reports whether the command reported an error.
func (r Result) Failed() bool {
	return r.failed
}

// Cwd returns the working directory to use after this result, given the
// directory the command ran in.
func (r Result) Cwd(current string) string {
	if r.NewCwd != "" {
		return r.NewCwd
	}
	return current
}

// HandlerFunc runs one command. Handlers never return errors: failures are
// rendered into the result output as "<cmd>: <message>".
type HandlerFunc func(ctx context.Context, fs FileSystem, cwd string, args []string) Result

// Command is an entry of the command table.
type Command struct {
	Name        string
	Usage       string
	Description string
	Run         HandlerFunc
}

// Engine dispatches command lines to the command table.
type Engine struct {
	commands map[string]Command
}

// NewEngine returns an engine with the built-in command table.
func NewEngine() *Engine {
	e := &Engine{commands: make(map[string]Command)}
	for _, cmd := range builtins() {
		e.Register(cmd)
	}
	e.Register(Command{
		Name:        "help",
		Usage:       "help",
		Description: "List available commands.",
		Run:         e.help,
	})
	return e
}

// Register adds or replaces a command.
func (e *Engine) Register(cmd Command) {
	logger.Trace("Registering command %q", cmd.Name)
	e.commands[cmd.Name] = cmd
}

// Commands returns the command table sorted by name.
func (e *Engine) Commands() []Command {
	out := make([]Command, 0, len(e.commands))
	for _, cmd := range e.commands {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Tokenize splits a command line on runs of whitespace.
func Tokenize(line string) []string {
	return strings.Fields(line)
}

// Execute runs one command line in cwd. The returned error is non-nil only
// when ctx is already done; every other failure is reported in the output.
func (e *Engine) Execute(ctx context.Context, line string, fs FileSystem, cwd string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	tokens := Tokenize(line)
	if len(tokens) == 0 {
		return Result{}, nil
	}

	name, args := tokens[0], tokens[1:]
	cmd, ok := e.commands[name]
	if !ok {
		logger.Debug("Unknown command %q", name)
		metrics.RecordCommand("unknown", metrics.StatusNotFound)
		return Result{Output: "command not found: " + name, failed: true}, nil
	}

	logger.Debug("Executing %q with %d args in %q", name, len(args), cwd)
	result := e.run(ctx, cmd, fs, cwd, args)

	status := metrics.StatusOK
	if result.failed {
		status = metrics.StatusError
	}
	metrics.RecordCommand(name, status)
	return result, nil
}

// run calls the handler and turns a panic, from the handler or from a
// filesystem subscriber it triggered, into a failed result.
func (e *Engine) run(ctx context.Context, cmd Command, fs FileSystem, cwd string, args []string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Command %q panicked: %v", cmd.Name, r)
			result = Fail(cmd.Name, fmt.Sprint(r))
		}
	}()
	return cmd.Run(ctx, fs, cwd, args)
}

func (e *Engine) help(_ context.Context, _ FileSystem, _ string, _ []string) Result {
	var b strings.Builder
	for i, cmd := range e.Commands() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(cmd.Usage)
		b.WriteString(" -- ")
		b.WriteString(cmd.Description)
	}
	return Result{Output: b.String()}
}

// Failure renders a filesystem error as "<cmd>: <message>".
func Failure(name string, err error) Result {
	var fsErr *vfs.Error
	if !errors.As(err, &fsErr) {
		logger.Warn("%s: unexpected error type %T: %v", name, err, err)
	}
	return Result{Output: name + ": " + err.Error(), failed: true}
}

// Fail renders a diagnostic as "<cmd>: <message>" and marks the result
// failed. Commands registered from outside the package use it to report
// errors; a failed result never changes the working directory.
func Fail(name, message string) Result {
	return Result{Output: name + ": " + message, failed: true}
}
