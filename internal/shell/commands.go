package shell

import (
	"context"
	"fmt"
	"strings"

	"deskfs/internal/vfs"
)

func builtins() []Command {
	return []Command{
		{Name: "cd", Usage: "cd [path]", Description: "Changes the current working directory.", Run: cd},
		{Name: "ls", Usage: "ls [path]", Description: "Lists files and directories.", Run: ls},
		{Name: "mkdir", Usage: "mkdir <directory>", Description: "Creates a new directory.", Run: mkdir},
		{Name: "cat", Usage: "cat <file>", Description: "Displays the content of a file.", Run: cat},
		{Name: "touch", Usage: "touch <file>", Description: "Creates an empty file.", Run: touch},
		{Name: "pwd", Usage: "pwd", Description: "Prints the current working directory.", Run: pwd},
		{Name: "rm", Usage: "rm <path>", Description: "Removes a file or directory.", Run: rm},
		{Name: "mv", Usage: "mv <source> <destination>", Description: "Moves or renames an entry.", Run: mv},
	}
}

func cd(_ context.Context, fs FileSystem, cwd string, args []string) Result {
	if len(args) == 0 {
		return Fail("cd", vfs.ErrMissingOperand.Error())
	}
	target := vfs.Resolve(args[0], cwd)

	entry, ok := fs.Get(target)
	if !ok {
		return Fail("cd", "no such file or directory: "+args[0])
	}

	switch entry.(type) {
	case vfs.Directory:
		return Result{NewCwd: target}
	case vfs.File, vfs.App:
		return Fail("cd", "not a directory: "+args[0])
	default:
		panic(fmt.Sprintf("shell: unknown entry type %T", entry))
	}
}

func ls(_ context.Context, fs FileSystem, cwd string, args []string) Result {
	target := cwd
	if len(args) > 0 {
		target = vfs.Resolve(args[0], cwd)
	}

	entries, ok := fs.List(target)
	if !ok {
		shown := target
		if len(args) > 0 {
			shown = args[0]
		}
		return Fail("ls", fmt.Sprintf("cannot access '%s': No such file or directory", shown))
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		switch entry.(type) {
		case vfs.Directory:
			lines = append(lines, entry.Name()+"/")
		case vfs.File, vfs.App:
			lines = append(lines, entry.Name())
		default:
			panic(fmt.Sprintf("shell: unknown entry type %T", entry))
		}
	}
	return Result{Output: strings.Join(lines, "\n")}
}

func mkdir(_ context.Context, fs FileSystem, cwd string, args []string) Result {
	if len(args) == 0 {
		return Fail("mkdir", vfs.ErrMissingOperand.Error())
	}
	if err := fs.CreateDirectory(vfs.Resolve(args[0], cwd)); err != nil {
		return Failure("mkdir", err)
	}
	return Result{}
}

func cat(_ context.Context, fs FileSystem, cwd string, args []string) Result {
	if len(args) == 0 {
		return Fail("cat", vfs.ErrMissingOperand.Error())
	}

	entry, ok := fs.Get(vfs.Resolve(args[0], cwd))
	if !ok {
		return Fail("cat", args[0]+": No such file or directory")
	}

	switch e := entry.(type) {
	case vfs.File:
		return Result{Output: e.Content()}
	case vfs.Directory, vfs.App:
		return Fail("cat", args[0]+": Is a directory")
	default:
		panic(fmt.Sprintf("shell: unknown entry type %T", entry))
	}
}

func touch(_ context.Context, fs FileSystem, cwd string, args []string) Result {
	if len(args) == 0 {
		return Fail("touch", "missing file operand")
	}
	if err := fs.CreateFile(vfs.Resolve(args[0], cwd), ""); err != nil {
		return Failure("touch", err)
	}
	return Result{}
}

func pwd(_ context.Context, _ FileSystem, cwd string, _ []string) Result {
	return Result{Output: cwd}
}

func rm(_ context.Context, fs FileSystem, cwd string, args []string) Result {
	if len(args) == 0 {
		return Fail("rm", vfs.ErrMissingOperand.Error())
	}
	target := vfs.Resolve(args[0], cwd)
	if vfs.IsRoot(target) {
		return Fail("rm", "refusing to remove '/'")
	}
	if err := fs.Delete(target); err != nil {
		return Failure("rm", err)
	}
	return Result{}
}

func mv(_ context.Context, fs FileSystem, cwd string, args []string) Result {
	switch len(args) {
	case 0:
		return Fail("mv", "missing file operand")
	case 1:
		return Fail("mv", fmt.Sprintf("missing destination file operand after '%s'", args[0]))
	}

	src := vfs.Resolve(args[0], cwd)
	dst := vfs.Resolve(args[1], cwd)

	// Moving onto a directory drops the entry inside it.
	if entry, ok := fs.Get(dst); ok {
		if _, isDir := entry.(vfs.Directory); isDir {
			dst = vfs.Join(dst, vfs.Base(src))
		}
	}

	if err := fs.Rename(src, dst); err != nil {
		return Failure("mv", err)
	}
	return Result{}
}
