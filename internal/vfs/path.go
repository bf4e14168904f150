package vfs

import (
	"strings"
)

// Root is the path of the single root directory.
const Root = "/"

// Resolve turns inputPath into a normalized absolute path. Relative input
// is joined with cwd first. "." segments are dropped, ".." pops one level
// and never climbs above the root, empty segments collapse, and a trailing
// slash is removed unless the result is "/".
//
// Resolve is total: any input yields a valid absolute path.
func Resolve(inputPath, cwd string) string {
	var joined string
	if strings.HasPrefix(inputPath, "/") {
		joined = inputPath
	} else {
		joined = cwd + "/" + inputPath
	}

	stack := make([]string, 0, strings.Count(joined, "/")+1)
	for _, seg := range strings.Split(joined, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, seg)
		}
	}

	if len(stack) == 0 {
		return Root
	}
	return "/" + strings.Join(stack, "/")
}

// Segments returns the names along a resolved path, root excluded.
func Segments(path string) []string {
	resolved := Resolve(path, Root)
	if resolved == Root {
		return nil
	}
	return strings.Split(strings.TrimPrefix(resolved, "/"), "/")
}

// Split returns the parent directory and final name of path. The root has
// no name: Split("/") returns ("/", "").
func Split(path string) (parent, name string) {
	resolved := Resolve(path, Root)
	if resolved == Root {
		return Root, ""
	}
	idx := strings.LastIndex(resolved, "/")
	if idx == 0 {
		return Root, resolved[1:]
	}
	return resolved[:idx], resolved[idx+1:]
}

// Join appends name to dir.
func Join(dir, name string) string {
	if dir == Root {
		return Root + name
	}
	return dir + "/" + name
}

// Base returns the last element of path, or "/" for the root.
func Base(path string) string {
	_, name := Split(path)
	if name == "" {
		return Root
	}
	return name
}

// IsRoot returns true if path resolves to "/".
func IsRoot(path string) bool {
	return Resolve(path, Root) == Root
}

// DisplayPath renders cwd for a prompt, showing "~" for the root. The
// result is cosmetic and must never be fed back into Resolve.
func DisplayPath(cwd string) string {
	if cwd == Root {
		return "~"
	}
	return cwd
}

// isSubpath reports whether path equals dir or lies beneath it. Both
// arguments must already be resolved.
func isSubpath(path, dir string) bool {
	if dir == Root {
		return true
	}
	return path == dir || strings.HasPrefix(path, dir+"/")
}
