package vfs

import "fmt"

// Kind discriminates the three entry variants.
type Kind int

const (
	KindDirectory Kind = iota
	KindFile
	KindApp
)

func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindFile:
		return "file"
	case KindApp:
		return "app"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps the template "type" field to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "directory", "dir":
		return KindDirectory, nil
	case "file":
		return KindFile, nil
	case "app":
		return KindApp, nil
	default:
		return 0, fmt.Errorf("unknown entry type %q", s)
	}
}

// Entry is a node of the tree as seen by readers: a Directory, a File or an
// App. Values are snapshots; re-query the FileSystem after a notification.
type Entry interface {
	Name() string
	entry()
}

// Directory is a snapshot of a directory entry. Use List for its children.
type Directory struct {
	name string
	len  int
}

// Name returns the directory name ("/" for the root).
func (d Directory) Name() string { return d.name }

// Len returns the number of children at the time of the snapshot.
func (d Directory) Len() int { return d.len }

func (Directory) entry() {}

// File is a snapshot of a text file.
type File struct {
	name    string
	content string
}

// Name returns the file name.
func (f File) Name() string { return f.name }

// Content returns the file content.
func (f File) Content() string { return f.content }

// Size returns the content length in bytes.
func (f File) Size() int { return len(f.content) }

func (File) entry() {}

// App is an application launcher. Target names the application to start
// and is opaque to the filesystem.
type App struct {
	name   string
	label  string
	target string
	icon   string
}

// Name returns the entry name, e.g. "Terminal.app".
func (a App) Name() string { return a.name }

// Label returns the display title, which may be empty.
func (a App) Label() string { return a.label }

// Target returns the application identifier.
func (a App) Target() string { return a.target }

// Icon returns the optional icon.
func (a App) Icon() string { return a.icon }

func (App) entry() {}

// KindOf returns the kind of e.
func KindOf(e Entry) Kind {
	switch e.(type) {
	case Directory:
		return KindDirectory
	case File:
		return KindFile
	case App:
		return KindApp
	default:
		panic(fmt.Sprintf("vfs: unknown entry type %T", e))
	}
}

// node is the owned, mutable form of an entry inside the tree. Only the
// fields belonging to kind are meaningful.
type node struct {
	kind Kind
	name string

	// directory
	children map[string]*node
	order    []string

	// file
	content string

	// app
	label  string
	target string
	icon   string
}

func newDirNode(name string) *node {
	return &node{
		kind:     KindDirectory,
		name:     name,
		children: make(map[string]*node),
	}
}

func newFileNode(name, content string) *node {
	return &node{kind: KindFile, name: name, content: content}
}

func (n *node) child(name string) (*node, bool) {
	if n.kind != KindDirectory {
		return nil, false
	}
	c, ok := n.children[name]
	return c, ok
}

// attach adds c under n, keeping insertion order.
func (n *node) attach(c *node) {
	n.children[c.name] = c
	n.order = append(n.order, c.name)
}

// detach removes the named child. Dropping the map entry releases the whole
// subtree since nothing else references it.
func (n *node) detach(name string) {
	if _, ok := n.children[name]; !ok {
		return
	}
	delete(n.children, name)
	for i, childName := range n.order {
		if childName == name {
			n.order = append(n.order[:i:i], n.order[i+1:]...)
			break
		}
	}
}

func (n *node) snapshot() Entry {
	switch n.kind {
	case KindDirectory:
		return Directory{name: n.name, len: len(n.order)}
	case KindFile:
		return File{name: n.name, content: n.content}
	case KindApp:
		return App{name: n.name, label: n.label, target: n.target, icon: n.icon}
	default:
		panic(fmt.Sprintf("vfs: unknown node kind %v", n.kind))
	}
}

// count returns the number of nodes in the subtree rooted at n.
func (n *node) count() int {
	total := 1
	for _, c := range n.children {
		total += c.count()
	}
	return total
}
