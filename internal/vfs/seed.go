package vfs

import (
	"fmt"
	"strings"
)

// Template describes a tree the filesystem is seeded from. It is the
// serialized form used by seed files, so every field carries json and yaml
// tags. Children keep their listed order.
type Template struct {
	Type     string      `json:"type" yaml:"type"`
	Name     string      `json:"name" yaml:"name"`
	Content  string      `json:"content,omitempty" yaml:"content,omitempty"`
	Label    string      `json:"label,omitempty" yaml:"label,omitempty"`
	Target   string      `json:"target,omitempty" yaml:"target,omitempty"`
	Icon     string      `json:"icon,omitempty" yaml:"icon,omitempty"`
	Children []*Template `json:"children,omitempty" yaml:"children,omitempty"`
}

// Dir, TextFile and AppLink are shorthands for building templates in code.
func Dir(name string, children ...*Template) *Template {
	return &Template{Type: "directory", Name: name, Children: children}
}

func TextFile(name, content string) *Template {
	return &Template{Type: "file", Name: name, Content: content}
}

func AppLink(name, label, target, icon string) *Template {
	return &Template{Type: "app", Name: name, Label: label, Target: target, Icon: icon}
}

// DefaultTemplate returns the stock desktop tree. A fresh copy is returned
// on every call.
func DefaultTemplate() *Template {
	return Dir(Root,
		Dir("documents",
			Dir("project-docs",
				TextFile("project1.md", "# Project 1\n\nDetails about my first project."),
				TextFile("project2.md", "# Project 2\n\nDetails about my second project."),
			),
		),
		Dir("desktop",
			TextFile("about.md", "# About Me\n\nThis is a portfolio OS, a fun project to showcase my skills."),
			TextFile("resume.pdf", "PDF content would be handled differently, but this is a placeholder."),
			AppLink("Files.app", "Files Explorer", "FilesApp", "🗂️"),
			AppLink("Terminal.app", "Terminal", "TerminalApp", ""),
			Dir("folder1",
				TextFile("file1.txt", "File 1 content"),
				TextFile("file2.txt", "File 2 content"),
			),
		),
	)
}

// build validates t and converts it into an owned node tree. The template
// itself is never retained.
func build(t *Template, path string) (*node, error) {
	if t == nil {
		return nil, fmt.Errorf("%s: nil entry", path)
	}
	kind, err := ParseKind(t.Type)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	switch kind {
	case KindDirectory:
		n := newDirNode(t.Name)
		for _, ct := range t.Children {
			if ct == nil {
				return nil, fmt.Errorf("%s: nil entry", path)
			}
			if err := validateName(ct.Name); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			childPath := Join(path, ct.Name)
			if _, exists := n.children[ct.Name]; exists {
				return nil, fmt.Errorf("%s: duplicate entry", childPath)
			}
			c, err := build(ct, childPath)
			if err != nil {
				return nil, err
			}
			n.attach(c)
		}
		return n, nil
	case KindFile:
		if len(t.Children) > 0 {
			return nil, fmt.Errorf("%s: file cannot have children", path)
		}
		return newFileNode(t.Name, t.Content), nil
	case KindApp:
		if len(t.Children) > 0 {
			return nil, fmt.Errorf("%s: app cannot have children", path)
		}
		if t.Target == "" {
			return nil, fmt.Errorf("%s: app without target", path)
		}
		return &node{kind: KindApp, name: t.Name, label: t.Label, target: t.Target, icon: t.Icon}, nil
	default:
		return nil, fmt.Errorf("%s: unhandled kind %v", path, kind)
	}
}

func validateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("empty entry name")
	case name == "." || name == "..":
		return fmt.Errorf("reserved entry name %q", name)
	case strings.Contains(name, "/"):
		return fmt.Errorf("entry name %q contains '/'", name)
	}
	return nil
}

// toTemplate converts a node subtree back into a template.
func toTemplate(n *node) *Template {
	switch n.kind {
	case KindDirectory:
		t := &Template{Type: "directory", Name: n.name}
		for _, name := range n.order {
			t.Children = append(t.Children, toTemplate(n.children[name]))
		}
		return t
	case KindFile:
		return &Template{Type: "file", Name: n.name, Content: n.content}
	case KindApp:
		return &Template{Type: "app", Name: n.name, Label: n.label, Target: n.target, Icon: n.icon}
	default:
		panic(fmt.Sprintf("vfs: unknown node kind %v", n.kind))
	}
}
