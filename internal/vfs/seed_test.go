package vfs

import (
	"reflect"
	"strings"
	"testing"
)

func TestSeedIsCopied(t *testing.T) {
	tmpl := Dir(Root, Dir("docs", TextFile("a.txt", "original")))
	fs, err := New(tmpl)
	if err != nil {
		t.Fatalf("Failed to create filesystem: %v", err)
	}

	tmpl.Children[0].Children[0].Content = "mutated template"
	entry, _ := fs.Get("/docs/a.txt")
	if got := entry.(File).Content(); got != "original" {
		t.Errorf("Template mutation leaked into filesystem: %q", got)
	}

	if err := fs.WriteFile("/docs/a.txt", "changed"); err != nil {
		t.Fatal(err)
	}
	if tmpl.Children[0].Children[0].Content != "mutated template" {
		t.Error("Filesystem mutation leaked into template")
	}
}

func TestDefaultTemplateFresh(t *testing.T) {
	a := NewDefault()
	b := NewDefault()

	if err := a.CreateDirectory("/only-in-a"); err != nil {
		t.Fatal(err)
	}
	if _, ok := b.Get("/only-in-a"); ok {
		t.Error("Filesystems created from the default seed must not share state")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	fs := NewDefault()
	if err := fs.CreateDirectory("/extra"); err != nil {
		t.Fatal(err)
	}

	snap := fs.Snapshot()
	clone, err := New(snap)
	if err != nil {
		t.Fatalf("Snapshot should be a valid template: %v", err)
	}
	if !reflect.DeepEqual(clone.Snapshot(), snap) {
		t.Error("Expected snapshot of clone to match")
	}

	if err := fs.Delete("/extra"); err != nil {
		t.Fatal(err)
	}
	if _, ok := clone.Get("/extra"); !ok {
		t.Error("Snapshot should be independent of the live tree")
	}
}

func TestNewRejectsInvalidTemplates(t *testing.T) {
	tests := []struct {
		name string
		tmpl *Template
		want string
	}{
		{"nil", nil, "nil"},
		{"file root", TextFile("x", ""), "must be a directory"},
		{"unknown kind", Dir(Root, &Template{Type: "socket", Name: "s"}), "unknown entry type"},
		{"duplicate names", Dir(Root, TextFile("a", ""), Dir("a")), "duplicate"},
		{"slash in name", Dir(Root, TextFile("a/b", "")), "contains '/'"},
		{"dot name", Dir(Root, Dir("..")), "reserved"},
		{"empty name", Dir(Root, TextFile("", "")), "empty"},
		{"file with children", Dir(Root, &Template{Type: "file", Name: "f", Children: []*Template{Dir("x")}}), "cannot have children"},
		{"app without target", Dir(Root, AppLink("X.app", "", "", "")), "without target"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.tmpl)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %q", tt.want, err.Error())
			}
		})
	}
}
