package launcher

import (
	"strings"
	"testing"

	"deskfs/internal/vfs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppFor(t *testing.T) {
	assoc := DefaultAssociations()

	tests := []struct {
		name  string
		app   string
		found bool
	}{
		{"about.md", Notepad, true},
		{"/desktop/folder1/file1.txt", Notepad, true},
		{"resume.pdf", "", false},
		{"README", "", false},
		{"notes.md.bak", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, found := assoc.AppFor(tt.name)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.app, app)
		})
	}
}

func TestAssociationsFirstMatchWins(t *testing.T) {
	assoc, err := NewAssociations(
		Rule{Pattern: "todo.txt", App: "Tasks"},
		Rule{Pattern: "*.txt", App: Notepad},
	)
	require.NoError(t, err)

	app, _ := assoc.AppFor("todo.txt")
	assert.Equal(t, "Tasks", app)
	app, _ = assoc.AppFor("other.txt")
	assert.Equal(t, Notepad, app)
}

func TestNewAssociationsRejectsBadRules(t *testing.T) {
	_, err := NewAssociations(Rule{Pattern: "[", App: Notepad})
	assert.Error(t, err)

	_, err = NewAssociations(Rule{Pattern: "*.md"})
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	fs := vfs.NewDefault()
	require.NoError(t, fs.CreateFile("/desktop/notes", "x"))
	assoc := DefaultAssociations()

	tests := []struct {
		name string
		path string
		want Action
	}{
		{"desktop folder", "/desktop/folder1", Action{Kind: ActionNavigate, App: FilesApp, Path: "/desktop/folder1", Title: "folder1"}},
		{"root", "/", Action{Kind: ActionNavigate, App: FilesApp, Path: "/", Title: "Files"}},
		{"files app", "/desktop/Files.app", Action{Kind: ActionLaunch, App: "FilesApp", Path: "/", Title: "Files"}},
		{"terminal app", "/desktop/Terminal.app", Action{Kind: ActionLaunch, App: "TerminalApp", Path: "/", Title: "Terminal"}},
		{"associated file", "/desktop/about.md", Action{Kind: ActionOpenFile, App: Notepad, Path: "/desktop/about.md", Title: "about.md"}},
		{"unassociated file", "/desktop/resume.pdf", Action{Kind: ActionNone, Path: "/desktop/resume.pdf", Title: "resume.pdf"}},
		{"no extension", "/desktop/notes", Action{Kind: ActionNone, Path: "/desktop/notes", Title: "notes"}},
		{"unnormalized path", "/desktop/./folder1/../about.md", Action{Kind: ActionOpenFile, App: Notepad, Path: "/desktop/about.md", Title: "about.md"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Open(fs, assoc, tt.path)
			require.NoError(t, err)
			if _, isFile := mustGet(t, fs, got.Path).(vfs.File); isFile {
				assert.True(t, strings.HasPrefix(got.MIME, "text/plain"), "unexpected MIME %q", got.MIME)
				got.MIME = ""
			} else {
				assert.Empty(t, got.MIME)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func mustGet(t *testing.T, fs *vfs.FileSystem, path string) vfs.Entry {
	t.Helper()
	entry, ok := fs.Get(path)
	require.True(t, ok, "missing %s", path)
	return entry
}

func TestOpenDetectsBinaryContent(t *testing.T) {
	fs := vfs.NewDefault()
	require.NoError(t, fs.CreateFile("/logo.png", "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))

	got, err := Open(fs, DefaultAssociations(), "/logo.png")
	require.NoError(t, err)
	assert.Equal(t, ActionNone, got.Kind)
	assert.Equal(t, "image/png", got.MIME)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(vfs.NewDefault(), DefaultAssociations(), "/desktop/nope")
	require.Error(t, err)
	assert.True(t, vfs.IsNotFound(err))
}

func TestActionKindString(t *testing.T) {
	assert.Equal(t, "navigate", ActionNavigate.String())
	assert.Equal(t, "ActionKind(9)", ActionKind(9).String())
}
