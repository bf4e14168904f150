// Package launcher decides what opening an entry of the virtual filesystem
// does: navigate a file browser, launch an application or open a file in
// its associated application.
package launcher

import (
	"fmt"
	"strings"

	"deskfs/internal/logging"
	"deskfs/internal/vfs"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"
)

var (
	logger = logging.GetLogger().WithPrefix("launcher")
)

// Application ids known to the desktop.
const (
	FilesApp = "FilesApp"
	Notepad  = "Notepad"
)

// Rule maps file base names matching Pattern to App.
type Rule struct {
	Pattern string
	App     string
}

// Associations is an ordered list of rules; the first match wins.
type Associations struct {
	rules []Rule
}

// NewAssociations validates every pattern up front.
func NewAssociations(rules ...Rule) (*Associations, error) {
	for _, r := range rules {
		if !doublestar.ValidatePattern(r.Pattern) {
			return nil, fmt.Errorf("invalid glob pattern '%s'", r.Pattern)
		}
		if r.App == "" {
			return nil, fmt.Errorf("pattern '%s' has no application", r.Pattern)
		}
	}
	return &Associations{rules: append([]Rule(nil), rules...)}, nil
}

// DefaultAssociations opens markdown and text files in Notepad.
func DefaultAssociations() *Associations {
	a, err := NewAssociations(Rule{Pattern: "*.{md,txt}", App: Notepad})
	if err != nil {
		panic(err)
	}
	return a
}

// AppFor returns the application associated with a file name. Only the base
// name is matched.
func (a *Associations) AppFor(name string) (string, bool) {
	base := vfs.Base(name)
	for _, r := range a.rules {
		// Patterns were validated, so Match cannot fail.
		if ok, _ := doublestar.Match(r.Pattern, base); ok {
			return r.App, true
		}
	}
	return "", false
}

// ActionKind says what the desktop should do.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionNavigate
	ActionLaunch
	ActionOpenFile
)

func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case ActionNavigate:
		return "navigate"
	case ActionLaunch:
		return "launch"
	case ActionOpenFile:
		return "open"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

// Action describes the window to open. Path is where the application
// starts, Title is the window title. MIME is the detected content type of
// a file and empty otherwise.
type Action struct {
	Kind  ActionKind
	App   string
	Path  string
	Title string
	MIME  string
}

// Open resolves path (absolute) against fs and returns the action a double
// click on it triggers.
func Open(fs Getter, assoc *Associations, path string) (Action, error) {
	path = vfs.Resolve(path, vfs.Root)
	entry, ok := fs.Get(path)
	if !ok {
		return Action{}, &vfs.Error{Op: "open", Path: path, Err: vfs.ErrNotFound}
	}

	var action Action
	switch e := entry.(type) {
	case vfs.Directory:
		title := vfs.Base(path)
		if vfs.IsRoot(path) {
			title = "Files"
		}
		action = Action{Kind: ActionNavigate, App: FilesApp, Path: path, Title: title}
	case vfs.App:
		action = Action{
			Kind:  ActionLaunch,
			App:   e.Target(),
			Path:  vfs.Root,
			Title: strings.Replace(e.Name(), ".app", "", 1),
		}
	case vfs.File:
		mime := mimetype.Detect([]byte(e.Content())).String()
		app, found := assoc.AppFor(e.Name())
		if !found {
			action = Action{Kind: ActionNone, Path: path, Title: e.Name(), MIME: mime}
			break
		}
		action = Action{Kind: ActionOpenFile, App: app, Path: path, Title: e.Name(), MIME: mime}
	default:
		panic(fmt.Sprintf("launcher: unknown entry type %T", entry))
	}

	logger.Debug("Open %q: %v %s", path, action.Kind, action.App)
	return action, nil
}

// Getter is the read side of the filesystem. *vfs.FileSystem satisfies it.
type Getter interface {
	Get(path string) (vfs.Entry, bool)
}
