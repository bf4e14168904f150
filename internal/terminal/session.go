// Package terminal holds the state of a terminal window: the working
// directory, the rendered history and the raw command recall list.
package terminal

import (
	"context"
	"fmt"
	"strings"

	"deskfs/internal/logging"
	"deskfs/internal/shell"
	"deskfs/internal/vfs"

	"github.com/google/uuid"
)

var (
	logger = logging.GetLogger().WithPrefix("terminal")
)

// ClearCommand resets the displayed history. It is handled by the session
// and never reaches the command engine.
const ClearCommand = "clear"

// Record is one rendered history item: the submitted command, the output
// it produced and the directory it was submitted in.
type Record struct {
	Command string
	Output  string
	Cwd     string
}

// Session is a single terminal window. It is not safe for concurrent use;
// one user types into one session.
type Session struct {
	ID   string
	User string
	Host string

	fs     shell.FileSystem
	engine *shell.Engine

	cwd      string
	history  []Record
	commands []string
	cursor   int
}

// NewSession creates a session rooted at "/".
func NewSession(fs shell.FileSystem, engine *shell.Engine, user, host string) *Session {
	s := &Session{
		ID:     uuid.New().String(),
		User:   user,
		Host:   host,
		fs:     fs,
		engine: engine,
		cwd:    vfs.Root,
	}
	logger.Debug("Session %s opened for %s@%s", s.ID, user, host)
	return s
}

// Cwd returns the current working directory.
func (s *Session) Cwd() string {
	return s.cwd
}

// History returns a copy of the rendered history.
func (s *Session) History() []Record {
	out := make([]Record, len(s.history))
	copy(out, s.history)
	return out
}

// Commands returns a copy of the command recall list, oldest first.
func (s *Session) Commands() []string {
	out := make([]string, len(s.commands))
	copy(out, s.commands)
	return out
}

// Prompt renders the prompt for the current directory.
func (s *Session) Prompt() string {
	return PromptFor(s.User, s.Host, s.cwd)
}

// PromptFor renders "user@host:<dir>$" with the root shown as "~".
func PromptFor(user, host, cwd string) string {
	return fmt.Sprintf("%s@%s:%s$", user, host, vfs.DisplayPath(cwd))
}

// Submit handles one input line. The returned record is the one appended
// to the history, except for ClearCommand, which empties the history and
// returns a record that is not kept.
func (s *Session) Submit(ctx context.Context, line string) (Record, error) {
	command := strings.TrimSpace(line)
	rec := Record{Command: command, Cwd: s.cwd}

	if command != "" {
		s.commands = append(s.commands, command)
	}
	s.cursor = len(s.commands)

	switch command {
	case ClearCommand:
		logger.Trace("Session %s: clearing %d history records", s.ID, len(s.history))
		s.history = nil
		return rec, nil
	case "":
		s.history = append(s.history, rec)
		return rec, nil
	}

	result, err := s.engine.Execute(ctx, command, s.fs, s.cwd)
	if err != nil {
		return Record{}, fmt.Errorf("failed to execute %q: %w", command, err)
	}

	rec.Output = result.Output
	if !result.Failed() {
		s.cwd = result.Cwd(s.cwd)
	}
	s.history = append(s.history, rec)
	return rec, nil
}

// Previous steps back through the recall list. It returns false when there
// is nothing older.
func (s *Session) Previous() (string, bool) {
	if s.cursor == 0 {
		return "", false
	}
	s.cursor--
	return s.commands[s.cursor], true
}

// Next steps forward through the recall list. Stepping past the newest
// command returns an empty line and false.
func (s *Session) Next() (string, bool) {
	if s.cursor >= len(s.commands)-1 {
		s.cursor = len(s.commands)
		return "", false
	}
	s.cursor++
	return s.commands[s.cursor], true
}

// Intro returns the banner shown when the terminal opens or is cleared.
func Intro(engine *shell.Engine) string {
	var b strings.Builder
	b.WriteString("Welcome to portfolio-os!\n\n")
	b.WriteString("This is a toy os with several fun things to play with. Have fun!\n\n")
	b.WriteString("Available commands:\n")
	for _, cmd := range engine.Commands() {
		fmt.Fprintf(&b, "=> %s -- %s\n", cmd.Usage, cmd.Description)
	}
	fmt.Fprintf(&b, "=> %s -- Clears the terminal screen.\n", ClearCommand)
	return b.String()
}
