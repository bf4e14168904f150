package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"deskfs/internal/vfs"

	"github.com/fatih/color"
)

// ExitCommand ends the line loop.
const ExitCommand = "exit"

// clearScreen moves the cursor home and erases the display.
const clearScreen = "\033[H\033[2J"

// REPL drives a session from a line-oriented reader.
type REPL struct {
	Session *Session
	Intro   string

	// Interactive prints the intro banner and a prompt before every line.
	Interactive bool
	// Color enables colored prompts when the output supports it.
	Color bool
}

// Run reads lines from in until EOF, ExitCommand or a cancelled context,
// writing prompts and command output to out.
func (r *REPL) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	userColor := color.New(color.FgGreen, color.Bold)
	pathColor := color.New(color.FgBlue, color.Bold)
	if !r.Color {
		userColor.DisableColor()
		pathColor.DisableColor()
	}

	prompt := func() {
		if !r.Interactive {
			return
		}
		s := r.Session
		userColor.Fprintf(out, "%s@%s", s.User, s.Host)
		fmt.Fprint(out, ":")
		pathColor.Fprint(out, vfs.DisplayPath(s.Cwd()))
		fmt.Fprint(out, "$ ")
	}

	if r.Interactive && r.Intro != "" {
		fmt.Fprintln(out, r.Intro)
	}

	scanner := bufio.NewScanner(in)
	prompt()
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == ExitCommand {
			logger.Debug("Session %s: exit requested", r.Session.ID)
			return nil
		}

		rec, err := r.Session.Submit(ctx, line)
		if err != nil {
			return err
		}

		switch {
		case rec.Command == ClearCommand:
			fmt.Fprint(out, clearScreen)
			if r.Intro != "" {
				fmt.Fprintln(out, r.Intro)
			}
		case rec.Output != "":
			fmt.Fprintln(out, rec.Output)
		}
		prompt()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if r.Interactive {
		fmt.Fprintln(out)
	}
	logger.Debug("Session %s: input closed", r.Session.ID)
	return nil
}
