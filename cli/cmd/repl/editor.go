package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/thenexthub/Codira-sub015/lang"
	"github.com/thenexthub/Codira-sub015/log"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand] for the edit-reload-retry loop.
// It opens a settings file in the user's editor and reloads every source.
// When the edited settings fail to load the user is prompted to re-edit;
// declining keeps the previous scope.
type editCommand struct {
	path     string
	ctxFunc  func() context.Context
	load     Loader
	logger   log.Logger
	newScope *lang.Scope
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run opens the editor until the settings load or the user gives up, in
// which case it returns [ErrEditDeclined].
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()

	for attempt := 1; ; attempt++ {
		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, c.path); err != nil {
			return err
		}

		scope, err := c.load(ctx)
		c.logger.TraceContext(
			ctx,
			"editor reload attempt",
			slog.String("path", c.path),
			slog.Int("attempt", attempt),
			slog.Bool("success", err == nil),
		)

		if err == nil {
			c.newScope = scope

			return nil
		}

		fmt.Fprintf(c.stderr, "\nLoad error: %s\n", err)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}
	}
}

// runEditor launches the user's editor on the given file path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}

	if editor == "" {
		editor = defaultEditor
	}

	args := strings.Fields(editor)

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
