// Package clipboard copies transcription text to the system clipboard by
// piping it into the platform's clipboard utility.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

var ErrUnavailable = errors.New("no clipboard command available")

const copyTimeout = 4 * time.Second

type Command struct {
	Name string
	Args []string
	// Detached commands keep running to own the X selection, so we hand them
	// the text and let them go.
	Detached bool
}

var candidates = map[string][]Command{
	"darwin":  {{Name: "pbcopy"}},
	"windows": {{Name: "clip.exe"}},
	"linux": {
		{Name: "wl-copy"},
		{Name: "xclip", Args: []string{"-selection", "clipboard", "-in", "-silent"}, Detached: true},
		{Name: "xsel", Args: []string{"--clipboard", "--input"}},
	},
}

// Detect picks the first clipboard utility available on goos. Unknown
// Unix-likes use the linux list.
func Detect(goos string, lookPath func(string) (string, error)) (Command, error) {
	list, ok := candidates[goos]
	if !ok {
		list = candidates["linux"]
	}
	for _, cmd := range list {
		if _, err := lookPath(cmd.Name); err == nil {
			return cmd, nil
		}
	}
	return Command{}, ErrUnavailable
}

func CopyText(ctx context.Context, value string) error {
	cmd, err := Detect(runtime.GOOS, exec.LookPath)
	if err != nil {
		return err
	}
	return cmd.Copy(ctx, value)
}

func (c Command) Copy(ctx context.Context, value string) error {
	if c.Detached {
		return c.copyDetached(value)
	}

	ctx, cancel := context.WithTimeout(ctx, copyTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdin = strings.NewReader(value)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("copy to clipboard timed out: %w", ctx.Err())
		}
		return fmt.Errorf("copy to clipboard with %s: %w", c.Name, err)
	}
	return nil
}

func (c Command) copyDetached(value string) error {
	cmd := exec.Command(c.Name, c.Args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open clipboard stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return fmt.Errorf("start %s: %w", c.Name, err)
	}

	_, writeErr := io.WriteString(stdin, value)
	closeErr := stdin.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("write clipboard data: %w", err)
	}

	_ = cmd.Process.Release()
	return nil
}
