// Package diagnostics collects an environment report for troubleshooting
// engine, GPU and model problems. It never touches transcription outputs.
package diagnostics

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/fmueller/speechtxt/internal/platform"
	"github.com/fmueller/speechtxt/internal/whisper"
)

const probeTimeout = 5 * time.Second

// Runner executes an external command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) (string, error)

type Probe struct {
	Label     string
	Output    string
	Available bool
	Err       error
}

type ModelFile struct {
	Name  string
	Path  string
	Found bool
	Size  int64
	Err   error
}

type Report struct {
	Version      string
	Runtime      platform.Runtime
	NvidiaSMI    Probe
	NVCC         Probe
	EnginePath   string
	EngineErr    error
	Acceleration string
	OpenAIKey    bool
	Model        ModelFile
}

type Collector struct {
	Run          Runner
	LocateEngine func() (string, error)
	Runtime      platform.Runtime
	Version      string
	ModelRef     string
	ModelDir     string
	OpenAIKey    string
	Timeout      time.Duration
}

func (c Collector) Collect(ctx context.Context) Report {
	run := c.Run
	if run == nil {
		run = ExecRunner
	}
	locate := c.LocateEngine
	if locate == nil {
		locate = whisper.LocateEngine
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = probeTimeout
	}
	rt := c.Runtime
	if rt.OS == "" {
		rt = platform.CurrentRuntime()
	}

	report := Report{
		Version:   c.Version,
		Runtime:   rt,
		NvidiaSMI: probe(ctx, run, timeout, "nvidia-smi", "nvidia-smi"),
		NVCC:      probe(ctx, run, timeout, "nvcc --version", "nvcc", "--version"),
		OpenAIKey: strings.TrimSpace(c.OpenAIKey) != "",
		Model:     inspectModel(c.ModelRef, c.ModelDir),
	}
	report.EnginePath, report.EngineErr = locate()
	report.Acceleration = accelerationFor(rt, report.NvidiaSMI.Available)
	return report
}

func probe(ctx context.Context, run Runner, timeout time.Duration, label, name string, args ...string) Probe {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := run(ctx, name, args...)
	if err != nil {
		return Probe{Label: label, Err: err}
	}
	return Probe{Label: label, Output: strings.TrimSpace(out), Available: true}
}

func inspectModel(ref, dir string) ModelFile {
	resolved, err := whisper.ResolveModel(ref, dir)
	if err != nil {
		return ModelFile{Name: ref, Err: err}
	}

	file := ModelFile{Name: resolved.Name, Path: resolved.Path}
	if size := resolved.Size(); size >= 0 {
		file.Found = true
		file.Size = size
	}
	return file
}

// accelerationFor guesses what whisper.cpp will use. It is a hint only: the
// engine build decides.
func accelerationFor(rt platform.Runtime, nvidia bool) string {
	switch {
	case nvidia:
		return "CUDA (NVIDIA driver detected)"
	case rt.OS == "darwin" && rt.Arch == "arm64":
		return "Metal (Apple Silicon)"
	default:
		return "CPU"
	}
}

func ExecRunner(ctx context.Context, name string, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%s: %w", name, ctxErr)
		}
		return "", err
	}
	return out.String(), nil
}

// Render prints the report. Section headers are colored only when colored is
// set.
func (r Report) Render(w io.Writer, colored bool) error {
	title := color.New(color.FgCyan, color.Bold)
	section := color.New(color.FgYellow)
	bad := color.New(color.FgRed)
	if colored {
		title.EnableColor()
		section.EnableColor()
		bad.EnableColor()
	} else {
		title.DisableColor()
		section.DisableColor()
		bad.DisableColor()
	}

	var b strings.Builder
	title.Fprintln(&b, "=== Speech-to-Text Diagnostics ===")
	if r.Version != "" {
		fmt.Fprintf(&b, "speechtxt: %s\n", r.Version)
	}
	fmt.Fprintf(&b, "Go: %s\n", r.Runtime.GoVersion)
	fmt.Fprintf(&b, "Platform: %s/%s\n", r.Runtime.OS, r.Runtime.Arch)

	for _, p := range []Probe{r.NvidiaSMI, r.NVCC} {
		b.WriteString("\n")
		if p.Available {
			section.Fprintf(&b, "[%s]\n", p.Label)
			b.WriteString(p.Output + "\n")
			continue
		}
		section.Fprintf(&b, "[%s] ", p.Label)
		bad.Fprintf(&b, "Not available: %v\n", p.Err)
	}

	b.WriteString("\n")
	section.Fprintln(&b, "[Engine]")
	if r.EngineErr != nil {
		bad.Fprintf(&b, "  whisper-cli: not found (%v)\n", r.EngineErr)
	} else {
		fmt.Fprintf(&b, "  whisper-cli: %s\n", r.EnginePath)
	}
	fmt.Fprintf(&b, "  Acceleration: %s\n", r.Acceleration)

	b.WriteString("\n")
	section.Fprintln(&b, "[OpenAI]")
	if r.OpenAIKey {
		b.WriteString("  API key: configured\n")
	} else {
		b.WriteString("  API key: not set\n")
	}

	b.WriteString("\n")
	section.Fprintln(&b, "[Model file]")
	switch {
	case r.Model.Err != nil:
		bad.Fprintf(&b, "  Could not resolve %q: %v\n", r.Model.Name, r.Model.Err)
	case r.Model.Found:
		fmt.Fprintf(&b, "  Found: %s\n", r.Model.Path)
		fmt.Fprintf(&b, "  Size: %d bytes\n", r.Model.Size)
	default:
		bad.Fprintf(&b, "  Not found: %s\n", r.Model.Path)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
