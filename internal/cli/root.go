package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fmueller/speechtxt/internal/clipboard"
	"github.com/fmueller/speechtxt/internal/config"
	"github.com/fmueller/speechtxt/internal/logging"
	"github.com/fmueller/speechtxt/internal/platform"
	"github.com/fmueller/speechtxt/internal/transcript"
	"github.com/fmueller/speechtxt/internal/version"
	"github.com/fmueller/speechtxt/internal/whisper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"
)

type appState struct {
	verbose    bool
	jsonLogs   bool
	noProgress bool
	configPath string
	model      string
	modelDir   string
	engine     string
	language   string
	guiAddr    string
	timestamps bool
	chinese    transcript.ChineseMode
	copyOutput bool

	diagnose      bool
	listLanguages bool
	updateModel   bool
	gui           bool

	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer

	engineFn     func(ctx context.Context) (whisper.Engine, string, error)
	transcribeFn func(ctx context.Context, req transcript.Request) (transcriptionOutput, error)
	copyFn       func(ctx context.Context, value string) error
}

var terminalIntents = []string{"diagnose", "list-languages", "update-model", "gui"}

func NewRootCmd() *cobra.Command {
	return newRootCmd(newAppState())
}

func newAppState() *appState {
	app := &appState{out: os.Stdout}
	app.engineFn = app.newEngine
	app.transcribeFn = app.transcribeFile
	app.copyFn = clipboard.CopyText
	return app
}

func newRootCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "speechtxt <audio.mp3> [language|auto]",
		Short: "Transcribe MP3 files to text with a local Whisper model",
		Long: `Transcribe an MP3 file with Whisper and write <name>_transcription.txt next to it.

The optional language is a Whisper language code (en, zh, fr, ...) or "auto"
to let the model detect it.`,
		Example: `  speechtxt talk.mp3
  speechtxt interview.mp3 zh --chinese=simplified --timestamps
  speechtxt --update-model --model small
  speechtxt --list-languages`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		Args:          app.validateArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd.Context(), args)
		},
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	bindPersistentFlags(cmd.PersistentFlags(), app)

	flags := cmd.Flags()
	flags.BoolVar(&app.diagnose, "diagnose", false, "Print engine, GPU and model diagnostics and exit")
	flags.BoolVar(&app.listLanguages, "list-languages", false, "Print all supported language codes and names and exit")
	flags.BoolVar(&app.updateModel, "update-model", false, "Download the configured model (default base) and exit")
	flags.BoolVar(&app.gui, "gui", false, "Serve the local web interface")
	flags.StringVar(&app.guiAddr, "gui-addr", "", "Listen address for --gui (default "+config.DefaultGUIAddr+")")
	flags.BoolVar(&app.copyOutput, "copy", false, "Copy the transcription text to the clipboard")
	cmd.MarkFlagsMutuallyExclusive(terminalIntents...)

	cmd.AddCommand(newWatchCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func bindPersistentFlags(flags *pflag.FlagSet, app *appState) {
	flags.BoolVar(&app.verbose, "verbose", false, "Enable verbose logs")
	flags.BoolVar(&app.jsonLogs, "json", false, "Enable JSON logging")
	flags.BoolVar(&app.noProgress, "no-progress", false, "Disable progress indicators")
	flags.StringVar(&app.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/speechtxt/config.yaml)")
	flags.StringVar(&app.model, "model", whisper.DefaultModel, "Model name ("+strings.Join(whisper.ModelNames(), "|")+") or path to a ggml .bin file")
	flags.StringVar(&app.modelDir, "model-dir", "", "Directory where models are stored")
	flags.StringVar(&app.engine, "engine", config.EngineLocal, "Transcription engine: local|openai")
	flags.BoolVar(&app.timestamps, "timestamps", false, "Include segment timestamps in the output")
	flags.Var(&app.chinese, "chinese", "Convert Chinese output to simplified or traditional script")
}

func (a *appState) validateArgs(_ *cobra.Command, args []string) error {
	if intent := a.terminalIntent(); intent != "" {
		if len(args) > 0 {
			return fmt.Errorf("--%s takes no positional arguments, received %d", intent, len(args))
		}
		return nil
	}
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("accepts between 1 and 2 arg(s), received %d", len(args))
	}
	return nil
}

func (a *appState) terminalIntent() string {
	switch {
	case a.diagnose:
		return "diagnose"
	case a.listLanguages:
		return "list-languages"
	case a.updateModel:
		return "update-model"
	case a.gui:
		return "gui"
	default:
		return ""
	}
}

// setup builds the logger and layers config file and environment values
// under any flag the user set explicitly.
func (a *appState) setup(cmd *cobra.Command) error {
	logger, err := logging.New(logging.Options{Verbose: a.verbose, JSON: a.jsonLogs})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	a.logger = logger
	a.out = cmd.OutOrStdout()

	path, err := platform.ResolveConfigFile(a.configPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(config.LoadOptions{
		Path:     path,
		Explicit: a.configPath != "",
		DotEnv:   []string{".env"},
	})
	if err != nil {
		return err
	}
	a.applyConfig(cmd.Flags(), cfg)
	if a.engine != config.EngineLocal && a.engine != config.EngineOpenAI {
		return fmt.Errorf("unknown engine %q (expected %s or %s)", a.engine, config.EngineLocal, config.EngineOpenAI)
	}
	a.log().Debug("configuration loaded", zap.String("path", path), zap.String("engine", a.engine), zap.String("model", a.model))
	return nil
}

func (a *appState) applyConfig(flags *pflag.FlagSet, cfg *config.Config) {
	a.cfg = cfg
	if !flags.Changed("model") {
		a.model = cfg.Model
	}
	if !flags.Changed("model-dir") {
		a.modelDir = cfg.ModelDir
	}
	if !flags.Changed("engine") {
		a.engine = cfg.Engine
	}
	if !flags.Changed("language") {
		a.language = cfg.Language
	}
	if !flags.Changed("gui-addr") {
		a.guiAddr = cfg.GUI.Addr
	}
}

func (a *appState) run(ctx context.Context, args []string) error {
	switch a.terminalIntent() {
	case "diagnose":
		return a.runDiagnose(ctx)
	case "list-languages":
		return a.runListLanguages()
	case "update-model":
		return a.runUpdateModel(ctx)
	case "gui":
		return a.runGUI(ctx)
	}

	language := a.language
	if len(args) == 2 {
		language = args[1]
	}
	req, err := a.newRequest(args[0], language)
	if err != nil {
		return err
	}

	output, err := a.transcribeFn(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.outWriter(), "Transcription completed successfully!")
	fmt.Fprintf(a.outWriter(), "Output written to: %s\n", output.Path)

	if a.copyOutput {
		a.copyText(ctx, output.Document.Body)
	}
	return nil
}

func (a *appState) newRequest(audioPath, language string) (transcript.Request, error) {
	lang, err := whisper.NormalizeLanguage(language)
	if err != nil {
		return transcript.Request{}, err
	}
	req := transcript.Request{
		AudioPath:  audioPath,
		Language:   lang,
		Timestamps: a.timestamps,
		Chinese:    a.chinese,
	}
	if err := req.Validate(); err != nil {
		return transcript.Request{}, err
	}
	return req, nil
}

func (a *appState) modelStorageDir() (string, error) {
	return platform.ResolveModelDir(a.modelDir)
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) progressEnabled() bool {
	if a.noProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func (a *appState) outWriter() io.Writer {
	if a.out == nil {
		return os.Stdout
	}
	return a.out
}

