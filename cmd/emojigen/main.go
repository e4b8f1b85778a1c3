// Package main implements the emojigen CLI, which renders Slack custom emoji
// from text or images and can watch a spool directory for render jobs.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	emojigen "github.com/ChanghyeonYoon/slack-emoji-generator"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/config"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/fonts"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/logger"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/paths"
	"github.com/ChanghyeonYoon/slack-emoji-generator/internal/render"
)

// ///////////////////////////////////////////////
// Version
// ///////////////////////////////////////////////

// version is set at build time via -ldflags "-X main.version=...". Bare
// builds fall back to the VCS revision the toolchain embeds.
var version = "dev"

// resolveVersion returns [version] when it was set at link time, otherwise
// "dev+<hash>" (with ".dirty" for modified trees) from the build info.
func resolveVersion() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return version
	}
	hash := revision[:min(7, len(revision))]
	if dirty {
		return "dev+" + hash + ".dirty"
	}
	return "dev+" + hash
}

// ///////////////////////////////////////////////
// Default Data Directory
// ///////////////////////////////////////////////

// defaultDataDir returns ~/.emojigen, or ./.emojigen when the home
// directory cannot be determined.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", paths.DataDirRel)
	}
	return filepath.Join(home, paths.DataDirRel)
}

// ///////////////////////////////////////////////
// Environment
// ///////////////////////////////////////////////

// env is what every subcommand runs with: the data directory, the loaded
// config and a logger writing to the rotating log file and stderr.
type env struct {
	paths  DataPaths
	cfg    *config.Config
	log    *slog.Logger
	closer io.Closer
	stdout io.Writer
	stderr io.Writer
}

// setup creates the data directory, seeds config.toml from the embedded
// default on first run, loads it and opens the logger.
func setup(dataDir string, stdout, stderr io.Writer) (*env, error) {
	dp := DataPaths{Root: dataDir}
	if err := os.MkdirAll(dp.Root, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	if _, err := os.Stat(dp.Config()); os.IsNotExist(err) {
		if writeErr := os.WriteFile(dp.Config(), emojigen.DefaultConfigTOML, 0o644); writeErr != nil {
			fmt.Fprintf(stderr, "warning: failed to write default config: %v\n", writeErr)
		}
	}

	cfg, err := config.Load(dp.Root)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, closer, err := logger.NewLogger(logger.Options{
		Path:         dp.Log(),
		Level:        logger.ParseLevel(cfg.Log.Level),
		MaxSizeMB:    cfg.Log.MaxSizeMB,
		Console:      stderr,
		ConsoleLevel: slog.LevelWarn,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return &env{paths: dp, cfg: cfg, log: log, closer: closer, stdout: stdout, stderr: stderr}, nil
}

// renderer builds the font registry and renderer from the loaded config.
func (e *env) renderer() (*render.Renderer, *fonts.Registry, error) {
	reg, err := fonts.NewRegistry(e.cfg.Fonts, e.paths, e.log)
	if err != nil {
		return nil, nil, fmt.Errorf("font registry: %w", err)
	}
	return render.New(e.cfg, reg, e.log), reg, nil
}

// ///////////////////////////////////////////////
// Commands
// ///////////////////////////////////////////////

// errUsage marks errors that should print the usage text.
var errUsage = errors.New("usage")

type command struct {
	name    string
	summary string
	run     func(e *env, args []string) error
}

var commands = []command{
	{"render", "render one emoji from text or an image", cmdRender},
	{"watch", "render job files dropped into the jobs directory", cmdWatch},
	{"fonts", "resolve every font id and print its source", cmdFonts},
	{"logs", "print the tail of the log file", cmdLogs},
}

func usage(w io.Writer, global *flag.FlagSet) {
	fmt.Fprintf(w, "usage: %s [-data-dir DIR] <command> [flags]\n\ncommands:\n", paths.BinaryName)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "  %-8s %s\n\nflags:\n", "version", "print the version")
	global.SetOutput(w)
	global.PrintDefaults()
}

// ///////////////////////////////////////////////
// Main
// ///////////////////////////////////////////////

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses the global flags, dispatches to a subcommand and returns the
// process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet(paths.BinaryName, flag.ContinueOnError)
	global.SetOutput(stderr)
	dataDir := global.String("data-dir", defaultDataDir(), "Data directory for config, fonts, jobs, and logs")
	if err := global.Parse(args); err != nil {
		return 2
	}

	rest := global.Args()
	if len(rest) == 0 {
		usage(stderr, global)
		return 2
	}
	name, cmdArgs := rest[0], rest[1:]
	if name == "version" {
		fmt.Fprintln(stdout, resolveVersion())
		return 0
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == name {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		usage(stderr, global)
		return 2
	}

	e, err := setup(*dataDir, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "fatal: %v\n", err)
		return 1
	}
	defer e.closer.Close()
	slog.SetDefault(e.log)

	if err := cmd.run(e, cmdArgs); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			return 2
		}
		logger.Fail(e.log, "command failed", append([]any{"command", name}, logger.ErrorAttrs(err)...)...)
		return 1
	}
	return 0
}

// joinArgs joins positional arguments into one text, so `emojigen render
// hello world` renders "hello world".
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
