// Command annotate creates, renders and stores map annotation projects.
//
//	annotate [global flags] <command> [flags]
//
// Commands: new-text, render, store, fetch, list, delete.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/OCAP2/annotations/internal/annotation"
	"github.com/OCAP2/annotations/internal/config"
	"github.com/OCAP2/annotations/internal/logging"
	"github.com/OCAP2/annotations/internal/project"
	"github.com/OCAP2/annotations/internal/telemetry"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const appName = "annotate"

var errUsage = errors.New("usage")

type command struct {
	name  string
	usage string
	run   func(a *app, args []string) error
}

var commands = []command{
	{"new-text", "add a text annotation to a project file", runNewText},
	{"render", "render a project file to PNG", runRender},
	{"store", "save a project file to storage", runStore},
	{"fetch", "write a stored project to a file", runFetch},
	{"list", "list stored projects", runList},
	{"delete", "remove a stored project", runDelete},
}

// app is the state shared by all commands of one invocation.
type app struct {
	stdout    io.Writer
	logs      *logging.SlogManager
	log       *slog.Logger
	telemetry *telemetry.Provider
	registry  *annotation.Registry
	loader    *project.Loader
	logFile   io.Writer
	closers   []io.Closer
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "annotate:", err)
		}
		os.Exit(1)
	}
}

func usage(w io.Writer, global *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage: %s [global flags] <command> [flags]\n\nCommands:\n", appName)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.usage)
	}
	fmt.Fprintf(w, "\nGlobal flags:\n%s", global.FlagUsages())
}

func run(args []string, stdout, stderr io.Writer) error {
	global := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	global.SetOutput(stderr)
	global.SetInterspersed(false)
	configDir := global.String("config-dir", ".", "directory holding "+config.FileName)
	global.String("log-level", "", "log level (DEBUG, INFO, WARN, ERROR)")
	global.String("logs-dir", "", "directory for log files")
	global.String("storage", "", "storage backend (memory, sqlite, postgres)")
	global.String("sqlite-path", "", "SQLite database file, empty for in-memory")
	global.Usage = func() { usage(stderr, global) }

	if err := global.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return errUsage
	}

	if err := config.Load(*configDir); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}
	for key, flag := range map[string]string{
		"logLevel":            "log-level",
		"logsDir":             "logs-dir",
		"storage.type":        "storage",
		"storage.sqlite.path": "sqlite-path",
	} {
		if f := global.Lookup(flag); f.Changed {
			if err := viper.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	rest := global.Args()
	if len(rest) == 0 {
		usage(stderr, global)
		return errUsage
	}
	var cmd *command
	for i := range commands {
		if commands[i].name == strings.ToLower(rest[0]) {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "unknown command %q\n", rest[0])
		usage(stderr, global)
		return errUsage
	}

	a, err := newApp(stdout)
	if err != nil {
		return err
	}
	defer a.close()

	start := time.Now()
	a.log.Debug("Running command", "command", cmd.name, "args", rest[1:])
	if err := cmd.run(a, rest[1:]); err != nil {
		a.log.Error("Command failed", "command", cmd.name, "error", err)
		return err
	}
	a.log.Info("Command finished", "command", cmd.name, "duration", time.Since(start))
	return nil
}

// newApp sets up logging and telemetry as configured.
func newApp(stdout io.Writer) (*app, error) {
	a := &app{
		stdout:   stdout,
		logs:     logging.NewSlogManager(),
		registry: annotation.NewRegistry(),
	}

	start := time.Now()
	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create logs dir: %w", err)
	}
	logFile, err := os.OpenFile(logging.LogFilePath(logsDir, appName, start), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	a.closers = append(a.closers, logFile)
	a.logFile = logFile

	otelCfg := config.GetOTelConfig()
	telCfg := telemetry.Config{
		Enabled:      otelCfg.Enabled,
		ServiceName:  otelCfg.ServiceName,
		BatchTimeout: otelCfg.BatchTimeout,
		Endpoint:     otelCfg.Endpoint,
		Insecure:     otelCfg.Insecure,
	}
	if otelCfg.Enabled && otelCfg.Endpoint == "" {
		otelFile, err := os.OpenFile(logging.LogFilePath(logsDir, appName+"_otel", start), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("open otel log file: %w", err)
		}
		a.closers = append(a.closers, otelFile)
		telCfg.LogWriter = otelFile
	}
	a.telemetry, err = telemetry.New(telCfg)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	a.logs.Setup(logFile, viper.GetString("logLevel"), a.telemetry.LoggerProvider())
	a.log = a.logs.Logger()
	a.loader = project.NewLoader(a.registry, a.log, a.telemetry.Meter(logging.InstrumentationName))
	return a, nil
}

func (a *app) close() {
	if a.telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.logs.Flush(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "flush logs:", err)
		}
		if err := a.telemetry.Shutdown(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "shutdown telemetry:", err)
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
}

// loadFile reads a project document and logs what the loader skipped.
func (a *app) loadFile(path string) (*project.Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, report, err := a.loader.Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	a.report(path, report)
	return p, nil
}

func (a *app) report(source string, r project.Report) {
	if len(r.Skipped) > 0 || r.Recovered > 0 {
		fmt.Fprintf(a.stdout, "%s: loaded %d, skipped %d, recovered %d\n",
			source, r.Loaded, len(r.Skipped), r.Recovered)
	}
	for _, s := range r.Skipped {
		fmt.Fprintf(a.stdout, "  skipped annotation %d (%q): %v\n", s.Index, s.Type, s.Err)
	}
}

// saveFile writes p to path through a temporary file in the same directory.
func saveFile(path string, p *project.Project) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".annotate-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := p.Save(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
