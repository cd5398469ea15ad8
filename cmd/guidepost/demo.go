package main

import (
	_ "embed"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/guidepost-io/guidepost/internal/adapters/logging"
	"github.com/guidepost-io/guidepost/internal/adapters/scriptwatch"
	"github.com/guidepost-io/guidepost/internal/adapters/settings"
	sigbus "github.com/guidepost-io/guidepost/internal/adapters/signals"
	"github.com/guidepost-io/guidepost/internal/config"
	"github.com/guidepost-io/guidepost/internal/domain/step"
	"github.com/guidepost-io/guidepost/internal/engine"
	"github.com/guidepost-io/guidepost/internal/ports"
	"github.com/guidepost-io/guidepost/internal/registry"
	"github.com/guidepost-io/guidepost/internal/script"
	"github.com/guidepost-io/guidepost/internal/tui"
)

//go:embed tour.yaml
var defaultScript []byte

var (
	scriptPath string
	forceTour  bool
	watchFlag  bool
	logPath    string
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the tour inside the demo host application",
	Long: `Demo starts a fake "plugin studio" and runs the tour over it.
The host registers its screen regions and publishes the signals the
tour script's rules observe; the engine does the rest.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runDemo()
	},
}

func init() {
	demoCmd.Flags().StringVar(&scriptPath, "script", "", "tour script file (default: built-in demo script)")
	demoCmd.Flags().BoolVar(&forceTour, "force", false, "run even if the tour was completed or skipped before")
	demoCmd.Flags().BoolVar(&watchFlag, "watch", false, "restart the tour when the script file changes")
	demoCmd.Flags().StringVar(&logPath, "log", "", "write engine diagnostics to this file")
}

func runDemo() error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return err
	}

	log, closeLog, err := buildLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	sc, rules, err := loadScript()
	if err != nil {
		return err
	}

	store, err := settings.NewStore()
	if err != nil {
		return err
	}

	reg := registry.New()
	bus := sigbus.NewBus()

	eng, err := newEngine(sc, rules, reg, bus, store, log, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	model := tui.NewModel(eng, reg, bus)
	prog := tea.NewProgram(model, tea.WithAltScreen())

	eng.Subscribe(func(d engine.DisplayState) {
		prog.Send(tui.DisplayMsg{Display: d})
	})

	if watchFlag && scriptPath != "" {
		w, err := scriptwatch.New(scriptPath, log)
		if err != nil {
			return fmt.Errorf("failed to watch script: %w", err)
		}
		defer w.Close()
		go w.Run(func() {
			// A fresh run is simpler and safer than hot-patching a
			// running session; quit and let the author relaunch.
			prog.Quit()
		})
	}

	_, err = prog.Run()
	return err
}

func newEngine(sc *step.Script, rules []engine.Rule, reg ports.Registry,
	bus ports.Signals, store ports.Settings, log ports.Logger, cfg config.Config) (*engine.Engine, error) {
	return engine.New(engine.Options{
		Script:   sc,
		Rules:    rules,
		Registry: reg,
		Signals:  bus,
		Settings: store,
		Logger:   log,
		Tuning:   cfg.Tuning(),
		Force:    forceTour,
	})
}

func loadScript() (*step.Script, []engine.Rule, error) {
	if scriptPath == "" {
		return script.Parse(defaultScript)
	}
	return script.Load(scriptPath)
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return "guidepost.toml"
}

// buildLogger returns the demo logger. The TUI owns the terminal, so
// diagnostics go to a file when requested and nowhere otherwise.
func buildLogger() (ports.Logger, func(), error) {
	if logPath == "" {
		return logging.NewNopLogger(), func() {}, nil
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	level := ports.LevelInfo
	if verbose {
		level = ports.LevelDebug
	}
	log := logging.NewConsoleLogger(
		logging.WithOutput(f),
		logging.WithLevel(level),
	)
	return log, func() { _ = f.Close() }, nil
}
