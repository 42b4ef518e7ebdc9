package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	goerrors "github.com/go-errors/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"queuewatch/internal/capture"
	"queuewatch/internal/capture/live"
	"queuewatch/internal/config"
	"queuewatch/internal/logging"
	"queuewatch/internal/models"
	"queuewatch/internal/output"
	"queuewatch/internal/tshark"
	"queuewatch/internal/tui"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// runner is a capture facility feeding decoded samples to a channel.
type runner interface {
	Name() string
	Run(ctx context.Context, out chan<- models.Sample) error
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "queuewatch",
		Usage:   "print switch queue occupancy carried in IP protocol 0x99 packets",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config `file`"},
			&cli.StringFlag{Name: "interface", Aliases: []string{"i"}, Usage: "network `interface` to capture from (default: ens7)"},
			&cli.StringFlag{Name: "engine", Aliases: []string{"e"}, Usage: "capture engine: pcap, afpacket or tshark"},
			&cli.StringFlag{Name: "read", Aliases: []string{"r"}, Usage: "replay a pcap/pcapng `file` instead of a live interface"},
			&cli.IntFlag{Name: "snaplen", Usage: "bytes captured per packet"},
			&cli.BoolFlag{Name: "promisc", Usage: "open the interface in promiscuous mode"},
			&cli.StringFlag{Name: "filter", Usage: "capture filter `expression`"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "output format: plain or json"},
			&cli.BoolFlag{Name: "tui", Usage: "show the interactive view instead of printing values"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		},
		Action: run,
	}
}

func main() {
	app := newApp()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "queuewatch: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the optional config file and applies flag overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}

	if c.IsSet("interface") {
		cfg.Capture.Interface = c.String("interface")
	}
	if c.IsSet("engine") {
		cfg.Capture.Engine = c.String("engine")
	}
	if c.IsSet("read") {
		cfg.Capture.ReadFile = c.String("read")
	}
	if c.IsSet("snaplen") {
		cfg.Capture.SnapLen = c.Int("snaplen")
	}
	if c.IsSet("promisc") {
		cfg.Capture.Promiscuous = c.Bool("promisc")
	}
	if c.IsSet("filter") {
		cfg.Capture.Filter = c.String("filter")
	}
	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}
	if c.IsSet("tui") {
		cfg.Output.TUI = c.Bool("tui")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}

	return cfg, cfg.Validate()
}

func newLogger(cfg config.Config) (*zap.SugaredLogger, error) {
	// The TUI owns the terminal; only log when a file is configured.
	if cfg.Output.TUI && cfg.Log.File == "" {
		return logging.Discard(), nil
	}
	return logging.New(cfg.Log)
}

// openRunner picks the capture facility described by cfg.
func openRunner(cfg config.Config, log *zap.SugaredLogger) (runner, error) {
	if cfg.Capture.Engine == config.EngineTshark {
		m := tshark.NewMonitor(cfg.Capture.Interface, cfg.Capture.Filter, log)
		m.ReadFile = cfg.Capture.ReadFile
		m.Promiscuous = cfg.Capture.Promiscuous
		return m, nil
	}

	var (
		src *capture.Source
		err error
	)
	if cfg.Capture.ReadFile != "" {
		src, err = capture.OpenFile(cfg.Capture.ReadFile)
	} else {
		src, err = live.Open(cfg.Capture)
	}
	if err != nil {
		var stackErr *goerrors.Error
		if goerrors.As(err, &stackErr) {
			log.Debugf("capture open failed:\n%s", stackErr.ErrorStack())
		}
		return nil, err
	}
	src.SetLogger(log)
	return src, nil
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	var printer *output.Printer
	if !cfg.Output.TUI {
		if printer, err = output.NewPrinter(c.App.Writer, cfg.Output.Format); err != nil {
			return err
		}
	}

	r, err := openRunner(cfg, log)
	if err != nil {
		return err
	}
	log.Infof("queuewatch %s capturing on %s (engine %s)", Version, r.Name(), cfg.Capture.Engine)

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	samples := make(chan models.Sample, 1000)
	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Run(ctx, samples)
		close(samples)
	}()

	var runErr error
	if cfg.Output.TUI {
		runErr = runTUI(ctx, cancel, cfg, r.Name(), samples, errCh, log)
	} else {
		for s := range samples {
			if err := printer.Write(s); err != nil {
				log.Errorf("writing sample: %v", err)
				cancel()
				break
			}
		}
		runErr = <-errCh
	}

	if runErr != nil {
		return runErr
	}
	log.Infof("capture on %s stopped", r.Name())
	return nil
}

// runTUI shows samples until the user quits. A capture that fails while the
// view is open ends the program and its error is returned.
func runTUI(ctx context.Context, cancel context.CancelFunc, cfg config.Config, name string,
	samples <-chan models.Sample, errCh <-chan error, log *zap.SugaredLogger) error {
	recent := tui.NewRecent(cfg.Output.RecentLimit)
	p := tea.NewProgram(tui.NewModel(recent, name), tea.WithAltScreen(), tea.WithContext(ctx))

	done := make(chan error, 1)
	go func() {
		for s := range samples {
			recent.Add(s)
		}
		err := <-errCh
		done <- err
		p.Send(tui.CaptureDoneMsg{Err: err})
	}()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		log.Errorf("Error running TUI: %v", err)
	}
	cancel()
	return <-done
}
