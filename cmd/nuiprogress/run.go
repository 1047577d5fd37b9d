package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nuiprogress/internal/config"
	"nuiprogress/internal/eventloop"
	"nuiprogress/internal/logging"
	"nuiprogress/internal/metrics"
	"nuiprogress/internal/nui"
	"nuiprogress/internal/progress"
	"nuiprogress/internal/trace"
	"nuiprogress/internal/ui"
)

const shutdownTimeout = 3 * time.Second

func newRunCmd(opts *rootOptions) *cobra.Command {
	var headless, dryRun bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Show the overlay and accept host messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOverlay(cmd.Context(), runOptions{
				configPath: opts.configPath,
				headless:   headless,
				dryRun:     dryRun,
				out:        cmd.OutOrStdout(),
			})
		},
	}
	cmd.Flags().BoolVar(&headless, "headless", false, "draw a plain progress bar instead of the full-screen overlay")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log host notifications instead of sending them")
	return cmd
}

type runOptions struct {
	configPath string
	headless   bool
	dryRun     bool
	out        io.Writer
}

// session holds what both front ends share.
type session struct {
	cfg       config.Config
	cfgPath   string
	logger    *zap.Logger
	bus       *nui.Bus
	notifier  progress.Notifier
	observers []progress.Observer
}

func runOverlay(ctx context.Context, opts runOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	logOpts := logging.Options{
		Development: cfg.Logging.Development,
		Level:       cfg.Logging.Level,
		File:        cfg.Logging.File,
	}
	if !opts.headless && logOpts.File == "" {
		// The TUI owns the terminal.
		logOpts.File = filepath.Join(os.TempDir(), "nuiprogress.log")
	}
	logger, err := logging.New(logOpts)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	exporter, err := trace.NewOTLPExporter(ctx, cfg.Trace.OTLPEndpoint, cfg.Trace.ServiceName)
	if err != nil {
		return err
	}
	defer shutdown(logger, "trace exporter", exporter.Shutdown)

	s := &session{
		cfg:       cfg,
		cfgPath:   opts.configPath,
		logger:    logger,
		bus:       nui.NewBus(logger.Named("bus")),
		observers: []progress.Observer{metrics.NewObserver()},
	}
	if opts.dryRun {
		s.notifier = nui.NewRecorder(logger.Named("host"))
	} else {
		client := nui.NewClient(cfg.Host.CallbackURL, cfg.Host.Timeout, logger.Named("host"))
		defer shutdown(logger, "host client", client.Close)
		s.notifier = client
	}
	if exporter != nil {
		s.observers = append(s.observers, trace.NewRunObserver(exporter.Provider()))
	}

	server := nui.NewServer(cfg.Bridge.ListenAddr, s.bus, logger.Named("bridge"))
	if err := server.Start(); err != nil {
		return err
	}
	defer shutdown(logger, "bridge server", server.Stop)

	if opts.headless {
		return s.runHeadless(ctx, opts.out)
	}
	return s.runTUI(ctx)
}

func (s *session) overlayConfig(loop eventloop.Poster, observer progress.Observer) ui.OverlayConfig {
	return ui.OverlayConfig{
		TickInterval:  s.cfg.Progress.TickInterval,
		SettleDelay:   s.cfg.Progress.SettleDelay,
		Segments:      s.cfg.Progress.Segments,
		FadeDuration:  s.cfg.Transition.Duration,
		FrameInterval: s.cfg.Transition.FrameInterval,
		Loop:          loop,
		Notifier:      s.notifier,
		Observer:      observer,
		Logger:        s.logger.Named("progress"),
	}
}

// watchTheme forwards theme edits of the config file to apply.
func (s *session) watchTheme(apply func(ui.Theme)) {
	if s.cfgPath == "" {
		return
	}
	_, err := config.Watch(s.cfgPath, s.logger.Named("config"), func(c config.Config) {
		apply(ui.ThemeFromConfig(c.Theme))
	})
	if err != nil {
		s.logger.Warn("config watch disabled", zap.Error(err))
	}
}

func (s *session) runHeadless(ctx context.Context, out io.Writer) error {
	loop := eventloop.New(0, s.logger.Named("loop"))
	presenter := ui.NewPBPresenter(out, ui.ThemeFromConfig(s.cfg.Theme))
	observer := progress.NewMultiObserver(append(s.observers, presenter)...)

	overlay := ui.NewOverlay(s.overlayConfig(loop, observer))
	overlay.Mount(s.bus)
	s.watchTheme(func(t ui.Theme) {
		loop.Post(func() { presenter.SetTheme(t) })
	})

	s.logger.Info("headless overlay running")
	err := loop.Run(ctx)
	overlay.Unmount()
	// The loop has stopped, so this goroutine now owns the overlay.
	overlay.Teardown()
	return err
}

func (s *session) runTUI(ctx context.Context) error {
	loop := ui.NewProgramLoop(s.logger.Named("loop"))
	observer := progress.NewMultiObserver(s.observers...)
	overlay := ui.NewOverlay(s.overlayConfig(loop, observer))
	model := ui.NewModel(overlay, ui.ThemeFromConfig(s.cfg.Theme))

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	loop.Attach(p)
	overlay.Mount(s.bus)
	s.watchTheme(func(t ui.Theme) {
		p.Send(ui.ThemeMsg{Theme: t})
	})

	_, err := p.Run()
	overlay.Unmount()
	overlay.Teardown()
	if err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return fmt.Errorf("run overlay: %w", err)
	}
	return nil
}

func shutdown(logger *zap.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		logger.Warn("shutdown failed", zap.String("component", name), zap.Error(err))
	}
}
