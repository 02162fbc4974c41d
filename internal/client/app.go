// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/MKhiriev/dashkeys/internal/config"
	"github.com/MKhiriev/dashkeys/internal/crypto"
	"github.com/MKhiriev/dashkeys/internal/logger"
	"github.com/MKhiriev/dashkeys/internal/service"
	"github.com/MKhiriev/dashkeys/internal/store"
	"github.com/MKhiriev/dashkeys/models"
)

const (
	appName = "dashkeys"

	// annotationNoSetup marks commands that run without config or storage.
	annotationNoSetup = "dashkeys/no-setup"

	flagStats = "stats"
)

// App is the dashkeys command line. Dependencies are resolved lazily, once
// per Run, right before the selected command executes.
type App struct {
	buildInfo models.AppBuildInfo
	probe     crypto.EnvironmentProbe

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	cfg      *config.StructuredConfig
	logger   *logger.Logger
	registry *prometheus.Registry
	storage  store.KeyValueStorage
	services *service.Services
}

// Option customizes an [App].
type Option func(*App)

// WithProbe replaces the host environment probe.
func WithProbe(probe crypto.EnvironmentProbe) Option {
	return func(a *App) { a.probe = probe }
}

// WithIO replaces stdin, stdout and stderr.
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(a *App) {
		a.in, a.out, a.errOut = in, out, errOut
	}
}

func NewApp(buildInfo models.AppBuildInfo, opts ...Option) *App {
	a := &App{
		buildInfo: buildInfo,
		probe:     crypto.HostProbe{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run executes the command line in args. Storage opened for the command is
// closed before Run returns, whether or not the command failed.
func (a *App) Run(ctx context.Context, args []string) error {
	root := a.rootCommand()
	root.SetArgs(args)
	if a.in != nil {
		root.SetIn(a.in)
	}
	if a.out != nil {
		root.SetOut(a.out)
	}
	if a.errOut != nil {
		root.SetErr(a.errOut)
	}

	err := root.ExecuteContext(ctx)

	if stats, _ := root.PersistentFlags().GetBool(flagStats); stats && a.registry != nil {
		a.printStats(root.ErrOrStderr())
	}
	if a.storage != nil {
		if closeErr := a.storage.Close(); closeErr != nil {
			a.logger.Err(closeErr).Str("func", "App.Run").Msg("close storage")
		}
		a.storage = nil
	}

	return err
}

func (a *App) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Device-bound API key vault",
		Long: "dashkeys keeps third-party API keys encrypted at rest. The encryption key is\n" +
			"derived from the current device, so stored keys only decrypt on the machine\n" +
			"and environment they were saved from.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	config.RegisterFlags(root.PersistentFlags())
	root.PersistentFlags().Bool(flagStats, false, "Print credential operation counters to stderr on exit")

	root.AddCommand(
		a.createSetCommand(),
		a.createUpdateCommand(),
		a.createGetCommand(),
		a.createRemoveCommand(),
		a.createStatusCommand(),
		a.createListCommand(),
		a.createMaskCommand(),
		a.createFingerprintCommand(),
		a.createProbeCommand(),
		a.createCallCommand(),
		a.createUICommand(),
		a.createVersionCommand(),
	)

	return root
}

// setup resolves config, logger, storage and services for cmd.
func (a *App) setup(cmd *cobra.Command, _ []string) error {
	if _, ok := cmd.Annotations[annotationNoSetup]; ok {
		return nil
	}

	cfg, err := config.GetStructuredConfig(cmd.Flags())
	if err != nil {
		return fmt.Errorf("error getting configs: %w", err)
	}
	a.cfg = cfg

	switch {
	case cfg.Log.File != "":
		a.logger = logger.NewFileLogger(appName, cfg.Log.File)
	case cmd.Name() == "ui":
		// log lines would draw over the terminal UI
		a.logger = logger.Nop()
	default:
		a.logger = logger.NewWriterLogger(appName, cmd.ErrOrStderr())
	}
	if err = a.logger.SetLevel(cfg.Log.Level); err != nil {
		return err
	}

	ctx, log := a.logger.WithTraceID(cmd.Context())
	cmd.SetContext(ctx)

	a.storage, err = store.NewStorage(ctx, cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}

	a.registry = prometheus.NewRegistry()
	a.services, err = service.NewServices(cfg, a.storage, a.probe, a.registry, log)
	if err != nil {
		return fmt.Errorf("create services: %w", err)
	}

	return nil
}

// credential returns the store of the service named in args[0].
func (a *App) credential(args []string) (service.CredentialStore, error) {
	return a.services.Credentials.For(args[0])
}

// printStats writes every non-zero credential operation counter to w.
func (a *App) printStats(w io.Writer) {
	families, err := a.registry.Gather()
	if err != nil {
		a.logger.Err(err).Str("func", "App.printStats").Msg("gather metrics")
		return
	}

	var lines []string
	for _, family := range families {
		for _, m := range family.GetMetric() {
			value := m.GetCounter().GetValue()
			if value == 0 {
				continue
			}
			labels := ""
			for _, label := range m.GetLabel() {
				labels += fmt.Sprintf(" %s=%s", label.GetName(), label.GetValue())
			}
			lines = append(lines, fmt.Sprintf("%s%s %g", family.GetName(), labels, value))
		}
	}
	sort.Strings(lines)
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

// ErrorMessage renders err for the terminal.
func ErrorMessage(err error) string {
	return "error: " + service.UserMessage(err)
}
