package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"corp/sysreport/config"
	"corp/sysreport/logging"
)

var (
	cfg       config.Config // hasil config.Load + flag
	logger    = zap.NewNop()
	closeLog  = func() error { return nil }
	configSrc string // file config yang benar-benar dipakai (kalau ada)

	flagConfig  string // --config
	flagVerbose bool   // --verbose
	flagLogFile string // --log-file
)

func main() {
	// ===== [Mode interaktif] =====
	// Jika double-click (tidak ada argumen), buka interactive shell.
	if len(os.Args) == 1 {
		startInteractiveShell()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if closeLog != nil {
		_ = closeLog()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "sysreport:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "sysreport",
		Short:             "Windows host inventory report and vulnerable build check",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initSysreport,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: $SYSREPORT_CONFIG or ./"+config.DefaultFileName+" if present)")
	root.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "debug logging")
	root.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "log file (default "+config.DefaultLogPath+")")

	root.AddCommand(newReportCmd(), newVulncheckCmd(), newVersionCmd())
	return root
}

// initSysreport: cari file config, load, terapkan flag global, siapkan logger
func initSysreport(cmd *cobra.Command, _ []string) error {
	switch {
	case flagConfig != "":
		configSrc = flagConfig
	case os.Getenv("SYSREPORT_CONFIG") != "":
		configSrc = os.Getenv("SYSREPORT_CONFIG")
	case config.Exists(config.DefaultFileName):
		configSrc = config.DefaultFileName
	}

	var err error
	cfg, err = config.Load(configSrc)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// flag global menang atas file/env
	if flagVerbose {
		cfg.Verbose = true
	}
	if flagLogFile != "" {
		cfg.LogPath = flagLogFile
	}

	// global logger/closeLog hanya diganti kalau logger baru berhasil dibuat
	l, closeFn, err := logging.New(cfg.LogPath, cfg.Verbose)
	if err != nil {
		return err
	}
	logger, closeLog = l, closeFn
	logger.Debug("sysreport starting",
		zap.String("cmd", cmd.Name()),
		zap.String("config", configSrc),
		zap.Int("pid", os.Getpid()),
	)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			info, ok := debug.ReadBuildInfo()
			if !ok {
				fmt.Fprintln(w, "sysreport: version info not available")
				return
			}
			if configSrc != "" {
				fmt.Fprintf(w, "config:    %s\n", configSrc)
			}
			fmt.Fprintf(w, "sysreport: %s\n", info.Main.Version)
			fmt.Fprintf(w, "go:        %s\n", info.GoVersion)
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					fmt.Fprintf(w, "commit:    %s\n", s.Value)
				case "vcs.time":
					fmt.Fprintf(w, "date:      %s\n", s.Value)
				case "vcs.modified":
					fmt.Fprintf(w, "dirty:     %s\n", s.Value)
				}
			}
		},
	}
}
