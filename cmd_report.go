package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"corp/sysreport/collect"
	"corp/sysreport/config"
	"corp/sysreport/core"
)

// inventorySource kumpulan collector yang dipakai report
type inventorySource interface {
	OSDetails(ctx context.Context) core.OSDetails
	Hotfixes(ctx context.Context) core.Result[[]core.Hotfix]
	DotNetVersions(ctx context.Context) core.Result[[]core.DotNetVersion]
	AMSIProviders(ctx context.Context) core.Result[[]core.AMSIProvider]
	AuditPolicy(ctx context.Context) core.Result[[]core.AuditSetting]
	Autoruns(ctx context.Context) core.Result[[]core.AutorunEntry]
	StartupEntries(ctx context.Context) core.Result[[]core.StartupEntry]
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "collect host inventory and write the HTML (or JSON) report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := cmd.Flags()
			if f.Changed("output") {
				cfg.ReportPath, _ = f.GetString("output")
			}
			if f.Changed("format") {
				cfg.Format, _ = f.GetString("format")
			}
			if f.Changed("workers") {
				cfg.Workers, _ = f.GetInt("workers")
			}
			if f.Changed("timeout") {
				cfg.Timeout, _ = f.GetDuration("timeout")
			}
			if f.Changed("no-progress") {
				cfg.Progress = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runReport(cmd.Context(), cmd.OutOrStdout(), collect.New(logger), cfg, logger)
		},
	}
	cmd.Flags().StringP("output", "o", config.DefaultReportPath, "report file")
	cmd.Flags().String("format", config.FormatHTML, "report format: html or json")
	cmd.Flags().Int("workers", 1, "collectors running at once (1 = sequential)")
	cmd.Flags().Duration("timeout", 60*time.Second, "timeout per collector")
	cmd.Flags().Bool("no-progress", false, "disable the progress spinner")
	return cmd
}

// runReport menjalankan semua collector lalu menulis report ke cfg.ReportPath
func runReport(ctx context.Context, out io.Writer, src inventorySource, cfg config.Config, log *zap.Logger) error {
	inv := core.Inventory{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now(),
	}
	if h, err := os.Hostname(); err == nil {
		inv.Hostname = h
	}
	log = log.With(zap.String("run_id", inv.RunID))
	log.Info("report started", zap.Int("workers", cfg.Workers), zap.String("output", cfg.ReportPath))

	sc := core.NewScanner(core.Config{
		Timeout:     cfg.Timeout,
		Workers:     cfg.Workers,
		Progress:    cfg.Progress,
		ProgressOut: os.Stderr,
	}, log)
	sc.Register(
		core.BindValue("os", "OS details", &inv.OS, src.OSDetails),
		core.Bind("hotfixes", "Installed hotfixes", &inv.Hotfixes, src.Hotfixes),
		core.Bind("dotnet", ".NET versions", &inv.DotNet, src.DotNetVersions),
		core.Bind("amsi", "AMSI providers", &inv.AMSI, src.AMSIProviders),
		core.Bind("audit", "Audit policy", &inv.Audit, src.AuditPolicy),
		core.Bind("autoruns", "Autorun entries", &inv.Autoruns, src.Autoruns),
		core.Bind("startup", "Startup entries", &inv.Startup, src.StartupEntries),
	)
	tasks := sc.Run(ctx)

	for _, p := range inv.OS.Pairs() {
		log.Info(p.Key+": "+p.Value)
	}

	if err := writeReport(cfg.ReportPath, cfg.Format, inv, tasks); err != nil {
		log.Error("report write failed", zap.Error(err))
		return err
	}
	log.Info("report written", zap.String("path", cfg.ReportPath))

	core.PrintSummaryTable(out, inv, tasks)
	fmt.Fprintf(out, "\nReport generated: %s\n", cfg.ReportPath)
	return nil
}

// writeReport menulis ke file sementara lalu rename, jadi report lama tidak
// rusak kalau penulisan gagal di tengah jalan
func writeReport(path, format string, inv core.Inventory, tasks []core.TaskResult) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".sysreport-*")
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	switch format {
	case config.FormatJSON:
		err = core.WriteJSON(w, inv, tasks, true)
	default:
		err = core.WriteHTML(w, inv)
	}
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
