package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/energyconsortium/energydash-go/pkg/energydash/export"
	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
)

func (a *app) newExportCmd() *cobra.Command {
	var (
		format  string
		outDir  string
		variant string
		name    string
		noMount bool
	)
	cmd := &cobra.Command{
		Use:   "export <panel>",
		Short: "Export one panel as PNG or Excel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := models.ParseExportFormat(format)
			if err != nil {
				return err
			}
			if f == models.FormatReport {
				return fmt.Errorf("use the report command for PDF exports")
			}

			cfg, dash, _, err := a.openDashboard(cmd)
			if err != nil {
				return err
			}
			defer dash.Close()

			shell, err := dash.Panel(args[0])
			if err != nil {
				return err
			}
			if variant != "" {
				if err := shell.SelectVariant(variant); err != nil {
					return err
				}
			}

			exportFn := dash.Export
			if noMount {
				exportFn = dash.ExportCurrent
			}
			dl, err := exportFn(cmd.Context(), models.ExportRequest{
				PanelID:           args[0],
				Format:            f,
				SuggestedFileName: name,
			})
			if err != nil {
				return err
			}
			return a.save(cmd, cfg.Export.OutputDir, outDir, dl)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "png", "Export format: png or xlsx")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default from config)")
	cmd.Flags().StringVar(&variant, "variant", "", "Variant to export, e.g. a year")
	cmd.Flags().StringVar(&name, "name", "", "File name overriding the panel's export name")
	cmd.Flags().BoolVar(&noMount, "no-mount", false, "Export without rendering the panel first")
	return cmd
}

func (a *app) newReportCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "report <page>",
		Short: "Export a page as a PDF report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, dash, _, err := a.openDashboard(cmd)
			if err != nil {
				return err
			}
			defer dash.Close()

			dl, err := dash.ReportPage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.save(cmd, cfg.Export.OutputDir, outDir, dl)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default from config)")
	return cmd
}

func (a *app) newArchiveCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "archive <page>",
		Short: "Export every panel of a page into a ZIP archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, dash, _, err := a.openDashboard(cmd)
			if err != nil {
				return err
			}
			defer dash.Close()

			dl, err := dash.ExportPage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.save(cmd, cfg.Export.OutputDir, outDir, dl)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default from config)")
	return cmd
}

// save writes dl into outDir, or into the configured directory when outDir
// is empty, and prints the written path. A nil download prints a notice.
func (a *app) save(cmd *cobra.Command, configured, outDir string, dl *export.Download) error {
	if dl == nil {
		fmt.Fprintln(a.stderr, "nothing to export: the panel has no rendered chart")
		return nil
	}
	if outDir == "" {
		outDir = configured
	}
	if err := (export.DirSink{Dir: outDir}).Save(cmd.Context(), dl); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(outDir, dl.FileName))
	return nil
}
