// Package main provides the energydash command: it serves the dashboard,
// exports panels and pages, and inspects exported workbooks.
package main

import (
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/energyconsortium/energydash-go/internal/config"
	"github.com/energyconsortium/energydash-go/pkg/energydash"
	"github.com/energyconsortium/energydash-go/pkg/energydash/catalog"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the flags shared by every command.
type app struct {
	configPath  string
	catalogPath string
	theme       string
	width       int
	height      int
	strict      bool

	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "energydash",
		Short: "Energy statistics dashboard",
		Long: `energydash renders the energy statistics dashboard, serves it over HTTP
and exports its panels as PNG images, Excel workbooks and PDF reports.`,
		SilenceUsage: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (default: search ./config, ~/.energydash, /etc/energydash)")
	pf.StringVar(&a.catalogPath, "catalog", "", "Dataset catalog YAML (default: built-in catalog)")
	pf.StringVar(&a.theme, "theme", "", "Panel theme: light or dark")
	pf.IntVar(&a.width, "width", 0, "Panel width in pixels")
	pf.IntVar(&a.height, "height", 0, "Panel height in pixels")
	pf.BoolVar(&a.strict, "strict", false, "Fail image exports when no chart is rendered")

	rootCmd.AddCommand(
		a.newServeCmd(),
		a.newListCmd(),
		a.newExportCmd(),
		a.newReportCmd(),
		a.newArchiveCmd(),
		a.newInspectCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// loadConfig reads the configuration and applies the flags that were set.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadFromFile(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("theme") {
		cfg.Render.Theme = a.theme
	}
	if flags.Changed("width") {
		cfg.Render.Width = a.width
		cfg.Render.FullscreenWidth = max(cfg.Render.FullscreenWidth, a.width)
	}
	if flags.Changed("height") {
		cfg.Render.Height = a.height
		cfg.Render.FullscreenHeight = max(cfg.Render.FullscreenHeight, a.height)
	}
	if flags.Changed("strict") {
		cfg.Export.Strict = a.strict
	}
	return cfg, cfg.Validate()
}

// openDashboard loads the configuration and the catalog.
func (a *app) openDashboard(cmd *cobra.Command) (*config.Config, *energydash.Dashboard, *log.Logger, error) {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := cfg.Logger(a.stderr)

	pages, err := catalog.Load()
	if a.catalogPath != "" {
		pages, err = catalog.LoadFile(a.catalogPath)
	}
	if err != nil {
		return nil, nil, nil, err
	}

	dash, err := energydash.Open(pages, cfg.DashboardOptions(logger))
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, dash, logger, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("energydash %s\n", version)
		},
	}
}
