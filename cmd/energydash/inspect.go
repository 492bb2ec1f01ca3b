package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/energyconsortium/energydash-go/pkg/energydash"
	"github.com/energyconsortium/energydash-go/pkg/energydash/models"
)

func (a *app) newInspectCmd() *cobra.Command {
	var (
		outputPath    string
		pretty        bool
		mode          string
		printAreasDir string
	)
	cmd := &cobra.Command{
		Use:   "inspect <file.xlsx>",
		Short: "Describe an exported workbook as JSON",
		Long: `inspect re-opens a workbook exported by energydash and prints its cells,
table candidates, native charts and print areas as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var inspectMode energydash.InspectMode
			switch mode {
			case "light":
				inspectMode = energydash.InspectLight
			case "standard":
				inspectMode = energydash.InspectStandard
			case "verbose":
				inspectMode = energydash.InspectVerbose
			default:
				return fmt.Errorf("invalid mode: %s (must be light, standard, or verbose)", mode)
			}

			wb, err := energydash.Inspect(args[0], energydash.InspectOptions{Mode: inspectMode})
			if err != nil {
				return fmt.Errorf("inspection failed: %w", err)
			}

			jsonData, err := marshal(wb, pretty)
			if err != nil {
				return fmt.Errorf("serialization failed: %w", err)
			}
			if outputPath != "" {
				if err := os.WriteFile(outputPath, jsonData, 0o644); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
			} else if printAreasDir == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
			}

			if printAreasDir != "" {
				if err := writePrintAreaFiles(energydash.PrintAreaViews(wb), printAreasDir, pretty); err != nil {
					return fmt.Errorf("failed to write print area files: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().StringVar(&mode, "mode", "standard", "Inspection mode: light, standard, verbose")
	cmd.Flags().StringVar(&printAreasDir, "print-areas-dir", "", "Directory for per-print-area output files")
	return cmd
}

func marshal(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

func writePrintAreaFiles(views []models.PrintAreaView, dir string, pretty bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	seen := make(map[string]int)
	for _, view := range views {
		seen[view.SheetName]++
		jsonData, err := marshal(view, pretty)
		if err != nil {
			return err
		}
		filename := filepath.Join(dir, fmt.Sprintf("%s_area%d.json", view.SheetName, seen[view.SheetName]))
		if err := os.WriteFile(filename, jsonData, 0o644); err != nil {
			return err
		}
	}
	return nil
}
