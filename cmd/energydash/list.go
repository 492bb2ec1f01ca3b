package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (a *app) newListCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pages and panels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, dash, _, err := a.openDashboard(cmd)
			if err != nil {
				return err
			}
			defer dash.Close()

			pages := dash.Pages()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(pages)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PAGE\tPANEL\tKIND\tVARIANTS\tTITLE")
			for _, page := range pages {
				for _, spec := range page.Panels {
					variants := "-"
					if keys := spec.VariantKeys(); len(keys) > 1 {
						variants = strings.Join(keys, ",")
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", page.ID, spec.ID, spec.Display.Kind, variants, spec.Title)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full catalog as JSON")
	return cmd
}
