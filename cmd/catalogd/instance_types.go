package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newInstanceTypesCmd(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:     "instance-types",
		Aliases: []string{"it"},
		Short:   "List the instance types deployments can request",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(false)
			if err != nil {
				return err
			}
			mgr, err := buildManager(cfg, zerolog.Nop())
			if err != nil {
				return err
			}
			list := mgr.InstanceTypes()
			switch output {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			case "table":
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tCPU\tMEMORY\tDESCRIPTION")
				for _, it := range list {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.Name, it.CPU, it.Memory, it.Description)
				}
				return tw.Flush()
			}
			return fmt.Errorf("unsupported output %q: use table or json", output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table|json")
	return cmd
}
