package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"axioma/internal/discernment"
)

func (c *cli) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect engine configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective engine configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.engineConfig()
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(c.out)
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "validate <file>",
		Short: "Check an engine configuration file without running anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := discernment.LoadConfig(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%s: ok\n", args[0])
			return nil
		},
	})
	return cmd
}
