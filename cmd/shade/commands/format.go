package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/shade/internal/app"
	"go.trai.ch/shade/internal/core/domain"
)

func (c *CLI) newFormatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "format [roots...]",
		Short: "Run the source formatter over the configured source trees",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			workers, _ := cmd.Flags().GetInt("workers")

			_, err := c.app.Format(cmd.Context(), app.FormatOptions{
				Config: app.ConfigOptions{
					Path:     configPath,
					Explicit: cmd.Flags().Changed("config"),
				},
				Roots:   args,
				Workers: workers,
			})
			return err
		},
	}
	cmd.Flags().StringP("config", "c", domain.ConfigFileName, "Path to the configuration file")
	cmd.Flags().IntP("workers", "j", 0, "Number of concurrent formatter processes (default from config, then CPU count)")
	return cmd
}
