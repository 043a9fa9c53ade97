package commands

import "github.com/spf13/cobra"

func (c *CLI) newLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link <in_dir> <out_dir>",
		Short: "Symlink an asset directory into the output tree unless it already exists",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Link(cmd.Context(), args[0], args[1])
		},
	}
}
