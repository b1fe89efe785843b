package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSongsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "songs",
		Short: "List stored songs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := ctx.apiClient().Songs(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, resp)
			}

			out := cmd.OutOrStdout()
			if len(resp.Songs) == 0 {
				fmt.Fprintln(out, "No songs stored yet")
				return nil
			}
			rows := make([][]string, 0, len(resp.Songs))
			for _, song := range resp.Songs {
				title := song.Title
				if title == "" {
					title = "(untitled)"
				}
				rows = append(rows, []string{song.VideoID, title, song.Tier})
			}
			fmt.Fprintln(out, renderTable([]string{"Video ID", "Title", "Tier"}, rows, nil))
			fmt.Fprintf(out, "%d song(s)\n", len(resp.Songs))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the raw API response")
	return cmd
}
