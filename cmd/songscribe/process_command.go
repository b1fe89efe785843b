package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"songscribe/internal/api"
	"songscribe/internal/dispatch"
	"songscribe/internal/library"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var local bool

	cmd := &cobra.Command{
		Use:   "process <url-or-id>...",
		Short: "Submit YouTube videos for download and transcription",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := processBatch(ctx, cmd, args, local)
			if err != nil && resp == nil {
				return err
			}
			if jsonOutput {
				if encodeErr := writeJSON(cmd, resp); encodeErr != nil {
					return encodeErr
				}
				return err
			}
			renderProcessResponse(cmd, resp)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the raw API response")
	cmd.Flags().BoolVar(&local, "local", false, "Launch workers directly instead of going through the daemon")
	return cmd
}

func processBatch(ctx *commandContext, cmd *cobra.Command, refs []string, local bool) (*api.ProcessResponse, error) {
	if !local {
		return ctx.apiClient().Process(cmd.Context(), refs)
	}

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	store := library.NewStore(cfg.Paths.RawDir, cfg.Paths.TranscribedDir, nil)
	dispatcher := dispatch.New(cfg, nil)
	processor := api.NewProcessService(store, dispatcher, nil)

	outcome, err := processor.Process(cmd.Context(), refs)
	if outcome == nil {
		return nil, err
	}
	resp := api.FromOutcome(outcome)
	if err != nil {
		resp.Success = false
		resp.Error = err.Error()
	}
	return &resp, err
}

func renderProcessResponse(cmd *cobra.Command, resp *api.ProcessResponse) {
	if resp == nil {
		return
	}
	out := cmd.OutOrStdout()

	if resp.Error != "" {
		fmt.Fprintf(out, "Error: %s\n", resp.Error)
	}
	if len(resp.InvalidURLs) > 0 {
		fmt.Fprintln(out, "Rejected references:")
		for _, ref := range resp.InvalidURLs {
			fmt.Fprintf(out, "  %s\n", ref)
		}
	}
	if resp.Existing != nil {
		existing := len(resp.Existing.RawLyrics) + len(resp.Existing.TranscribedLyrics) + len(resp.Existing.Both)
		if existing > 0 {
			fmt.Fprintf(out, "Already in the library: %d video(s)\n", existing)
		}
	}
	if resp.Message != "" {
		fmt.Fprintln(out, resp.Message)
	}

	if len(resp.Dispatches) > 0 {
		rows := make([][]string, 0, len(resp.Dispatches))
		for _, d := range resp.Dispatches {
			rows = append(rows, []string{d.VideoID, strconv.Itoa(d.PID), d.StartedAt})
		}
		fmt.Fprintln(out, renderTable([]string{"Video ID", "PID", "Started"}, rows, map[int]bool{1: true}))
	}
	for _, failure := range resp.LaunchErrors {
		fmt.Fprintf(out, "Failed to start %s: %s\n", failure.VideoID, failure.Error)
	}
	if resp.LogFile != "" && !resp.Skipped {
		fmt.Fprintf(out, "Worker output: %s\n", resp.LogFile)
	}
}
