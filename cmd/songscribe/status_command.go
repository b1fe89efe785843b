package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"songscribe/internal/api"
	"songscribe/internal/client"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := ctx.apiClient().Status(cmd.Context())
			if err != nil {
				if errors.Is(err, client.ErrDaemonUnavailable) {
					out := cmd.OutOrStdout()
					colorize := shouldColorize(out)
					fmt.Fprintln(out, renderStatusLine("Daemon", statusError, "not running at "+ctx.serverAddr(), colorize))
					return nil
				}
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, resp)
			}
			renderStatus(cmd, resp)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the raw API response")
	return cmd
}

func renderStatus(cmd *cobra.Command, resp *api.StatusResponse) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	for _, line := range renderSectionHeader("Daemon", colorize) {
		fmt.Fprintln(out, line)
	}
	runningKind := statusError
	if resp.Running {
		runningKind = statusOK
	}
	fmt.Fprintln(out, renderStatusLine("Running", runningKind, yesNo(resp.Running), colorize))
	fmt.Fprintln(out, renderStatusLine("PID", statusInfo, strconv.Itoa(resp.PID), colorize))
	fmt.Fprintln(out, renderStatusLine("Lock file", statusInfo, resp.LockFilePath, colorize))
	fmt.Fprintln(out, renderStatusLine("Worker log", statusInfo, resp.LogFile, colorize))

	for _, line := range renderSectionHeader("Library", colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Songs", statusInfo, strconv.Itoa(resp.SongCount), colorize))
	inFlight := "none"
	inFlightKind := statusInfo
	if len(resp.InFlight) > 0 {
		inFlight = strings.Join(resp.InFlight, ", ")
		inFlightKind = statusOK
	}
	fmt.Fprintln(out, renderStatusLine("In flight", inFlightKind, inFlight, colorize))

	if len(resp.Dependencies) > 0 {
		for _, line := range renderSectionHeader("Dependencies", colorize) {
			fmt.Fprintln(out, line)
		}
		for _, dep := range resp.Dependencies {
			kind := statusOK
			message := dep.Detail
			if !dep.Available {
				kind = statusError
				if dep.Optional {
					kind = statusWarn
				}
				if message == "" {
					message = "not found"
				}
			}
			fmt.Fprintln(out, renderStatusLine(dep.Name, kind, message, colorize))
		}
	}
}
