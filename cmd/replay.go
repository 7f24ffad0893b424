package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/wayloop/internal/replay"
	"github.com/bnema/wayloop/internal/ui"
)

var replayCmd = &cobra.Command{
	Use:   "replay <scenario.yaml>",
	Short: "Replay a scripted session without a compositor",
	Long: `Replay feeds the steps of a YAML scenario to the event loop through an
in-memory backend and prints the callbacks each step produced.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := replay.Load(args[0])
		if err != nil {
			return err
		}

		trace, err := replay.Run(cmd.Context(), s)
		if trace != nil {
			printTrace(cmd, trace)
		}
		if err != nil {
			return err
		}
		return nil
	},
}

func printTrace(cmd *cobra.Command, trace *replay.Trace) {
	rows := make([]ui.TraceRow, 0, len(trace.Entries))
	for _, e := range trace.Entries {
		rows = append(rows, ui.TraceRow{Step: e.Step, Action: e.Action, Calls: e.Calls})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.FormatAppHeader("REPLAY", trace.Scenario))
	fmt.Fprintln(out, ui.TraceTable(rows))
	if trace.Finished {
		fmt.Fprintln(out, ui.WarningStyle.Render("The event loop stopped before the last step"))
	}
	fmt.Fprintln(out, ui.SubtleStyle.Render(fmt.Sprintf("%d step(s), %d callback(s)", len(trace.Entries), len(trace.Calls()))))
}

func init() {
	rootCmd.AddCommand(replayCmd)
}
