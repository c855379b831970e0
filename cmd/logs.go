package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pocketsh/pocketsh/core/logger"
	"github.com/pocketsh/pocketsh/core/ttylog"
)

var idleTimeLimit time.Duration

var logsCmd = &cobra.Command{
	Use:     "logs",
	Aliases: []string{"log"},
	Short:   "Explore command logs and recorded sessions.",
}

// reportCmd summarizes a JSON-lines command log.
var reportCmd = &cobra.Command{
	Use:   "report [LOG]",
	Short: "Summarize a command log.",
	Long: `Aggregate a JSON-lines command log into per-command and
per-outcome counts. With no argument the configured log is read.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		var in io.ReadCloser
		if len(args) == 1 {
			fd, err := os.Open(args[0])
			if err != nil {
				return err
			}
			in = fd
		} else {
			configuration, err := loadConfig()
			if err != nil {
				return err
			}
			fd, err := configuration.ReadCommandLog()
			if err != nil {
				return err
			}
			in = fd
		}
		defer in.Close()

		var report logger.Report
		if err := logger.ReadJSONLinesLog(in, report.Update); err != nil {
			return err
		}

		return renderReport(cmd.OutOrStdout(), &report)
	},
}

func renderReport(w io.Writer, report *logger.Report) error {
	heading := color.New(color.FgCyan, color.Bold)

	fmt.Fprintf(w, "Log entries: %d\n", report.LogEntries)
	fmt.Fprintf(w, "Sessions: %d\n", report.Sessions)
	fmt.Fprintf(w, "Background launches: %d\n", report.BackgroundLaunches)

	sections := []struct {
		name    string
		counter *logger.StrCounter
	}{
		{"Commands", &report.Commands},
		{"Builtins", &report.Builtins},
		{"Outcomes", &report.Outcomes},
		{"Invalid invocations", &report.InvalidInvocations},
	}

	for _, section := range sections {
		entries := section.counter.Entries()
		if len(entries) == 0 {
			continue
		}

		fmt.Fprintln(w)
		heading.Fprintf(w, "%s (%d)\n", section.name, section.counter.Total())
		for _, entry := range entries {
			fmt.Fprintf(w, "%6d  %s\n", entry.Count, entry.Key)
		}
	}

	return nil
}

// playCmd replays a recorded session with its original pacing.
var playCmd = &cobra.Command{
	Use:   "play FILE.cast",
	Short: "Replay a recorded session in the terminal.",
	Long:  `Plays a recorded session back to the current terminal.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		fd, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		source := ttylog.NewAsciicastLogSource(fd)
		sink := ttylog.NewClientOutput(cmd.OutOrStdout())
		sink = ttylog.NewRealTimePlayback(idleTimeLimit, sink)
		return ttylog.Replay(source, sink)
	},
}

// catCmd prints a recorded session at full speed.
var catCmd = &cobra.Command{
	Use:   "cat FILE.cast",
	Short: "Print full output of a recorded session to the terminal.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		fd, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		source := ttylog.NewAsciicastLogSource(fd)
		sink := ttylog.NewClientOutput(cmd.OutOrStdout())
		return ttylog.Replay(source, sink)
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(reportCmd)
	logsCmd.AddCommand(playCmd)
	logsCmd.AddCommand(catCmd)

	playCmd.Flags().DurationVarP(&idleTimeLimit, "idle-time-limit", "i", 3*time.Second, "Maximum time output can be idle. (e.g. 3s, 2m, 100ms)")
}
