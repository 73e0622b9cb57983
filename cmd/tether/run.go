package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/probelab/tether/internal/cli"
	"github.com/probelab/tether/pkg/dispatch"
	"github.com/probelab/tether/pkg/runner"
)

var runCmd = &cobra.Command{
	Use:   "run [command-file]",
	Short: "Execute commands against a fresh session and exit",
	Long: `Runs inline commands (-c) and/or the lines of a command file against a
new session, prints their output, and shuts the session down. The first
failing command stops the batch unless --keep-going is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		debug, _ := cmd.Flags().GetBool("debug")
		keepGoing, _ := cmd.Flags().GetBool("keep-going")
		inline, _ := cmd.Flags().GetStringArray("command")
		logger := cli.CreateLogger(debug)

		lines := append([]string(nil), cfg.Startup...)
		lines = append(lines, inline...)
		if len(args) == 1 {
			fileLines, err := readCommandFile(args[0])
			if err != nil {
				return err
			}
			lines = append(lines, fileLines...)
		}
		if len(lines) == 0 {
			return fmt.Errorf("nothing to run: pass -c commands or a command file")
		}

		journal, closer, err := cli.BuildJournal(cfg.Journal)
		if err != nil {
			return err
		}
		if closer != nil {
			defer closer.Close()
		}

		sess, err := cli.BuildSession(cfg, logger, journal, nil)
		if err != nil {
			return err
		}
		if err := sess.Start(); err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = sess.Shutdown(stopCtx)
		}()

		ctx := cmd.Context()
		var failed bool
		for _, line := range lines {
			out, err := sess.Execute(ctx, line)
			if out != "" {
				fmt.Print(out)
			}
			if err != nil {
				failed = true
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				if err == dispatch.ErrShuttingDown {
					break
				}
				if !keepGoing {
					break
				}
			}
			if sess.State() != runner.StateRunning {
				// An exit/shutdown command ended the session.
				break
			}
		}
		if failed {
			return fmt.Errorf("command batch failed")
		}
		return nil
	},
}

// readCommandFile returns the non-empty, non-comment lines of a command
// file.
func readCommandFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading command file: %w", err)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringArrayP("command", "c", nil, "Inline command to execute (repeatable)")
	runCmd.Flags().Bool("keep-going", false, "Continue the batch after a failing command")
}
