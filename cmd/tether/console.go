package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/probelab/tether/internal/cli"
	"github.com/probelab/tether/internal/presentation/tui"
	"github.com/probelab/tether/pkg/dispatch"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Open an interactive command console on a local session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		debug, _ := cmd.Flags().GetBool("debug")
		logger := cli.CreateLogger(debug)

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

		bootCtx, cancelBoot := context.WithTimeout(context.Background(), 30*time.Second)
		if err := cli.RunStartup(bootCtx, sess, cfg.Startup); err != nil {
			cancelBoot()
			return err
		}
		cancelBoot()

		interactive := term.IsTerminal(int(os.Stdin.Fd()))
		renderHelp := tui.NewHelpRenderer()
		prompt := tui.Prompt(cfg.Session.ID)
		if !interactive {
			prompt = ""
		}

		ctx := cmd.Context()
		scanner := bufio.NewScanner(os.Stdin)
		fmt.Print(prompt)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				fmt.Print(prompt)
				continue
			}

			out, err := sess.Execute(ctx, line)
			if out != "" {
				if interactive && strings.HasPrefix(line, "help") {
					fmt.Print(renderHelp(out))
				} else {
					fmt.Print(out)
				}
			}
			if err != nil {
				if errors.Is(err, dispatch.ErrShuttingDown) {
					break
				}
				fmt.Fprintln(os.Stderr, tui.Errorf("error: %v", err))
			}

			select {
			case <-sess.Done():
				// exit/shutdown was dispatched.
				return nil
			default:
			}
			fmt.Print(prompt)
		}
		return scanner.Err()
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}
