package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/probelab/tether"
	httpAdapter "github.com/probelab/tether/internal/adapters/http"
	"github.com/probelab/tether/internal/cli"
	"github.com/probelab/tether/internal/config"
	"github.com/probelab/tether/pkg/adapters/telnet"
	"github.com/probelab/tether/pkg/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the debug-command daemon",
	Long: `Starts a debug session and serves its command queue over the configured
transport listeners (telnet and/or HTTP).`,
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

		metrics := cli.NewMetrics()
		manager := session.NewManager(
			session.WithJournal(journal),
			session.WithLogger(logger),
		)

		sess, err := manager.Open(cfg.Session.ID, func(id string) (*tether.Session, error) {
			return cli.BuildSession(cfg, logger, journal, metrics)
		})
		if err != nil {
			return err
		}

		bootCtx, cancelBoot := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancelBoot()
		if err := cli.RunStartup(bootCtx, sess, cfg.Startup); err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		serverErrors := make(chan error, len(cfg.Listeners))
		var httpSrv *http.Server

		for _, lst := range cfg.Listeners {
			switch lst.Kind {
			case "telnet":
				var opts config.TelnetOptions
				if err := config.DecodeOptions(lst.Options, &opts); err != nil {
					return fmt.Errorf("telnet listener options: %w", err)
				}
				srv := telnet.NewServer(sess,
					telnet.WithAddr(opts.Addr),
					telnet.WithPrompt(opts.Prompt),
					telnet.WithBanner(opts.Banner),
					telnet.WithLogger(logger),
				)
				go func() { serverErrors <- srv.ListenAndServe(ctx) }()
			case "http":
				var opts config.HTTPOptions
				if err := config.DecodeOptions(lst.Options, &opts); err != nil {
					return fmt.Errorf("http listener options: %w", err)
				}
				httpSrv = &http.Server{
					Addr:    opts.Addr,
					Handler: httpAdapter.NewHandler(manager, logger),
				}
				go func(srv *http.Server) {
					logger.Info("http listener started", "addr", srv.Addr)
					if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						serverErrors <- err
					}
				}(httpSrv)
			default:
				return fmt.Errorf("unknown listener kind %q", lst.Kind)
			}
		}

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			logger.Error("listener failed", "err", err)
		case sig := <-shutdown:
			logger.Info("shutdown requested", "signal", sig.String())
		case <-sess.Done():
			logger.Info("session stopped", "err", sess.Err())
		}

		// Stop accepting new work, then drain the session.
		cancel()
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		if httpSrv != nil {
			if err := httpSrv.Shutdown(stopCtx); err != nil {
				logger.Warn("http shutdown incomplete", "err", err)
				_ = httpSrv.Close()
			}
		}
		if err := manager.CloseAll(stopCtx); err != nil {
			return err
		}
		logger.Info("daemon stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
