package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/shiplog/internal/cliconfig"
	"github.com/bft-labs/shiplog/pkg/log"
	"github.com/bft-labs/shiplog/pkg/shiplog"
	"github.com/bft-labs/shiplog/plugins/configwatcher"
)

func newServeCommand(logger *log.ZerologAdapter) *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string
	var intervalFlags map[string]string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Ingest NMEA/AIS streams and commit sampled records (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.shiplog/config.toml),
			// then env, then flags.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if changed["interval"] {
				table, err := cliconfig.ParseIntervals(intervalFlags)
				if err != nil {
					return err
				}
				cfg.Intervals = table
			}

			watchPath := ""
			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
				watchPath = cfgFile
			}
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := logger.SetLevel(cfg.LogLevel); err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
				return fmt.Errorf("create state dir: %w", err)
			}

			logCfg := cfg.Redacted()
			logger.Info("configuration",
				log.String("listen_addr", logCfg.ListenAddr),
				log.String("serial_port", logCfg.SerialPort),
				log.String("sink", logCfg.Sink),
				log.String("db_path", logCfg.DBPath),
				log.String("sink_url", logCfg.SinkURL),
				log.String("state_dir", logCfg.StateDir),
				log.String("intervals", cliconfig.FormatIntervals(logCfg.Intervals)),
				log.Bool("flush_on_shutdown", logCfg.FlushOnShutdown),
			)

			svc, err := shiplog.New(serviceConfig(cfg),
				shiplog.WithLogger(logger),
				configwatcher.WithConfigWatcher(configwatcher.Config{
					Path:    watchPath,
					Changed: changed,
				}),
				shiplog.WithCleanupConfig(shiplog.CleanupConfig{
					Enabled:       cfg.Retention > 0,
					Retention:     cfg.Retention,
					CheckInterval: cfg.CleanupInterval,
				}),
			)
			if err != nil {
				return fmt.Errorf("create shiplog: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := svc.Start(ctx); err != nil {
				return fmt.Errorf("start shiplog: %w", err)
			}

			<-ctx.Done()
			logger.Info("received signal, stopping...")

			if err := svc.Stop(); err != nil {
				return fmt.Errorf("stop shiplog: %w", err)
			}
			st := svc.Stats()
			logger.Info("stopped",
				log.Uint64("committed", st.Committed),
				log.Uint64("dropped", st.Dropped),
				log.Uint64("failed", st.Failed))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgPath, "config", "", "path to config file, .toml or .yaml (default: $HOME/.shiplog/config.toml)")
	f.StringVar(&cfg.ListenAddr, "listen-addr", cfg.ListenAddr, "TCP address accepting NMEA streams (empty disables)")
	f.StringVar(&cfg.SerialPort, "serial-port", cfg.SerialPort, "serial device to read NMEA from (optional)")
	f.IntVar(&cfg.SerialBaud, "serial-baud", cfg.SerialBaud, "serial baud rate")
	f.IntVar(&cfg.SerialDataBits, "serial-data-bits", cfg.SerialDataBits, "serial data bits (5-8)")
	f.IntVar(&cfg.SerialStopBits, "serial-stop-bits", cfg.SerialStopBits, "serial stop bits (1 or 2)")
	f.StringVar(&cfg.SerialParity, "serial-parity", cfg.SerialParity, "serial parity (N, E or O)")

	f.StringVar(&cfg.Sink, "sink", cfg.Sink, "where samples are committed: sqlite or http")
	f.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database (default: <state-dir>/shiplog.db)")
	f.StringVar(&cfg.SinkURL, "sink-url", cfg.SinkURL, "webhook URL for the http sink")
	f.StringVar(&cfg.AuthKey, "auth-key", cfg.AuthKey, "bearer token for the http sink")
	f.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout")

	f.IntVar(&cfg.MaxLineBytes, "max-line-bytes", cfg.MaxLineBytes, "longest accepted sentence; longer lines are discarded")
	f.IntVar(&cfg.ReadBufferBytes, "read-buffer-bytes", cfg.ReadBufferBytes, "read size per connection")
	f.StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "directory for status.json and the default database (default: $HOME/.shiplog)")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	f.BoolVar(&cfg.FlushOnShutdown, "flush-on-shutdown", cfg.FlushOnShutdown, "commit held samples on shutdown instead of dropping them")
	f.DurationVar(&cfg.Retention, "retention", cfg.Retention, "delete entries older than this (0 keeps everything)")
	f.DurationVar(&cfg.CleanupInterval, "cleanup-interval", cfg.CleanupInterval, "how often retention cleanup runs")
	f.StringToStringVar(&intervalFlags, "interval", nil, "sampling delay per navigational status, e.g. 0=10s,5=2m (replaces the default table)")

	return cmd
}

// serviceConfig maps the CLI configuration onto the library's.
func serviceConfig(cfg cliconfig.Config) shiplog.Config {
	return shiplog.Config{
		ListenAddr:      cfg.ListenAddr,
		SerialPort:      cfg.SerialPort,
		SerialBaud:      cfg.SerialBaud,
		SerialDataBits:  cfg.SerialDataBits,
		SerialStopBits:  cfg.SerialStopBits,
		SerialParity:    cfg.SerialParity,
		Sink:            cfg.Sink,
		DBPath:          cfg.DBPath,
		SinkURL:         cfg.SinkURL,
		AuthKey:         cfg.AuthKey,
		HTTPTimeout:     cfg.HTTPTimeout,
		MaxLineBytes:    cfg.MaxLineBytes,
		ReadBufferBytes: cfg.ReadBufferBytes,
		StateDir:        cfg.StateDir,
		FlushOnShutdown: cfg.FlushOnShutdown,
		Intervals:       cfg.Intervals,
	}
}
