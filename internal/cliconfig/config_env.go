package cliconfig

import "os"

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "SHIPLOG_"

// ApplyEnvConfig applies SHIPLOG_* environment variables, skipping keys
// whose flag was set. SHIPLOG_INTERVALS takes the "0=10s,1=2m" form.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	return applyEnv(cfg, changed, os.Getenv)
}

func applyEnv(cfg *Config, changed map[string]bool, getenv func(string) string) error {
	s := newConfigSetter(changed)
	env := func(key string) string { return getenv(EnvPrefix + key) }

	s.setString("listen-addr", env("LISTEN_ADDR"), &cfg.ListenAddr)
	s.setString("serial-port", env("SERIAL_PORT"), &cfg.SerialPort)
	s.setString("serial-parity", env("SERIAL_PARITY"), &cfg.SerialParity)
	s.setString("sink", env("SINK"), &cfg.Sink)
	s.setString("db-path", env("DB_PATH"), &cfg.DBPath)
	s.setString("sink-url", env("SINK_URL"), &cfg.SinkURL)
	s.setString("auth-key", env("AUTH_KEY"), &cfg.AuthKey)
	s.setString("state-dir", env("STATE_DIR"), &cfg.StateDir)
	s.setString("log-level", env("LOG_LEVEL"), &cfg.LogLevel)

	ints := []struct {
		flag, key string
		dst       *int
	}{
		{"serial-baud", "SERIAL_BAUD", &cfg.SerialBaud},
		{"serial-data-bits", "SERIAL_DATA_BITS", &cfg.SerialDataBits},
		{"serial-stop-bits", "SERIAL_STOP_BITS", &cfg.SerialStopBits},
		{"max-line-bytes", "MAX_LINE_BYTES", &cfg.MaxLineBytes},
		{"read-buffer-bytes", "READ_BUFFER_BYTES", &cfg.ReadBufferBytes},
	}
	for _, i := range ints {
		if err := s.setIntFromString(i.flag, env(i.key), i.dst); err != nil {
			return err
		}
	}

	if err := s.setDuration("timeout", env("HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("retention", env("RETENTION"), &cfg.Retention); err != nil {
		return err
	}
	if err := s.setDuration("cleanup-interval", env("CLEANUP_INTERVAL"), &cfg.CleanupInterval); err != nil {
		return err
	}
	if err := s.setBoolFromString("flush-on-shutdown", env("FLUSH_ON_SHUTDOWN"), &cfg.FlushOnShutdown); err != nil {
		return err
	}

	if v := env("INTERVALS"); v != "" {
		table, err := parseIntervalList(v)
		if err != nil {
			return err
		}
		s.setIntervals("interval", table, &cfg.Intervals)
	}
	return nil
}
