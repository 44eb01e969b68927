// Package log provides the logging abstraction used by shiplog components.
//
// Components log through the Logger interface with typed fields. A zerolog
// console adapter and a no-op logger are provided.
//
// # Usage
//
//	logger := log.NewZerologAdapter()
//	if err := logger.SetLevel("debug"); err != nil {
//	    return err
//	}
//	logger.Info("connection opened", log.String("remote", addr))
//
// Tests and embedding applications that want silence use:
//
//	logger := log.NewNoopLogger()
//
// # Levels
//
// SetLevel adjusts the zerolog global level, so it applies to every adapter
// in the process. The config watcher uses it to apply log_level changes
// without a restart.
package log
