package log

// LevelSetter is implemented by loggers whose minimum level can change at
// runtime.
type LevelSetter interface {
	SetLevel(level string) error
}
