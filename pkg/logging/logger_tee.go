package logging

// TeeLogger sends every entry to two loggers, each filtering by its own level.
type TeeLogger struct {
	primary   Logger
	secondary Logger
}

// NewTeeLogger combines two loggers. The usual setup is INFO to the console
// and DEBUG to a run log file.
func NewTeeLogger(primary, secondary Logger) *TeeLogger {
	return &TeeLogger{primary: primary, secondary: secondary}
}

func (t *TeeLogger) Debug(msg string, fields ...Field) {
	t.primary.Debug(msg, fields...)
	t.secondary.Debug(msg, fields...)
}

func (t *TeeLogger) Info(msg string, fields ...Field) {
	t.primary.Info(msg, fields...)
	t.secondary.Info(msg, fields...)
}

func (t *TeeLogger) Warn(msg string, fields ...Field) {
	t.primary.Warn(msg, fields...)
	t.secondary.Warn(msg, fields...)
}

func (t *TeeLogger) Error(msg string, fields ...Field) {
	t.primary.Error(msg, fields...)
	t.secondary.Error(msg, fields...)
}

func (t *TeeLogger) With(fields ...Field) Logger {
	return &TeeLogger{
		primary:   t.primary.With(fields...),
		secondary: t.secondary.With(fields...),
	}
}

// SetLevel only changes the primary logger
func (t *TeeLogger) SetLevel(level Level) {
	t.primary.SetLevel(level)
}

// GetLevel returns the more verbose of the two levels
func (t *TeeLogger) GetLevel() Level {
	p, s := t.primary.GetLevel(), t.secondary.GetLevel()
	if s < p {
		return s
	}
	return p
}
