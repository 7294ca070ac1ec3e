package calculation

// Logger is the minimal logging surface the calculators use for non-fatal
// diagnostics such as the fiscal-year fallback warning. Callers wire their
// own implementation (the CLI and API adapt zerolog); the default is silent
// so the calculators stay pure and dependency-free.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}
func (noopLogger) Warnf(string, ...any)  {}
func (noopLogger) Errorf(string, ...any) {}
