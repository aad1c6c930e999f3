package front

import "github.com/phire/i8086front/decode"

// Logger receives front-end trace events. Production code wires this to
// whatever logger a caller prefers (this module's CLI prints each event to
// standard output with fmt); tests can substitute a no-op or a recording
// stub.
type Logger interface {
	Logf(format string, args ...any)
}

// NopLogger discards every event; the zero Config defaults to it.
type NopLogger struct{}

func (NopLogger) Logf(string, ...any) {}

// Config selects the CPU variant and supplies the decode tables a Core
// needs. Tables are passed in rather than loaded from a fixed path, so
// callers can choose between a real extraction (decode.LoadMicrocode &
// friends) and decode.EmbeddedSubset() for demos and tests.
type Config struct {
	IsI8088 bool

	Group     *decode.GroupDecode
	Selector  *decode.ColumnSelector
	Microcode [512]decode.MicrocodeWord

	Logger Logger
}

func (c Config) logger() Logger {
	if c.Logger == nil {
		return NopLogger{}
	}
	return c.Logger
}
