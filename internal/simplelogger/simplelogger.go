package simplelogger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvLogFile names the environment variable holding the log file path.
const EnvLogFile = "LINKMERGE_LOG_FILE"

// New returns a logger that appends JSON lines at debug level and above to the file specified by the LINKMERGE_LOG_FILE environment variable.
//
// If LINKMERGE_LOG_FILE is unset/empty or the path can't be opened as a file, New returns a no-op logger.
func New() *zap.Logger {
	core, ok := fileCore()
	if !ok {
		return zap.NewNop()
	}
	return zap.New(core)
}

// NewVerbose is like New, but also writes human-readable debug logs to w.
func NewVerbose(w io.Writer) *zap.Logger {
	console := zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.Lock(zapcore.AddSync(w)), zapcore.DebugLevel)
	if core, ok := fileCore(); ok {
		return zap.New(zapcore.NewTee(core, console))
	}
	return zap.New(console)
}

func fileCore() (zapcore.Core, bool) {
	path := os.Getenv(EnvLogFile)
	if path == "" {
		return nil, false
	}

	// The file stays open for the life of the process.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, false
	}
	return zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.Lock(f), zapcore.DebugLevel), true
}
