package logging

import (
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/artemijrodionov/sim8086/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the root logger. Logs never go to stdout, which carries the
// listing. The returned closer must be called once logging is done.
func New(cfg config.Log, stderr io.Writer) (hclog.Logger, io.Closer) {
	if stderr == nil {
		stderr = os.Stderr
	}

	var out io.Writer = stderr
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   true,
		}
		out, closer = file, file
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "sim8086",
		Output:     out,
		Level:      hclog.LevelFromString(cfg.Level),
		JSONFormat: cfg.JSON,
	})
	return logger.With("run", uuid.NewString()), closer
}
