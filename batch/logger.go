package batch

import (
	"log/slog"

	"github.com/gogpu/renderworld"
)

// slogger returns the module logger.
func slogger() *slog.Logger { return renderworld.Logger() }
