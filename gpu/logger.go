package gpu

import (
	"log/slog"

	"github.com/gogpu/renderworld"
)

// slogger returns the module logger. All logging in gpu goes through
// this function; renderworld.SetLogger controls the destination.
func slogger() *slog.Logger { return renderworld.Logger() }
