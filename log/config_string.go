package log

import (
	"log/slog"
	"strconv"
	"strings"
)

// String returns the lowercase name of the level.
// Levels offset from a named constant render the way [slog.Level.String]
// does, lowercased (for example "info+2").
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}

	return strings.ToLower(slog.Level(l).String())
}

// String returns the lowercase name of the format.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	}

	return "Format(" + strconv.Itoa(int(f)) + ")"
}
