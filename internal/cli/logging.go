package cli

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// newLogger returns a tint logger writing to w. Color is used only when w
// is a terminal.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	w, color := colorWriter(w)
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    !color,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Empty strings carry no information in CLI logs.
			if a.Value.Kind() == slog.KindString && a.Value.String() == "" && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// colorWriter wraps a file in a colorable writer, which turns ANSI
// sequences into console calls on Windows, and reports whether w is a
// terminal. Other writers are returned as they are, without color.
func colorWriter(w io.Writer) (io.Writer, bool) {
	f, ok := w.(*os.File)
	if !ok {
		return w, false
	}
	return colorable.NewColorable(f), isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
