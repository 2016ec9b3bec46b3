package replcore

import (
	"os"

	"github.com/mattn/go-isatty"
)

// colorsEnabled mirrors the NO_COLOR convention and isatty detection the
// teacher's own terminal builtins use: no color when output isn't a real
// terminal, and no color when the user opted out explicitly.
func colorsEnabled(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiRed    = "\x1b[31m"
	ansiDim    = "\x1b[2m"
)

func paint(enabled bool, code, s string) string {
	if !enabled {
		return s
	}
	return code + s + ansiReset
}
