package main

import (
	"io"
	"os"

	"github.com/nattlua/nattlua-go/runtime/lexer"
)

const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorGray   = "\033[90m"
)

// Colorize wraps text in ANSI color codes if color is enabled
func Colorize(text, color string, useColor bool) string {
	if !useColor || color == "" {
		return text
	}
	return color + text + ColorReset
}

// ShouldUseColor determines if color output should be used.
// Respects --no-color, NO_COLOR and whether w is a terminal.
func ShouldUseColor(noColorFlag bool, w io.Writer) bool {
	if noColorFlag {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

func kindColor(kind lexer.Kind) string {
	switch kind {
	case lexer.Number:
		return ColorCyan
	case lexer.String:
		return ColorGreen
	case lexer.Symbol:
		return ColorYellow
	case lexer.Unknown:
		return ColorRed
	case lexer.AnalyzerDebugCode, lexer.ParserDebugCode, lexer.Shebang:
		return ColorBlue
	}
	if kind.IsTrivia() {
		return ColorGray
	}
	return ""
}
