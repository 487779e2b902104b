package cli

import (
	"os"

	"github.com/fatih/color"
)

var (
	headingColor = color.New(color.FgWhite, color.Bold)
	infoColor    = color.New(color.FgCyan)
	errorColor   = color.New(color.FgRed, color.Bold)
)

func printError(format string, a ...any) {
	errorColor.Fprintf(os.Stderr, "✗ "+format+"\n", a...)
}
