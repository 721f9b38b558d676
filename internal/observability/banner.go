package observability

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	colorReset    = "\033[0m"
	colorNeonCyan = "\033[96m"
)

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return w
}

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// PrintBanner writes the centered startup banner to w.
func PrintBanner(w io.Writer) {
	banner := `
    _    ____    _    ____ _   _ ____
   / \  | __ )  / \  / ___| | | / ___|
  / _ \ |  _ \ / _ \| |   | | | \___ \
 / ___ \| |_) / ___ \ |___| |_| |___) |
/_/   \_\____/_/   \_\____|\___/|____/

     >> NATURAL LANGUAGE CALCULATOR <<
`

	width := termWidth()
	color, reset := colorNeonCyan, colorReset
	if !IsTerminal() {
		color, reset = "", ""
	}

	for _, l := range strings.Split(banner, "\n") {
		padding := (width - len(l)) / 2
		if padding < 0 {
			padding = 0
		}
		fmt.Fprintf(w, "%s%s%s\n", strings.Repeat(" ", padding), color+l, reset)
	}
}
