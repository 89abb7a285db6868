// Package cli provides shared formatting helpers for the psktron CLI.
package cli

import (
	"os"
	"strings"
)

// colorEnabled is false when NO_COLOR is set (no-color.org).
var colorEnabled = os.Getenv("NO_COLOR") == ""

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiDim    = "\033[2m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
)

func paint(code, s string) string {
	if !colorEnabled {
		return s
	}
	return code + s + ansiReset
}

func Green(s string) string  { return paint(ansiGreen, s) }
func Yellow(s string) string { return paint(ansiYellow, s) }
func Red(s string) string    { return paint(ansiRed, s) }
func Bold(s string) string   { return paint(ansiBold, s) }

// Dim is used for values that are identifiers rather than content, such as
// passphrase fingerprints.
func Dim(s string) string { return paint(ansiDim, s) }

// DotPad pads label with a space and dots to width, for key/value listings:
// DotPad("SSID", 10) is "SSID .....".
func DotPad(label string, width int) string {
	if width <= 0 || len(label) >= width-1 {
		return label
	}
	return label + " " + strings.Repeat(".", width-len(label)-1)
}

// Status colours a provisioning status: green for success, red otherwise.
func Status(ok bool, text string) string {
	if ok {
		return Green(text)
	}
	return Red(text)
}

// Truncate shortens s to at most width runes, ending in "...".
func Truncate(s string, width int) string {
	r := []rune(s)
	if width <= 3 || len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
