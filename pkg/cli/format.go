// Package cli provides terminal formatting helpers for the acipush CLI.
//
// Coloring follows no-color.org: it is off when NO_COLOR is set, and the
// CLI can switch it off for non-terminal output with SetColor.
package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const reset = "\033[0m"

var colorEnabled = os.Getenv("NO_COLOR") == ""

// SetColor turns ANSI coloring on or off and returns the previous setting.
func SetColor(enabled bool) bool {
	prev := colorEnabled
	colorEnabled = enabled
	return prev
}

func paint(code, s string) string {
	if !colorEnabled {
		return s
	}
	return code + s + reset
}

func Green(s string) string  { return paint("\033[32m", s) }
func Yellow(s string) string { return paint("\033[33m", s) }
func Red(s string) string    { return paint("\033[31m", s) }
func Bold(s string) string   { return paint("\033[1m", s) }
func Dim(s string) string    { return paint("\033[2m", s) }

// Hex paints s in a 24-bit color given as six hex digits ("58D68D").
// A malformed color leaves s unpainted.
func Hex(color, s string) string {
	color = strings.TrimPrefix(color, "#")
	if len(color) != 6 {
		return s
	}
	rgb, err := strconv.ParseUint(color, 16, 32)
	if err != nil {
		return s
	}
	return paint(fmt.Sprintf("\033[38;2;%d;%d;%dm", rgb>>16, rgb>>8&0xff, rgb&0xff), s)
}

// DotPad pads name with dots to the given width.
// Example: DotPad("TABLE_BD:4", 20) → "TABLE_BD:4 ........."
func DotPad(name string, width int) string {
	if width <= 0 || len(name) >= width-1 {
		return name
	}
	return name + " " + strings.Repeat(".", width-len(name)-1)
}
