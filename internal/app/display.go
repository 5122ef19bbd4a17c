package app

import (
	"fmt"
	"io"
	"strings"
)

// Version is shown in the startup banner.
const Version = "v0.1.0"

// panelWidth is the inner width of the banner box and the rule under section
// titles. Labels are ASCII, so byte length is display width.
const panelWidth = 44

const (
	ansiReset = "\033[0m"
	ansiFrame = "\033[36;1m"
	ansiTitle = "\033[33m"
	ansiDim   = "\033[90m"
	ansiGood  = "\033[32m"
)

// Console prints the startup report of the command-line programs.
type Console struct {
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Banner prints a boxed program name and the build version.
func (c *Console) Banner(program string) {
	rule := strings.Repeat("─", panelWidth)
	fmt.Fprintf(c.out, "\n%s  ┌%s┐%s\n", ansiFrame, rule, ansiReset)
	fmt.Fprintf(c.out, "%s  │%s %-*s %s│%s\n", ansiFrame, ansiReset, panelWidth-2, program+" "+Version, ansiFrame, ansiReset)
	fmt.Fprintf(c.out, "%s  └%s┘%s\n\n", ansiFrame, rule, ansiReset)
}

func (c *Console) Section(title string) {
	fmt.Fprintf(c.out, "  %s── %s %s%s\n", ansiTitle, title, strings.Repeat("─", pad(panelWidth-len(title)-4)), ansiReset)
}

// Stat prints a dot-leader line such as "units ······ 9".
func (c *Console) Stat(label string, n int) {
	num := fmt.Sprint(n)
	fmt.Fprintf(c.out, "  %s %s%s%s %s%s%s\n",
		label, ansiDim, strings.Repeat("·", pad(panelWidth-len(label)-len(num)-2)), ansiReset,
		ansiGood, num, ansiReset)
}

func (c *Console) OK(msg string) {
	fmt.Fprintf(c.out, "  %s✓%s %s\n", ansiGood, ansiReset, msg)
}

func (c *Console) Ready(msg string) {
	fmt.Fprintf(c.out, "  %s▶%s %s\n", ansiGood, ansiReset, msg)
}

func pad(n int) int {
	return max(n, 3)
}
