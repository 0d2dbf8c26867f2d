// Package logger provides logging implementations.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"
	"github.com/user/asciiplay/pkg/ports"
)

const (
	colorReset = "\033[0m"
	colorCyan  = "\033[36m"
)

// levelColors tints whole lines on a terminal. Info is left uncoloured.
var levelColors = map[ports.LogLevel]string{
	ports.LevelDebug: "\033[90m",
	ports.LevelWarn:  "\033[33m",
	ports.LevelError: "\033[31m",
}

// ConsoleLogger writes one line per message. The display owns stdout, so
// the console logger always goes to stderr; NewWriter redirects it.
type ConsoleLogger struct {
	level     ports.LogLevel
	component string
	color     bool
	out       io.Writer
	mu        *sync.Mutex
}

// NewConsole creates a logger on stderr, coloured when stderr is a terminal.
func NewConsole(level ports.LogLevel) *ConsoleLogger {
	fd := os.Stderr.Fd()
	return &ConsoleLogger{
		level: level,
		color: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
		out:   os.Stderr,
		mu:    &sync.Mutex{},
	}
}

// NewWriter creates an uncoloured logger writing to out. Lines carry the
// level name instead of a colour.
func NewWriter(level ports.LogLevel, out io.Writer) *ConsoleLogger {
	return &ConsoleLogger{level: level, out: out, mu: &sync.Mutex{}}
}

func (l *ConsoleLogger) Debug(msg string, args ...interface{}) { l.log(ports.LevelDebug, msg, args) }
func (l *ConsoleLogger) Info(msg string, args ...interface{})  { l.log(ports.LevelInfo, msg, args) }
func (l *ConsoleLogger) Warn(msg string, args ...interface{})  { l.log(ports.LevelWarn, msg, args) }
func (l *ConsoleLogger) Error(msg string, args ...interface{}) { l.log(ports.LevelError, msg, args) }

// WithComponent returns a logger sharing the output that tags lines with component.
func (l *ConsoleLogger) WithComponent(component string) ports.Logger {
	c := *l
	c.component = component
	return &c
}

// log translates msg through the l10n lexicon before formatting.
func (l *ConsoleLogger) log(level ports.LogLevel, msg string, args []interface{}) {
	if level < l.level {
		return
	}

	var b strings.Builder
	if l.color {
		b.WriteString(levelColors[level])
		if l.component != "" {
			fmt.Fprintf(&b, "%s[%s]%s%s ", colorCyan, l.component, colorReset, levelColors[level])
		}
	} else {
		b.WriteString(strings.ToUpper(level.String()))
		b.WriteByte(' ')
		if l.component != "" {
			fmt.Fprintf(&b, "[%s] ", l.component)
		}
	}
	b.WriteString(l10n.F(msg, args...))
	if l.color && levelColors[level] != "" {
		b.WriteString(colorReset)
	}
	b.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.out, b.String())
}
