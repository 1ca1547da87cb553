package gologger

import (
	"context"
	"fmt"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/mborders/logmatic"
)

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// ConsoleLogger writes glog calls to the terminal through logmatic. Key/value
// args are rendered as name=value pairs after the message.
type ConsoleLogger struct {
	name   string
	output *logmatic.Logger
}

func NewConsoleLogger(name string, verbose bool) *ConsoleLogger {
	output := logmatic.NewLogger()
	if verbose {
		output.SetLevel(logmatic.TRACE)
	} else {
		output.SetLevel(logmatic.INFO)
	}
	output.ExitOnFatal = false
	return &ConsoleLogger{name: strings.TrimSpace(name), output: output}
}

func (l *ConsoleLogger) Trace(msg string, args ...any) {
	l.output.Trace("%s", l.line(msg, args))
}

func (l *ConsoleLogger) Debug(msg string, args ...any) {
	l.output.Debug("%s", l.line(msg, args))
}

func (l *ConsoleLogger) Info(msg string, args ...any) {
	l.output.Info("%s", l.line(msg, args))
}

func (l *ConsoleLogger) Warn(msg string, args ...any) {
	l.output.Warn("%s", l.line(msg, args))
}

func (l *ConsoleLogger) Error(msg string, args ...any) {
	l.output.Error("%s", l.line(msg, args))
}

func (l *ConsoleLogger) Fatal(msg string, args ...any) {
	l.output.Fatal("%s", l.line(msg, args))
}

func (l *ConsoleLogger) WithContext(context.Context) glog.Logger {
	return l
}

func (l *ConsoleLogger) line(msg string, args []any) string {
	line := FormatLine(msg, args...)
	if l.name == "" {
		return line
	}
	return "[" + l.name + "] " + line
}

// ConsoleProvider hands out ConsoleLoggers named after the requested
// component.
type ConsoleProvider struct {
	Verbose bool
}

func (p ConsoleProvider) GetLogger(name string) glog.Logger {
	return NewConsoleLogger(name, p.Verbose)
}

// FormatLine renders msg followed by key=value pairs. A trailing key with no
// value is rendered as key=<missing>.
func FormatLine(msg string, args ...any) string {
	if len(args) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		b.WriteByte(' ')
		b.WriteString(fmt.Sprint(args[i]))
		b.WriteByte('=')
		if i+1 < len(args) {
			b.WriteString(fmt.Sprint(args[i+1]))
		} else {
			b.WriteString("<missing>")
		}
	}
	return b.String()
}

var (
	_ glog.Logger         = (*ConsoleLogger)(nil)
	_ glog.LoggerProvider = ConsoleProvider{}
)
