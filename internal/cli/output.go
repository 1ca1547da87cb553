package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-promise/core"
	"gopkg.in/yaml.v3"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the operation was refused or failed
	ExitCommandError = 2 // bad flags, unreadable config, database unavailable
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter renders command results as text, JSON or YAML.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// CLIResponse is the envelope for json and yaml output.
type CLIResponse struct {
	Status string    `json:"status" yaml:"status"`
	Data   any       `json:"data,omitempty" yaml:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty" yaml:"error,omitempty"`
}

type CLIError struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// Success writes data. In text format, text is printed instead of data.
func (f *OutputFormatter) Success(data any, text string) error {
	switch f.Format {
	case "json":
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	case "yaml":
		return f.encodeYAML(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, text)
	return err
}

func (f *OutputFormatter) Error(code string, message string) error {
	response := CLIResponse{
		Status: "error",
		Error:  &CLIError{Code: code, Message: message},
	}
	switch f.Format {
	case "json":
		return json.NewEncoder(f.Writer).Encode(response)
	case "yaml":
		return f.encodeYAML(response)
	}
	_, err := fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	return err
}

// VerboseLog writes to ErrWriter so structured output stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func (f *OutputFormatter) encodeYAML(value any) error {
	encoder := yaml.NewEncoder(f.Writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(value); err != nil {
		return err
	}
	return encoder.Close()
}

// reportError writes err through the formatter and returns the ExitError the
// command should fail with. Rich errors keep their text code.
func reportError(f *OutputFormatter, action string, err error) error {
	code := core.PromiseErrorInternal
	message := err.Error()
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		if rich.TextCode != "" {
			code = rich.TextCode
		}
		if details := rich.AllValidationErrors(); len(details) > 0 {
			message = details[0].Field + ": " + details[0].Message
		} else if rich.Message != "" {
			message = rich.Message
		}
	}
	_ = f.Error(code, message)
	return WrapExitError(ExitFailure, action+" failed", err)
}
