// Package clierror formats errors for the CLI, per spec.md §7:
// "✗ Error: <message>" on stderr, exit status 1.
package clierror

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/securefoxd/securefox/vaulterrors"
)

const (
	DefaultErrorExitCode = 1
)

var (
	// errHandler is the function used to handle cli errors.
	errHandler = FatalErrHandler

	// errWriter is used to output cli error messages.
	errWriter io.Writer = os.Stderr

	// fprintf is the function used to format and print errors.
	fprintf = fmt.Fprintf

	// debugMode enables always printing raw error values.
	debugMode bool
)

// SetErrorHandler overrides the default [FatalErrHandler] error handler.
func SetErrorHandler(f func(string, int)) {
	errHandler = f
}

// ResetErrorHandler restores the default error handler.
func ResetErrorHandler() {
	errHandler = FatalErrHandler
}

// SetErrWriter overrides the default error output writer [os.Stderr].
func SetErrWriter(w io.Writer) {
	errWriter = w
}

// ResetErrWriter restores the default error output writer to [os.Stderr].
func ResetErrWriter() {
	errWriter = os.Stderr
}

// DebugMode sets whether debug logging is enabled.
//
// When enabled, raw error values are printed to stderr alongside the
// user-facing message.
func DebugMode(enabled bool) {
	debugMode = enabled
}

// FatalErrHandler prints the message provided and then exits with the given code.
func FatalErrHandler(msg string, code int) {
	printError(msg)

	//nolint:revive // Intentional exit after fatal error.
	os.Exit(code)
}

func PrintErrHandler(msg string, _ int) {
	printError(msg)
}

func printError(msg string) {
	if len(msg) == 0 {
		return
	}

	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}

	_, _ = fprintf(errWriter, msg)
}

func debugPrint(err error) {
	if !debugMode {
		return
	}

	_, _ = fprintf(errWriter, "DEBUG %+v\n", err)
}

// ErrExit may be passed to Check to instruct it to output nothing but exit with
// status code 1.
var ErrExit = errors.New("exit")

// Check formats err per spec.md §7 and invokes the configured error
// handler.
//
// When the [FatalErrHandler] is used, the program will exit before this function returns.
func Check(err error) error {
	check(err, errHandler)
	return err
}

//nolint:revive
func check(err error, handleErr func(string, int)) {
	if err == nil {
		return
	}

	debugPrint(err)

	if errors.Is(err, ErrExit) {
		handleErr("", DefaultErrorExitCode)
		return
	}

	handleErr(fmt.Sprintf("✗ Error: %s", Message(err)), DefaultErrorExitCode)
}

// Message maps err to the user-facing text that follows "✗ Error: ",
// falling back to err.Error() for kinds with no bespoke wording.
func Message(err error) string {
	switch {
	case errors.Is(err, vaulterrors.ErrInvalidPassword):
		return "incorrect password"
	case errors.Is(err, vaulterrors.ErrVaultNotFound):
		return "vault not found; use 'securefox init' to create one"
	case errors.Is(err, vaulterrors.ErrVaultLocked):
		return "vault is locked; unlock it first"
	case errors.Is(err, vaulterrors.ErrSessionExpired):
		return "session expired; unlock again"
	case errors.Is(err, vaulterrors.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, vaulterrors.ErrNotFound):
		return "item not found"
	default:
		return err.Error()
	}
}
