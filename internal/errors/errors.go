package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/diarykeep/internal/logger"
)

var (
	// ErrImportInvalid is returned when an archive fails to parse. Nothing is written.
	ErrImportInvalid = stderrors.New("invalid backup archive")
	// ErrNotFound is returned when a keyed item does not exist.
	ErrNotFound = stderrors.New("not found")
	// ErrPermissionDenied is returned when a collaborator refuses access.
	ErrPermissionDenied = stderrors.New("permission denied")
	// ErrInvalidPIN is returned when a PIN is not 4 to 6 digits.
	ErrInvalidPIN = stderrors.New("PIN must be 4 to 6 digits")
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	if hint := Hint(err); hint != "" {
		return fmt.Sprintf("Error: %v\n%s", err, hint)
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Hint returns a short remedy for known sentinel errors, or "".
func Hint(err error) string {
	switch {
	case stderrors.Is(err, ErrImportInvalid):
		return "The archive must be a zip exported by diarykeep (root folder mydairy/). No data was changed."
	case stderrors.Is(err, ErrPermissionDenied):
		return "Grant access in your system settings and try again."
	case stderrors.Is(err, ErrInvalidPIN):
		return "Choose a numeric PIN such as 1234."
	}
	return ""
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
