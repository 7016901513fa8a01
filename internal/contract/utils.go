package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Trend label constants.
const (
	SurgingValue   = "Surging"   // Surging value
	RisingValue    = "Rising"    // Rising value
	SteadyValue    = "Steady"    // Steady value
	DecliningValue = "Declining" // Declining value
)

// Color variables for console output.
var (
	SurgingColor   = color.New(color.FgGreen, color.Bold) // SurgingColor marks a sharp increase.
	RisingColor    = color.New(color.FgGreen)             // RisingColor marks a modest increase.
	SteadyColor    = color.New(color.FgCyan)              // SteadyColor marks little movement.
	DecliningColor = color.New(color.FgRed)               // DecliningColor marks a drop.
)

// GetPlainLabel returns a plain text label for a growth percentage.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(growthPct float64) string {
	switch {
	case growthPct >= 50:
		return SurgingValue
	case growthPct >= 5:
		return RisingValue
	case growthPct > -5:
		return SteadyValue
	default:
		return DecliningValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(growthPct float64) string {
	text := GetPlainLabel(growthPct)

	switch text {
	case SurgingValue:
		return SurgingColor.Sprint(text)
	case RisingValue:
		return RisingColor.Sprint(text)
	case SteadyValue:
		return SteadyColor.Sprint(text)
	default:
		return DecliningColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// homeFile returns name inside the user's home directory, or name itself when
// the home directory cannot be resolved.
func homeFile(name string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(homeDir, name)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for response caching.
func GetCacheDBFilePath() string {
	return homeFile(".civiclens_cache.db")
}

// GetRunDBFilePath returns the path to the SQLite DB file for run tracking.
func GetRunDBFilePath() string {
	return homeFile(".civiclens_runs.db")
}

// GetSessionFilePath returns the path to the saved login session.
func GetSessionFilePath() string {
	return homeFile(".civiclens_session.json")
}

// TruncateText shortens text to maxWidth runes with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and some content.
func TruncateText(text string, maxWidth int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
