package outwriter

import (
	"os"

	"golang.org/x/term"

	"github.com/civiclens/civiclens/internal/contract"
)

// Column width bounds for truncated table text.
const (
	minColumnWidth = 8
	maxColumnWidth = 70
)

// getTerminalWidth returns the width override, the detected terminal width, or 80.
func getTerminalWidth(cfg *contract.Config) int {
	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		// Conservative default for narrow terminals and CI
		return 80
	}
	return detectedWidth
}

// GetMaxColumnWidth calculates how wide each of columns free-text columns may be,
// after reserving room for the fixed columns, borders and padding.
func GetMaxColumnWidth(cfg *contract.Config, reserved, columns int) int {
	if columns < 1 {
		columns = 1
	}
	available := (getTerminalWidth(cfg) - reserved - 4*columns) / columns
	if available < minColumnWidth {
		return minColumnWidth
	}
	if available > maxColumnWidth {
		return maxColumnWidth
	}
	return available
}
