package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/repodex/schema"
)

// Color variables for console output.
var (
	AliveColor    = color.New(color.FgGreen, color.Bold) // AliveColor marks actively maintained projects.
	SteadyColor   = color.New(color.FgYellow)            // SteadyColor is standard caution, not bold.
	DecayingColor = color.New(color.FgRed)               // DecayingColor marks projects losing maintenance.
	BreakoutColor = color.New(color.FgMagenta, color.Bold)
	RisingColor   = color.New(color.FgCyan)
)

// GetHealthColorLabel returns a colored health label for console output (table).
func GetHealthColorLabel(label schema.HealthLabel) string {
	text := string(label)
	switch label {
	case schema.AliveHealth:
		return AliveColor.Sprint(text)
	case schema.SteadyHealth:
		return SteadyColor.Sprint(text)
	case schema.DecayingHealth:
		return DecayingColor.Sprint(text)
	default:
		return text
	}
}

// GetMomentumColorLabel returns a colored momentum label for console output (table).
func GetMomentumColorLabel(label schema.MomentumLabel) string {
	text := string(label)
	switch label {
	case schema.BreakoutMomentum:
		return BreakoutColor.Sprint(text)
	case schema.RisingMomentum:
		return RisingColor.Sprint(text)
	default:
		return text
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the health cache and snapshot.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".repodex_cache.db"
	}
	return filepath.Join(homeDir, ".repodex_cache.db")
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run history.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".repodex_runs.db"
	}
	return filepath.Join(homeDir, ".repodex_runs.db")
}

// GetJSONStoreFilePath returns the default path of a flat JSON store.
func GetJSONStoreFilePath(name string) string {
	file := fmt.Sprintf(".repodex_%s.json", name)
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return file
	}
	return filepath.Join(homeDir, file)
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so that at least one rune survives next to the "...".
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// MaskSecret keeps the first four runes of a secret and hides the rest.
func MaskSecret(secret string) string {
	runes := []rune(secret)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:4]) + strings.Repeat("*", len(runes)-4)
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
