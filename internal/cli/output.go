// # Naming Conventions
//
// Functions in this package follow consistent naming patterns:
//
//   - Display* and Present* functions write formatted output to an [io.Writer].
//   - Format* functions and SummaryLine return strings without performing I/O.
//   - Write* functions write data to files on the filesystem.

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/agbru/hashprobe/internal/ui"
)

// reportEnvelope wraps a payload with generation metadata.
type reportEnvelope struct {
	Tool      string    `json:"tool"`
	Version   string    `json:"version"`
	Generated time.Time `json:"generated"`
	Kind      string    `json:"kind"`
	Data      any       `json:"data"`
}

// WriteJSONFile writes payload as indented JSON to path, creating parent
// directories as needed. kind names the payload ("collision" or "benchmark").
// An empty path is a no-op.
func WriteJSONFile(path, kind, version string, payload any) error {
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	env := reportEnvelope{
		Tool:      "hashprobe",
		Version:   version,
		Generated: time.Now().UTC(),
		Kind:      kind,
		Data:      payload,
	}
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("failed to encode %s report: %w", kind, err)
	}
	return file.Close()
}

// DisplaySaved confirms that a report was written to path.
func DisplaySaved(out io.Writer, path string) {
	fmt.Fprintf(out, "\n%s✓ Report saved to: %s%s%s\n", ui.ColorGreen(), ui.ColorCyan(), path, ui.ColorReset())
}
