package segment

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadFile reads segments from a .srt, .vtt, or .json file.
func LoadFile(path string) ([]Segment, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open segments: %w", err)
	}
	defer file.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".srt", ".vtt":
		return ParseSubtitles(file)
	case ".json":
		return DecodeJSON(file)
	default:
		return nil, fmt.Errorf("open segments: unsupported extension %q (want .srt, .vtt, or .json)", ext)
	}
}
