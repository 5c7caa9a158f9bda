package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// FileFormat represents different dictionary file formats
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatCBPack             // gzip + msgpack centibel buckets
	FormatText               // word<TAB>frequency lines
)

const cbPackExt = ".msgpack.gz"

// FormatInfo contains metadata about a dictionary file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extensions  []string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatCBPack: {
		Format:      FormatCBPack,
		Description: "cB Packed Word List",
		Extensions:  []string{cbPackExt},
		MinSize:     18, // gzip header and trailer
	},
	FormatText: {
		Format:      FormatText,
		Description: "Plain Text Dictionary",
		Extensions:  []string{".txt"},
		MinSize:     1,
	},
}

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "unknown"
}

// ValidateFileFormat checks if a file matches the expected format
func ValidateFileFormat(filename string, expectedFormat FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}

	formatInfo, exists := supportedFormats[expectedFormat]
	if !exists {
		return fmt.Errorf("unknown format: %v", expectedFormat)
	}

	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	if !hasExtension(filename, formatInfo.Extensions) {
		return fmt.Errorf("file %s has invalid extension for format %s (expected: %v)",
			filename, formatInfo.Description, formatInfo.Extensions)
	}

	switch expectedFormat {
	case FormatCBPack:
		return validateCBPackFormat(filename)
	case FormatText:
		return validateTextFormat(filename)
	}

	return nil
}

func hasExtension(filename string, extensions []string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// validateCBPackFormat checks the gzip magic bytes; the msgpack header is checked on load.
func validateCBPackFormat(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	magic := make([]byte, 2)
	if _, err := io.ReadFull(file, magic); err != nil {
		return fmt.Errorf("failed to read header from %s: %w", filename, err)
	}
	if magic[0] != 0x1f || magic[1] != 0x8b {
		return fmt.Errorf("file %s is not gzip compressed", filename)
	}

	log.Debugf("cBpack file %s validated", filename)
	return nil
}

// validateTextFormat checks that the first data line has a word and a frequency.
func validateTextFormat(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if len(strings.Fields(line)) != 2 {
			return fmt.Errorf("text file %s: first entry %q is not \"word<TAB>frequency\"", filename, line)
		}
		break
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read from text file %s: %w", filename, err)
	}

	log.Debugf("Text file %s validated", filename)
	return nil
}

// DetectFileFormat attempts to detect the format of a file
func DetectFileFormat(filename string) (FileFormat, error) {
	lower := strings.ToLower(filepath.Base(filename))

	if strings.HasSuffix(lower, cbPackExt) {
		if err := ValidateFileFormat(filename, FormatCBPack); err != nil {
			return FormatUnknown, err
		}
		return FormatCBPack, nil
	}

	if strings.HasSuffix(lower, ".txt") {
		if err := ValidateFileFormat(filename, FormatText); err != nil {
			return FormatUnknown, err
		}
		return FormatText, nil
	}

	return FormatUnknown, fmt.Errorf("unable to detect format for file %s", filename)
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format FileFormat) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}

// ListSupportedFormats returns all supported formats
func ListSupportedFormats() []FormatInfo {
	formats := make([]FormatInfo, 0, len(supportedFormats))
	for _, format := range []FileFormat{FormatCBPack, FormatText} {
		formats = append(formats, supportedFormats[format])
	}
	return formats
}
