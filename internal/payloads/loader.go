package payloads

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrPayloadFileNotFound indicates the payload list path does not exist
var ErrPayloadFileNotFound = errors.New("payload file not found")

// maxLineSize allows long polyglot payloads on a single line
const maxLineSize = 1024 * 1024

// Load reads a newline-delimited payload list. Lines are trimmed, blank lines
// are dropped and the input order is kept. Lines starting with '#' are
// payloads, not comments: fragment payloads commonly begin with one. A file
// with only blank lines yields an empty list.
func Load(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPayloadFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to open payload file: %w", err)
	}
	defer file.Close()

	payloads, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload file %s: %w", path, err)
	}
	if payloads == nil {
		payloads = []string{}
	}
	return payloads, nil
}

// Read parses payloads from r with the same rules as Load.
func Read(r io.Reader) ([]string, error) {
	var payloads []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		// TrimSpace also removes the \r of CRLF files
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			payloads = append(payloads, line)
		}
	}
	return payloads, scanner.Err()
}
