package refactor

import (
	"bytes"
	"errors"
)

// sniffLength bounds the NUL scan, matching git's binary heuristic.
const sniffLength = 8000

var errBinary = errors.New("binary content")

// sniff rejects content that cannot be Java source and returns its line
// count. A last line without a newline still counts.
func sniff(data []byte) (int, error) {
	head := data[:min(len(data), sniffLength)]
	if bytes.IndexByte(head, 0) >= 0 {
		return 0, errBinary
	}

	if len(data) == 0 {
		return 0, nil
	}

	lines := bytes.Count(data, []byte{'\n'})
	if data[len(data)-1] != '\n' {
		lines++
	}

	return lines, nil
}
