package capture

import (
	"strings"

	"github.com/adrianmo/go-nmea"
)

// CleanLine strips an NMEA 4.x tag block and surrounding whitespace. It
// returns false for lines that cannot be a sentence.
func CleanLine(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, `\`) {
		end := strings.Index(line[1:], `\`)
		if end < 0 {
			return "", false
		}
		line = strings.TrimSpace(line[end+2:])
	}
	if line == "" || (line[0] != '!' && line[0] != '$') {
		return "", false
	}
	return line, true
}

// ValidChecksum reports whether the two hex digits after '*' match the XOR
// of the characters between the start delimiter and '*'.
func ValidChecksum(sentence string) bool {
	star := strings.LastIndexByte(sentence, '*')
	if len(sentence) < 2 || star < 1 || len(sentence) < star+3 {
		return false
	}
	return strings.EqualFold(nmea.Checksum(sentence[1:star]), sentence[star+1:star+3])
}
