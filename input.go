package guidepost

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxCommandSize bounds a single typed command line.
	DefaultMaxCommandSize = 256
	// EnvMaxCommandSize overrides DefaultMaxCommandSize.
	EnvMaxCommandSize = "GUIDEPOST_MAX_COMMAND_SIZE"
)

var (
	ErrCommandTooLarge = errors.New("command exceeds maximum allowed size")
	ErrInvalidUTF8     = errors.New("command contains invalid UTF-8 sequences")
)

// SanitizeCommand normalizes a typed command line: it rejects oversized or
// malformed input, drops control characters (ANSI escapes, NUL, BEL) and
// folds the result to trimmed lower case.
func SanitizeCommand(line string) (string, error) {
	if limit := maxCommandSize(); len(line) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrCommandTooLarge, len(line), limit)
	}
	if !utf8.ValidString(line) {
		return "", ErrInvalidUTF8
	}

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\t' {
			return -1
		}
		return r
	}, line)
	return strings.ToLower(strings.TrimSpace(cleaned)), nil
}

func maxCommandSize() int {
	if val := os.Getenv(EnvMaxCommandSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxCommandSize
}
