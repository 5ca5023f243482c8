package id

import (
	"errors"
	"strconv"

	"github.com/gofrs/uuid"
)

// ErrMalformed position id is not a canonical unsigned decimal
var ErrMalformed = errors.New("id: malformed position id")

// TraceID random id tagging the log lines of one ledger call
func TraceID() string {
	return uuid.Must(uuid.NewV4()).String()
}

// Position canonical decimal form of a position id
func Position(pid uint64) string {
	return strconv.FormatUint(pid, 10)
}

// ParsePosition parses the canonical form, zero padded input is rejected so
// every id has exactly one spelling
func ParsePosition(s string) (uint64, error) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, ErrMalformed
	}

	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, ErrMalformed
	}

	return v, nil
}
