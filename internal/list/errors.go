package list

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrInvalidSortMethod = errors.New("invalid sort method")
	ErrInvalidSortOrder  = errors.New("invalid sort order")
	ErrInvalidPart       = errors.New("invalid part")
	ErrInvalidRounding   = errors.New("invalid rounding method")
	ErrInvalidPercentage = errors.New("invalid percentage")
	ErrUnknownField      = errors.New("unknown field")

	// ErrNoScores is returned by the statistics when no visible entry is scored.
	ErrNoScores = errors.New("no scored entries")
	// ErrEmptyPartial is returned when a partial selection holds no entries.
	ErrEmptyPartial = errors.New("empty partial selection")
)

// ConfigError reports a caller-supplied option the list does not recognise.
type ConfigError struct {
	Op    string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %v %q", e.Op, e.Err, e.Value)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func configErr(op, value string, err error) error {
	return &ConfigError{Op: op, Value: value, Err: err}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
