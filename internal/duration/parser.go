// Package duration parses operator-entered durations such as "3m 10h 4d".
package duration

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Duration is a whole number of minutes.
type Duration int64

const (
	MinutesPerHour = 60
	MinutesPerDay  = 1440
)

// Usage is the format help shown to operators.
const Usage = "Use the format {n}m {n}h {n}d. For example; 3m 10h 4d for 3 minutes, 10 hours and 4 days"

var unitMinutes = map[byte]int64{
	'm': 1,
	'h': MinutesPerHour,
	'd': MinutesPerDay,
}

var ErrMalformedToken = errors.New("malformed duration token")

type Reason uint8

const (
	MalformedToken Reason = iota
)

func (r Reason) String() string {
	switch r {
	case MalformedToken:
		return "malformed token"
	default:
		return "unknown"
	}
}

// ParseError reports the token that made the whole input invalid.
type ParseError struct {
	Input  string
	Token  string
	Reason Reason
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("invalid duration %q: %s", e.Input, e.Reason)
	}
	return fmt.Sprintf("invalid duration %q: %s %q", e.Input, e.Reason, e.Token)
}

func (e *ParseError) Unwrap() error {
	return ErrMalformedToken
}

// Parse sums every whitespace separated token of s. A single bad token
// rejects the input as a whole.
func Parse(s string) (Duration, error) {
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return 0, &ParseError{Input: s, Reason: MalformedToken}
	}

	var total int64
	for _, tok := range tokens {
		minutes, ok := tokenMinutes(tok)
		if !ok || total > math.MaxInt64-minutes {
			return 0, &ParseError{Input: s, Token: tok, Reason: MalformedToken}
		}
		total += minutes
	}

	return Duration(total), nil
}

func tokenMinutes(tok string) (int64, bool) {
	if len(tok) < 2 {
		return 0, false
	}

	factor, ok := unitMinutes[tok[len(tok)-1]]
	if !ok {
		return 0, false
	}

	digits := tok[:len(tok)-1]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n > math.MaxInt64/factor {
		return 0, false
	}
	return n * factor, true
}

func (d Duration) Minutes() int64 {
	return int64(d)
}

// Std converts to a time.Duration, saturating instead of overflowing.
func (d Duration) Std() time.Duration {
	if int64(d) > int64(math.MaxInt64/time.Minute) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d) * time.Minute
}

func (d Duration) String() string {
	return d.Std().String()
}
