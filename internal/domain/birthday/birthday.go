// Package birthday formats free-typed birthday input as DD/MM/YYYY and
// derives the patient's age from it.
package birthday

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrIncomplete = errors.New("birthday is incomplete")
	ErrMalformed  = errors.New("birthday is malformed")
)

const (
	maxDay   = 31
	maxMonth = 12
)

// Normalize formats raw input progressively into DD/MM/YYYY while the user
// types. Non-digits are dropped, the day is clamped to 31, the month to 12
// and the year to now's year. There is no calendar validation: 31/02/2020
// is kept as typed.
func Normalize(raw string, now time.Time) string {
	digits := onlyDigits(raw)
	if len(digits) < 3 {
		return digits
	}

	monthEnd := 4
	if len(digits) < monthEnd {
		monthEnd = len(digits)
	}
	out := clamp(digits[:2], maxDay) + "/" + clamp(digits[2:monthEnd], maxMonth)

	year := digits[monthEnd:]
	if year == "" {
		return out
	}
	if n, err := strconv.Atoi(year); err != nil || n > now.Year() {
		// err can only be a range error here: year is all digits.
		year = strconv.Itoa(now.Year())
	}
	return out + "/" + year
}

// AgeInYears returns the whole years elapsed between a DD/MM/YYYY birthday
// and now, one less if this year's anniversary has not been reached.
func AgeInYears(text string, now time.Time) (int, error) {
	day, month, year, err := parse(text)
	if err != nil {
		return 0, err
	}
	age := now.Year() - year
	if int(now.Month()) < month || (int(now.Month()) == month && now.Day() < day) {
		age--
	}
	return age, nil
}

// Complete reports whether text is a full DD/MM/YYYY value.
func Complete(text string) bool {
	_, _, _, err := parse(text)
	return err == nil
}

func parse(text string) (day, month, year int, err error) {
	if text == "" {
		return 0, 0, 0, ErrIncomplete
	}
	parts := strings.Split(text, "/")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrIncomplete, text)
	}
	for _, p := range parts {
		if p == "" {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrIncomplete, text)
		}
	}
	if len(parts[2]) < 4 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrIncomplete, text)
	}

	var nums [3]int
	for i, p := range parts {
		n, convErr := strconv.Atoi(p)
		if convErr != nil || n < 0 {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrMalformed, text)
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], nil
}

func onlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func clamp(segment string, limit int) string {
	if n, err := strconv.Atoi(segment); err == nil && n > limit {
		return strconv.Itoa(limit)
	}
	return segment
}
