package models

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// LenientInt reads the leading integer of s the way a form field is read:
// surrounding text after the number is ignored and anything without a
// leading number is 0. "12 hives" is 12, "abc" is 0, "7.9" is 7. Numbers
// beyond the int range saturate.
func LenientInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) {
		if s[0] == '-' {
			return math.MinInt
		}
		return math.MaxInt
	}
	if err != nil {
		return 0
	}
	return n
}
