// Package core provides calorie parsing utilities.
//
// This file contains the parser used for form and command-line input, where
// calories arrive as free text.
package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseCalories converts a decimal string to whole kilocalories.
//
// It accepts both dot (350.5) and comma (350,5) decimal separators and rounds
// half-up on the first decimal digit. Only ASCII digits are accepted. Negative values and signs are rejected;
// zero is allowed since a zero-calorie entry is still a valid record.
//
// Examples:
//
//	ParseCalories("350")   -> 350, nil
//	ParseCalories("350.4") -> 350, nil
//	ParseCalories("350,5") -> 351, nil
//	ParseCalories("-20")   -> 0, ErrInvalidCalories
func ParseCalories(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidCalories
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidCalories
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidCalories
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return 0, ErrInvalidCalories
	}
	kcal, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidCalories
	}
	if len(fracPart) > 0 && fracPart[0] >= '5' {
		if kcal == math.MaxInt64 {
			return 0, ErrInvalidCalories
		}
		kcal++
	}
	return kcal, nil
}

// ParseLimit converts a limit string to an integer. Unlike ParseCalories it
// accepts a leading minus sign: the tracker stores whatever limit it is given.
func ParseLimit(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidCalories
	}
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	kcal, err := ParseCalories(s)
	if err != nil {
		return 0, err
	}
	if neg {
		return -kcal, nil
	}
	return kcal, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
