// Package natsort orders strings so that embedded numbers compare by value
// ("ep2" before "ep10").
package natsort

import (
	"sort"
	"strings"
)

type chunk struct {
	text  string
	digit bool
}

func chunks(s string) []chunk {
	var out []chunk
	for i := 0; i < len(s); {
		j := i
		digit := isDigit(s[i])
		for j < len(s) && isDigit(s[j]) == digit {
			j++
		}
		out = append(out, chunk{text: s[i:j], digit: digit})
		i = j
	}
	return out
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// compareNumbers compares two digit runs by value without parsing, so runs
// longer than an int64 still order correctly.
func compareNumbers(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// Compare returns -1, 0 or 1. Numbers sort before text when a number run
// meets a text run at the same position.
func Compare(a, b string) int {
	ca, cb := chunks(a), chunks(b)
	for i := 0; i < len(ca) && i < len(cb); i++ {
		x, y := ca[i], cb[i]
		switch {
		case x.digit && y.digit:
			if c := compareNumbers(x.text, y.text); c != 0 {
				return c
			}
		case x.digit != y.digit:
			if x.digit {
				return -1
			}
			return 1
		default:
			if c := strings.Compare(x.text, y.text); c != 0 {
				return c
			}
		}
	}
	switch {
	case len(ca) < len(cb):
		return -1
	case len(ca) > len(cb):
		return 1
	}
	// "01" and "1" are equal by value; keep the result deterministic.
	return strings.Compare(a, b)
}

// Less reports whether a sorts before b.
func Less(a, b string) bool { return Compare(a, b) < 0 }

// Sort returns a sorted copy of s.
func Sort(s []string) []string {
	out := append([]string(nil), s...)
	sort.SliceStable(out, func(i, j int) bool { return Less(out[i], out[j]) })
	return out
}
