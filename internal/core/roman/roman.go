// Package roman converts between integers and Roman numerals for the
// NRA batch marker.
package roman

import (
	"fmt"
	"strings"
)

var symbolValues = map[byte]int{
	'I': 1,
	'V': 5,
	'X': 10,
	'L': 50,
	'C': 100,
	'D': 500,
	'M': 1000,
}

var table = []struct {
	value   int
	numeral string
}{
	{1000, "M"},
	{900, "CM"},
	{500, "D"},
	{400, "CD"},
	{100, "C"},
	{90, "XC"},
	{50, "L"},
	{40, "XL"},
	{10, "X"},
	{9, "IX"},
	{5, "V"},
	{4, "IV"},
	{1, "I"},
}

// FromRoman interprets s as a Roman numeral using subtractive notation,
// scanning from the least significant symbol. Case-insensitive; characters
// outside the symbol set contribute 0. Malformed numerals (e.g. "IIII")
// are not rejected, the best-effort value is returned.
func FromRoman(s string) int {
	s = strings.ToUpper(s)
	num := 0
	prev := 0
	for i := len(s) - 1; i >= 0; i-- {
		current := symbolValues[s[i]]
		if current < prev {
			num -= current
		} else {
			num += current
		}
		prev = current
	}
	return num
}

// ToRoman renders n as a Roman numeral by greedy subtraction.
// n must be positive.
func ToRoman(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("roman: value must be positive, got %d", n)
	}
	var b strings.Builder
	for _, e := range table {
		for n >= e.value {
			b.WriteString(e.numeral)
			n -= e.value
		}
	}
	return b.String(), nil
}
