package model

import (
	"fmt"
	"strings"
)

// CodeLetters lists the NEMA locked-rotor code letters. I, O and Q are not
// used by NEMA MG 1.
var CodeLetters = []CodeLetter{
	"A", "B", "C", "D", "E", "F", "G", "H", "J", "K",
	"L", "M", "N", "P", "R", "S", "T", "U", "V",
}

// ParseCodeLetter normalises a nameplate code letter.
func ParseCodeLetter(s string) (CodeLetter, error) {
	v := CodeLetter(strings.ToUpper(strings.TrimSpace(s)))
	for _, c := range CodeLetters {
		if c == v {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown NEMA code letter %q", s)
}
