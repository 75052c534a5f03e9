// Package code generates short room codes.
package code

import (
	"math/rand"
	"strings"
)

// Visually confusable glyphs (0/O, 1/I, lowercase lookalikes) are excluded.
var letters = strings.Split("23456789ABCDEFGHJKLMNPQRSTUVWXYZ", "")

const codeLength = 6

func GenerateRandom() string {
	var b strings.Builder
	b.Grow(codeLength)
	for i := 0; i < codeLength; i++ {
		b.WriteString(letters[rand.Intn(len(letters))])
	}
	return b.String()
}
