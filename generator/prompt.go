package generator

import (
	"fmt"
	"strconv"
	"strings"
)

// Length bounds for the requested word count.
const (
	MinLength     = 100
	MaxLength     = 2000
	LengthStep    = 100
	DefaultLength = 500
)

// SystemInstruction is the persona attached to the model once, when the client is built.
const SystemInstruction = "Act as a blog expert. Generate a blog post for any topic the user will input. " +
	"Make it professional and precise. Be insightful and flexible to fit the user’s needs."

// BuildPrompt embeds topic and length verbatim into the per-request instruction.
func BuildPrompt(topic string, length int) string {
	return fmt.Sprintf("Generate a blog post about '%s' with a maximum of %d words.", topic, length)
}

// ClampLength bounds n to [MinLength, MaxLength] and snaps it to the nearest
// LengthStep, rounding ties up.
func ClampLength(n int) int {
	if n <= MinLength {
		return MinLength
	}
	if n >= MaxLength {
		return MaxLength
	}
	return (n + LengthStep/2) / LengthStep * LengthStep
}

// LengthOrDefault treats zero as "not chosen".
func LengthOrDefault(n int) int {
	if n == 0 {
		return DefaultLength
	}
	return ClampLength(n)
}

// ParseLength reads a length from form input. Blank or non-numeric input
// yields DefaultLength.
func ParseLength(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultLength
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return DefaultLength
	}
	return LengthOrDefault(n)
}
