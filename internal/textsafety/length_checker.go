package textsafety

import "unicode/utf8"

// LengthChecker enforces inclusive rune-count bounds on normalized text.
type LengthChecker struct {
	MinLen int
	MaxLen int
}

func NewLengthChecker(minLen, maxLen int) *LengthChecker {
	return &LengthChecker{
		MinLen: minLen,
		MaxLen: maxLen,
	}
}

func (c *LengthChecker) Check(text string) ReasonCode {
	n := utf8.RuneCountInString(text)
	if n < c.MinLen {
		return ReasonTooShort
	}
	if n > c.MaxLen {
		return ReasonTooLong
	}
	return ReasonNone
}
