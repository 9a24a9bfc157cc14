package session

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMode rejects mode values that are not one of the three variants.
var ErrUnknownMode = errors.New("unknown mode")

// Mode is the conversational behavior assigned to a user.
type Mode uint8

const (
	ModeSales Mode = iota
	ModeAnalysis
	ModeScriptGen
)

// DefaultMode applies to users without a stored mode.
const DefaultMode = ModeSales

func (m Mode) String() string {
	switch m {
	case ModeSales:
		return "sales"
	case ModeAnalysis:
		return "analysis"
	case ModeScriptGen:
		return "script_gen"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// ParseMode is the inverse of String.
func ParseMode(s string) (Mode, error) {
	switch strings.TrimSpace(s) {
	case "sales":
		return ModeSales, nil
	case "analysis":
		return ModeAnalysis, nil
	case "script_gen":
		return ModeScriptGen, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}
