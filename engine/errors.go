package engine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a rejected engine call. The set is closed.
type ErrorKind uint8

const (
	KindNone ErrorKind = iota
	KindInvalidTurn
	KindInvalidTile
	KindIllegalPlacement
	KindNothingToDraw
	KindIllegalPass
	KindSessionAlreadyComplete
)

var kindNames = [...]string{
	KindNone:                   "",
	KindInvalidTurn:            "InvalidTurn",
	KindInvalidTile:            "InvalidTile",
	KindIllegalPlacement:       "IllegalPlacement",
	KindNothingToDraw:          "NothingToDraw",
	KindIllegalPass:            "IllegalPass",
	KindSessionAlreadyComplete: "SessionAlreadyComplete",
}

// String returns the classification string surfaced to transports.
func (k ErrorKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// RuleError is returned by every rejected mutation. Rule violations are
// expected outcomes and never panic.
type RuleError struct {
	Kind ErrorKind
	Msg  string
}

func (e *RuleError) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Msg
}

// Is matches any RuleError of the same kind, so errors.Is(err, ErrIllegalPass) works
// regardless of message.
func (e *RuleError) Is(target error) bool {
	var t *RuleError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrInvalidTurn            = &RuleError{Kind: KindInvalidTurn}
	ErrInvalidTile            = &RuleError{Kind: KindInvalidTile}
	ErrIllegalPlacement       = &RuleError{Kind: KindIllegalPlacement}
	ErrNothingToDraw          = &RuleError{Kind: KindNothingToDraw}
	ErrIllegalPass            = &RuleError{Kind: KindIllegalPass}
	ErrSessionAlreadyComplete = &RuleError{Kind: KindSessionAlreadyComplete}
)

// Construction errors. These are configuration mistakes, not gameplay.
var (
	ErrInvalidPlayerCount = errors.New("invalid player count")
	ErrInvalidRoster      = errors.New("invalid roster")
)

func ruleErr(kind ErrorKind, format string, args ...any) error {
	return &RuleError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the ErrorKind from err, or KindNone when err is nil or not a RuleError.
func KindOf(err error) ErrorKind {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindNone
}
