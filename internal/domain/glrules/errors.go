package glrules

import "errors"

var (
	ErrRuleAuthoring     = errors.New("invalid gl override rule")
	ErrNotFound          = errors.New("gl override rule not found")
	ErrInvalidPolarity   = errors.New("invalid line polarity")
	ErrSegmentOutOfRange = errors.New("account segment out of range")
)
