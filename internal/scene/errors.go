package scene

import "errors"

var (
	ErrNoEntity          = errors.New("entity not alive")
	ErrCycle             = errors.New("parenting would create a cycle")
	ErrSelfParent        = errors.New("entity cannot parent itself")
	ErrAnonymous         = errors.New("anonymous entities cannot take part in the hierarchy")
	ErrInvalidTransition = errors.New("invalid scene state transition")
)
