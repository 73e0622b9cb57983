package command

import "errors"

// ErrDuplicateName is returned when a registration would shadow an
// existing sibling command.
var ErrDuplicateName = errors.New("duplicate command name")

// ErrUnknownPrefix is returned when a registration or unregistration
// prefix does not resolve to an existing node.
var ErrUnknownPrefix = errors.New("unknown command prefix")

// ErrUnknownCommand is returned by Resolve when no prefix of the tokens
// matches a registered command with a handler.
var ErrUnknownCommand = errors.New("unknown command")

// ErrInvalidRegistration is returned when a registration tree is
// malformed (empty name before the terminator, nil handler on a leaf).
var ErrInvalidRegistration = errors.New("invalid registration")
