package ports

import (
	"context"
	"time"
)

// EventKind classifies a hardware event reported by the target backend.
type EventKind string

const (
	EventHalted   EventKind = "halted"
	EventResumed  EventKind = "resumed"
	EventReset    EventKind = "reset"
	EventAttached EventKind = "attached"
	EventDetached EventKind = "detached"
)

// TargetRef identifies the device currently under debug.
type TargetRef struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

// HardwareEvent is a single occurrence observed on the target side
// (halt, resume, reset...). Events are drained by the session runner once
// per loop iteration.
type HardwareEvent struct {
	Target string    `json:"target"`
	Kind   EventKind `json:"kind"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// TargetBackend is the collaborator that owns the physical debug link.
// PollEvents must honor the deadline on ctx: the runner calls it with a
// bounded timeout every iteration and treats errors as non-fatal.
type TargetBackend interface {
	PollEvents(ctx context.Context) ([]HardwareEvent, error)
	CurrentTarget() (TargetRef, bool)
}
