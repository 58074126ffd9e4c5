package resource

import (
	"fmt"
	"strings"

	"github.com/crmarques/zpasync/faults"
)

type Kind string

type Presence string

const (
	PresencePresent Presence = "present"
	PresenceAbsent  Presence = "absent"
)

// ParsePresence accepts the caller-facing state values; empty means present.
func ParsePresence(value string) (Presence, error) {
	switch Presence(strings.ToLower(strings.TrimSpace(value))) {
	case "", PresencePresent:
		return PresencePresent, nil
	case PresenceAbsent:
		return PresenceAbsent, nil
	default:
		return "", faults.NewTypedError(
			faults.ValidationError,
			fmt.Sprintf("invalid state %q: use present or absent", value),
			nil,
		).WithFields("state")
	}
}

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionNoOp   Action = "noop"
)

// Spec is the caller's desired state for one resource instance.
type Spec[T any] struct {
	ID       string
	Presence Presence
	Desired  T
}

type DiffEntry struct {
	Field   string `json:"field" yaml:"field"`
	Current any    `json:"current" yaml:"current"`
	Desired any    `json:"desired" yaml:"desired"`
}

// Outcome is the terminal artifact of one reconciliation.
type Outcome[T any] struct {
	Changed bool
	Action  Action
	// Applied is false when the action was decided but not executed, either
	// in dry-run mode or because a delete was rejected by the remote.
	Applied bool
	Data    *T
	Diff    []DiffEntry
}
