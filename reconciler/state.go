package reconciler

type State int

const (
	StateResolving State = iota
	StateNormalizing
	StateDiffing
	StateCreating
	StateUpdating
	StateDeleting
	StateNoOp
	StateFailed
	StateDone
)

var stateNames = [...]string{
	StateResolving:   "Resolving",
	StateNormalizing: "Normalizing",
	StateDiffing:     "Diffing",
	StateCreating:    "Creating",
	StateUpdating:    "Updating",
	StateDeleting:    "Deleting",
	StateNoOp:        "NoOp",
	StateFailed:      "Failed",
	StateDone:        "Done",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
