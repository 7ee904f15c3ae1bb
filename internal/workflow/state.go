package workflow

import "fmt"

// State is a step of the hook state machine.
type State int

const (
	StateStart State = iota
	StateCheckRepo
	StateCheckChanges
	StateCollectDiff
	StateGenerateMessage
	StateCommit
	StateDone
	StateNoRepository
	StateNoChanges
	StateCommitFailed
)

var stateNames = map[State]string{
	StateStart:           "Start",
	StateCheckRepo:       "CheckRepo",
	StateCheckChanges:    "CheckChanges",
	StateCollectDiff:     "CollectDiff",
	StateGenerateMessage: "GenerateMessage",
	StateCommit:          "Commit",
	StateDone:            "Done",
	StateNoRepository:    "NoRepository",
	StateNoChanges:       "NoChanges",
	StateCommitFailed:    "CommitFailed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	switch s {
	case StateDone, StateNoRepository, StateNoChanges, StateCommitFailed:
		return true
	}
	return false
}

// Outcome is the final classification of a run.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeNoRepository
	OutcomeNoChanges
	OutcomeCommittedGenerated
	OutcomeCommittedDefault
	OutcomeCommitFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoRepository:
		return "no repository"
	case OutcomeNoChanges:
		return "no changes"
	case OutcomeCommittedGenerated:
		return "committed with generated message"
	case OutcomeCommittedDefault:
		return "committed with default message"
	case OutcomeCommitFailed:
		return "commit failed"
	default:
		return "unknown"
	}
}

// ExitCode maps o to the process exit status.
func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeNoChanges, OutcomeCommittedGenerated, OutcomeCommittedDefault:
		return 0
	default:
		return 1
	}
}
