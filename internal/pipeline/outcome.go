package pipeline

// Outcome classifies the result of processing one record within a
// stage. Stages aggregate outcomes into their run counts instead of
// branching on errors.
type Outcome int

const (
	OutcomeInserted Outcome = iota
	OutcomeSkippedDuplicate
	OutcomeSkippedInvalid
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeSkippedDuplicate:
		return "skipped_duplicate"
	case OutcomeSkippedInvalid:
		return "skipped_invalid"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}
