package processor

// Stage is a step of a topic's pipeline.
type Stage int

const (
	StagePending Stage = iota
	StageFetching
	StageExtracting
	StageDetecting
	StageNotifying
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StagePending:
		return "pending"
	case StageFetching:
		return "fetching"
	case StageExtracting:
		return "extracting"
	case StageDetecting:
		return "detecting"
	case StageNotifying:
		return "notifying"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}
