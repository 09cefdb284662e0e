package core

// -----------------------------------------------------------------------------
// Input / Output
// -----------------------------------------------------------------------------

// Input is the opaque structured payload a trigger carries.
type Input map[string]any

// Output is the opaque structured result a workflow unit produces.
type Output map[string]any

// AsMap returns the input as a plain map. A nil input yields an empty map.
func (i Input) AsMap() map[string]any {
	if i == nil {
		return map[string]any{}
	}
	return map[string]any(i)
}

// AsMap returns the output as a plain map. A nil output yields an empty map.
func (o Output) AsMap() map[string]any {
	if o == nil {
		return map[string]any{}
	}
	return map[string]any(o)
}

// -----------------------------------------------------------------------------
// Workflow Status
// -----------------------------------------------------------------------------

type StatusType string

const (
	StatusPending    StatusType = "pending"
	StatusInProgress StatusType = "in_progress"
	StatusCompleted  StatusType = "completed"
	StatusFailed     StatusType = "failed"
)

func (s StatusType) String() string {
	return string(s)
}

func (s StatusType) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are expected. A failed
// workflow can still be moved back to pending by an explicit retry.
func (s StatusType) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// -----------------------------------------------------------------------------
// Urgency
// -----------------------------------------------------------------------------

// UrgencyLevel is the ordered urgency vocabulary: low < medium < high < critical.
type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "low"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyCritical UrgencyLevel = "critical"
)

var urgencyRank = map[UrgencyLevel]int{
	UrgencyLow:      0,
	UrgencyMedium:   1,
	UrgencyHigh:     2,
	UrgencyCritical: 3,
}

func (u UrgencyLevel) String() string {
	return string(u)
}

func (u UrgencyLevel) IsValid() bool {
	_, ok := urgencyRank[u]
	return ok
}

// Rank returns the ordering position of the level. Unknown levels rank as medium.
func (u UrgencyLevel) Rank() int {
	if r, ok := urgencyRank[u]; ok {
		return r
	}
	return urgencyRank[UrgencyMedium]
}

// AtLeast reports whether u >= other in urgency order.
func (u UrgencyLevel) AtLeast(other UrgencyLevel) bool {
	return u.Rank() >= other.Rank()
}

// AtMost reports whether u <= other in urgency order.
func (u UrgencyLevel) AtMost(other UrgencyLevel) bool {
	return u.Rank() <= other.Rank()
}

// ToUrgency normalizes a raw string to an UrgencyLevel, defaulting to medium.
func ToUrgency(s string) UrgencyLevel {
	u := UrgencyLevel(s)
	if u.IsValid() {
		return u
	}
	return UrgencyMedium
}
