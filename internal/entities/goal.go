package entities

// ReadingGoal is a yearly target. Goals are keyed by calendar year; setting
// a goal for a year replaces any previous one.
type ReadingGoal struct {
	Target    int    `json:"target"`
	CreatedAt string `json:"createdAt"`
}
