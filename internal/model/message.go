package model

type CalculationMessage struct {
	ID      int    `json:"id"`
	Level   string `json:"level"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	LevelCritical = "CRITICAL"
	LevelWarning  = "WARNING"
)

// ValidationError carries the critical messages that caused a scenario
// to be rejected before any projection ran.
type ValidationError struct {
	Messages []CalculationMessage
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return "invalid scenario"
	}
	return "invalid scenario: " + e.Messages[0].Code
}

// HasCritical reports whether any message in the slice is CRITICAL.
func HasCritical(msgs []CalculationMessage) bool {
	for _, m := range msgs {
		if m.Level == LevelCritical {
			return true
		}
	}
	return false
}
