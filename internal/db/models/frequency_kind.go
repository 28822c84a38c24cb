package models

// FrequencyKind represents how often a task repeats.
type FrequencyKind string

const (
	// FrequencyKindOnce marks a one-shot task.
	FrequencyKindOnce FrequencyKind = "ONCE"
	// FrequencyKindDaily marks a task repeating every day.
	FrequencyKindDaily FrequencyKind = "DAILY"
	// FrequencyKindWeekly marks a task repeating every week.
	FrequencyKindWeekly FrequencyKind = "WEEKLY"
	// FrequencyKindMonthly marks a task repeating every month.
	FrequencyKindMonthly FrequencyKind = "MONTHLY"
)

// frequencyKindDescriptions maps each frequency code to its human readable description.
var frequencyKindDescriptions = map[FrequencyKind]string{
	FrequencyKindOnce:    "Once",
	FrequencyKindDaily:   "Daily",
	FrequencyKindWeekly:  "Weekly",
	FrequencyKindMonthly: "Monthly",
}

// Valid reports whether the frequency code is one of the registered kinds.
func (f FrequencyKind) Valid() bool {
	_, ok := frequencyKindDescriptions[f]
	return ok
}

// Description returns the human readable description for the frequency code.
func (f FrequencyKind) Description() string {
	return frequencyKindDescriptions[f]
}

// Client expands the stored code into its public {code, description} shape.
func (f FrequencyKind) Client() KindClient {
	return KindClient{
		Code:        string(f),
		Description: f.Description(),
	}
}

// FrequencyKinds returns all registered frequency kinds.
func FrequencyKinds() []FrequencyKind {
	return []FrequencyKind{
		FrequencyKindOnce,
		FrequencyKindDaily,
		FrequencyKindWeekly,
		FrequencyKindMonthly,
	}
}
