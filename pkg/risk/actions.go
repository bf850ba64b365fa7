package risk

// Priority ranks an action within its level.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Action is one recommended safety step.
type Action struct {
	Name        string   `json:"action"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
}

var actionsByLevel = map[Level][]Action{
	LevelImmediate: {
		{"call_emergency", "Call 911 or emergency services immediately", PriorityCritical},
		{"call_crisis_hotline", "Call 988 (Suicide & Crisis Lifeline)", PriorityCritical},
		{"remove_means", "Remove any means of self-harm from immediate environment", PriorityHigh},
	},
	LevelHigh: {
		{"call_crisis_hotline", "Call 988 (Suicide & Crisis Lifeline)", PriorityHigh},
		{"contact_trusted_person", "Reach out to a trusted friend or family member", PriorityHigh},
		{"seek_professional_help", "Contact a mental health professional", PriorityMedium},
	},
	LevelMedium: {
		{"contact_trusted_person", "Reach out to a trusted friend or family member", PriorityMedium},
		{"use_coping_strategies", "Practice coping strategies and self-care", PriorityMedium},
		{"consider_professional_help", "Consider reaching out to a mental health professional", PriorityLow},
	},
	LevelLow: {
		{"use_coping_strategies", "Practice coping strategies and self-care", PriorityLow},
		{"monitor_symptoms", "Monitor your mental health and seek help if needed", PriorityLow},
	},
	LevelNone: {
		{"general_wellness", "Continue practicing good mental health habits", PriorityLow},
	},
}

// ActionsFor returns the recommended actions for a level. The returned slice
// is a copy; callers may reorder or trim it.
func ActionsFor(l Level) []Action {
	actions, ok := actionsByLevel[l]
	if !ok {
		actions = actionsByLevel[LevelNone]
	}
	out := make([]Action, len(actions))
	copy(out, actions)
	return out
}
