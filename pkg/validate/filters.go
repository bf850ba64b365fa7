package validate

// Filter phrase lists. All phrases lowercase; matching is substring search
// over folded text.
//
// harmful and dangerous block. triggering and urgency only warn. The lists
// target the framing of a message, not its subject: "how to" and "step by
// step" describe instructional phrasing, not crisis language.

var defaultHarmfulContent = []string{
	"detailed methods", "step by step", "how to", "instructions for",
	"tutorial", "guide to", "specific method", "exact dose", "exact amount",
}

var defaultDangerousAdvice = []string{
	"ignore professional help", "don't tell anyone", "keep it secret",
	"you're alone", "no one cares", "you should give up",
}

var defaultTriggeringContent = []string{
	"graphic", "explicit", "detailed description", "gory",
	"disturbing", "traumatic", "triggering",
}

var defaultUrgencyIndicators = []string{
	"right now", "tonight", "immediately", "asap",
	"can't take it", "end it all", "final", "last time",
}
