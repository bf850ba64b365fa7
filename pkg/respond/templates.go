package respond

import "github.com/haven-ai/haven/pkg/lexicon"

// templateKind selects between the urgent and supportive voice.
type templateKind string

const (
	kindImmediate  templateKind = "immediate"
	kindSupportive templateKind = "supportive"
)

// genericTemplate covers categories with no curated set.
const genericTemplate = "I'm here to listen and support you. You don't have to face this alone."

// generalResponse is the supportive reply when no crisis was detected.
const generalResponse = "Thank you for sharing that with me. I'm here to listen and support you. If you ever need to talk about something more serious, I'm here for that too."

var responseTemplates = map[lexicon.Category]map[templateKind][]string{
	lexicon.CategorySelfHarm: {
		kindImmediate: {
			"I can hear that you're in a lot of pain right now. You don't have to go through this alone.",
			"I'm really concerned about you. Your life has value, even when it doesn't feel that way.",
			"I want you to know that what you're feeling right now is valid, and there are people who care about you.",
		},
		kindSupportive: {
			"It takes courage to reach out when you're struggling. I'm glad you did.",
			"You're not alone in this. Many people have felt this way and found ways to cope.",
			"Your feelings are important, and so are you.",
		},
	},
	lexicon.CategorySuicide: {
		kindImmediate: {
			"I'm very concerned about you right now. Your life matters, and I want to help you stay safe.",
			"I can hear how much pain you're in. Please know that you don't have to face this alone.",
			"I care about you, and I want to make sure you're safe. Can we talk about what's happening?",
		},
		kindSupportive: {
			"Thank you for sharing this with me. It takes incredible strength to be so honest.",
			"I'm here with you. You don't have to carry this burden alone.",
			"Your life has meaning, even when it's hard to see right now.",
		},
	},
	lexicon.CategoryViolence: {
		kindImmediate: {
			"I'm concerned about your safety. Violence is never the answer, and there are better ways to handle this.",
			"I can hear that you're very angry right now. Let's talk about what's really bothering you.",
			"I want to help you find a safer way to express these feelings.",
		},
		kindSupportive: {
			"It's okay to feel angry, but we need to find safe ways to express it.",
			"I'm here to listen and help you work through these feelings.",
			"There are people who can help you resolve this situation safely.",
		},
	},
	lexicon.CategoryAbuse: {
		kindImmediate: {
			"I'm so sorry this is happening to you. You don't deserve to be treated this way.",
			"Your safety is the most important thing right now. You're not alone.",
			"I believe you, and I want to help you get to safety.",
		},
		kindSupportive: {
			"It took courage to share this with me. You're not to blame for what happened.",
			"You deserve to be treated with respect and kindness.",
			"I'm here to support you in whatever way you need.",
		},
	},
	lexicon.CategoryOverdose: {
		kindImmediate: {
			"I'm very concerned about your safety right now. Please don't take any more.",
			"Your life is valuable, and I want to help you stay safe.",
			"If you've already taken something, please call emergency services immediately.",
		},
		kindSupportive: {
			"I'm glad you're reaching out. You don't have to face this alone.",
			"There are people who care about you and want to help you through this.",
			"Recovery is possible, and you deserve support.",
		},
	},
}
