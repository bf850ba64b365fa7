package lexicon

// =============================================================================
// PHRASE LISTS BY CATEGORY
// Trigger phrases mark a category as present; escalation phrases raise its
// severity when a trigger already matched. All phrases must be lowercase.
// =============================================================================

func (r *Registry) registerSelfHarm() {
	r.register(CategorySelfHarm,
		[]string{
			"cut", "cutting", "cut myself", "self harm", "self-harm",
			"hurt myself", "hurting myself", "bleeding", "wound", "scar",
			"razor", "knife", "sharp", "burn myself", "burning myself",
			"hit myself", "punch myself",
		},
		[]string{
			"bleeding", "hospital", "emergency", "serious",
			"tonight", "today", "right now",
		})
}

func (r *Registry) registerSuicide() {
	r.register(CategorySuicide,
		[]string{
			"kill myself", "end it all", "not worth living", "better off dead",
			"suicide", "suicidal", "take my life", "end my life",
			"hang myself", "shoot myself", "no point", "hopeless",
			"don't want to live", "want to die",
		},
		[]string{
			"plan", "method", "tonight", "today", "right now",
		})
}

func (r *Registry) registerViolence() {
	r.register(CategoryViolence,
		[]string{
			"hurt someone", "kill someone", "attack", "violence",
			"beat up", "stab", "shoot", "threaten",
			"revenge", "payback", "destroy them", "make them pay",
		},
		[]string{
			"gun", "weapon", "tonight", "today", "plan",
		})
}

func (r *Registry) registerAbuse() {
	r.register(CategoryAbuse,
		[]string{
			"abuse", "abused", "abusing", "hit me", "hurts me", "beats me",
			"beat me", "threatens me", "scared of him", "scared of her",
			"afraid of him", "afraid of her", "unsafe at home",
			"controls me", "won't let me", "forces me",
		},
		[]string{
			"emergency", "police", "danger", "right now",
		})
}

func (r *Registry) registerOverdose() {
	r.register(CategoryOverdose,
		[]string{
			"overdose", "overdosed", "too many pills", "took pills",
			"swallowed pills", "poison", "poisoned",
			"mixed pills", "whole bottle",
		},
		[]string{
			"unconscious", "emergency", "hospital", "ambulance", "right now",
		})
}
