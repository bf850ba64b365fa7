package respond

import "github.com/haven-ai/haven/pkg/lexicon"

// Resource is one helpline or support organization.
type Resource struct {
	Name        string `json:"name"`
	Number      string `json:"number,omitempty"`
	Text        string `json:"text,omitempty"`
	Website     string `json:"website,omitempty"`
	Description string `json:"description"`
	Available   string `json:"available,omitempty"`
}

// alwaysAvailable marks resources reachable at any hour. Immediate-risk
// responses only surface these.
const alwaysAvailable = "24/7"

var generalResources = []Resource{
	{
		Name:        "National Suicide Prevention Lifeline",
		Number:      "988",
		Text:        "Text HOME to 741741",
		Description: "24/7 crisis support for suicide prevention",
		Available:   alwaysAvailable,
	},
	{
		Name:        "Crisis Text Line",
		Number:      "Text HOME to 741741",
		Description: "Free, 24/7 crisis support via text",
		Available:   alwaysAvailable,
	},
}

var categoryResources = map[lexicon.Category][]Resource{
	lexicon.CategorySelfHarm: {
		{
			Name:        "Self-Injury Outreach & Support",
			Website:     "sioutreach.org",
			Description: "Resources and support for self-injury recovery",
		},
		{
			Name:        "To Write Love on Her Arms",
			Website:     "twloha.com",
			Description: "Hope and help for people struggling with depression, addiction, self-injury, and suicide",
		},
	},
	lexicon.CategorySuicide: {
		{
			Name:        "National Suicide Prevention Lifeline",
			Number:      "988",
			Text:        "Text HOME to 741741",
			Description: "24/7 crisis support for suicide prevention",
			Available:   alwaysAvailable,
		},
		{
			Name:        "American Foundation for Suicide Prevention",
			Website:     "afsp.org",
			Description: "Resources, support groups, and prevention programs",
		},
	},
	lexicon.CategoryViolence: {
		{
			Name:        "National Domestic Violence Hotline",
			Number:      "1-800-799-7233",
			Text:        "Text START to 88788",
			Description: "24/7 support for domestic violence",
			Available:   alwaysAvailable,
		},
		{
			Name:        "National Sexual Assault Hotline",
			Number:      "1-800-656-4673",
			Description: "24/7 support for sexual assault survivors",
			Available:   alwaysAvailable,
		},
	},
	lexicon.CategoryAbuse: {
		{
			Name:        "National Domestic Violence Hotline",
			Number:      "1-800-799-7233",
			Text:        "Text START to 88788",
			Description: "24/7 support for domestic violence",
			Available:   alwaysAvailable,
		},
		{
			Name:        "Childhelp National Child Abuse Hotline",
			Number:      "1-800-4-A-CHILD (1-800-422-4453)",
			Description: "24/7 support for child abuse",
			Available:   alwaysAvailable,
		},
	},
	lexicon.CategoryOverdose: {
		{
			Name:        "SAMHSA National Helpline",
			Number:      "1-800-662-4357",
			Description: "24/7 treatment referral and information service",
			Available:   alwaysAvailable,
		},
		{
			Name:        "National Poison Control Center",
			Number:      "1-800-222-1222",
			Description: "24/7 poison emergency support",
			Available:   alwaysAvailable,
		},
	},
}

// maxResources caps the resource list in any single reply.
const maxResources = 5

// ResourcesFor assembles the resource list for a category: general lines
// first, then category-specific ones. Under immediate risk only 24/7
// resources survive the cut.
func ResourcesFor(category lexicon.Category, immediateRisk bool) []Resource {
	resources := make([]Resource, 0, maxResources)
	resources = append(resources, generalResources...)
	resources = append(resources, categoryResources[category]...)

	if immediateRisk {
		filtered := resources[:0]
		for _, r := range resources {
			if r.Available == alwaysAvailable {
				filtered = append(filtered, r)
			}
		}
		resources = filtered
	}

	if len(resources) > maxResources {
		resources = resources[:maxResources]
	}
	return resources
}

// GeneralResources returns up to n general crisis resources.
func GeneralResources(n int) []Resource {
	if n > len(generalResources) {
		n = len(generalResources)
	}
	out := make([]Resource, n)
	copy(out, generalResources[:n])
	return out
}
