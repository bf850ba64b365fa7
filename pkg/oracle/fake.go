package oracle

import (
	"context"
	"strings"
	"sync"
)

// Fake is a deterministic Completer for tests. It replays canned responses
// keyed by a substring of the prompt, falling back to a default response.
// Identical prompts always produce identical output, which the classifier's
// idempotence guarantee depends on in tests.
type Fake struct {
	mu sync.Mutex

	// Default is returned when no rule matches. Empty string is allowed.
	Default string

	// Err, when set, is returned from every call (simulates an unavailable
	// provider).
	Err error

	rules []fakeRule
	calls []string
}

type fakeRule struct {
	substr   string
	response string
}

// Respond registers a canned response for prompts containing substr.
// Rules are checked in registration order.
func (f *Fake) Respond(substr, response string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, fakeRule{substr: substr, response: response})
	return f
}

// Complete implements Completer.
func (f *Fake) Complete(_ context.Context, prompt string, _ int, _ float64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, prompt)
	if f.Err != nil {
		return "", f.Err
	}
	for _, r := range f.rules {
		if r.substr != "" && strings.Contains(prompt, r.substr) {
			return r.response, nil
		}
	}
	return f.Default, nil
}

// Calls returns the prompts seen so far.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}
