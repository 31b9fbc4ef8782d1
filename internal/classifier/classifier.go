// Package classifier maps free-text appointment titles to canonical
// treatment-type triggers.
package classifier

import (
	"strings"

	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/domain"
)

type rule struct {
	trigger  domain.TriggerType
	patterns []string
}

// rules are evaluated in order; the first rule with any matching pattern
// wins. Morpheus8 outranks toxins, toxins outrank filler, filler outranks
// consultation: a title like "consultation for toxins" classifies as
// toxins. Callers must not re-sort.
var rules = []rule{
	{domain.TriggerMorpheus8, []string{"morpheus8", "morpheus 8"}},
	{domain.TriggerToxins, []string{"botox", "toxin", "dysport", "xeomin", "jeuveau"}},
	{domain.TriggerFiller, []string{"filler", "juvederm", "restylane", "sculptra"}},
	{domain.TriggerConsultation, []string{"consult"}},
	{domain.TriggerNewClient, []string{"new client", "new patient"}},
}

// Classify lower-cases the title and returns the first trigger whose rule
// has a substring match. ok is false when nothing matches; the caller is
// expected to short-circuit the whole pipeline in that case.
func Classify(title string) (domain.TriggerType, bool) {
	lower := strings.ToLower(title)
	for _, r := range rules {
		for _, p := range r.patterns {
			if strings.Contains(lower, p) {
				return r.trigger, true
			}
		}
	}
	return "", false
}
