package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PwntasticKev/Honey-rae-aesthetics-sub004/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		want    domain.TriggerType
		matched bool
	}{
		{"exact", "Morpheus8 Touch-up", domain.TriggerMorpheus8, true},
		{"upper case", "MORPHEUS8 SESSION 2", domain.TriggerMorpheus8, true},
		{"spaced variant", "morpheus 8 full face", domain.TriggerMorpheus8, true},
		{"botox", "Botox 50 units", domain.TriggerToxins, true},
		{"brand name toxin", "Dysport forehead", domain.TriggerToxins, true},
		{"filler", "Lip Filler 1ml", domain.TriggerFiller, true},
		{"consult substring", "Initial Consultation", domain.TriggerConsultation, true},
		{"new patient", "New Patient Intake", domain.TriggerNewClient, true},
		{"no match", "Laser Hair Removal", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(tt.title)
			assert.Equal(t, tt.matched, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Rule order is part of the contract: when a title matches several rules,
// the earlier rule wins.
func TestClassifyPriority(t *testing.T) {
	got, ok := Classify("Consultation for toxins")
	assert.True(t, ok)
	assert.Equal(t, domain.TriggerToxins, got)

	got, ok = Classify("Dermal Filler Consult")
	assert.True(t, ok)
	assert.Equal(t, domain.TriggerFiller, got)

	got, ok = Classify("morpheus8 and botox combo")
	assert.True(t, ok)
	assert.Equal(t, domain.TriggerMorpheus8, got)
}
