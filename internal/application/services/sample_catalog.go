package services

import (
	"github.com/zatekoja/carenavigator/backend/internal/domain/entities"
)

var sampleTranscripts = []entities.SampleTranscript{
	{
		ID:         "scheduling",
		Label:      "Scheduling – book appointment",
		Transcript: "Hi, I need to book an appointment with Dr. Chen. I’ve been having headaches for about two weeks and I’d like to get it checked. I’m free Thursday afternoon or Friday morning. My insurance is Blue Cross.",
	},
	{
		ID:         "billing",
		Label:      "Billing – question about charge",
		Transcript: "I got a bill for $250 from my last visit and I don’t understand what it’s for. I thought my insurance covered the visit. Can someone explain the charges? My member ID is XYZ123.",
	},
	{
		ID:         "refill",
		Label:      "Refill – prescription renewal",
		Transcript: "I need a refill on my blood pressure medication, lisinopril. The bottle says I have two refills left. I’m almost out. Can you send it to the CVS on Main Street?",
	},
	{
		ID:         "symptoms_routine",
		Label:      "Symptoms – routine (cold)",
		Transcript: "I’ve had a runny nose and a bit of a cough for about five days. No fever. I’m just wondering if I need to come in or if rest and fluids are enough. I don’t have any other health issues.",
	},
	{
		ID:         "symptoms_er",
		Label:      "Symptoms – possible red flag (chest pain)",
		Transcript: "I’ve been having chest pain for the last hour. It’s pressure in the center of my chest and it goes to my left arm. I’m also a bit short of breath. I’m 58 and I have a history of high blood pressure. Should I go to the ER?",
	},
}

// SampleCatalog serves the built-in demo transcripts.
type SampleCatalog struct{}

// NewSampleCatalog creates a sample catalog.
func NewSampleCatalog() *SampleCatalog {
	return &SampleCatalog{}
}

// List returns a copy of every sample in display order.
func (c *SampleCatalog) List() []entities.SampleTranscript {
	out := make([]entities.SampleTranscript, len(sampleTranscripts))
	copy(out, sampleTranscripts)
	return out
}

// Get looks up a sample by ID.
func (c *SampleCatalog) Get(id string) (entities.SampleTranscript, bool) {
	for _, s := range sampleTranscripts {
		if s.ID == id {
			return s, true
		}
	}
	return entities.SampleTranscript{}, false
}
