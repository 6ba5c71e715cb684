package domain

import "encoding/json"

// The aggregate-fetch procedures return pre-joined JSON owned by the external
// store. Payload types reshape that JSON into the declared response contract:
// the singular card defaults to JSON null, collections default to an empty
// array, and nothing is ever emitted as undefined/missing.

// EmergencyPayload is the response shape of the emergency card domain.
type EmergencyPayload struct {
	EmergencyCard      json.RawMessage   `json:"emergencyCard"`
	EmergencyContacts  []json.RawMessage `json:"emergencyContacts"`
	EmergencyDoctors   []json.RawMessage `json:"emergencyDoctors"`
	EmergencyHospitals []json.RawMessage `json:"emergencyHospitals"`
}

// Normalize replaces nil collections with empty slices so they encode as [].
func (p *EmergencyPayload) Normalize() {
	p.EmergencyContacts = emptyIfNil(p.EmergencyContacts)
	p.EmergencyDoctors = emptyIfNil(p.EmergencyDoctors)
	p.EmergencyHospitals = emptyIfNil(p.EmergencyHospitals)
}

// EpipenPayload is the response shape of the epipen card domain.
type EpipenPayload struct {
	EpipenCard         json.RawMessage   `json:"epipenCard"`
	EpipenInstructions []json.RawMessage `json:"epipenInstructions"`
}

func (p *EpipenPayload) Normalize() {
	p.EpipenInstructions = emptyIfNil(p.EpipenInstructions)
}

// SWEPayload is the response shape of the school/work/events card domain.
type SWEPayload struct {
	SWECard       json.RawMessage   `json:"sweCard"`
	SWECategories []json.RawMessage `json:"sweCategories"`
	SWEMeasures   []json.RawMessage `json:"sweMeasures"`
}

func (p *SWEPayload) Normalize() {
	p.SWECategories = emptyIfNil(p.SWECategories)
	p.SWEMeasures = emptyIfNil(p.SWEMeasures)
}

// AllergyPayload is the response shape of the food-allergies domain.
type AllergyPayload struct {
	ReactionProfile  json.RawMessage   `json:"reactionProfile"`
	ReactionSymptoms []json.RawMessage `json:"reactionSymptoms"`
	SafetyLevels     []json.RawMessage `json:"safetyLevels"`
	SafetyRules      []json.RawMessage `json:"safetyRules"`
}

func (p *AllergyPayload) Normalize() {
	p.ReactionSymptoms = emptyIfNil(p.ReactionSymptoms)
	p.SafetyLevels = emptyIfNil(p.SafetyLevels)
	p.SafetyRules = emptyIfNil(p.SafetyRules)
}

func emptyIfNil(items []json.RawMessage) []json.RawMessage {
	if items == nil {
		return []json.RawMessage{}
	}
	return items
}
