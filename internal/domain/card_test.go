package domain

import "testing"

func TestCardCatalogCoversEveryType(t *testing.T) {
	catalog := CardCatalog()
	if len(catalog) != len(CardTypes()) {
		t.Fatalf("expected %d entries, got %d", len(CardTypes()), len(catalog))
	}
	seen := make(map[CardType]bool)
	for _, entry := range catalog {
		if entry.Title == "" || entry.Description == "" || entry.Icon == "" || entry.Color == "" {
			t.Fatalf("incomplete catalog entry for %q: %+v", entry.Type, entry)
		}
		if seen[entry.Type] {
			t.Fatalf("duplicate catalog entry for %q", entry.Type)
		}
		seen[entry.Type] = true
	}
}

func TestLookupCard(t *testing.T) {
	for _, cardType := range CardTypes() {
		info, ok := LookupCard(cardType)
		if !ok {
			t.Fatalf("missing catalog entry for %q", cardType)
		}
		if info.Type != cardType {
			t.Fatalf("entry type mismatch: %q vs %q", info.Type, cardType)
		}
	}
	if _, ok := LookupCard(CardType("bogus")); ok {
		t.Fatal("unknown card type must not resolve")
	}
}

func TestPayloadNormalizeFillsCollections(t *testing.T) {
	var emergency EmergencyPayload
	emergency.Normalize()
	if emergency.EmergencyContacts == nil || emergency.EmergencyDoctors == nil || emergency.EmergencyHospitals == nil {
		t.Fatal("expected all emergency collections non-nil")
	}

	var allergy AllergyPayload
	allergy.Normalize()
	if allergy.ReactionSymptoms == nil || allergy.SafetyLevels == nil || allergy.SafetyRules == nil {
		t.Fatal("expected all allergy collections non-nil")
	}
}
