package domain

// CardType identifies one of the five allergy-card categories a user can
// populate and share.
type CardType string

const (
	CardTypeFoodAllergies    CardType = "food-allergies"
	CardTypeEmergency        CardType = "emergency"
	CardTypeEpipen           CardType = "epipen"
	CardTypeSchoolWorkEvents CardType = "swe"
	CardTypeTravel           CardType = "travel"
)

// CardInfo is one catalog entry.
type CardInfo struct {
	Type        CardType `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Color       string   `json:"color"`
}

// cardTypes fixes the catalog ordering.
var cardTypes = []CardType{
	CardTypeFoodAllergies,
	CardTypeEmergency,
	CardTypeEpipen,
	CardTypeSchoolWorkEvents,
	CardTypeTravel,
}

// Every valid card type must have exactly one entry in each of the four
// lookup tables below.
var cardTitles = map[CardType]string{
	CardTypeFoodAllergies:    "Food Allergies",
	CardTypeEmergency:        "Emergency",
	CardTypeEpipen:           "EpiPen",
	CardTypeSchoolWorkEvents: "School, Work & Events",
	CardTypeTravel:           "Travel",
}

var cardDescriptions = map[CardType]string{
	CardTypeFoodAllergies:    "Reactions, symptoms, and safety rules for every allergen.",
	CardTypeEmergency:        "Contacts, doctors, and hospitals for when it matters most.",
	CardTypeEpipen:           "Where it is kept and exactly how to use it.",
	CardTypeSchoolWorkEvents: "Precautions for classrooms, offices, and gatherings.",
	CardTypeTravel:           "Translated allergy info for eating out abroad.",
}

var cardIcons = map[CardType]string{
	CardTypeFoodAllergies:    "/static/cards/food-allergies.svg",
	CardTypeEmergency:        "/static/cards/emergency.svg",
	CardTypeEpipen:           "/static/cards/epipen.svg",
	CardTypeSchoolWorkEvents: "/static/cards/swe.svg",
	CardTypeTravel:           "/static/cards/travel.svg",
}

var cardColors = map[CardType]string{
	CardTypeFoodAllergies:    "#FDE8E8",
	CardTypeEmergency:        "#FEE2B3",
	CardTypeEpipen:           "#E0ECFF",
	CardTypeSchoolWorkEvents: "#E6F4EA",
	CardTypeTravel:           "#F3E8FF",
}

// CardTypes returns the five valid card types in catalog order.
func CardTypes() []CardType {
	return append([]CardType(nil), cardTypes...)
}

// CardCatalog returns the full static catalog.
func CardCatalog() []CardInfo {
	catalog := make([]CardInfo, 0, len(cardTypes))
	for _, t := range cardTypes {
		catalog = append(catalog, CardInfo{
			Type:        t,
			Title:       cardTitles[t],
			Description: cardDescriptions[t],
			Icon:        cardIcons[t],
			Color:       cardColors[t],
		})
	}
	return catalog
}

// LookupCard returns the catalog entry for a card type.
func LookupCard(t CardType) (CardInfo, bool) {
	title, ok := cardTitles[t]
	if !ok {
		return CardInfo{}, false
	}
	return CardInfo{
		Type:        t,
		Title:       title,
		Description: cardDescriptions[t],
		Icon:        cardIcons[t],
		Color:       cardColors[t],
	}, true
}
