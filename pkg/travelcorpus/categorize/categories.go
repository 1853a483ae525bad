package categorize

import "github.com/cognicore/travelcorpus/pkg/travelcorpus/ontology"

// Category is one row of the category table: the keywords matched by
// substring and the ontology tags whose filter matches carry over.
type Category struct {
	ID           int
	Keywords     []string
	OntologyTags []string
}

// DefaultCategories returns the nine travel categories in table order. The
// order is the tie-break order.
func DefaultCategories() []Category {
	return []Category{
		{
			ID: ontology.CategoryPlaces,
			Keywords: []string{
				"destination", "city", "country", "region", "place", "location", "landmark",
				"attraction", "poi", "museum", "monument", "park", "beach", "mountain",
				"island", "town", "village", "area", "zone", "district", "explore",
			},
			OntologyTags: []string{"discovery_phrases", "activities"},
		},
		{
			ID: ontology.CategoryTransport,
			Keywords: []string{
				"flight", "train", "bus", "car", "ferry", "metro", "subway", "taxi",
				"airline", "boarding", "ticket", "seat", "luggage", "baggage", "airport",
				"station", "terminal", "transport", "ride", "ride-share", "vehicle",
				"rental", "transit", "route", "connect",
			},
			OntologyTags: []string{"transportation"},
		},
		{
			ID: ontology.CategoryAccommodation,
			Keywords: []string{
				"hotel", "resort", "hostel", "airbnb", "accommodation", "lodging", "motel",
				"guest", "room", "suite", "villa", "apartment", "booking", "reservation",
				"check-in", "check-out", "night", "stay", "bed", "breakfast",
			},
			OntologyTags: []string{"accommodation"},
		},
		{
			ID: ontology.CategoryTripPlanning,
			Keywords: []string{
				"itinerary", "plan", "schedule", "route", "day-by-day", "timeline", "trip",
				"journey", "adventure", "vacation", "holiday", "tour", "guide", "map",
				"stopover", "layover", "stoppage",
			},
			OntologyTags: []string{"itinerary_building", "planning_phrases"},
		},
		{
			ID: ontology.CategoryCosts,
			Keywords: []string{
				"cost", "price", "budget", "expensive", "cheap", "affordable", "fee",
				"discount", "deal", "offer", "payment", "currency", "exchange", "rate",
				"points", "miles", "rewards", "loyalty", "credit", "card", "pay",
			},
			OntologyTags: []string{"financial_budget"},
		},
		{
			ID: ontology.CategoryActivities,
			Keywords: []string{
				"activity", "adventure", "experience", "tour", "sightseeing", "hiking",
				"dining", "restaurant", "food", "cuisine", "shopping", "nightlife",
				"entertainment", "show", "concert", "event", "sport", "game", "excursion",
				"photography", "trek", "safari",
			},
			OntologyTags: []string{"activities", "special_keywords"},
		},
		{
			ID: ontology.CategoryTips,
			Keywords: []string{
				"tip", "advice", "recommendation", "suggestion", "guide", "how", "should",
				"best", "better", "prefer", "avoid", "safety", "warning", "caution",
				"requirement", "visa", "passport", "document", "permission", "insurance",
				"vaccine", "health", "etiquette", "culture", "local", "custom",
			},
			OntologyTags: []string{"logistics_safety"},
		},
		{
			ID: ontology.CategoryFoodCulture,
			Keywords: []string{
				"food", "cuisine", "restaurant", "dining", "meal", "dish", "culture",
				"cultural", "tradition", "local", "authentic", "street food", "flavour",
				"taste", "recipe", "cooking", "kitchen", "cuisine", "market", "bazaar",
				"festival", "celebration", "custom", "tradition", "heritage", "museum",
			},
			OntologyTags: []string{"activities", "discovery_phrases"},
		},
		{
			ID: ontology.CategoryServices,
			Keywords: []string{
				"service", "infrastructure", "facility", "amenity", "internet", "wifi",
				"atm", "bank", "currency", "exchange", "hospital", "medical", "doctor",
				"police", "emergency", "help", "support", "customer", "assistance",
				"office", "center", "counter", "desk", "information", "tourist", "helpline",
			},
			OntologyTags: []string{"logistics_safety"},
		},
	}
}
