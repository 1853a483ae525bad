package ontology

// Only vocabulary that is unambiguously about travel belongs here. Generic
// words ("tour" as in factory tour, "train" as in training, "inn" inside
// "winning", "stay", "visit") are deliberately absent.
var defaultEntries = []Entry{
	{Tag: "itinerary_building", Terms: []string{
		"itinerary", "travel itinerary", "trip itinerary", "day-by-day",
		"travel schedule", "stopover", "layover", "road trip", "travel plan",
		"trip planner", "weekend getaway", "day trip", "multi-city trip",
		"3-day trip", "5-day trip", "7-day trip", "week trip", "two-week",
	}},
	{Tag: "logistics_safety", Terms: []string{
		"travel visa", "tourist visa", "passport", "customs",
		"travel insurance", "travel vaccine", "vaccination", "travel safety",
		"travel advisory", "entry requirements", "embassy", "consulate",
		"border crossing", "travel documents", "immigration",
	}},
	{Tag: "financial_budget", Terms: []string{
		"travel budget", "trip cost", "travel expenses", "travel rewards",
		"airline miles", "frequent flyer", "travel deal", "cheap flights",
		"budget travel", "all-inclusive", "travel savings",
		"affordable travel", "luxury travel", "travel credit card",
	}},
	{Tag: "transportation", Terms: []string{
		"flights to", "book a flight", "airline ticket", "airport", "airplane", "plane ticket",
		"railway station", "train station", "car rental", "rent a car",
		"ferry", "cruise", "cruise ship", "boarding pass", "airport transfer",
		"bus travel", "transportation hub", "public transit",
	}},
	{Tag: "accommodation", Terms: []string{
		"hotel", "hotels", "resort", "resorts", "airbnb", "hostel", "hostels",
		"motel", "lodging", "vacation rental", "guest house",
		"check-in", "check-out", "hotel booking",
		"accommodation", "where to stay", "book a room",
	}},
	{Tag: "discovery_phrases", Terms: []string{
		"destination", "destinations", "places to visit", "must visit",
		"tourist attraction", "attractions", "landmark", "landmarks",
		"famous places", "popular places", "hidden gems", "off the beaten path",
		"bucket list", "travel to", "trip to", "travel destination",
	}},
	{Tag: "planning_phrases", Terms: []string{
		"plan a trip", "plan a vacation", "plan a holiday", "planning to travel",
		"trip planning", "vacation planning", "travel planning", "travel guide",
		"packing list", "travel tips", "travel advice", "before you travel",
		"how to travel", "traveling to", "going on vacation", "going on holiday",
		"things to do in", "what to do in", "where to go", "best time to visit",
	}},
	{Tag: "activities", Terms: []string{
		"sightseeing", "guided tour", "city tour", "walking tour",
		"excursion", "hiking trail", "trekking", "safari", "snorkeling",
		"scuba diving", "beach vacation",
		"tourist spot", "tourist spots",
	}},
	{Tag: "travel_types", Terms: []string{
		"solo travel", "solo traveler", "family vacation", "family trip",
		"honeymoon", "backpacking", "backpacker", "digital nomad",
		"business travel", "leisure travel", "adventure travel", "eco-tourism",
		"sustainable travel", "luxury travel", "budget travel", "group travel",
	}},
	{Tag: "geography_travel", Terms: []string{
		"travel abroad", "overseas travel", "international travel",
		"domestic travel", "cross-country", "road trip",
	}},
	{Tag: "culture_travel", Terms: []string{
		"local cuisine", "local food", "street food", "traditional food",
		"food tour", "local culture", "cultural experience",
		"heritage site", "historic site", "historical site",
		"world heritage", "unesco site",
	}},
	{Tag: "special_keywords", Terms: []string{
		"travel experience", "vacation", "holiday", "getaway",
		"wanderlust", "traveler", "traveller", "tourist", "tourism",
	}},
}

var defaultOntology = MustNew(defaultEntries)

// Default returns the built-in travel ontology. The value is shared and
// read-only.
func Default() *Ontology {
	return defaultOntology
}
