package ontology

// Category ids of the travel taxonomy.
const (
	CategoryUnknown       = 0
	CategoryPlaces        = 1
	CategoryTransport     = 2
	CategoryAccommodation = 3
	CategoryTripPlanning  = 4
	CategoryCosts         = 5
	CategoryActivities    = 6
	CategoryTips          = 7
	CategoryFoodCulture   = 8
	CategoryServices      = 9
	CategoryOther         = 10
)

// UnknownLabel is returned for ids outside 1..9.
const UnknownLabel = "Unknown"

var labels = map[int]string{
	CategoryPlaces:        "Places & Destinations",
	CategoryTransport:     "Transportation",
	CategoryAccommodation: "Accommodation",
	CategoryTripPlanning:  "Trip Planning",
	CategoryCosts:         "Travel Costs & Budgeting",
	CategoryActivities:    "Tourist Activities & Experiences",
	CategoryTips:          "Travel Tips & Advice",
	CategoryFoodCulture:   "Food & Culture (Travel Context)",
	CategoryServices:      "Travel Services & Infrastructure",
}

// Label resolves a category id to its human label.
func Label(id int) string {
	if l, ok := labels[id]; ok {
		return l
	}
	return UnknownLabel
}

// CategoryIDs returns the known category ids in ascending order.
func CategoryIDs() []int {
	return []int{
		CategoryPlaces, CategoryTransport, CategoryAccommodation,
		CategoryTripPlanning, CategoryCosts, CategoryActivities,
		CategoryTips, CategoryFoodCulture, CategoryServices,
	}
}
