package domain

// Station is a top-level taxonomy node: a training area such as the
// cash register or the kitchen. The pipeline treats Name as a natural
// key even though the store assigns a surrogate ID.
type Station struct {
	// ID is the unique identifier assigned by the store.
	ID string

	// Name is the display name and the natural key.
	Name string

	// Description is optional explanatory text.
	Description string

	// Order is the position among stations, assigned at creation
	// as the current sibling count.
	Order int
}

// Section is a second-level taxonomy node owned by exactly one Station.
// Natural key is (Title, StationID).
type Section struct {
	// ID is the unique identifier assigned by the store.
	ID string

	// Title is the display title; unique within its station.
	Title string

	// Description is optional explanatory text.
	Description string

	// Order is the position among the station's sections.
	Order int

	// StationID references the owning Station.
	StationID string
}

// TaxonomyPath names a station/section pair by natural key.
// It is the classifier's output and the placement override target.
type TaxonomyPath struct {
	Station string
	Section string
}
