package models

// Person is one member of the travel group. Initials are the unique key
// used in event attendee lists; Name is the display name.
type Person struct {
	Name     string `json:"name"`
	Initials string `json:"initials"`
}
