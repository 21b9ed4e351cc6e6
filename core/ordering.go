package core

// Ordering is one sort key of a listing, as requested by clients (`?ordering=day,-time`).
type Ordering struct {
	Field     string
	Ascending bool
}
