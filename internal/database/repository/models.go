package repository

// Drug represents a catalog row.
type Drug struct {
	ID        string
	Name      string
	Imprint   string
	Color     string
	Shape     string
	SortOrder int
}
