package usecase

// CatalogStore is the durable (or volatile) record of known room ids. Room
// existence is the only state that survives a restart; presence and buffer
// content are in-memory authority only. The registry never depends on which
// backend is behind this interface.
type CatalogStore interface {
	// Record adds a room id to the catalog. Recording an id that is
	// already cataloged is not an error.
	Record(roomID string) error

	// Remove deletes a room id from the catalog.
	Remove(roomID string) error

	// LoadAll returns every cataloged room id. Called once at startup to
	// seed the registry.
	LoadAll() ([]string, error)
}
