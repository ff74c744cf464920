package store

// Keys shared by every winscene process.
const (
	KeyWindows = "windows"
	KeyCount   = "count"
)

// Change describes a mutation made by another context sharing the store.
// A context never receives changes for its own writes.
type Change struct {
	Key      string
	OldValue string
	NewValue string
}

// Store is a string key-value store shared by every window of a session.
// There are no transactions: concurrent read-modify-write cycles race and the
// last write wins.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// Clear removes every key.
	Clear() error
}

// Watcher is a Store that also reports changes made by other contexts.
type Watcher interface {
	Store
	Changes() <-chan Change
	Close() error
}
