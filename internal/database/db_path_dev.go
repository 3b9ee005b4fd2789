//go:build !prod

package database

// GetDefaultDBPath returns the database path for development mode.
// In development, the database lives next to the working directory so it is
// easy to inspect and throw away.
func GetDefaultDBPath() string {
	return "webforge.db"
}
