// Package models holds the persistent entities and their data-access
// operations: users, folktales with embedded ratings, threaded comments,
// and bookmarks.
package models

// RegisterModels lists every entity for automigration.
func RegisterModels() []interface{} {
	return []interface{}{
		&User{},
		&Folktale{},
		&Rating{},
		&Comment{},
		&Bookmark{},
	}
}
