package cataloging

import "github.com/homelibrary/bookworm/internal/models"

// Merge combines the cover and catalog results. Every catalog field wins; an
// unknown catalog title or author is taken from the cover when the cover
// knows it.
func Merge(cover models.Partial, catalog models.Record) models.Record {
	out := catalog
	if out.Title == "" {
		out.Title = cover.Title
	}
	if out.Author == "" {
		out.Author = cover.Author
	}
	return out
}
