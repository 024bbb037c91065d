package reference

import "context"

// Repository is a Source backed by storage that can also be overwritten
// with a complete snapshot.
type Repository interface {
	Source
	Replace(ctx context.Context, cities []City, specialties []Specialty, doctors []Doctor) error
}
