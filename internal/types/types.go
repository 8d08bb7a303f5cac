// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, the service, storage backends and the UI can all import types
// without depending on each other.
package types

// Genders lists the values accepted for User.Gender. The UI selector renders
// exactly these options and the validator enforces the same set.
var Genders = []string{"Male", "Female", "Other"}

// User is a stored user record.
//
// ID is assigned by the store on creation and never changes afterwards.
// Its format depends on the backend (ObjectID hex for MongoDB, UUID for
// sqlite and memory), so callers must treat it as an opaque string.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

// UserInput is the request body for both POST / and PUT /{id}.
//
// validate:"..." tags are checked by go-playground/validator before the
// input reaches the store:
//
//   - required: the field must be present and non-zero
//   - gt=0:     age must be positive
//   - oneof:    gender must be one of Genders
type UserInput struct {
	Name   string `json:"name"   validate:"required"`
	Age    int    `json:"age"    validate:"required,gt=0"`
	Gender string `json:"gender" validate:"required,oneof=Male Female Other"`
}

// Apply returns a copy of u with the three business fields replaced by in.
// The ID is preserved.
func (in UserInput) Apply(u User) User {
	u.Name = in.Name
	u.Age = in.Age
	u.Gender = in.Gender
	return u
}
