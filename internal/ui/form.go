package ui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/aanand-mishra/users-api/internal/types"
)

var (
	// ErrIncompleteForm means at least one of the three fields is empty.
	ErrIncompleteForm = errors.New("all fields are required")

	// ErrInvalidAge means the age field is not a whole number.
	ErrInvalidAge = errors.New("age must be a whole number")
)

// Form is the create/edit form as submitted by the browser.
type Form struct {
	Name   string
	Age    string
	Gender string
}

// FormFromUser prefills the edit form.
func FormFromUser(u types.User) Form {
	return Form{Name: u.Name, Age: strconv.Itoa(u.Age), Gender: u.Gender}
}

// Complete reports whether all three fields are non-empty.
func (f Form) Complete() bool {
	return strings.TrimSpace(f.Name) != "" &&
		strings.TrimSpace(f.Age) != "" &&
		strings.TrimSpace(f.Gender) != ""
}

// Input converts the form into the API's request body. Range checks on
// age and gender are left to the API.
func (f Form) Input() (types.UserInput, error) {
	if !f.Complete() {
		return types.UserInput{}, ErrIncompleteForm
	}

	age, err := strconv.Atoi(strings.TrimSpace(f.Age))
	if err != nil {
		return types.UserInput{}, ErrInvalidAge
	}

	return types.UserInput{
		Name:   strings.TrimSpace(f.Name),
		Age:    age,
		Gender: strings.TrimSpace(f.Gender),
	}, nil
}
