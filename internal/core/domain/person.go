// internal/core/domain/person.go
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrPersonNotFound = errors.New("person not found")

// Person is a row of the people table.
type Person struct {
	ID        int64     `json:"id" yaml:"id" db:"id"`
	FName     string    `json:"fname" yaml:"fname" db:"fname" validate:"required,max=100"`
	LName     string    `json:"lname,omitempty" yaml:"lname" db:"lname" validate:"max=100"`
	Age       int       `json:"age" yaml:"age" db:"age" validate:"gte=0,lte=150"`
	Email     string    `json:"email,omitempty" yaml:"email" db:"email" validate:"omitempty,email"`
	CreatedAt time.Time `json:"created_at,omitempty" yaml:"-" db:"created_at"`
}

// Validate performs domain validation on the person
func (p *Person) Validate() error {
	p.FName = strings.TrimSpace(p.FName)
	p.LName = strings.TrimSpace(p.LName)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))

	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid person %q: %w", p.FName, err)
	}
	return nil
}

// FullName joins first and last name.
func (p *Person) FullName() string {
	if p.LName == "" {
		return p.FName
	}
	return p.FName + " " + p.LName
}
