// internal/core/domain/jsonapi.go
package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Resource is a JSON:API resource object as served by dogapi.dog.
type Resource[T any] struct {
	ID            string                     `json:"id"`
	Type          string                     `json:"type"`
	Attributes    T                          `json:"attributes"`
	Relationships map[string]json.RawMessage `json:"relationships,omitempty"`
}

// Collection is a JSON:API document whose data is a list.
type Collection[T any] struct {
	Data  []Resource[T]     `json:"data"`
	Links map[string]string `json:"links,omitempty"`
}

// Document is a JSON:API document holding a single resource.
type Document[T any] struct {
	Data  Resource[T]       `json:"data"`
	Links map[string]string `json:"links,omitempty"`
}

// GroupAttributes describe a breed group.
type GroupAttributes struct {
	Name string `json:"name"`
}

// Range is an inclusive min/max pair. Weights come back with fractional
// kilograms, so values are kept as decimals.
type Range struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Valid reports whether the bounds are ordered.
func (r Range) Valid() bool {
	return r.Min.LessThanOrEqual(r.Max)
}

// Contains reports whether v lies within the bounds.
func (r Range) Contains(v decimal.Decimal) bool {
	return v.GreaterThanOrEqual(r.Min) && v.LessThanOrEqual(r.Max)
}

// Midpoint returns the mean of the bounds.
func (r Range) Midpoint() decimal.Decimal {
	return r.Min.Add(r.Max).Div(decimal.NewFromInt(2))
}

// BreedAttributes describe a dog breed.
type BreedAttributes struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Life           Range  `json:"life"`
	MaleWeight     Range  `json:"male_weight"`
	FemaleWeight   Range  `json:"female_weight"`
	Hypoallergenic bool   `json:"hypoallergenic"`
}

type (
	Group           = Resource[GroupAttributes]
	GroupCollection = Collection[GroupAttributes]
	Breed           = Resource[BreedAttributes]
	BreedCollection = Collection[BreedAttributes]
	BreedDocument   = Document[BreedAttributes]
)
