// Package dataset holds the harness test data: embedded fixtures and the
// people table they seed.
package dataset

import (
	"bytes"
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ammerola/api-framework/internal/core/domain"
)

//go:embed data/*.yaml
var fixtures embed.FS

type peopleFile struct {
	People []domain.Person `yaml:"people"`
}

type activitiesFile struct {
	Activities []domain.Activity `yaml:"activities"`
}

// People returns the people fixture in file order.
func People() ([]domain.Person, error) {
	var f peopleFile
	if err := decodeFixture("data/people.yaml", &f); err != nil {
		return nil, err
	}
	for i := range f.People {
		if err := f.People[i].Validate(); err != nil {
			return nil, fmt.Errorf("people fixture entry %d: %w", i, err)
		}
	}
	return f.People, nil
}

// Activities returns the activity payloads in file order.
func Activities() ([]domain.Activity, error) {
	var f activitiesFile
	if err := decodeFixture("data/activities.yaml", &f); err != nil {
		return nil, err
	}
	for i := range f.Activities {
		if err := f.Activities[i].Validate(); err != nil {
			return nil, fmt.Errorf("activities fixture entry %d: %w", i, err)
		}
	}
	return f.Activities, nil
}

func decodeFixture(name string, v any) error {
	data, err := fixtures.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read fixture %s: %w", name, err)
	}
	return decodeYAML(name, data, v)
}

func decodeYAML(name string, data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
