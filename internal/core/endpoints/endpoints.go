// Package endpoints names the REST paths the harness exercises. Paths are
// relative to the configured base URL of the service that owns them.
package endpoints

import "github.com/ammerola/api-framework/internal/adapters/apiclient"

// FakeRESTApi (API_BASE_URL)
const (
	Activities   apiclient.Endpoint = "api/v1/Activities"
	ActivityByID apiclient.Endpoint = "api/v1/Activities/{id}"
)

// dogapi.dog (DOG_API_BASE_URL)
const (
	Groups    apiclient.Endpoint = "groups"
	GroupByID apiclient.Endpoint = "groups/{id}"
	Breeds    apiclient.Endpoint = "breeds"
	BreedByID apiclient.Endpoint = "breeds/{id}"
)

// All lists every registered endpoint by name.
func All() map[string]apiclient.Endpoint {
	return map[string]apiclient.Endpoint{
		"activities":     Activities,
		"activity_by_id": ActivityByID,
		"groups":         Groups,
		"group_by_id":    GroupByID,
		"breeds":         Breeds,
		"breed_by_id":    BreedByID,
	}
}

// Lookup returns the endpoint registered under name.
func Lookup(name string) (apiclient.Endpoint, bool) {
	e, ok := All()[name]
	return e, ok
}
