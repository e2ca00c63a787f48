package endpoints_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/api-framework/internal/adapters/apiclient"
	"github.com/ammerola/api-framework/internal/core/endpoints"
)

func TestEndpoints_AreValidTemplates(t *testing.T) {
	for name, endpoint := range endpoints.All() {
		t.Run(name, func(t *testing.T) {
			names, err := endpoint.Placeholders()
			require.NoError(t, err)
			assert.LessOrEqual(t, len(names), 1)
		})
	}
}

func TestEndpoints_ByIDExpand(t *testing.T) {
	tests := []struct {
		endpoint apiclient.Endpoint
		expected string
	}{
		{endpoints.ActivityByID, "api/v1/Activities/1"},
		{endpoints.GroupByID, "groups/1"},
		{endpoints.BreedByID, "breeds/1"},
	}

	for _, tt := range tests {
		t.Run(string(tt.endpoint), func(t *testing.T) {
			path, err := tt.endpoint.Expand(apiclient.PathParams{"id": "1"})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, path)
		})
	}
}

func TestLookup(t *testing.T) {
	e, ok := endpoints.Lookup("activities")
	assert.True(t, ok)
	assert.Equal(t, endpoints.Activities, e)

	_, ok = endpoints.Lookup("users")
	assert.False(t, ok)
}
