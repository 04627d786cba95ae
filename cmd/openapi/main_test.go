package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	api := describe("https://stormbringer.example")

	spec := api.OpenAPI()
	assert.Contains(t, spec.Paths, "/campaigns/{id}")
	assert.Contains(t, spec.Paths, "/characters/preview")
	require.Len(t, spec.Servers, 1)
	assert.Contains(t, spec.Servers[0].URL, "https://stormbringer.example")
}

func TestRender(t *testing.T) {
	spec := describe("").OpenAPI()

	data, err := render(spec, "json", false)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "3.1.0", doc["openapi"])

	data, err = render(spec, "json", true)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "3.0.3", doc["openapi"])

	data, err = render(spec, "yaml", false)
	require.NoError(t, err)
	assert.Contains(t, string(data), "openapi: 3.1.0")

	_, err = render(spec, "xml", false)
	assert.Error(t, err)
}
