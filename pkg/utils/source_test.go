package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveSourceID(t *testing.T) {
	assert.Equal(t, "gmaps_bakeries_in_denver", DeriveSourceID("bakeries in Denver"))
	assert.Equal(t, "gmaps_insurance_agencies_in_new_york_ny", DeriveSourceID("Insurance Agencies in New York, NY"))
	assert.Equal(t, "gmaps_cafes", DeriveSourceID("  cafes  "))

	// Deterministic: the same query always maps to the same source id.
	assert.Equal(t, DeriveSourceID("pizza in Rome"), DeriveSourceID("pizza in Rome"))

	long := DeriveSourceID(strings.Repeat("very long query ", 20))
	assert.LessOrEqual(t, len(long), len("gmaps_")+64)
}

func TestSplitLocationKey(t *testing.T) {
	assert.Equal(t, "Denver", SplitLocationKey("bakeries in Denver"))
	assert.Equal(t, "New York, NY", SplitLocationKey("insurance agencies in New York, NY"))
	assert.Equal(t, "", SplitLocationKey("bakeries"))
}

func TestHashKey(t *testing.T) {
	assert.Len(t, HashKey("gmaps_bakeries_in_denver"), 64)
	assert.Equal(t, HashKey("a"), HashKey("a"))
	assert.NotEqual(t, HashKey("a"), HashKey("b"))
}
