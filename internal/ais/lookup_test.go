package ais

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupTables(t *testing.T) {
	assert.Len(t, NavigationStatusMap, 16)
	assert.Len(t, VesselTypeMap, 100)

	assert.Equal(t, "Moored", NavigationStatusLabel(5))
	assert.Equal(t, "Not defined", NavigationStatusLabel(15))
	assert.Equal(t, "Unknown", NavigationStatusLabel(16))
	assert.Equal(t, "At anchor", NavigationStatus(1).String())

	assert.Equal(t, "Not available", VesselTypeLabel(0))
	assert.Equal(t, "Sailing", VesselTypeLabel(36))
	assert.Equal(t, "Cargo", VesselTypeLabel(70))
	assert.Equal(t, "Tanker, Hazardous category A", VesselTypeLabel(81))
	assert.Equal(t, "Unknown", VesselTypeLabel(100))
	assert.Equal(t, "Unknown", VesselTypeLabel(255))
}
