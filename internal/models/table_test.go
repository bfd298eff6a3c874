package models_test

import (
	"testing"

	"github.com/UnknownOlympus/pinpoint/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTable_ColumnResolution(t *testing.T) {
	t.Run("canonical underscore headers", func(t *testing.T) {
		tbl, err := models.NewTable(
			[]string{"Name", "Center_Latitude", "Center_Longitude"},
			[][]string{{"a", "40.7128", "-74.0060"}},
		)

		require.NoError(t, err)
		point, ok := tbl.Coordinates(0)
		require.True(t, ok)
		assert.InEpsilon(t, 40.7128, point.Latitude, 1e-9)
		assert.InEpsilon(t, -74.0060, point.Longitude, 1e-9)
	})

	t.Run("space and case variants", func(t *testing.T) {
		_, err := models.NewTable(
			[]string{"center latitude", "CENTER LONGITUDE"},
			nil,
		)

		require.NoError(t, err)
	})

	t.Run("missing longitude column", func(t *testing.T) {
		_, err := models.NewTable(
			[]string{"Center_Latitude", "Name"},
			nil,
		)

		require.ErrorIs(t, err, models.ErrMissingColumns)
	})

	t.Run("missing both columns", func(t *testing.T) {
		_, err := models.NewTable([]string{"Name", "Value"}, nil)

		require.ErrorIs(t, err, models.ErrMissingColumns)
	})
}

func TestTable_Coordinates(t *testing.T) {
	tbl, err := models.NewTable(
		[]string{"Center_Latitude", "Center_Longitude", "City"},
		[][]string{
			{"40.7128", "-74.0060", "New York"},
			{"", "-74.0060", ""},
			{"not-a-number", "-74.0060", ""},
			{"NaN", "-74.0060", ""},
			{"40.7128"}, // ragged: longitude cell missing entirely
		},
	)
	require.NoError(t, err)

	_, ok := tbl.Coordinates(0)
	assert.True(t, ok)

	for row := 1; row < tbl.Len(); row++ {
		_, ok = tbl.Coordinates(row)
		assert.False(t, ok, "row %d should have invalid coordinates", row)
	}
}

func TestTable_Locality(t *testing.T) {
	t.Run("city column present", func(t *testing.T) {
		tbl, err := models.NewTable(
			[]string{"Center_Latitude", "Center_Longitude", "City"},
			[][]string{{"1", "2", "Boston"}},
		)
		require.NoError(t, err)

		assert.Equal(t, "Boston", tbl.Locality(0))
	})

	t.Run("city column absent", func(t *testing.T) {
		tbl, err := models.NewTable(
			[]string{"Center_Latitude", "Center_Longitude"},
			[][]string{{"1", "2"}},
		)
		require.NoError(t, err)

		assert.Empty(t, tbl.Locality(0))
	})
}

func TestTable_Enriched(t *testing.T) {
	tbl, err := models.NewTable(
		[]string{"ID", "Center_Latitude", "Center_Longitude"},
		[][]string{
			{"1", "40.7128", "-74.0060"},
			{"2", "51.5074", "-0.1278"},
			{"3", "48.8566", "2.3522"},
		},
	)
	require.NoError(t, err)

	outcomes := []models.AddressOutcome{
		{PhysicalAddress: "1 Main St, Town", StreetName: "1 Main St", Quality: models.TierComplete},
		{PhysicalAddress: "51.507400, -0.127800", Quality: models.TierCoordinatesOnly},
	}

	enriched := tbl.Enriched(outcomes)

	// Truncated to the processed extent, original columns preserved.
	require.Equal(t, 2, enriched.Len())
	assert.Equal(t,
		[]string{"ID", "Center_Latitude", "Center_Longitude",
			models.ColPhysicalAddress, models.ColStreetName, models.ColAddressQuality},
		enriched.Headers)
	assert.Equal(t,
		[]string{"1", "40.7128", "-74.0060", "1 Main St, Town", "1 Main St", "Complete Street Address"},
		enriched.Records[0])
	assert.Equal(t,
		[]string{"2", "51.5074", "-0.1278", "51.507400, -0.127800", "", "Coordinates Only"},
		enriched.Records[1])
}

func TestBatchStats_Record(t *testing.T) {
	stats := models.BatchStats{Total: 5}

	stats.Record(models.TierComplete)
	stats.Record(models.TierComplete)
	stats.Record(models.TierStreetOnly)
	stats.Record(models.TierCoordinatesOnly)
	stats.Record(models.TierError)

	assert.Equal(t, 2, stats.CompleteAddress)
	assert.Equal(t, 1, stats.StreetOnly)
	assert.Equal(t, 0, stats.AreaOnly)
	assert.Equal(t, 1, stats.CoordinatesOnly)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 5, stats.Total)
}

func TestCoordinates_String(t *testing.T) {
	point := models.Coordinates{Latitude: 40.7128, Longitude: -74.006}

	assert.Equal(t, "40.712800, -74.006000", point.String())
}
