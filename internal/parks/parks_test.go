package parks

import (
	"testing"

	"github.com/campwatch/campwatch-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	for _, p := range models.AllParks {
		info, err := Get(p)
		require.NoError(t, err)
		assert.Equal(t, p, info.Name)
		assert.NotEmpty(t, info.DisplayName)
		assert.NotEmpty(t, info.ParkID)
	}

	_, err := Get(models.Park("yosemite"))
	assert.Error(t, err)
}

func TestSearchURL(t *testing.T) {
	url, err := SearchURL(models.ParkCarlsbad, "2026-10-02", 2)
	require.NoError(t, err)
	assert.Equal(t, "https://www.reservecalifornia.com/Web/Search/Carlsbad?checkin=2026-10-02&nights=2", url)

	url, err = SearchURL(models.ParkJoshuaTree, "", 0)
	require.NoError(t, err)
	assert.Equal(t, "https://www.reservecalifornia.com/Web/Search/Joshua+Tree", url)

	_, err = SearchURL(models.Park("nowhere"), "2026-10-02", 1)
	assert.Error(t, err)
}

func TestInPeakSeason(t *testing.T) {
	assert.True(t, InPeakSeason(models.ParkJoshuaTree, 11))
	assert.False(t, InPeakSeason(models.ParkJoshuaTree, 7))
	assert.True(t, InPeakSeason(models.ParkCarlsbad, 7))
	assert.False(t, InPeakSeason(models.Park("nowhere"), 7))
}
