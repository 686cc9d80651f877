package detect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossvale/gardenbell/internal/catalog"
	"github.com/mossvale/gardenbell/internal/detect"
)

func item(key string, qty int, cat catalog.Category, r catalog.Rarity) catalog.Item {
	return catalog.Item{Key: key, DisplayName: key, Category: cat, Quantity: qty, Rarity: r}
}

func TestRestock_SameQuantityStillEmits(t *testing.T) {
	// An item can sell out and restock at the same quantity inside one
	// poll interval; quantity unchanged is not a suppression condition.
	prev := catalog.Snapshot{"apple": item("apple", 3, catalog.CategorySeeds, catalog.RarityLegendary)}
	cur := catalog.Snapshot{"apple": item("apple", 3, catalog.CategorySeeds, catalog.RarityLegendary)}

	deltas := detect.Restock(prev, cur)
	require.Len(t, deltas, 1)
	assert.Equal(t, "apple", deltas[0].Key)
	assert.Equal(t, 3, deltas[0].PreviousQty)
	assert.Equal(t, 3, deltas[0].CurrentQty)
}

func TestRestock_SkipsOutOfStock(t *testing.T) {
	cur := catalog.Snapshot{
		"tomato": item("tomato", 2, catalog.CategorySeeds, catalog.RarityRare),
		"carrot": item("carrot", 0, catalog.CategorySeeds, catalog.RarityCommon),
	}

	deltas := detect.Restock(catalog.Snapshot{}, cur)
	require.Len(t, deltas, 1)
	assert.Equal(t, "tomato", deltas[0].Key)
	assert.Equal(t, 0, deltas[0].PreviousQty)
	assert.Equal(t, 2, deltas[0].CurrentQty)
}

func TestRestock_SortedByKey(t *testing.T) {
	cur := catalog.Snapshot{
		"zucchini": item("zucchini", 1, catalog.CategorySeeds, catalog.RarityRare),
		"apple":    item("apple", 1, catalog.CategorySeeds, catalog.RarityLegendary),
		"mango":    item("mango", 1, catalog.CategorySeeds, catalog.RarityMythical),
	}

	deltas := detect.Restock(nil, cur)
	require.Len(t, deltas, 3)
	assert.Equal(t, []string{"apple", "mango", "zucchini"},
		[]string{deltas[0].Key, deltas[1].Key, deltas[2].Key})
}

func TestAvailability_NoPreviousNeeded(t *testing.T) {
	cur := catalog.Snapshot{"tomato": item("tomato", 5, catalog.CategorySeeds, catalog.RarityRare)}

	deltas := detect.Availability(cur)
	require.Len(t, deltas, 1)
	assert.Equal(t, 0, deltas[0].PreviousQty)
	assert.Equal(t, 5, deltas[0].CurrentQty)
}

// --------------------------------------------------------------------------
// Weather
// --------------------------------------------------------------------------

func TestWeatherChanges_Transitions(t *testing.T) {
	prev := catalog.WeatherSnapshot{
		"rain":  {Name: "Rain", Active: false},
		"frost": {Name: "Frost", Active: true},
	}
	cur := catalog.WeatherSnapshot{
		"rain":  {Name: "Rain", Active: true},
		"frost": {Name: "Frost", Active: false},
	}

	deltas := detect.WeatherChanges(prev, cur)
	require.Len(t, deltas, 2)
	// Started transitions come before ended ones.
	assert.Equal(t, "rain", deltas[0].ID)
	assert.True(t, deltas[0].Active)
	assert.Equal(t, "frost", deltas[1].ID)
	assert.False(t, deltas[1].Active)
}

func TestWeatherChanges_MissingActiveIsEnded(t *testing.T) {
	prev := catalog.WeatherSnapshot{"thunder": {Name: "Thunderstorm", Active: true}}
	cur := catalog.WeatherSnapshot{}

	deltas := detect.WeatherChanges(prev, cur)
	require.Len(t, deltas, 1)
	assert.Equal(t, "thunder", deltas[0].ID)
	assert.False(t, deltas[0].Active)
}

func TestWeatherChanges_NoChange(t *testing.T) {
	prev := catalog.WeatherSnapshot{"rain": {Name: "Rain", Active: true}}
	cur := catalog.WeatherSnapshot{"rain": {Name: "Rain", Active: true}}

	assert.Empty(t, detect.WeatherChanges(prev, cur))
}

func TestWeatherChanges_FirstSightingInactiveIgnored(t *testing.T) {
	cur := catalog.WeatherSnapshot{"snow": {Name: "Snow", Active: false}}

	assert.Empty(t, detect.WeatherChanges(catalog.WeatherSnapshot{}, cur))
}
