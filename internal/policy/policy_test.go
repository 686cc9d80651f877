package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mossvale/gardenbell/internal/catalog"
	"github.com/mossvale/gardenbell/internal/detect"
	"github.com/mossvale/gardenbell/internal/policy"
	"github.com/mossvale/gardenbell/internal/registry"
)

func newDevice(reg *registry.Store, token string, favorites ...string) {
	favs := make(map[string]struct{}, len(favorites))
	for _, f := range favorites {
		favs[f] = struct{}{}
	}
	reg.Upsert(token, registry.Registration{
		FavoriteItems: favs,
		Notifications: registry.NotificationSettings{Enabled: true, SoundEnabled: true},
	})
}

func delta(key string, prevQty, curQty int, cat catalog.Category, r catalog.Rarity) detect.ItemDelta {
	return detect.ItemDelta{
		Key: key, DisplayName: key,
		PreviousQty: prevQty, CurrentQty: curQty,
		Category: cat, Rarity: r,
	}
}

func TestPlan_CommonNeverNotifies(t *testing.T) {
	reg := registry.New()
	newDevice(reg, "dev-1", "carrot")

	// Carrot 0 -> 5 is a real transition, but Common items are
	// permanently suppressed.
	deltas := []detect.ItemDelta{delta("carrot", 0, 5, catalog.CategorySeeds, catalog.RarityCommon)}
	assert.Empty(t, policy.Plan(deltas, nil, nil, reg))
}

func TestPlan_FavoriteRareItemProducesCategoryIntent(t *testing.T) {
	reg := registry.New()
	newDevice(reg, "dev-1", "tomato")

	deltas := []detect.ItemDelta{delta("tomato", 0, 2, catalog.CategorySeeds, catalog.RarityRare)}
	intents := policy.Plan(deltas, nil, nil, reg)

	require.Len(t, intents, 1)
	in := intents[0]
	assert.Equal(t, "dev-1", in.Token)
	assert.Equal(t, policy.KindItems, in.Kind)
	assert.Equal(t, catalog.CategorySeeds, in.Category)
	require.Len(t, in.Items, 1)
	assert.Equal(t, "tomato", in.Items[0].Key)
	assert.Equal(t, 2, in.Items[0].CurrentQty)
}

func TestPlan_EmptyFavoritesNeverNotifies(t *testing.T) {
	reg := registry.New()
	newDevice(reg, "dev-1")

	deltas := []detect.ItemDelta{delta("tomato", 0, 2, catalog.CategorySeeds, catalog.RarityRare)}
	assert.Empty(t, policy.Plan(deltas, nil, nil, reg))
}

func TestPlan_DisabledDeviceSkippedSilently(t *testing.T) {
	reg := registry.New()
	reg.Upsert("dev-1", registry.Registration{
		FavoriteItems: map[string]struct{}{"tomato": {}},
		Notifications: registry.NotificationSettings{Enabled: false},
	})

	deltas := []detect.ItemDelta{delta("tomato", 0, 2, catalog.CategorySeeds, catalog.RarityRare)}
	assert.Empty(t, policy.Plan(deltas, nil, nil, reg))
}

func TestPlan_NonFavoritesFilteredOut(t *testing.T) {
	reg := registry.New()
	newDevice(reg, "dev-1", "tomato")

	deltas := []detect.ItemDelta{
		delta("tomato", 0, 2, catalog.CategorySeeds, catalog.RarityRare),
		delta("mango", 0, 1, catalog.CategorySeeds, catalog.RarityMythical),
	}
	intents := policy.Plan(deltas, nil, nil, reg)

	require.Len(t, intents, 1)
	require.Len(t, intents[0].Items, 1)
	assert.Equal(t, "tomato", intents[0].Items[0].Key)
}

func TestPlan_PremiumTierGetsIndividualIntents(t *testing.T) {
	reg := registry.New()
	newDevice(reg, "dev-1", "beanstalk", "tomato", "corn")

	deltas := []detect.ItemDelta{
		delta("beanstalk", 0, 1, catalog.CategorySeeds, policy.IndividualAlertTier),
		delta("tomato", 0, 2, catalog.CategorySeeds, catalog.RarityRare),
		delta("corn", 0, 4, catalog.CategorySeeds, catalog.RarityRare),
	}
	intents := policy.Plan(deltas, nil, nil, reg)

	require.Len(t, intents, 2)

	var single, grouped *policy.Intent
	for i := range intents {
		if len(intents[i].Items) == 1 {
			single = &intents[i]
		} else {
			grouped = &intents[i]
		}
	}
	require.NotNil(t, single)
	require.NotNil(t, grouped)
	assert.Equal(t, "beanstalk", single.Items[0].Key)
	assert.Len(t, grouped.Items, 2)
	assert.Equal(t, catalog.CategorySeeds, grouped.Category)
}

func TestPlan_GroupsPerCategory(t *testing.T) {
	reg := registry.New()
	newDevice(reg, "dev-1", "tomato", "basic_sprinkler")

	deltas := []detect.ItemDelta{
		delta("tomato", 0, 2, catalog.CategorySeeds, catalog.RarityRare),
		delta("basic_sprinkler", 0, 1, catalog.CategoryGear, catalog.RarityRare),
	}
	intents := policy.Plan(deltas, nil, nil, reg)

	require.Len(t, intents, 2)
	cats := map[catalog.Category]bool{}
	for _, in := range intents {
		cats[in.Category] = true
	}
	assert.True(t, cats[catalog.CategorySeeds])
	assert.True(t, cats[catalog.CategoryGear])
}

// --------------------------------------------------------------------------
// Weather
// --------------------------------------------------------------------------

func TestPlan_WeatherModeAll(t *testing.T) {
	reg := registry.New()
	reg.Upsert("dev-1", registry.Registration{
		Weather: registry.WeatherSettings{Enabled: true, Mode: registry.WeatherModeAll},
	})

	deltas := []detect.WeatherDelta{
		{ID: "rain", Name: "Rain", Active: true},
		{ID: "frost", Name: "Frost", Active: false},
	}
	intents := policy.Plan(nil, deltas, nil, reg)
	assert.Len(t, intents, 2)
}

func TestPlan_WeatherFavoritesOnly(t *testing.T) {
	reg := registry.New()
	reg.Upsert("dev-1", registry.Registration{
		FavoriteWeather: map[string]struct{}{"rain": {}},
		Weather:         registry.WeatherSettings{Enabled: true, Mode: registry.WeatherModeFavoritesOnly},
	})

	deltas := []detect.WeatherDelta{
		{ID: "rain", Name: "Rain", Active: true},
		{ID: "frost", Name: "Frost", Active: true},
	}
	intents := policy.Plan(nil, deltas, nil, reg)

	require.Len(t, intents, 1)
	assert.Equal(t, "rain", intents[0].Weather.ID)
}

func TestPlan_WeatherFavoritesOnlyWithNoFavorites(t *testing.T) {
	reg := registry.New()
	reg.Upsert("dev-1", registry.Registration{
		Weather: registry.WeatherSettings{Enabled: true, Mode: registry.WeatherModeFavoritesOnly},
	})

	deltas := []detect.WeatherDelta{{ID: "rain", Name: "Rain", Active: true}}
	assert.Empty(t, policy.Plan(nil, deltas, nil, reg))
}

func TestPlan_WeatherDisabled(t *testing.T) {
	reg := registry.New()
	reg.Upsert("dev-1", registry.Registration{
		Weather: registry.WeatherSettings{Enabled: false},
	})

	deltas := []detect.WeatherDelta{{ID: "rain", Name: "Rain", Active: true}}
	assert.Empty(t, policy.Plan(nil, deltas, nil, reg))
}

// --------------------------------------------------------------------------
// Events
// --------------------------------------------------------------------------

func TestPlan_EventLeadExactMatchOnly(t *testing.T) {
	reg := registry.New()
	reg.Upsert("dev-5", registry.Registration{
		Events: registry.EventSettings{Enabled: true, LeadMinutes: 5},
	})
	reg.Upsert("dev-10", registry.Registration{
		Events: registry.EventSettings{Enabled: true, LeadMinutes: 10},
	})

	lead := &detect.EventLead{Name: "Harvest Rush", LeadMinutes: 5}
	intents := policy.Plan(nil, nil, lead, reg)

	// Only the device configured for exactly 5 minutes fires; dev-10
	// waits for its own lead check, so each device is single-fire.
	require.Len(t, intents, 1)
	assert.Equal(t, "dev-5", intents[0].Token)
	assert.Equal(t, policy.KindEvent, intents[0].Kind)
}

func TestPlan_EventDisabled(t *testing.T) {
	reg := registry.New()
	reg.Upsert("dev-1", registry.Registration{
		Events: registry.EventSettings{Enabled: false, LeadMinutes: 5},
	})

	lead := &detect.EventLead{Name: "Harvest Rush", LeadMinutes: 5}
	assert.Empty(t, policy.Plan(nil, nil, lead, reg))
}
