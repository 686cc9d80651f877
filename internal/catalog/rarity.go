package catalog

import "strings"

// Rarity is the ordinal item tier controlling notification eligibility.
// Higher tiers are rarer and rank higher for notification priority.
type Rarity int

const (
	RarityUnknown Rarity = iota
	RarityCommon
	RarityUncommon
	RarityRare
	RarityLegendary
	RarityMythical
	RarityDivine
	RarityPrismatic
)

// DefaultRarity is assigned to items missing from every classification
// source. Rare rather than Common so brand-new items notify until the
// static table is extended. Product has not confirmed this fail-open
// policy; keep it in one place.
const DefaultRarity = RarityRare

var rarityNames = map[Rarity]string{
	RarityUnknown:   "Unknown",
	RarityCommon:    "Common",
	RarityUncommon:  "Uncommon",
	RarityRare:      "Rare",
	RarityLegendary: "Legendary",
	RarityMythical:  "Mythical",
	RarityDivine:    "Divine",
	RarityPrismatic: "Prismatic",
}

func (r Rarity) String() string {
	if n, ok := rarityNames[r]; ok {
		return n
	}
	return "Unknown"
}

// ParseRarity maps an upstream rarity string to a tier.
// Returns RarityUnknown for empty or unrecognized values.
func ParseRarity(s string) Rarity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "common":
		return RarityCommon
	case "uncommon":
		return RarityUncommon
	case "rare":
		return RarityRare
	case "legendary":
		return RarityLegendary
	case "mythical", "mythic":
		return RarityMythical
	case "divine":
		return RarityDivine
	case "prismatic":
		return RarityPrismatic
	}
	return RarityUnknown
}

// --------------------------------------------------------------------------
// Classification tables
// --------------------------------------------------------------------------

// rarityOverrides enforces a tier by upstream item id regardless of what
// the API reports. Loaded once at init, immutable after.
var rarityOverrides = map[string]Rarity{
	"itm_beanstalk":        RarityMythical,
	"itm_ember_lily":       RarityMythical,
	"itm_sugar_apple":      RarityDivine,
	"itm_burning_bud":      RarityDivine,
	"itm_giant_pine":       RarityDivine,
	"itm_master_sprinkler": RarityLegendary,
	"itm_bug_egg":          RarityMythical,
	"itm_paradise_egg":     RarityDivine,
}

// rarityByName classifies well-known items by catalog key.
var rarityByName = map[string]Rarity{
	// seeds
	"carrot":       RarityCommon,
	"strawberry":   RarityCommon,
	"blueberry":    RarityUncommon,
	"orange_tulip": RarityUncommon,
	"tomato":       RarityRare,
	"daffodil":     RarityRare,
	"corn":         RarityRare,
	"watermelon":   RarityLegendary,
	"pumpkin":      RarityLegendary,
	"apple":        RarityLegendary,
	"bamboo":       RarityLegendary,
	"coconut":      RarityMythical,
	"cactus":       RarityMythical,
	"dragon_fruit": RarityMythical,
	"mango":        RarityMythical,
	"grape":        RarityDivine,
	"mushroom":     RarityDivine,
	"pepper":       RarityDivine,
	"cacao":        RarityDivine,
	"beanstalk":    RarityPrismatic,
	"ember_lily":   RarityPrismatic,
	"sugar_apple":  RarityPrismatic,

	// gear
	"watering_can":       RarityCommon,
	"trowel":             RarityCommon,
	"recall_wrench":      RarityUncommon,
	"basic_sprinkler":    RarityRare,
	"advanced_sprinkler": RarityLegendary,
	"godly_sprinkler":    RarityMythical,
	"lightning_rod":      RarityMythical,
	"master_sprinkler":   RarityDivine,
	"favorite_tool":      RarityDivine,
	"harvest_tool":       RarityDivine,

	// eggs
	"common_egg":    RarityCommon,
	"uncommon_egg":  RarityUncommon,
	"rare_egg":      RarityRare,
	"legendary_egg": RarityLegendary,
	"mythical_egg":  RarityMythical,
	"bug_egg":       RarityDivine,
	"paradise_egg":  RarityDivine,
}

// ResolveRarity resolves an item's tier without side effects.
//
// Precedence: explicit override by upstream item id, then the tier the
// upstream reported, then the static name table, then DefaultRarity.
// Callers should log items that fall through to the default so the table
// can be extended.
func ResolveRarity(itemKey, itemID string, upstream Rarity) Rarity {
	if itemID != "" {
		if r, ok := rarityOverrides[itemID]; ok {
			return r
		}
	}
	if upstream != RarityUnknown {
		return upstream
	}
	if r, ok := rarityByName[NormalizeKey(itemKey)]; ok {
		return r
	}
	return DefaultRarity
}

// Classified reports whether an item resolves from a table or upstream
// value rather than falling through to the default.
func Classified(itemKey, itemID string, upstream Rarity) bool {
	if itemID != "" {
		if _, ok := rarityOverrides[itemID]; ok {
			return true
		}
	}
	if upstream != RarityUnknown {
		return true
	}
	_, ok := rarityByName[NormalizeKey(itemKey)]
	return ok
}

// NormalizeKey canonicalizes an item key for table lookups and dedup
// signatures: lowercase, spaces collapsed to underscores.
func NormalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), " ", "_")
}
