package tier

import "mechcore/internal/upgrade"

var (
	// powerSavingDeny lists high-drain perception, mobility and generation
	// modules. Denied at PowerSaving and every worse tier.
	powerSavingDeny = upgrade.NewMatcher(
		[]string{upgrade.OreVision, upgrade.Stealth, upgrade.KineticGenerator, upgrade.SolarGenerator},
		[]string{"FLIGHT"},
	)

	// lifePreserving is the only class permitted at Critical.
	lifePreserving = upgrade.NewMatcher(
		[]string{upgrade.HealthRegen, upgrade.Regeneration, upgrade.FireExtinguish, upgrade.Thorns},
		[]string{"REGEN", "FIRE_EXTINGUISH", "THORNS", "WATERPROOF"},
	)

	// emergencyExtra joins lifePreserving at Emergency.
	emergencyExtra = upgrade.NewMatcher(
		[]string{upgrade.YellowShield, upgrade.ShieldGenerator, upgrade.DamageBoost, upgrade.ArmorEnhancement},
		[]string{"SHIELD", "DAMAGE_BOOST", "ARMOR_ENHANCEMENT"},
	)
)

// Permitted reports whether module id may count as active at tier t.
//
// Each tier applies its own rule and every rule of the better tiers, so the
// permitted set only shrinks as t worsens:
//
//	Normal       everything
//	PowerSaving  not on the high-drain denylist
//	Emergency    life-preserving, shielding, damage boost, armor enhancement
//	Critical     life-preserving only
func Permitted(id string, t Tier) bool {
	if upgrade.Canon(id) == "" {
		return false
	}
	if t >= PowerSaving && powerSavingDeny.Match(id) {
		return false
	}
	if t >= Emergency && !lifePreserving.Match(id) && !emergencyExtra.Match(id) {
		return false
	}
	if t >= Critical && !lifePreserving.Match(id) {
		return false
	}
	return true
}

// LifePreserving reports whether id belongs to the Critical allowlist.
func LifePreserving(id string) bool { return lifePreserving.Match(id) }
