package accessory

import (
	"fmt"

	"github.com/google/uuid"

	"mechcore/internal/aggregate"
	"mechcore/internal/attribute"
	"mechcore/internal/bonus"
)

// Kind names an accessory type.
type Kind string

const (
	Wishbone          Kind = "wishbone"
	Circulation       Kind = "circulation"
	Exoskeleton       Kind = "exoskeleton"
	RiftGlove         Kind = "rift_glove"
	MagnetRing        Kind = "magnet_ring"
	VoidBackpack      Kind = "void_backpack"
	CausalGateband    Kind = "causal_gateband"
	DimensionalAnchor Kind = "dimensional_anchor"
)

// Kinds lists every accessory in display order.
var Kinds = []Kind{Wishbone, Circulation, Exoskeleton, RiftGlove, MagnetRing, VoidBackpack, CausalGateband, DimensionalAnchor}

// Cache keys persisted on the accessory's store.
const (
	KeyCachedActive    = "CachedActive"
	KeyCachedQualified = "CachedQualified"
	KeyCachedLuck      = "CachedLuck"
	KeyCachedHealth    = "CachedHealth"
	KeyCachedDamage    = "CachedDamage"
	KeySyncBonus       = "SyncBonus"
	KeyCachedReduction = "CachedReduction"
	KeyCachedRange     = "CachedRange"
	KeyCachedSize      = "CachedSize"
	KeyLastUpdateTime  = "LastUpdateTime"
)

// Unlock names a feature switched on at an active-count threshold.
type Unlock struct {
	Name     string
	AtActive int
}

// Effect is where a derived value lands on the wearer.
type Effect struct {
	Attribute attribute.Name
	Op        attribute.Operation
	// ModifierID is the identity the bonus is applied under. uuid.Nil means
	// the value is only cached and read by the host, as the rift glove's
	// reduction is at hit time.
	ModifierID uuid.UUID
}

// Definition is one accessory type.
type Definition struct {
	Kind     Kind
	Name     string
	Registry string
	Slot     string
	// Required is the active count needed to equip and stay equipped.
	Required int
	Policy   aggregate.Policy
	Formula  bonus.Formula
	Effect   Effect
	// CacheKey stores the derived value. Empty for gate-only accessories.
	CacheKey string
	// Label and Percent shape the activation notice.
	Label   string
	Percent bool
	Unlocks []Unlock
}

// Modifies reports whether the accessory applies an attribute modifier.
func (d *Definition) Modifies() bool { return d.Effect.ModifierID != uuid.Nil }

// FormatValue renders a derived value for notices.
func (d *Definition) FormatValue(v float64) string {
	if d.Percent {
		return fmt.Sprintf("%s +%.0f%%", d.Label, v*100)
	}
	if v == float64(int(v)) {
		return fmt.Sprintf("%s +%d", d.Label, int(v))
	}
	return fmt.Sprintf("%s +%.1f", d.Label, v)
}

// Modifier identities. The luck and health ids match those already present
// on live player data. An id is shared by every accessory of its kind, so a
// player wears at most one of each kind.
var (
	LuckModifierID   = uuid.MustParse("ec8b3a86-2f5d-4a9d-8f4b-89dbab2a889b")
	HealthModifierID = uuid.MustParse("d3f6e719-8a24-4b9a-b5c3-2f8d9e4a6c12")
	DamageModifierID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("mechcore:exoskeleton/attack_damage"))
)

// Balance is the tunable part of every definition.
type Balance struct {
	Wishbone struct {
		Required int `yaml:"required" env:"REQUIRED"`
		MinLevel int `yaml:"min_level" env:"MIN_LEVEL"`
		MaxLuck  int `yaml:"max_luck" env:"MAX_LUCK"`
	} `yaml:"wishbone" envPrefix:"WISHBONE_"`
	Circulation struct {
		Required        int     `yaml:"required" env:"REQUIRED"`
		HealthPerModule float64 `yaml:"health_per_module" env:"HEALTH_PER_MODULE"`
		MaxBonusHealth  float64 `yaml:"max_bonus_health" env:"MAX_BONUS_HEALTH"`
	} `yaml:"circulation" envPrefix:"CIRCULATION_"`
	Exoskeleton struct {
		Required        int     `yaml:"required" env:"REQUIRED"`
		DamagePerLevel  float64 `yaml:"damage_per_level" env:"DAMAGE_PER_LEVEL"`
		SyncPerLevel    float64 `yaml:"sync_per_level" env:"SYNC_PER_LEVEL"`
		MaxDamage       float64 `yaml:"max_damage" env:"MAX_DAMAGE"`
		CountGenerators bool    `yaml:"count_generators" env:"COUNT_GENERATORS"`
	} `yaml:"exoskeleton" envPrefix:"EXOSKELETON_"`
	RiftGlove struct {
		Required       int `yaml:"required" env:"REQUIRED"`
		ModulesPerTier int `yaml:"modules_per_tier" env:"MODULES_PER_TIER"`
		PerTier        int `yaml:"reduction_per_tier" env:"REDUCTION_PER_TIER"`
		MaxReduction   int `yaml:"max_reduction" env:"MAX_REDUCTION"`
	} `yaml:"rift_glove" envPrefix:"RIFT_GLOVE_"`
	MagnetRing struct {
		Required  int `yaml:"required" env:"REQUIRED"`
		BaseRange int `yaml:"base_range" env:"BASE_RANGE"`
		RangeStep int `yaml:"range_step" env:"RANGE_STEP"`
		StepEvery int `yaml:"step_every" env:"STEP_EVERY"`
		MaxRange  int `yaml:"max_range" env:"MAX_RANGE"`
		SmeltAt   int `yaml:"smelt_at" env:"SMELT_AT"`
		DoubleAt  int `yaml:"double_drop_at" env:"DOUBLE_DROP_AT"`
	} `yaml:"magnet_ring" envPrefix:"MAGNET_RING_"`
	VoidBackpack struct {
		Required      int `yaml:"required" env:"REQUIRED"`
		BaseSize      int `yaml:"base_size" env:"BASE_SIZE"`
		SizeStep      int `yaml:"size_step" env:"SIZE_STEP"`
		StepEvery     int `yaml:"step_every" env:"STEP_EVERY"`
		MaxSize       int `yaml:"max_size" env:"MAX_SIZE"`
		AutoCollectAt int `yaml:"auto_collect_at" env:"AUTO_COLLECT_AT"`
	} `yaml:"void_backpack" envPrefix:"VOID_BACKPACK_"`
	CausalGateband struct {
		Required int `yaml:"required" env:"REQUIRED"`
		MinLevel int `yaml:"min_level" env:"MIN_LEVEL"`
	} `yaml:"causal_gateband" envPrefix:"CAUSAL_GATEBAND_"`
	DimensionalAnchor struct {
		Required int `yaml:"required" env:"REQUIRED"`
	} `yaml:"dimensional_anchor" envPrefix:"DIMENSIONAL_ANCHOR_"`
}

// DefaultBalance returns the stock numbers.
func DefaultBalance() Balance {
	var b Balance
	b.Wishbone.Required, b.Wishbone.MinLevel, b.Wishbone.MaxLuck = 4, 3, 100
	b.Circulation.Required, b.Circulation.HealthPerModule, b.Circulation.MaxBonusHealth = 3, 2, 20
	b.Exoskeleton.Required = 10
	b.Exoskeleton.DamagePerLevel, b.Exoskeleton.SyncPerLevel, b.Exoskeleton.MaxDamage = 0.10, 0.02, 5.0
	b.RiftGlove.Required, b.RiftGlove.ModulesPerTier, b.RiftGlove.PerTier, b.RiftGlove.MaxReduction = 5, 5, 2, 8
	b.MagnetRing.Required, b.MagnetRing.BaseRange, b.MagnetRing.RangeStep, b.MagnetRing.StepEvery, b.MagnetRing.MaxRange = 5, 5, 2, 3, 25
	b.MagnetRing.SmeltAt, b.MagnetRing.DoubleAt = 6, 10
	b.VoidBackpack.Required, b.VoidBackpack.BaseSize, b.VoidBackpack.SizeStep, b.VoidBackpack.StepEvery, b.VoidBackpack.MaxSize = 12, 9, 3, 4, 27
	// Below Required, so the default link always auto-collects once worn.
	// Raise it above Required to make auto-collect a separate milestone.
	b.VoidBackpack.AutoCollectAt = 8
	b.CausalGateband.Required, b.CausalGateband.MinLevel = 1, 1
	b.DimensionalAnchor.Required = 8
	return b
}

// Unlock names.
const (
	UnlockSmelting    = "smelting"
	UnlockDoubleDrop  = "double_drop"
	UnlockAutoCollect = "auto_collect"
)

// Catalog builds every definition from b.
func Catalog(b Balance) map[Kind]*Definition {
	return map[Kind]*Definition{
		Wishbone: {
			Kind: Wishbone, Name: "Copper Wishbone", Registry: "mechcore:copper_wishbone", Slot: "charm",
			Required: b.Wishbone.Required,
			Policy:   aggregate.Policy{MinLevel: b.Wishbone.MinLevel},
			Formula:  bonus.LuckFormula{Max: b.Wishbone.MaxLuck},
			Effect:   Effect{Attribute: attribute.Luck, Op: attribute.Add, ModifierID: LuckModifierID},
			CacheKey: KeyCachedLuck,
			Label:    "luck",
		},
		Circulation: {
			Kind: Circulation, Name: "Circulation System", Registry: "mechcore:circulation_system", Slot: "body",
			Required: b.Circulation.Required,
			Formula:  bonus.HealthFormula{PerModule: b.Circulation.HealthPerModule, Max: b.Circulation.MaxBonusHealth},
			Effect:   Effect{Attribute: attribute.MaxHealth, Op: attribute.Add, ModifierID: HealthModifierID},
			CacheKey: KeyCachedHealth,
			Label:    "max health",
		},
		Exoskeleton: {
			Kind: Exoskeleton, Name: "Mechanical Exoskeleton", Registry: "mechcore:mechanical_exoskeleton", Slot: "body",
			Required: b.Exoskeleton.Required,
			Policy:   aggregate.Policy{CountGenerators: b.Exoskeleton.CountGenerators},
			Formula: bonus.DamageFormula{
				PerLevel:     b.Exoskeleton.DamagePerLevel,
				SyncPerLevel: b.Exoskeleton.SyncPerLevel,
				Max:          b.Exoskeleton.MaxDamage,
			},
			Effect:   Effect{Attribute: attribute.AttackDamage, Op: attribute.MultiplyBase, ModifierID: DamageModifierID},
			CacheKey: KeyCachedDamage,
			Label:    "damage",
			Percent:  true,
		},
		RiftGlove: {
			Kind: RiftGlove, Name: "Rift Glove", Registry: "mechcore:rift_glove", Slot: "ring",
			Required: b.RiftGlove.Required,
			Formula: bonus.InvulnerabilityFormula{
				ModulesPerTier: b.RiftGlove.ModulesPerTier,
				PerTier:        b.RiftGlove.PerTier,
				Max:            b.RiftGlove.MaxReduction,
			},
			CacheKey: KeyCachedReduction,
			Label:    "invulnerability reduction",
		},
		MagnetRing: {
			Kind: MagnetRing, Name: "Resource Magnet Ring", Registry: "mechcore:resource_magnet_ring", Slot: "ring",
			Required: b.MagnetRing.Required,
			Formula: bonus.SteppedFormula{
				Base: b.MagnetRing.BaseRange, Step: b.MagnetRing.RangeStep,
				Every: b.MagnetRing.StepEvery, Max: b.MagnetRing.MaxRange,
			},
			CacheKey: KeyCachedRange,
			Label:    "pickup range",
			Unlocks: []Unlock{
				{Name: UnlockSmelting, AtActive: b.MagnetRing.SmeltAt},
				{Name: UnlockDoubleDrop, AtActive: b.MagnetRing.DoubleAt},
			},
		},
		VoidBackpack: {
			Kind: VoidBackpack, Name: "Void Backpack Link", Registry: "mechcore:void_backpack_link", Slot: "belt",
			Required: b.VoidBackpack.Required,
			Formula: bonus.SteppedFormula{
				Base: b.VoidBackpack.BaseSize, Step: b.VoidBackpack.SizeStep,
				Every: b.VoidBackpack.StepEvery, Max: b.VoidBackpack.MaxSize,
			},
			CacheKey: KeyCachedSize,
			Label:    "void slots",
			Unlocks:  []Unlock{{Name: UnlockAutoCollect, AtActive: b.VoidBackpack.AutoCollectAt}},
		},
		CausalGateband: {
			Kind: CausalGateband, Name: "Causal Gateband", Registry: "mechcore:causal_gateband", Slot: "head",
			Required: b.CausalGateband.Required,
			Policy:   aggregate.Policy{MinLevel: b.CausalGateband.MinLevel},
			Formula:  bonus.None{},
		},
		DimensionalAnchor: {
			Kind: DimensionalAnchor, Name: "Dimensional Anchor", Registry: "mechcore:dimensional_anchor", Slot: "amulet",
			Required: b.DimensionalAnchor.Required,
			Formula:  bonus.None{},
		},
	}
}

// ParseKind validates an accessory kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown accessory %q", s)
}
