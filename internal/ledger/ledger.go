// Package ledger reads the upgrade ledger persisted on a core item.
//
// Two encodings coexist in the wild:
//
//	Structured:  Upgrades.<id>.level: int
//	             Upgrades.<id>.enabled|active: bool  (or) Upgrades.<id>.state: "ON"
//	Flat:        upgrade_<id>: int
//	             Disabled_<id> | IsPaused_<id>: bool
//
// Each encoding has its own decoder. A Reconciler merges the two record sets
// into one record per module id.
package ledger

import (
	"sort"
	"strings"

	"mechcore/internal/store"
	"mechcore/internal/upgrade"
)

// Persisted key names.
const (
	KeyUpgrades    = "Upgrades"
	KeyLevel       = "level"
	KeyEnabled     = "enabled"
	KeyActive      = "active"
	KeyState       = "state"
	StateOn        = "ON"
	PrefixUpgrade  = "upgrade_"
	PrefixDisabled = "Disabled_"
	PrefixPaused   = "IsPaused_"
)

// Record is one upgrade module slot in a core's ledger.
type Record struct {
	ID      string // canonical, see upgrade.Canon
	Level   int
	Enabled bool
	Paused  bool
}

// Active reports whether the record counts before tier gating. A level-0
// module is never active regardless of flags.
func (r Record) Active() bool {
	return r.Level > 0 && r.Enabled && !r.Paused
}

// Read decodes both encodings from c and merges them with rec. A nil rec
// uses PreferStructured. Absent or malformed input yields an empty slice.
func Read(c store.Compound, rec Reconciler) []Record {
	if c == nil {
		return nil
	}
	if rec == nil {
		rec = PreferStructured
	}
	out := rec.Reconcile(DecodeStructured(c), DecodeFlat(c))
	sortRecords(out)
	return out
}

// DecodeStructured reads the nested Upgrades table. Entries without an
// integral, non-negative level are skipped.
func DecodeStructured(c store.Compound) []Record {
	table, ok := c.Compound(KeyUpgrades)
	if !ok {
		return nil
	}
	var out []Record
	for _, key := range table.Keys() {
		entry, ok := table.Compound(key)
		if !ok {
			continue
		}
		level, ok := entry.Int(KeyLevel)
		if !ok || level < 0 {
			continue
		}
		id := upgrade.Canon(key)
		if id == "" {
			continue
		}
		out = append(out, Record{
			ID:    id,
			Level: level,
			Enabled: entry.Bool(KeyEnabled) ||
				entry.Bool(KeyActive) ||
				strings.EqualFold(entry.String(KeyState), StateOn),
			Paused: flag(c, PrefixPaused, key),
		})
	}
	return out
}

// DecodeFlat reads top-level upgrade_<id> keys. The level is stored
// directly; Disabled_<id> clears Enabled and IsPaused_<id> sets Paused.
func DecodeFlat(c store.Compound) []Record {
	var out []Record
	for _, key := range c.Keys() {
		if !strings.HasPrefix(strings.ToLower(key), PrefixUpgrade) {
			continue
		}
		raw := key[len(PrefixUpgrade):]
		id := upgrade.Canon(raw)
		if id == "" {
			continue
		}
		level, ok := c.Int(key)
		if !ok || level < 0 {
			continue
		}
		out = append(out, Record{
			ID:      id,
			Level:   level,
			Enabled: !flag(c, PrefixDisabled, raw),
			Paused:  flag(c, PrefixPaused, raw),
		})
	}
	return dedupe(out)
}

// flag checks prefix+id under the spellings the legacy writers used: as
// stored, canonical upper case, and lower case.
func flag(c store.Compound, prefix, raw string) bool {
	canon := upgrade.Canon(raw)
	for _, k := range []string{raw, canon, strings.ToLower(canon)} {
		if c.Bool(prefix + k) {
			return true
		}
	}
	return false
}

// dedupe folds flat keys that differ only by case ("upgrade_regen" and
// "upgrade_REGEN") into one record, keeping the highest level and OR-ing
// the inactive flags.
func dedupe(recs []Record) []Record {
	if len(recs) < 2 {
		return recs
	}
	idx := make(map[string]int, len(recs))
	out := recs[:0]
	for _, r := range recs {
		if i, ok := idx[r.ID]; ok {
			out[i] = fold(out[i], r)
			continue
		}
		idx[r.ID] = len(out)
		out = append(out, r)
	}
	return out
}

func fold(a, b Record) Record {
	if b.Level > a.Level {
		a.Level = b.Level
	}
	a.Enabled = a.Enabled && b.Enabled
	a.Paused = a.Paused || b.Paused
	return a
}

func sortRecords(recs []Record) {
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
}

// Find returns the record for id, if present.
func Find(recs []Record, id string) (Record, bool) {
	id = upgrade.Canon(id)
	for _, r := range recs {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// SetPaused writes or clears the top-level pause flag for id. Clearing
// removes every spelling of the flag so no legacy variant keeps the module
// paused.
func SetPaused(c store.Compound, id string, paused bool) {
	canon := upgrade.Canon(id)
	if c == nil || canon == "" {
		return
	}
	if paused {
		c.Set(PrefixPaused+canon, true)
		return
	}
	for _, key := range c.Keys() {
		if strings.HasPrefix(key, PrefixPaused) && upgrade.Canon(key[len(PrefixPaused):]) == canon {
			c.Delete(key)
		}
	}
}
