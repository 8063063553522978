package ledger

import "fmt"

// Reconciler merges the structured and flat record sets into exactly one
// record per id. Records present in only one encoding pass through.
type Reconciler interface {
	Reconcile(structured, flat []Record) []Record
}

// ReconcileFunc adapts a function to Reconciler.
type ReconcileFunc func(structured, flat []Record) []Record

// Reconcile calls f.
func (f ReconcileFunc) Reconcile(structured, flat []Record) []Record {
	return f(structured, flat)
}

// Policy names accepted by ParseReconciler.
const (
	PolicyPreferStructured = "prefer_structured"
	PolicyPreferFlat       = "prefer_flat"
	PolicyHighestLevel     = "highest_level"
)

var (
	// PreferStructured keeps the structured record's level and enabled state
	// when both encodings hold an id. The flat upgrade_ keys are the legacy
	// encoding. A pause or disable flag from either side still deactivates
	// the merged record.
	PreferStructured Reconciler = ReconcileFunc(func(s, f []Record) []Record {
		return merge(s, f, func(s, f Record) Record {
			s.Paused = s.Paused || f.Paused || !f.Enabled
			return s
		})
	})

	// PreferFlat is the mirror of PreferStructured.
	PreferFlat Reconciler = ReconcileFunc(func(s, f []Record) []Record {
		return merge(s, f, func(s, f Record) Record {
			f.Paused = f.Paused || s.Paused || !s.Enabled
			return f
		})
	})

	// HighestLevel keeps the larger level and requires both encodings to
	// agree the module is on.
	HighestLevel Reconciler = ReconcileFunc(func(s, f []Record) []Record {
		return merge(s, f, fold)
	})
)

// ParseReconciler maps a policy name to its Reconciler. The empty name
// selects PreferStructured.
func ParseReconciler(name string) (Reconciler, error) {
	switch name {
	case "", PolicyPreferStructured:
		return PreferStructured, nil
	case PolicyPreferFlat:
		return PreferFlat, nil
	case PolicyHighestLevel:
		return HighestLevel, nil
	}
	return nil, fmt.Errorf("unknown reconcile policy %q", name)
}

// merge walks both sets once. both is called for ids present in each, with
// the structured record first.
func merge(structured, flat []Record, both func(s, f Record) Record) []Record {
	byID := make(map[string]Record, len(flat))
	for _, r := range flat {
		byID[r.ID] = r
	}
	out := make([]Record, 0, len(structured)+len(flat))
	seen := make(map[string]bool, len(structured))
	for _, s := range structured {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		if f, ok := byID[s.ID]; ok {
			out = append(out, both(s, f))
			continue
		}
		out = append(out, s)
	}
	for _, f := range flat {
		if !seen[f.ID] {
			seen[f.ID] = true
			out = append(out, f)
		}
	}
	return out
}
