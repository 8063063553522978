package main

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"mechcore/internal/accessory"
	"mechcore/internal/aggregate"
	"mechcore/internal/ledger"
	"mechcore/internal/store"
	"mechcore/internal/tier"
	"mechcore/internal/upgrade"
)

// TierReport is what the accessories see at one tier.
type TierReport struct {
	Tier                 string            `yaml:"tier"`
	Active               int               `yaml:"active"`
	ActiveWithGenerators int               `yaml:"active_with_generators"`
	Accessories          []AccessoryReport `yaml:"accessories"`
}

type AccessoryReport struct {
	Kind      string   `yaml:"kind"`
	Name      string   `yaml:"name"`
	Allowed   bool     `yaml:"allowed"`
	Observed  int      `yaml:"observed"`
	Required  int      `yaml:"required"`
	Qualified int      `yaml:"qualified,omitempty"`
	Bonus     float64  `yaml:"bonus"`
	Display   string   `yaml:"display,omitempty"`
	Unlocked  []string `yaml:"unlocked,omitempty"`
}

// ModuleReport is one ledger record and the tiers it counts at.
type ModuleReport struct {
	ID        string          `yaml:"id"`
	Level     int             `yaml:"level"`
	Enabled   bool            `yaml:"enabled"`
	Paused    bool            `yaml:"paused"`
	Generator bool            `yaml:"generator"`
	Permitted map[string]bool `yaml:"permitted"`
}

// readLedger decodes a YAML ledger document. "-" reads from stdin. An empty
// document is an empty ledger.
func readLedger(path string, stdin io.Reader) (store.Compound, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode ledger %s: %w", path, err)
	}
	if doc == nil {
		return store.New(), nil
	}
	return store.Compound(doc), nil
}

// evaluate reports every accessory in catalog against recs at t.
func evaluate(recs []ledger.Record, t tier.Tier, catalog map[accessory.Kind]*accessory.Definition) TierReport {
	r := TierReport{
		Tier:                 t.String(),
		Active:               aggregate.ActiveCount(recs, t, false),
		ActiveWithGenerators: aggregate.ActiveCount(recs, t, true),
	}
	for _, k := range accessory.Kinds {
		d, ok := catalog[k]
		if !ok {
			continue
		}
		s := aggregate.Evaluate(recs, t, d.Policy)
		b := accessory.NewBinding(d, s, 0)
		a := AccessoryReport{
			Kind:      string(k),
			Name:      d.Name,
			Allowed:   s.Active >= d.Required,
			Observed:  s.Active,
			Required:  d.Required,
			Qualified: s.Qualified,
			Bonus:     b.Value,
		}
		if d.Label != "" {
			a.Display = d.FormatValue(b.Value)
		}
		for _, u := range d.Unlocks {
			if a.Allowed && s.Active >= u.AtActive {
				a.Unlocked = append(a.Unlocked, u.Name)
			}
		}
		r.Accessories = append(r.Accessories, a)
	}
	return r
}

func modules(recs []ledger.Record) []ModuleReport {
	out := make([]ModuleReport, 0, len(recs))
	for _, r := range recs {
		m := ModuleReport{
			ID:        r.ID,
			Level:     r.Level,
			Enabled:   r.Enabled,
			Paused:    r.Paused,
			Generator: upgrade.IsGenerator(r.ID),
			Permitted: make(map[string]bool, len(tier.All)),
		}
		for _, t := range tier.All {
			m.Permitted[t.String()] = tier.Permitted(r.ID, t)
		}
		out = append(out, m)
	}
	return out
}
