package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/meenmo/multicurve/curve"
	"github.com/meenmo/multicurve/instruments"
	"github.com/meenmo/multicurve/market"
)

// groupFile mirrors the YAML schema of a curve group definition file.
type groupFile struct {
	Group  string      `yaml:"group"`
	Curves []curveFile `yaml:"curves"`
}

type curveFile struct {
	Name               string       `yaml:"name"`
	DayCount           string       `yaml:"day_count"`
	YType              string       `yaml:"y_type"`
	Interpolator       string       `yaml:"interpolator"`
	Extrapolators      extrapFile   `yaml:"extrapolators"`
	Seed               float64      `yaml:"seed"`
	DiscountCurrencies []string     `yaml:"discount_currencies"`
	ForwardIndices     []string     `yaml:"forward_indices"`
	CreditEntities     []creditFile `yaml:"credit_entities"`
	Nodes              []nodeFile   `yaml:"nodes"`
}

type extrapFile struct {
	Left  string `yaml:"left"`
	Right string `yaml:"right"`
}

type creditFile struct {
	Entity   string `yaml:"entity"`
	Currency string `yaml:"currency"`
}

type nodeFile struct {
	Kind        string `yaml:"kind"`
	Convention  string `yaml:"convention"`
	Currency    string `yaml:"currency"`
	Index       string `yaml:"index"`
	Entity      string `yaml:"entity"`
	Tenor       string `yaml:"tenor"`
	StartMonths int    `yaml:"start_months"`
	EndMonths   int    `yaml:"end_months"`
	Quote       string `yaml:"quote"`
}

// LoadGroupFile reads and parses a YAML curve group definition.
func LoadGroupFile(path string) (curve.GroupDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return curve.GroupDefinition{}, fmt.Errorf("cannot read group file: %w", err)
	}
	return ParseGroup(data)
}

// ParseGroup parses YAML bytes into a validated group definition.
// Unknown interpolator, extrapolator, convention, index and kind names
// are rejected.
func ParseGroup(data []byte) (curve.GroupDefinition, error) {
	var gf groupFile
	if err := yaml.Unmarshal(data, &gf); err != nil {
		return curve.GroupDefinition{}, fmt.Errorf("cannot parse group YAML: %w", err)
	}

	group := curve.GroupDefinition{Name: gf.Group}
	for _, cf := range gf.Curves {
		entry, err := cf.build()
		if err != nil {
			return curve.GroupDefinition{}, fmt.Errorf("group %s: %w", gf.Group, err)
		}
		group.Entries = append(group.Entries, entry)
	}
	if err := group.Validate(); err != nil {
		return curve.GroupDefinition{}, err
	}
	return group, nil
}

func (cf curveFile) build() (curve.GroupEntry, error) {
	def := curve.Definition{Name: cf.Name, Seed: cf.Seed}

	if cf.DayCount != "" {
		def.DayCount = market.DayCount(cf.DayCount)
		if err := def.DayCount.Validate(); err != nil {
			return curve.GroupEntry{}, fmt.Errorf("curve %s: %w", cf.Name, err)
		}
	}
	if cf.YType != "" {
		def.YType = curve.ValueType(cf.YType)
		if err := def.YType.Validate(); err != nil {
			return curve.GroupEntry{}, fmt.Errorf("curve %s: %w", cf.Name, err)
		}
	}

	var err error
	if cf.Interpolator != "" {
		if def.Interp, err = curve.InterpolatorByName(cf.Interpolator); err != nil {
			return curve.GroupEntry{}, fmt.Errorf("curve %s: %w", cf.Name, err)
		}
	}
	if cf.Extrapolators.Left != "" {
		if def.ExtrapLeft, err = curve.ExtrapolatorByName(cf.Extrapolators.Left); err != nil {
			return curve.GroupEntry{}, fmt.Errorf("curve %s: %w", cf.Name, err)
		}
	}
	if cf.Extrapolators.Right != "" {
		if def.ExtrapRight, err = curve.ExtrapolatorByName(cf.Extrapolators.Right); err != nil {
			return curve.GroupEntry{}, fmt.Errorf("curve %s: %w", cf.Name, err)
		}
	}

	for i, nf := range cf.Nodes {
		node, err := nf.build()
		if err != nil {
			return curve.GroupEntry{}, fmt.Errorf("curve %s: node %d: %w", cf.Name, i, err)
		}
		def.Nodes = append(def.Nodes, node)
	}

	entry := curve.GroupEntry{Curve: def}
	for _, c := range cf.DiscountCurrencies {
		entry.DiscountCurrencies = append(entry.DiscountCurrencies, market.Currency(c))
	}
	for _, s := range cf.ForwardIndices {
		idx := market.Index(s)
		if err := idx.Validate(); err != nil {
			return curve.GroupEntry{}, fmt.Errorf("curve %s: %w", cf.Name, err)
		}
		entry.ForwardIndices = append(entry.ForwardIndices, idx)
	}
	for _, cr := range cf.CreditEntities {
		if cr.Entity == "" || cr.Currency == "" {
			return curve.GroupEntry{}, fmt.Errorf("curve %s: credit entry needs entity and currency", cf.Name)
		}
		entry.CreditEntities = append(entry.CreditEntities, curve.CreditAssignment{
			Entity:   market.Entity(cr.Entity),
			Currency: market.Currency(cr.Currency),
		})
	}
	return entry, nil
}

func (nf nodeFile) build() (curve.Node, error) {
	if nf.Quote == "" {
		return nil, fmt.Errorf("node kind %q: quote is required", nf.Kind)
	}
	quote := market.QuoteKey(nf.Quote)

	switch strings.ToLower(nf.Kind) {
	case "deposit":
		if nf.Currency == "" {
			return nil, fmt.Errorf("deposit node: currency is required")
		}
		tenor, err := instruments.ParseTenor(nf.Tenor)
		if err != nil {
			return nil, fmt.Errorf("deposit node: %w", err)
		}
		return instruments.TermDeposit(market.Currency(nf.Currency), tenor, quote), nil

	case "fixing":
		idx := market.Index(nf.Index)
		if err := idx.Validate(); err != nil {
			return nil, fmt.Errorf("fixing node: %w", err)
		}
		return instruments.IborFixing(idx, quote), nil

	case "fra":
		idx := market.Index(nf.Index)
		if err := idx.Validate(); err != nil {
			return nil, fmt.Errorf("fra node: %w", err)
		}
		if nf.StartMonths <= 0 || nf.EndMonths <= nf.StartMonths {
			return nil, fmt.Errorf("fra node: want 0 < start_months < end_months, got %dx%d",
				nf.StartMonths, nf.EndMonths)
		}
		return instruments.Fra(idx, nf.StartMonths, nf.EndMonths, quote), nil

	case "ois":
		conv, err := instruments.SwapConventionByName(nf.Convention)
		if err != nil {
			return nil, fmt.Errorf("ois node: %w", err)
		}
		if !conv.Float.Index.IsOvernight() {
			return nil, fmt.Errorf("ois node: convention %s floats on %s, not an overnight index",
				nf.Convention, conv.Float.Index)
		}
		tenor, err := instruments.ParseTenor(nf.Tenor)
		if err != nil {
			return nil, fmt.Errorf("ois node: %w", err)
		}
		return instruments.OvernightSwap(conv, tenor, quote), nil

	case "irs":
		conv, err := instruments.SwapConventionByName(nf.Convention)
		if err != nil {
			return nil, fmt.Errorf("irs node: %w", err)
		}
		if conv.Float.Index.IsOvernight() {
			return nil, fmt.Errorf("irs node: convention %s floats on overnight index %s, use kind ois",
				nf.Convention, conv.Float.Index)
		}
		tenor, err := instruments.ParseTenor(nf.Tenor)
		if err != nil {
			return nil, fmt.Errorf("irs node: %w", err)
		}
		return instruments.FixedIborSwap(conv, tenor, quote), nil

	case "cds":
		conv, err := instruments.CdsConventionByName(nf.Convention)
		if err != nil {
			return nil, fmt.Errorf("cds node: %w", err)
		}
		if nf.Entity == "" {
			return nil, fmt.Errorf("cds node: entity is required")
		}
		tenor, err := instruments.ParseTenor(nf.Tenor)
		if err != nil {
			return nil, fmt.Errorf("cds node: %w", err)
		}
		return instruments.Cds(conv, market.Entity(nf.Entity), tenor, quote), nil
	}
	return nil, fmt.Errorf("node kind %q: unknown kind", nf.Kind)
}
