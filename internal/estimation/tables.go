package estimation

import (
	"fmt"
	"os"
	"sort"

	"github.com/landclear/quote-planner/internal/geo"
	"github.com/shopspring/decimal"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"sigs.k8s.io/yaml"
)

// PackageRate is the price sheet of one package.
type PackageRate struct {
	Label         string          `json:"label"`
	PricePerAcre  decimal.Decimal `json:"pricePerAcre"`
	MinimumCharge decimal.Decimal `json:"minimumCharge"`
	DaysPerAcre   float64         `json:"daysPerAcre"`
}

// ZoneBand covers distances in (MinMeters, MaxMeters]; the first band also
// covers MinMeters itself.
type ZoneBand struct {
	Name             string  `json:"name"`
	MinMeters        float64 `json:"minMeters"`
	MaxMeters        float64 `json:"maxMeters"`
	SurchargePercent float64 `json:"surchargePercent"`
}

type UrgencyRate struct {
	Label      string  `json:"label"`
	Multiplier float64 `json:"multiplier"`
	// MaxDayReduction days are removed from the base schedule without going
	// below DayFloor.
	MaxDayReduction float64 `json:"maxDayReduction"`
	DayFloor        float64 `json:"dayFloor"`
}

type PropertyTypeModifier struct {
	PricePercent float64 `json:"pricePercent"`
	DayDelta     float64 `json:"dayDelta"`
}

// AccessibilityBand applies Percent to scores strictly below Below.
type AccessibilityBand struct {
	Below   int     `json:"below"`
	Percent float64 `json:"percent"`
}

type ShapeTable struct {
	SmallParcelSqM     float64 `json:"smallParcelSqM"`
	SmallParcelPercent float64 `json:"smallParcelPercent"`
	LargeParcelSqM     float64 `json:"largeParcelSqM"`
	LargeParcelPercent float64 `json:"largeParcelPercent"`
}

type TimelineTable struct {
	MinDays               float64 `json:"minDays"`
	LowAccessibilityBelow int     `json:"lowAccessibilityBelow"`
	LowAccessibilityDays  float64 `json:"lowAccessibilityDays"`
	ManyConcernsOver      int     `json:"manyConcernsOver"`
	ManyConcernsDays      float64 `json:"manyConcernsDays"`
}

// GeoRiskRule adds Percent to the travel surcharge of every site inside Box.
type GeoRiskRule struct {
	Name    string          `json:"name"`
	Box     geo.BoundingBox `json:"box"`
	Percent float64         `json:"percent"`
}

// Tables holds every business-tuning value of the engine. Percent values are
// percentage points (15 means 15%).
type Tables struct {
	Packages           map[PackageType]PackageRate           `json:"packages"`
	DefaultPackage     PackageType                           `json:"defaultPackage"`
	Zones              []ZoneBand                            `json:"zones"`
	OutOfAreaZone      string                                `json:"outOfAreaZone"`
	Urgency            map[UrgencyTier]UrgencyRate           `json:"urgency"`
	PropertyTypes      map[PropertyType]PropertyTypeModifier `json:"propertyTypes"`
	AccessibilityBands []AccessibilityBand                   `json:"accessibilityBands"`
	AccessConcernPct   float64                               `json:"accessConcernPercent"`
	Shape              ShapeTable                            `json:"shape"`
	Timeline           TimelineTable                         `json:"timeline"`
	GeoRisk            []GeoRiskRule                         `json:"geoRisk"`
}

func DefaultTables() *Tables {
	return &Tables{
		Packages: map[PackageType]PackageRate{
			PackageSmall:  {Label: `4" DBH`, PricePerAcre: decimal.NewFromInt(1800), MinimumCharge: decimal.NewFromInt(1200), DaysPerAcre: 0.5},
			PackageMedium: {Label: `6" DBH`, PricePerAcre: decimal.NewFromInt(2500), MinimumCharge: decimal.NewFromInt(1500), DaysPerAcre: 0.75},
			PackageLarge:  {Label: `8" DBH`, PricePerAcre: decimal.NewFromInt(3200), MinimumCharge: decimal.NewFromInt(1800), DaysPerAcre: 1.0},
			PackageXLarge: {Label: `10"+ DBH`, PricePerAcre: decimal.NewFromInt(4000), MinimumCharge: decimal.NewFromInt(2200), DaysPerAcre: 1.25},
		},
		DefaultPackage: PackageMedium,
		Zones: []ZoneBand{
			{Name: "Core", MinMeters: 0, MaxMeters: 30000, SurchargePercent: 0},
			{Name: "Primary", MinMeters: 30000, MaxMeters: 60000, SurchargePercent: 5},
			{Name: "Extended", MinMeters: 60000, MaxMeters: 100000, SurchargePercent: 15},
			{Name: "Maximum", MinMeters: 100000, MaxMeters: 150000, SurchargePercent: 25},
		},
		OutOfAreaZone: "Out-of-area",
		Urgency: map[UrgencyTier]UrgencyRate{
			UrgencyStandard:  {Label: "standard scheduling", Multiplier: 1.00},
			UrgencyPriority:  {Label: "priority scheduling", Multiplier: 1.15, MaxDayReduction: 1, DayFloor: 1},
			UrgencyEmergency: {Label: "emergency scheduling", Multiplier: 1.35, MaxDayReduction: 2, DayFloor: 0.5},
		},
		PropertyTypes: map[PropertyType]PropertyTypeModifier{
			PropertyResidential:  {PricePercent: 0, DayDelta: 0},
			PropertyCommercial:   {PricePercent: -5, DayDelta: -0.25},
			PropertyAgricultural: {PricePercent: 5, DayDelta: 0.5},
			PropertyIndustrial:   {PricePercent: -3, DayDelta: 0.25},
		},
		AccessibilityBands: []AccessibilityBand{
			{Below: 4, Percent: 15},
			{Below: 6, Percent: 10},
			{Below: 8, Percent: 5},
		},
		AccessConcernPct: 3,
		Shape: ShapeTable{
			SmallParcelSqM:     1000,
			SmallParcelPercent: 5,
			LargeParcelSqM:     100000,
			LargeParcelPercent: -3,
		},
		Timeline: TimelineTable{
			MinDays:               0.5,
			LowAccessibilityBelow: 5,
			LowAccessibilityDays:  1,
			ManyConcernsOver:      2,
			ManyConcernsDays:      0.5,
		},
	}
}

// LoadTablesFromFile reads a YAML (or JSON) file and merges it over the
// defaults. Maps are merged key by key, lists replace the default list.
func LoadTablesFromFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pricing tables: %w", err)
	}
	return ParseTables(data)
}

func ParseTables(data []byte) (*Tables, error) {
	t := DefaultTables()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse pricing tables: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate reports every inconsistency of the tables at once.
func (t *Tables) Validate() error {
	var errs []error

	if _, ok := t.Packages[t.DefaultPackage]; !ok {
		errs = append(errs, fmt.Errorf("default package %q has no rate", t.DefaultPackage))
	}
	for _, name := range t.PackageNames() {
		rate := t.Packages[name]
		if !rate.PricePerAcre.IsPositive() {
			errs = append(errs, fmt.Errorf("package %q: price per acre must be positive", name))
		}
		if rate.MinimumCharge.IsNegative() {
			errs = append(errs, fmt.Errorf("package %q: minimum charge must not be negative", name))
		}
		if rate.DaysPerAcre < 0 {
			errs = append(errs, fmt.Errorf("package %q: days per acre must not be negative", name))
		}
	}

	if len(t.Zones) == 0 {
		errs = append(errs, fmt.Errorf("at least one zone is required"))
	}
	for i, z := range t.Zones {
		if z.MaxMeters <= z.MinMeters {
			errs = append(errs, fmt.Errorf("zone %q: max must be greater than min", z.Name))
		}
		if i == 0 && z.MinMeters != 0 {
			errs = append(errs, fmt.Errorf("zone %q: first zone must start at 0", z.Name))
		}
		if i > 0 {
			prev := t.Zones[i-1]
			if z.MinMeters != prev.MaxMeters {
				errs = append(errs, fmt.Errorf("zone %q: must start where zone %q ends", z.Name, prev.Name))
			}
			if z.SurchargePercent < prev.SurchargePercent {
				errs = append(errs, fmt.Errorf("zone %q: surcharge must not decrease with distance", z.Name))
			}
		}
	}

	if _, ok := t.Urgency[UrgencyStandard]; !ok {
		errs = append(errs, fmt.Errorf("urgency %q has no rate", UrgencyStandard))
	}
	tiers := make([]string, 0, len(t.Urgency))
	for tier := range t.Urgency {
		tiers = append(tiers, string(tier))
	}
	sort.Strings(tiers)
	for _, tier := range tiers {
		rate := t.Urgency[UrgencyTier(tier)]
		if rate.Multiplier < 1 {
			errs = append(errs, fmt.Errorf("urgency %q: multiplier must be at least 1", tier))
		}
		if rate.MaxDayReduction < 0 || rate.DayFloor < 0 {
			errs = append(errs, fmt.Errorf("urgency %q: day reduction and floor must not be negative", tier))
		}
	}

	for i, b := range t.AccessibilityBands {
		if i > 0 && b.Below <= t.AccessibilityBands[i-1].Below {
			errs = append(errs, fmt.Errorf("accessibility bands must be in ascending order"))
			break
		}
	}

	if t.Shape.SmallParcelSqM > t.Shape.LargeParcelSqM {
		errs = append(errs, fmt.Errorf("small parcel threshold exceeds large parcel threshold"))
	}
	if t.Timeline.MinDays <= 0 {
		errs = append(errs, fmt.Errorf("minimum days must be positive"))
	}

	for _, r := range t.GeoRisk {
		if err := r.Box.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("geographic risk rule %q: %w", r.Name, err))
			continue
		}
		if r.Box.MaxLat == r.Box.MinLat || r.Box.MaxLng == r.Box.MinLng {
			errs = append(errs, fmt.Errorf("geographic risk rule %q: box must have a positive area", r.Name))
		}
	}

	return utilerrors.NewAggregate(errs)
}

// Package looks up a package rate. Unknown packages resolve to the default
// package and report fallback=true.
func (t *Tables) Package(p PackageType) (rate PackageRate, resolved PackageType, fallback bool) {
	if rate, ok := t.Packages[p]; ok {
		return rate, p, false
	}
	return t.Packages[t.DefaultPackage], t.DefaultPackage, true
}

// UrgencyRate resolves unknown tiers to standard. An empty tier is standard
// and is not reported as a fallback.
func (t *Tables) UrgencyRate(u UrgencyTier) (rate UrgencyRate, resolved UrgencyTier, fallback bool) {
	if rate, ok := t.Urgency[u]; ok {
		return rate, u, false
	}
	return t.Urgency[UrgencyStandard], UrgencyStandard, u != ""
}

// PropertyModifier returns the zero modifier for a missing or unknown type.
func (t *Tables) PropertyModifier(p *PropertyType) (mod PropertyTypeModifier, known bool) {
	if p == nil {
		return PropertyTypeModifier{}, false
	}
	mod, known = t.PropertyTypes[*p]
	return mod, known
}

// AccessibilityPercent bands a 1-10 score. A missing score is neutral.
func (t *Tables) AccessibilityPercent(score *int) float64 {
	if score == nil {
		return 0
	}
	for _, b := range t.AccessibilityBands {
		if *score < b.Below {
			return b.Percent
		}
	}
	return 0
}

// ClassifyZone maps a distance to its zone. Band upper bounds are inclusive,
// so a distance on a boundary belongs to the closer zone. Distances past the
// last band get the last band's surcharge and OutOfArea.
func (t *Tables) ClassifyZone(distanceMeters float64) Zone {
	if distanceMeters < 0 {
		distanceMeters = 0
	}
	for _, z := range t.Zones {
		if distanceMeters <= z.MaxMeters {
			return Zone{Name: z.Name, SurchargePercent: z.SurchargePercent}
		}
	}
	last := t.Zones[len(t.Zones)-1]
	return Zone{Name: t.OutOfAreaZone, SurchargePercent: last.SurchargePercent, OutOfArea: true}
}

// PackageNames lists the configured packages, cheapest first.
func (t *Tables) PackageNames() []PackageType {
	names := make([]PackageType, 0, len(t.Packages))
	for name := range t.Packages {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := t.Packages[names[i]].PricePerAcre, t.Packages[names[j]].PricePerAcre
		if pi.Equal(pj) {
			return names[i] < names[j]
		}
		return pi.LessThan(pj)
	})
	return names
}
