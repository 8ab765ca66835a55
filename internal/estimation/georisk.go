package estimation

import (
	"fmt"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/landclear/quote-planner/internal/geo"
)

// pointTolerance is the half-size, in degrees, of the probe rectangle used to
// query the tree with a single point.
const pointTolerance = 1e-9

type geoRiskItem struct {
	index int
	rule  GeoRiskRule
	rect  rtreego.Rect
}

func (g *geoRiskItem) Bounds() rtreego.Rect {
	return g.rect
}

// GeoRiskIndex finds the geographic risk rules covering a point.
type GeoRiskIndex struct {
	tree *rtreego.Rtree
}

func NewGeoRiskIndex(rules []GeoRiskRule) (*GeoRiskIndex, error) {
	idx := &GeoRiskIndex{}
	if len(rules) == 0 {
		return idx, nil
	}

	idx.tree = rtreego.NewTree(2, 2, 8)
	for i, r := range rules {
		rect, err := rtreego.NewRect(
			rtreego.Point{r.Box.MinLat, r.Box.MinLng},
			[]float64{r.Box.MaxLat - r.Box.MinLat, r.Box.MaxLng - r.Box.MinLng},
		)
		if err != nil {
			return nil, fmt.Errorf("geographic risk rule %q: %w", r.Name, err)
		}
		idx.tree.Insert(&geoRiskItem{index: i, rule: r, rect: rect})
	}
	return idx, nil
}

// Match returns the rules containing c in table order.
func (idx *GeoRiskIndex) Match(c geo.Coordinates) []GeoRiskRule {
	if idx == nil || idx.tree == nil {
		return nil
	}

	hits := idx.tree.SearchIntersect(rtreego.Point{c.Lat, c.Lng}.ToRect(pointTolerance))
	items := make([]*geoRiskItem, 0, len(hits))
	for _, h := range hits {
		item := h.(*geoRiskItem)
		// the probe rectangle can graze a box the point is outside of
		if item.rule.Box.Contains(c) {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].index < items[j].index })

	rules := make([]GeoRiskRule, 0, len(items))
	for _, item := range items {
		rules = append(rules, item.rule)
	}
	return rules
}
