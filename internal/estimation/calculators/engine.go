package calculators

import (
	"github.com/landclear/quote-planner/internal/estimation"
)

// NewEngine returns an engine with the travel, urgency, accessibility and
// property shape calculators registered, all reading the given tables.
func NewEngine(t *estimation.Tables) (*estimation.Engine, error) {
	risk, err := estimation.NewGeoRiskIndex(t.GeoRisk)
	if err != nil {
		return nil, err
	}

	engine := estimation.NewEngine()
	engine.Register(NewTravel(WithGeoRisk(risk)))
	engine.Register(NewUrgency(WithUrgencyTables(t)))
	engine.Register(NewAccessibility(WithAccessibilityTables(t)))
	engine.Register(NewPropertyShape(WithShapeTable(t.Shape)))
	return engine, nil
}

// NewAssembler wires NewEngine into an estimation.Assembler.
func NewAssembler(t *estimation.Tables) (*estimation.Assembler, error) {
	engine, err := NewEngine(t)
	if err != nil {
		return nil, err
	}
	return estimation.NewAssembler(t, engine), nil
}
