package estimation

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Calculator produces one adjustment of the base price. Implementations must
// be pure and return a zero adjustment when their part of the context is
// absent.
type Calculator interface {
	// Name returns the human-readable name of this calculator, used in the breakdown.
	Name() string
	Calculate(base decimal.Decimal, qc QuoteContext) (AdjustmentResult, error)
}

// Engine runs Calculator objects and collects their results in registration order.
type Engine struct {
	calculators []Calculator
}

// NewEngine creates a new Engine with no calculators registered.
func NewEngine() *Engine {
	return &Engine{
		calculators: make([]Calculator, 0),
	}
}

// Register adds a Calculator to participate in the estimation.
// Register panics if a calculator with the same Name() is already registered,
// as two results with one name could not be told apart in the breakdown.
func (e *Engine) Register(c Calculator) {
	for _, existing := range e.calculators {
		if existing.Name() == c.Name() {
			panic(fmt.Sprintf("estimation: calculator %q already registered", c.Name()))
		}
	}
	e.calculators = append(e.calculators, c)
}

// Calculators returns the registered calculators in order.
func (e *Engine) Calculators() []Calculator {
	out := make([]Calculator, len(e.calculators))
	copy(out, e.calculators)
	return out
}

// Run executes every calculator against the same base price and context.
// The first calculator error aborts the run.
func (e *Engine) Run(base decimal.Decimal, qc QuoteContext) ([]AdjustmentResult, error) {
	results := make([]AdjustmentResult, 0, len(e.calculators))
	for _, calc := range e.calculators {
		res, err := calc.Calculate(base, qc)
		if err != nil {
			return nil, fmt.Errorf("calculator %q: %w", calc.Name(), err)
		}
		if res.Name == "" {
			res.Name = calc.Name()
		}
		results = append(results, res)
	}
	return results, nil
}
