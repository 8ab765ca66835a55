// Package calculators provides concrete Calculator implementations for the estimation engine.
//
// Each calculator prices one kind of adjustment (travel distance, scheduling urgency,
// site accessibility, parcel shape) as a percentage of the package base price.
// Calculators read the shared estimation.QuoteContext and never depend on each other's output.
package calculators
