// Package estimation prices a land-clearing job from an already resolved
// property location and the customer's project parameters.
//
// The price is the package base price plus the adjustments produced by a list of
// Calculator objects run by the Engine. The Assembler composes the base price,
// the adjustments, the timeline and the confidence score into one Estimate.
// Everything in this package is synchronous and free of I/O.
package estimation
