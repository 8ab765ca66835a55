package v1alpha1

import "strings"

// NormalizeToken folds enum-like form values ("Medium ", "EMERGENCY") to the
// lowercase names the pricing tables use.
func NormalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
