package estimation

import (
	"sort"
	"strings"

	"github.com/thoas/go-funk"
)

// NormalizeTags gives free-form tags set semantics: whitespace is collapsed,
// case is folded, empty tags and duplicates are dropped and the result is
// sorted.
func NormalizeTags(tags []string) []string {
	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.Join(strings.Fields(t), " "))
		if t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}

	uniq := funk.UniqString(cleaned)
	sort.Strings(uniq)
	return uniq
}
