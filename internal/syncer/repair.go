package syncer

import "strings"

// defectPhrases are description fragments the upstream copy pipeline is
// known to have doubled when regenerating product pages.
var defectPhrases = []string{
	"Ships from",
	"Free shipping",
	"Delivered from",
}

// RepairDescription collapses immediate repetitions of the known defect
// phrases: "Ships from Ships from Germany" becomes "Ships from Germany".
// The transform is pure and idempotent; text without the defect comes back
// unchanged.
func RepairDescription(s string) string {
	for _, phrase := range defectPhrases {
		doubled := phrase + " " + phrase
		for strings.Contains(s, doubled) {
			s = strings.ReplaceAll(s, doubled, phrase)
		}
	}
	return s
}

// NeedsRepair reports whether the description carries the duplication
// defect.
func NeedsRepair(s string) bool {
	return RepairDescription(s) != s
}
