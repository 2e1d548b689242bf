package query

import (
	"fmt"
	"sort"
	"strings"
)

// FormatRecords pretty-prints Run's output the way the teacher's
// FormatSolutions does: each record as "name: value, name2: value2",
// sorted by attribute name within a record and the records sorted against
// each other, for stable, human-readable (and test-diffable) output.
func FormatRecords(records []Record) []string {
	out := make([]string, 0, len(records))
	for _, rec := range records {
		names := make([]string, 0, len(rec))
		for k := range rec {
			names = append(names, k)
		}
		sort.Strings(names)

		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s: %s", name, prettyValue(rec[name])))
		}
		out = append(out, strings.Join(parts, ", "))
	}
	sort.Strings(out)
	return out
}

func prettyValue(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case []interface{}:
		parts := make([]string, len(x))
		for i, it := range x {
			parts[i] = prettyValue(it)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]interface{}:
		names := make([]string, 0, len(x))
		for k := range x {
			names = append(names, k)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, k := range names {
			parts[i] = fmt.Sprintf("%s: %s", k, prettyValue(x[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("%v", x)
	}
}
