// Package merge keeps a language string table in sync with its source
// template.
package merge

import (
	"github.com/minios-linux/transkit/strfile"
)

// Stats summarises what changed during a merge.
type Stats struct {
	// Kept counts surviving keys whose translation was preserved.
	Kept int
	// Added counts keys new in the template, added with empty values.
	Added int
	// Dropped counts keys no longer in the template.
	Dropped int
}

// Merge rebuilds table against template:
//   - keys in both keep the table's translated value,
//   - keys only in the template are added with an empty value,
//   - keys only in the table are dropped.
//
// The result mirrors the template's layout (key order, comments, blank
// lines), so a regenerated table diffs cleanly against its source.
func Merge(table, template *strfile.File) (*strfile.File, Stats) {
	var stats Stats

	existing := table.Values()
	result := strfile.FromTemplate(template)

	for _, key := range result.Keys() {
		v, ok := existing[key]
		if !ok {
			stats.Added++
			continue
		}
		if v != "" {
			result.Set(key, v)
			stats.Kept++
		} else {
			stats.Added++
		}
		delete(existing, key)
	}

	stats.Dropped = len(existing)

	return result, stats
}
