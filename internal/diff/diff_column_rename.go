package diff

import (
	"dbal/internal/core"
)

// detectColumnRenames reclassifies a created and a dropped column that are
// identical except for their name as one altered column. Created columns are
// the outer loop and dropped columns the inner loop, both in table order; the
// first matching pair wins and each column matches at most once. When several
// dropped columns are structurally identical the pairing follows column order
// and may not reflect the intended rename.
func (td *TableDiff) detectColumnRenames() {
	if len(td.DroppedColumns) == 0 || len(td.CreatedColumns) == 0 {
		return
	}

	usedDropped := make(map[int]struct{}, len(td.DroppedColumns))
	renamed := make(map[*core.Column]struct{})

	for _, created := range td.CreatedColumns {
		for j, dropped := range td.DroppedColumns {
			if _, ok := usedDropped[j]; ok {
				continue
			}
			cd := CompareColumns(dropped, created)
			if !cd.HasNameDifferenceOnly() {
				continue
			}
			usedDropped[j] = struct{}{}
			renamed[created] = struct{}{}
			renamed[dropped] = struct{}{}
			td.AlteredColumns = append(td.AlteredColumns, cd)
			break
		}
	}

	if len(renamed) == 0 {
		return
	}
	td.CreatedColumns = withoutColumns(td.CreatedColumns, renamed)
	td.DroppedColumns = withoutColumns(td.DroppedColumns, renamed)
}

func withoutColumns(cols []*core.Column, remove map[*core.Column]struct{}) []*core.Column {
	var kept []*core.Column
	for _, c := range cols {
		if _, ok := remove[c]; ok {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}
