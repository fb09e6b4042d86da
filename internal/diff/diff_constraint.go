package diff

import (
	"fmt"

	"dbal/internal/core"
)

// comparePrimaryKeys records a changed primary key as both dropped and created.
func comparePrimaryKeys(oldT, newT *core.Table, td *TableDiff) {
	oldPK, hadPK := oldT.PrimaryKey()
	newPK, hasPK := newT.PrimaryKey()

	switch {
	case !hadPK && hasPK:
		td.SetCreatedPrimaryKey(newPK)
	case hadPK && !hasPK:
		td.SetDroppedPrimaryKey(oldPK)
	case hadPK && hasPK && !oldPK.Equal(newPK):
		td.SetDroppedPrimaryKey(oldPK)
		td.SetCreatedPrimaryKey(newPK)
	}
}

func formatForeignKey(fk *core.ForeignKey) string {
	s := fmt.Sprintf("%s %s -> %s%s", fk.Name, formatNameList(fk.Columns), fk.ForeignTable, formatNameList(fk.ForeignColumns))
	if fk.OnDelete != core.ActionDefault {
		s += " ON DELETE " + string(fk.OnDelete)
	}
	if fk.OnUpdate != core.ActionDefault {
		s += " ON UPDATE " + string(fk.OnUpdate)
	}
	return s
}

func formatPrimaryKey(pk *core.PrimaryKey) string {
	if pk.Name == "" {
		return formatNameList(pk.Columns)
	}
	return pk.Name + " " + formatNameList(pk.Columns)
}
