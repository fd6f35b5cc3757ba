package partition

import (
	"fmt"
	"strings"
)

// TableKind identifies a partition table scheme.
type TableKind uint8

const (
	TableBSD TableKind = iota
	TableDOS
	TableGPT
	TableSGI
	TableSUN
)

var tableKindNames = [...]string{
	TableBSD: "bsd",
	TableDOS: "dos",
	TableGPT: "gpt",
	TableSGI: "sgi",
	TableSUN: "sun",
}

// TableKinds returns every supported table kind.
func TableKinds() []TableKind {
	return []TableKind{TableBSD, TableDOS, TableGPT, TableSGI, TableSUN}
}

func (k TableKind) String() string {
	if int(k) < len(tableKindNames) {
		return tableKindNames[k]
	}
	return fmt.Sprintf("TableKind(%d)", uint8(k))
}

// UsesGUIDs reports whether partition types of this table are UUIDs.
func (k TableKind) UsesGUIDs() bool {
	return k == TableGPT
}

// ParseTableKind accepts the lowercase names returned by String, plus "mbr"
// as a synonym for "dos".
func ParseTableKind(s string) (TableKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bsd":
		return TableBSD, nil
	case "dos", "mbr":
		return TableDOS, nil
	case "gpt":
		return TableGPT, nil
	case "sgi":
		return TableSGI, nil
	case "sun":
		return TableSUN, nil
	}
	return 0, fmt.Errorf("unsupported partition table kind: %q", s)
}
