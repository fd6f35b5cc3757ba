package partition

import (
	"fmt"
	"strconv"
	"strings"
)

// TypeEntry is one recognised partition type of a catalogue.
type TypeEntry struct {
	Code Code
	GUID GUID
	Name string
}

// Catalogue maps the identifiers a table kind understands to canonical
// names. It is read-only once built.
type Catalogue struct {
	table     TableKind
	entries   []TypeEntry
	shortcuts []Shortcut

	byCode map[Code]int
	byGUID map[GUID]int
}

func newCodeCatalogue(table TableKind, codes []codeEntry, shortcuts []Shortcut) *Catalogue {
	c := &Catalogue{
		table:     table,
		shortcuts: shortcuts,
		byCode:    make(map[Code]int, len(codes)),
	}
	for _, e := range codes {
		c.byCode[e.code] = len(c.entries)
		c.entries = append(c.entries, TypeEntry{Code: e.code, Name: e.name})
	}
	return c
}

func newGUIDCatalogue(guids []guidEntry, shortcuts []Shortcut) *Catalogue {
	c := &Catalogue{
		table:     TableGPT,
		shortcuts: shortcuts,
		byGUID:    make(map[GUID]int, len(guids)),
	}
	for _, e := range guids {
		c.byGUID[e.guid] = len(c.entries)
		c.entries = append(c.entries, TypeEntry{GUID: e.guid, Name: e.name})
	}
	return c
}

var (
	dosShortcuts = []Shortcut{
		{Shortcut: "L", Alias: "linux", Data: "83"},
		{Shortcut: "S", Alias: "swap", Data: "82"},
		{Shortcut: "E", Alias: "extended", Data: "05", Deprecated: true},
		{Shortcut: "Ex", Alias: "extended", Data: "05"},
		{Shortcut: "X", Alias: "linuxex", Data: "85"},
		{Shortcut: "U", Alias: "uefi", Data: "ef"},
		{Shortcut: "R", Alias: "raid", Data: "fd"},
		{Shortcut: "V", Alias: "lvm", Data: "8e"},
	}

	gptShortcuts = []Shortcut{
		{Shortcut: "L", Alias: "linux", Data: string(GUIDLinuxFilesystem)},
		{Shortcut: "S", Alias: "swap", Data: string(GUIDLinuxSwap)},
		{Shortcut: "H", Alias: "home", Data: string(GUIDLinuxHome)},
		{Shortcut: "U", Alias: "uefi", Data: string(GUIDEFISystem)},
		{Shortcut: "R", Alias: "raid", Data: string(GUIDLinuxRAID)},
		{Shortcut: "V", Alias: "lvm", Data: string(GUIDLinuxLVM)},
	}

	sunCodes = []codeEntry{
		{0x00, "Unassigned"},
		{0x01, "Boot"},
		{0x02, "SunOS root"},
		{0x03, "SunOS swap"},
		{0x04, "SunOS usr"},
		{0x05, "Whole disk"},
		{0x06, "SunOS stand"},
		{0x07, "SunOS var"},
		{0x08, "SunOS home"},
		{0x82, "Linux swap"},
		{0x83, "Linux native"},
		{0x8e, "Linux LVM"},
		{0xfd, "Linux raid autodetect"},
	}

	sgiCodes = []codeEntry{
		{0x00, "SGI volhdr"},
		{0x01, "SGI trkrepl"},
		{0x02, "SGI secrepl"},
		{0x03, "SGI raw"},
		{0x04, "SGI bsd"},
		{0x05, "SGI sysv"},
		{0x06, "SGI volume"},
		{0x07, "SGI efs"},
		{0x08, "SGI lvol"},
		{0x09, "SGI rlvol"},
		{0x0a, "SGI xfs"},
		{0x0b, "SGI xfslog"},
		{0x0c, "SGI xlv"},
		{0x0d, "SGI xvm"},
		{0x82, "Linux swap"},
		{0x83, "Linux native"},
		{0x8e, "Linux LVM"},
		{0xfd, "Linux RAID"},
	}

	bsdCodes = []codeEntry{
		{0, "unused"},
		{1, "swap"},
		{2, "Version 6"},
		{3, "Version 7"},
		{4, "System V"},
		{5, "4.1BSD"},
		{6, "Eighth Edition"},
		{7, "4.2BSD"},
		{8, "MS-DOS"},
		{9, "4.4LFS"},
		{10, "unknown"},
		{11, "HPFS"},
		{12, "ISO-9660"},
		{13, "boot"},
		{14, "ADOS"},
		{15, "HFS"},
		{16, "AdvFS"},
	}
)

var catalogues = map[TableKind]*Catalogue{
	TableDOS: newCodeCatalogue(TableDOS, dosCodes, dosShortcuts),
	TableGPT: newGUIDCatalogue(gptTypes, gptShortcuts),
	TableSUN: newCodeCatalogue(TableSUN, sunCodes, nil),
	TableSGI: newCodeCatalogue(TableSGI, sgiCodes, nil),
	TableBSD: newCodeCatalogue(TableBSD, bsdCodes, nil),
}

// CatalogueFor returns the shared catalogue of a table kind.
func CatalogueFor(table TableKind) *Catalogue {
	c, ok := catalogues[table]
	if !ok {
		panic(fmt.Sprintf("partition: no catalogue for %s", table))
	}
	return c
}

func (c *Catalogue) Table() TableKind { return c.table }

// Entries returns the recognised types in display order.
func (c *Catalogue) Entries() []TypeEntry {
	return append([]TypeEntry(nil), c.entries...)
}

func (c *Catalogue) Shortcuts() []Shortcut {
	return append([]Shortcut(nil), c.shortcuts...)
}

func (c *Catalogue) Len() int { return len(c.entries) }

func (c *Catalogue) kindAt(i int) *Kind {
	e := c.entries[i]
	if c.table.UsesGUIDs() {
		return NewGUIDKind(e.GUID)
	}
	k := NewCodedKind(e.Code)
	k.SetName(e.Name)
	return k
}

// KindFromCode returns the coded Kind for code, or Unknown when this table
// does not recognise it.
func (c *Catalogue) KindFromCode(code uint32) *Kind {
	if !c.table.UsesGUIDs() && code <= 0xff {
		if i, ok := c.byCode[Code(code)]; ok {
			return c.kindAt(i)
		}
	}
	return NewUnknownKind(code, "")
}

// KindFromGUID returns the GUID Kind for s, or Unknown carrying s when s is
// not a UUID this table recognises.
func (c *Catalogue) KindFromGUID(s string) *Kind {
	if c.table.UsesGUIDs() {
		if g, ok := canonicalUUID(s); ok {
			if i, ok := c.byGUID[g]; ok {
				return c.kindAt(i)
			}
		}
	}
	return NewUnknownKind(0, s)
}

// ParseKind interprets s according to hints, trying in order: hex code or
// UUID, shortcut, alias, full name, 1-based sequence number. When nothing
// matches it returns an Unknown kind carrying s, unless hints contain
// InputIgnoreUnknown, in which case it fails with ErrUnknownKind.
func (c *Catalogue) ParseKind(s string, hints InputType) (*Kind, error) {
	in := strings.TrimSpace(s)
	if hints&^(InputDeprecated|InputIgnoreUnknown) == 0 {
		hints |= InputDefault
	}

	var unknownCode uint32
	if hints.Has(InputHexOrUUID) {
		if k, code, ok := c.parseData(in); ok {
			return k, nil
		} else if code != nil {
			unknownCode = *code
		}
	}

	if hints.Has(InputShortcut) || hints.Has(InputAlias) {
		for _, sc := range c.shortcuts {
			if sc.Deprecated && !hints.Has(InputDeprecated) {
				continue
			}
			if (hints.Has(InputShortcut) && in == sc.Shortcut) ||
				(hints.Has(InputAlias) && strings.EqualFold(in, sc.Alias)) {
				if k, _, ok := c.parseData(sc.Data); ok {
					return k, nil
				}
			}
		}
	}

	if hints.Has(InputName) {
		for i, e := range c.entries {
			if strings.EqualFold(in, e.Name) {
				return c.kindAt(i), nil
			}
		}
	}

	if hints.Has(InputSequenceNumber) {
		if n, err := strconv.Atoi(in); err == nil && n >= 1 && n <= len(c.entries) {
			return c.kindAt(n - 1), nil
		}
	}

	if hints.Has(InputIgnoreUnknown) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return NewUnknownKind(unknownCode, s), nil
}

// parseData interprets in as a hex code or a UUID, depending on the table.
// For a well-formed but unrecognised hex code it returns the code.
func (c *Catalogue) parseData(in string) (*Kind, *uint32, bool) {
	if c.table.UsesGUIDs() {
		g, ok := canonicalUUID(in)
		if !ok {
			return nil, nil, false
		}
		if i, ok := c.byGUID[g]; ok {
			return c.kindAt(i), nil, true
		}
		return nil, nil, false
	}

	h := strings.TrimPrefix(strings.ToLower(in), "0x")
	if h == "" || len(h) > 2 {
		return nil, nil, false
	}
	n, err := strconv.ParseUint(h, 16, 8)
	if err != nil {
		return nil, nil, false
	}
	code := uint32(n)
	if i, ok := c.byCode[Code(n)]; ok {
		return c.kindAt(i), nil, true
	}
	return nil, &code, false
}
