package partition

import "strings"

// InputType is a set of hints controlling how ParseKind interprets text.
type InputType uint16

const (
	// InputHexOrUUID accepts a hex code on MBR-family tables, or a UUID on GPT.
	InputHexOrUUID InputType = 1 << iota
	// InputShortcut accepts one-letter mnemonics such as "L".
	InputShortcut
	// InputAlias accepts lowercase aliases such as "linux".
	InputAlias
	// InputName accepts full type names such as "Linux swap".
	InputName
	// InputSequenceNumber accepts the 1-based position in the catalogue.
	InputSequenceNumber
	// InputDeprecated also matches shortcuts and aliases marked deprecated.
	InputDeprecated
	// InputIgnoreUnknown makes ParseKind fail instead of returning Unknown.
	InputIgnoreUnknown
)

// InputDefault is the hint set used when the caller has no preference.
const InputDefault = InputHexOrUUID | InputShortcut | InputAlias | InputName | InputSequenceNumber

func (t InputType) Has(flag InputType) bool { return t&flag != 0 }

func (t InputType) String() string {
	names := []struct {
		f InputType
		s string
	}{
		{InputHexOrUUID, "hex-or-uuid"},
		{InputShortcut, "shortcut"},
		{InputAlias, "alias"},
		{InputName, "name"},
		{InputSequenceNumber, "seqnum"},
		{InputDeprecated, "deprecated"},
		{InputIgnoreUnknown, "ignore-unknown"},
	}

	var parts []string
	for _, n := range names {
		if t.Has(n.f) {
			parts = append(parts, n.s)
		}
	}
	return strings.Join(parts, "|")
}

// Shortcut binds a one-letter mnemonic and an alias to a type identifier.
// Data holds the code in hex without prefix, or the GUID.
type Shortcut struct {
	Shortcut   string
	Alias      string
	Data       string
	Deprecated bool
}
