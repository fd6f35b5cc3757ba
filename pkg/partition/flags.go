package partition

import (
	"fmt"
	"strconv"
	"strings"
)

// BitFlag names one bit of a partition's attribute bits. The meaning of Bit
// depends on Table: for DOS it indexes the boot indicator byte, for GPT the
// 64-bit little-endian attribute field, for SGI the flag byte.
type BitFlag struct {
	Table TableKind
	Bit   uint8
	Name  string
}

var (
	DOSBoot = BitFlag{Table: TableDOS, Bit: 7, Name: "boot"}

	GPTRequiredPartition  = BitFlag{Table: TableGPT, Bit: 0, Name: "RequiredPartition"}
	GPTNoBlockIOProtocol  = BitFlag{Table: TableGPT, Bit: 1, Name: "NoBlockIOProtocol"}
	GPTLegacyBIOSBootable = BitFlag{Table: TableGPT, Bit: 2, Name: "LegacyBIOSBootable"}

	SGIBoot = BitFlag{Table: TableSGI, Bit: 0, Name: "boot"}
	SGISwap = BitFlag{Table: TableSGI, Bit: 1, Name: "swap"}
)

// GPTGUIDSpecific returns the flag for one of the type-specific GPT
// attribute bits, 48 through 63.
func GPTGUIDSpecific(bit uint8) (BitFlag, error) {
	if bit < 48 || bit > 63 {
		return BitFlag{}, &ConfigError{Field: "flag", Reason: fmt.Sprintf("GUID specific bit %d not in range [48, 63]", bit)}
	}
	return BitFlag{Table: TableGPT, Bit: bit, Name: fmt.Sprintf("GUID:%d", bit)}, nil
}

// AttributeWidth returns the size in bytes of the attribute field of a table.
func AttributeWidth(k TableKind) int {
	if k == TableGPT {
		return 8
	}
	return 1
}

func (f BitFlag) String() string { return f.Name }

// IsSet reports whether f is set in attrs.
func (f BitFlag) IsSet(attrs []byte) bool {
	i := int(f.Bit / 8)
	if i >= len(attrs) {
		return false
	}
	return attrs[i]&(1<<(f.Bit%8)) != 0
}

// Toggle returns a copy of attrs with f flipped, grown to the table's
// attribute width if needed.
func (f BitFlag) Toggle(attrs []byte) []byte {
	n := max(AttributeWidth(f.Table), int(f.Bit/8)+1, len(attrs))
	out := make([]byte, n)
	copy(out, attrs)
	out[f.Bit/8] ^= 1 << (f.Bit % 8)
	return out
}

// FlagsFor lists the flags a table kind knows, in bit order. GPT includes the
// GUID specific bits 48 to 63.
func FlagsFor(k TableKind) []BitFlag {
	switch k {
	case TableDOS:
		return []BitFlag{DOSBoot}
	case TableGPT:
		flags := []BitFlag{GPTRequiredPartition, GPTNoBlockIOProtocol, GPTLegacyBIOSBootable}
		for bit := uint8(48); bit <= 63; bit++ {
			f, _ := GPTGUIDSpecific(bit)
			flags = append(flags, f)
		}
		return flags
	case TableSGI:
		return []BitFlag{SGIBoot, SGISwap}
	}
	return nil
}

// ParseFlag looks up a flag of table kind k by name, ignoring case. GPT
// also accepts a bare bit number such as "60".
func ParseFlag(k TableKind, name string) (BitFlag, error) {
	for _, f := range FlagsFor(k) {
		if strings.EqualFold(f.Name, name) {
			return f, nil
		}
	}
	if k == TableGPT {
		if bit, err := strconv.ParseUint(name, 10, 8); err == nil {
			switch {
			case bit <= 2:
				return FlagsFor(k)[bit], nil
			default:
				return GPTGUIDSpecific(uint8(bit))
			}
		}
	}
	return BitFlag{}, &ConfigError{Field: "flag", Reason: fmt.Sprintf("unknown %s flag %q", k, name)}
}
