package partition

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Code is the one-byte partition type used by MBR-family tables.
type Code uint8

const (
	CodeEmpty           Code = 0x00
	CodeFAT12           Code = 0x01
	CodeFAT16Small      Code = 0x04
	CodeExtended        Code = 0x05
	CodeFAT16           Code = 0x06
	CodeNTFS            Code = 0x07
	CodeW95FAT32        Code = 0x0b
	CodeW95FAT32LBA     Code = 0x0c
	CodeW95FAT16LBA     Code = 0x0e
	CodeW95ExtendedLBA  Code = 0x0f
	CodeHiddenNTFSWinRE Code = 0x27
	CodeLinuxSwap       Code = 0x82
	CodeLinux           Code = 0x83
	CodeLinuxExtended   Code = 0x85
	CodeLinuxLVM        Code = 0x8e
	CodeFreeBSD         Code = 0xa5
	CodeOpenBSD         Code = 0xa6
	CodeNetBSD          Code = 0xa9
	CodeHFS             Code = 0xaf
	CodeGPTProtective   Code = 0xee
	CodeEFISystem       Code = 0xef
	CodeLinuxRAID       Code = 0xfd
	CodeBBT             Code = 0xff
)

type codeEntry struct {
	code Code
	name string
}

// dosCodes lists the recognised MBR type codes in display order.
var dosCodes = []codeEntry{
	{0x00, "Empty"},
	{0x01, "FAT12"},
	{0x02, "XENIX root"},
	{0x03, "XENIX usr"},
	{0x04, "FAT16 <32M"},
	{0x05, "Extended"},
	{0x06, "FAT16"},
	{0x07, "HPFS/NTFS/exFAT"},
	{0x08, "AIX"},
	{0x09, "AIX bootable"},
	{0x0a, "OS/2 Boot Manager"},
	{0x0b, "W95 FAT32"},
	{0x0c, "W95 FAT32 (LBA)"},
	{0x0e, "W95 FAT16 (LBA)"},
	{0x0f, "W95 Ext'd (LBA)"},
	{0x10, "OPUS"},
	{0x11, "Hidden FAT12"},
	{0x12, "Compaq diagnostics"},
	{0x14, "Hidden FAT16 <32M"},
	{0x16, "Hidden FAT16"},
	{0x17, "Hidden HPFS/NTFS"},
	{0x18, "AST SmartSleep"},
	{0x1b, "Hidden W95 FAT32"},
	{0x1c, "Hidden W95 FAT32 (LBA)"},
	{0x1e, "Hidden W95 FAT16 (LBA)"},
	{0x24, "NEC DOS"},
	{0x27, "Hidden NTFS WinRE"},
	{0x39, "Plan 9"},
	{0x3c, "PartitionMagic recovery"},
	{0x40, "Venix 80286"},
	{0x41, "PPC PReP Boot"},
	{0x42, "SFS"},
	{0x4d, "QNX4.x"},
	{0x4e, "QNX4.x 2nd part"},
	{0x4f, "QNX4.x 3rd part"},
	{0x50, "OnTrack DM"},
	{0x51, "OnTrack DM6 Aux1"},
	{0x52, "CP/M"},
	{0x53, "OnTrack DM6 Aux3"},
	{0x54, "OnTrackDM6"},
	{0x55, "EZ-Drive"},
	{0x56, "Golden Bow"},
	{0x5c, "Priam Edisk"},
	{0x61, "SpeedStor"},
	{0x63, "GNU HURD or SysV"},
	{0x64, "Novell Netware 286"},
	{0x65, "Novell Netware 386"},
	{0x70, "DiskSecure Multi-Boot"},
	{0x75, "PC/IX"},
	{0x80, "Old Minix"},
	{0x81, "Minix / old Linux"},
	{0x82, "Linux swap / Solaris"},
	{0x83, "Linux"},
	{0x84, "OS/2 hidden or Intel hibernation"},
	{0x85, "Linux extended"},
	{0x86, "NTFS volume set"},
	{0x87, "NTFS volume set"},
	{0x88, "Linux plaintext"},
	{0x8e, "Linux LVM"},
	{0x93, "Amoeba"},
	{0x94, "Amoeba BBT"},
	{0x9f, "BSD/OS"},
	{0xa0, "IBM Thinkpad hibernation"},
	{0xa5, "FreeBSD"},
	{0xa6, "OpenBSD"},
	{0xa7, "NeXTSTEP"},
	{0xa8, "Darwin UFS"},
	{0xa9, "NetBSD"},
	{0xab, "Darwin boot"},
	{0xaf, "HFS / HFS+"},
	{0xb7, "BSDI fs"},
	{0xb8, "BSDI swap"},
	{0xbb, "Boot Wizard hidden"},
	{0xbc, "Acronis FAT32 LBA"},
	{0xbe, "Solaris boot"},
	{0xbf, "Solaris"},
	{0xc1, "DRDOS/sec (FAT-12)"},
	{0xc4, "DRDOS/sec (FAT-16 < 32M)"},
	{0xc6, "DRDOS/sec (FAT-16)"},
	{0xc7, "Syrinx"},
	{0xda, "Non-FS data"},
	{0xdb, "CP/M / CTOS / ..."},
	{0xde, "Dell Utility"},
	{0xdf, "BootIt"},
	{0xe1, "DOS access"},
	{0xe3, "DOS R/O"},
	{0xe4, "SpeedStor"},
	{0xea, "Linux extended boot"},
	{0xeb, "BeOS fs"},
	{0xee, "GPT"},
	{0xef, "EFI (FAT-12/16/32)"},
	{0xf0, "Linux/PA-RISC boot"},
	{0xf1, "SpeedStor"},
	{0xf2, "DOS secondary"},
	{0xf4, "SpeedStor"},
	{0xf8, "EBBR protective"},
	{0xfb, "VMware VMFS"},
	{0xfc, "VMware VMKCORE"},
	{0xfd, "Linux raid autodetect"},
	{0xfe, "LANstep"},
	{0xff, "BBT"},
}

var dosCodeNames = func() map[Code]string {
	m := make(map[Code]string, len(dosCodes))
	for _, e := range dosCodes {
		m[e.code] = e.name
	}
	return m
}()

// Codes returns every recognised MBR type code in display order.
func Codes() []Code {
	codes := make([]Code, len(dosCodes))
	for i, e := range dosCodes {
		codes[i] = e.code
	}
	return codes
}

// String returns the canonical text form, e.g. "0x83".
func (c Code) String() string {
	return fmt.Sprintf("0x%02x", uint8(c))
}

// Name returns the human-readable MBR type name, or "" if c is not recognised.
func (c Code) Name() string {
	return dosCodeNames[c]
}

// IsValid reports whether c is a recognised MBR type code.
func (c Code) IsValid() bool {
	_, ok := dosCodeNames[c]
	return ok
}

func (c Code) Uint32() uint32 { return uint32(c) }

// IsContainer reports whether c identifies an extended partition.
func (c Code) IsContainer() bool {
	return c == CodeExtended || c == CodeW95ExtendedLBA || c == CodeLinuxExtended
}

// ParseCode parses the "0x83" text form. Surrounding whitespace and one
// level of matching single or double quotes are accepted.
func ParseCode(s string) (Code, error) {
	fail := func(reason string) (Code, error) {
		return 0, &ParseError{What: "code", Input: s, Reason: reason}
	}

	stripped, reason := unquote(s)
	if reason != "" {
		return fail(reason)
	}

	h, ok := strings.CutPrefix(strings.TrimSpace(stripped), "0x")
	if !ok {
		return fail("missing '0x' prefix")
	}

	n, err := strconv.ParseUint(h, 16, 8)
	if err != nil {
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return fail("value out of range for a one-byte code")
		}
		return fail("invalid hexadecimal string")
	}

	c := Code(n)
	if !c.IsValid() {
		return fail("unsupported OS type")
	}
	return c, nil
}

// CodeFromBytes parses the text form held in b.
func CodeFromBytes(b []byte) (Code, error) {
	if !utf8.Valid(b) {
		return 0, &ConversionError{What: "code", Reason: "bytes to UTF-8 string conversion error"}
	}
	c, err := ParseCode(string(b))
	if err != nil {
		return 0, &ConversionError{What: "code", Reason: "parse failed", Err: err}
	}
	return c, nil
}

// unquote trims s and strips one pair of enclosing quotes. It returns a
// non-empty reason when a quote is left unterminated.
func unquote(s string) (string, string) {
	trimmed := strings.TrimSpace(s)
	for _, q := range []string{`"`, `'`} {
		if !strings.HasPrefix(trimmed, q) {
			continue
		}
		if len(trimmed) < 2 || !strings.HasSuffix(trimmed, q) {
			if q == `"` {
				return "", "missing closing double-quote"
			}
			return "", "missing closing quote"
		}
		return trimmed[1 : len(trimmed)-1], ""
	}
	return trimmed, ""
}
