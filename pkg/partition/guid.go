package partition

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// GUID is a GPT partition type in its canonical 36-character lowercase form.
type GUID string

const (
	GUIDEmpty             GUID = "00000000-0000-0000-0000-000000000000"
	GUIDMBRPartition      GUID = "024dee41-33e7-11d3-9d69-0008c781f39f"
	GUIDEFISystem         GUID = "c12a7328-f81f-11d2-ba4b-00a0c93ec93b"
	GUIDBIOSBoot          GUID = "21686148-6449-6e6f-744e-656564454649"
	GUIDMicrosoftReserved GUID = "e3c9e316-0b5c-4db8-817d-f92df00215ae"
	GUIDMicrosoftBasic    GUID = "ebd0a0a2-b9e5-4433-87c0-68b6b72699c7"
	GUIDWindowsRecovery   GUID = "de94bba4-06d1-4d40-a16a-bfd50179d6ac"
	GUIDLinuxFilesystem   GUID = "0fc63daf-8483-4772-8e79-3d69d8477de4"
	GUIDLinuxRAID         GUID = "a19d880f-05fc-4d3b-a006-743f0f84911e"
	GUIDLinuxSwap         GUID = "0657fd6d-a4ab-43c4-84e5-0933c84b4f4f"
	GUIDLinuxLVM          GUID = "e6d6d379-f507-44c2-a23c-238f2a3df928"
	GUIDLinuxHome         GUID = "933ac7e1-2eb4-4f13-b844-0e14e2aef915"
	GUIDLinuxRootX86_64   GUID = "4f68bce3-e8cd-4db1-96e7-fbcaf984b709"
	GUIDLinuxLUKS         GUID = "ca7d7ccb-63ed-4c53-861c-1742536059cc"
	GUIDFreeBSDUFS        GUID = "516e7cb6-6ecf-11d6-8ff8-00022d09712b"
	GUIDAppleHFSPlus      GUID = "48465300-0000-11aa-aa11-00306543ecac"
	GUIDAppleAPFS         GUID = "7c3457ef-0000-11aa-aa11-00306543ecac"
)

type guidEntry struct {
	guid GUID
	name string
}

// gptTypes lists the recognised GPT partition types in display order.
var gptTypes = []guidEntry{
	{"c12a7328-f81f-11d2-ba4b-00a0c93ec93b", "EFI System"},
	{"024dee41-33e7-11d3-9d69-0008c781f39f", "MBR partition scheme"},
	{"d3bfe2de-3daf-11df-ba40-e3a556d89593", "Intel Fast Flash"},
	{"21686148-6449-6e6f-744e-656564454649", "BIOS boot"},
	{"f4019732-066e-4e12-8273-346c5641494f", "Sony boot partition"},
	{"bfbfafe7-a34f-448a-9a5b-6213eb736c22", "Lenovo boot partition"},
	{"e3c9e316-0b5c-4db8-817d-f92df00215ae", "Microsoft reserved"},
	{"ebd0a0a2-b9e5-4433-87c0-68b6b72699c7", "Microsoft basic data"},
	{"5808c8aa-7e8f-42e0-85d2-e1e90434cfb3", "Microsoft LDM metadata"},
	{"af9b60a0-1431-4f62-bc68-3311714a69ad", "Microsoft LDM data"},
	{"de94bba4-06d1-4d40-a16a-bfd50179d6ac", "Windows recovery environment"},
	{"37affc90-ef7d-4e96-91c3-2d7ae055b174", "IBM General Parallel Fs"},
	{"e75caf8f-f680-4cee-afa3-b001e56efc2d", "Microsoft Storage Spaces"},
	{"75894c1e-3aeb-11d3-b7c1-7b03a0000000", "HP-UX data"},
	{"e2a1e728-32e3-11d6-a682-7b03a0000000", "HP-UX service"},
	{"0657fd6d-a4ab-43c4-84e5-0933c84b4f4f", "Linux swap"},
	{"0fc63daf-8483-4772-8e79-3d69d8477de4", "Linux filesystem"},
	{"3b8f8425-20e0-4f3b-907f-1a25a76f98e8", "Linux server data"},
	{"44479540-f297-41b2-9af7-d131d5f0458a", "Linux root (x86)"},
	{"69dad710-2ce4-4e3c-b16c-21a1d49abed3", "Linux root (ARM)"},
	{"4f68bce3-e8cd-4db1-96e7-fbcaf984b709", "Linux root (x86-64)"},
	{"b921b045-1df0-41c3-af44-4c6f280d3fae", "Linux root (ARM-64)"},
	{"993d8d3d-f80e-4225-855a-9daf8ed7ea97", "Linux root (IA-64)"},
	{"72ec70a6-cf74-40e6-bd49-4bda08e8f224", "Linux root (RISC-V-64)"},
	{"8484680c-9521-48c6-9c11-b0720656f69e", "Linux /usr (x86-64)"},
	{"8da63339-0007-60c0-c436-083ac8230908", "Linux reserved"},
	{"933ac7e1-2eb4-4f13-b844-0e14e2aef915", "Linux home"},
	{"a19d880f-05fc-4d3b-a006-743f0f84911e", "Linux RAID"},
	{"e6d6d379-f507-44c2-a23c-238f2a3df928", "Linux LVM"},
	{"773f91ef-66d4-49b5-bd83-d683bf40ad16", "Linux user's home"},
	{"ca7d7ccb-63ed-4c53-861c-1742536059cc", "Linux LUKS"},
	{"83bd6b9d-7f41-11dc-be0b-001560b84f0f", "FreeBSD boot"},
	{"516e7cb4-6ecf-11d6-8ff8-00022d09712b", "FreeBSD data"},
	{"516e7cb5-6ecf-11d6-8ff8-00022d09712b", "FreeBSD swap"},
	{"516e7cb6-6ecf-11d6-8ff8-00022d09712b", "FreeBSD UFS"},
	{"516e7cba-6ecf-11d6-8ff8-00022d09712b", "FreeBSD ZFS"},
	{"516e7cb8-6ecf-11d6-8ff8-00022d09712b", "FreeBSD Vinum"},
	{"48465300-0000-11aa-aa11-00306543ecac", "Apple HFS/HFS+"},
	{"7c3457ef-0000-11aa-aa11-00306543ecac", "Apple APFS"},
	{"55465300-0000-11aa-aa11-00306543ecac", "Apple UFS"},
	{"52414944-0000-11aa-aa11-00306543ecac", "Apple RAID"},
	{"52414944-5f4f-11aa-aa11-00306543ecac", "Apple RAID offline"},
	{"426f6f74-0000-11aa-aa11-00306543ecac", "Apple boot"},
	{"4c616265-6c00-11aa-aa11-00306543ecac", "Apple label"},
	{"5265636f-7665-11aa-aa11-00306543ecac", "Apple TV recovery"},
	{"53746f72-6167-11aa-aa11-00306543ecac", "Apple Core storage"},
	{"6a82cb45-1dd2-11b2-99a6-080020736631", "Solaris boot"},
	{"6a85cf4d-1dd2-11b2-99a6-080020736631", "Solaris root"},
	{"6a898cc3-1dd2-11b2-99a6-080020736631", "Solaris /usr & Apple ZFS"},
	{"6a87c46f-1dd2-11b2-99a6-080020736631", "Solaris swap"},
	{"6a8b642b-1dd2-11b2-99a6-080020736631", "Solaris backup"},
	{"6a8ef2e9-1dd2-11b2-99a6-080020736631", "Solaris /var"},
	{"6a90ba39-1dd2-11b2-99a6-080020736631", "Solaris /home"},
	{"6a9283a5-1dd2-11b2-99a6-080020736631", "Solaris alternate sector"},
	{"49f48d32-b10e-11dc-b99b-0019d1879648", "NetBSD swap"},
	{"49f48d5a-b10e-11dc-b99b-0019d1879648", "NetBSD FFS"},
	{"49f48d82-b10e-11dc-b99b-0019d1879648", "NetBSD LFS"},
	{"2db519c4-b10f-11dc-b99b-0019d1879648", "NetBSD concatenated"},
	{"2db519ec-b10f-11dc-b99b-0019d1879648", "NetBSD encrypted"},
	{"49f48daa-b10e-11dc-b99b-0019d1879648", "NetBSD RAID"},
	{"fe3a2a5d-4f32-41a7-b725-accc3285a309", "ChromeOS kernel"},
	{"3cb8e202-3b7e-47dd-8a3c-7ff2a13cfcec", "ChromeOS root fs"},
	{"2e0a753d-9e48-43b0-8337-b15192cb1b5e", "ChromeOS reserved"},
	{"824cc7a0-36a8-11e3-890a-952519ad3f61", "OpenBSD data"},
	{"aa31e02a-400f-11db-9590-000c2911d1b8", "VMware VMFS"},
	{"9d275380-40ad-11db-bf97-000c2911d1b8", "VMware Diagnostic"},
	{"9198effc-31c0-11db-8f78-000c2911d1b8", "VMware Reserved"},
	{"45b0969e-9b03-4f30-b4c6-5ec00ceff106", "Ceph Journal"},
	{"4fbd7e29-9d25-41b8-afd0-5ec00ceff05d", "Ceph Encrypted OSD"},
}

var gptTypeNames = func() map[GUID]string {
	m := make(map[GUID]string, len(gptTypes))
	for _, e := range gptTypes {
		m[e.guid] = e.name
	}
	return m
}()

// GUIDs returns every recognised GPT partition type in display order.
func GUIDs() []GUID {
	guids := make([]GUID, len(gptTypes))
	for i, e := range gptTypes {
		guids[i] = e.guid
	}
	return guids
}

func (g GUID) String() string { return string(g) }

// Name returns the human-readable GPT type name, or "" if g is not recognised.
func (g GUID) Name() string {
	return gptTypeNames[g]
}

// IsValid reports whether g is a recognised GPT partition type.
func (g GUID) IsValid() bool {
	_, ok := gptTypeNames[g]
	return ok
}

// UUID returns g as a uuid.UUID.
func (g GUID) UUID() uuid.UUID {
	return uuid.MustParse(string(g))
}

// ParseGUID parses a partition type UUID in any case. Surrounding whitespace
// and one level of matching quotes are accepted.
func ParseGUID(s string) (GUID, error) {
	fail := func(reason string) (GUID, error) {
		return "", &ParseError{What: "guid", Input: s, Reason: reason}
	}

	stripped, reason := unquote(s)
	if reason != "" {
		return fail(reason)
	}

	g, ok := canonicalUUID(stripped)
	if !ok {
		return fail("invalid UUID string")
	}
	if !g.IsValid() {
		return fail("unsupported partition type GUID")
	}
	return g, nil
}

// GUIDFromBytes parses the text form held in b.
func GUIDFromBytes(b []byte) (GUID, error) {
	if !utf8.Valid(b) {
		return "", &ConversionError{What: "guid", Reason: "bytes to UTF-8 string conversion error"}
	}
	g, err := ParseGUID(string(b))
	if err != nil {
		return "", &ConversionError{What: "guid", Reason: "parse failed", Err: err}
	}
	return g, nil
}

// canonicalUUID accepts only the 36-character hyphenated form.
func canonicalUUID(s string) (GUID, bool) {
	s = strings.TrimSpace(s)
	if len(s) != 36 {
		return "", false
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return GUID(u.String()), true
}
