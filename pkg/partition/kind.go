package partition

import (
	"fmt"
	"sync/atomic"
)

// KindTag selects the variant held by a Kind.
type KindTag uint8

const (
	KindCoded KindTag = iota
	KindGUID
	KindUnknown
)

func (t KindTag) String() string {
	switch t {
	case KindCoded:
		return "coded"
	case KindGUID:
		return "guid"
	case KindUnknown:
		return "unknown"
	}
	return fmt.Sprintf("KindTag(%d)", uint8(t))
}

// Kind identifies what a partition is: a one-byte code, a GPT type GUID, or
// an unrecognised raw (code, string) pair. A Kind is shared by reference
// counting. Clone returns an independent copy.
type Kind struct {
	tag KindTag

	code Code
	guid GUID

	rawCode   uint32
	rawString string

	name string
	refs atomic.Int32
}

func newKind(tag KindTag) *Kind {
	k := &Kind{tag: tag}
	k.refs.Store(1)
	return k
}

// NewCodedKind returns a Kind holding an MBR type code, named after the
// MBR catalogue.
func NewCodedKind(c Code) *Kind {
	k := newKind(KindCoded)
	k.code = c
	k.name = c.Name()
	return k
}

// NewGUIDKind returns a Kind holding a GPT type GUID.
func NewGUIDKind(g GUID) *Kind {
	k := newKind(KindGUID)
	k.guid = g
	k.name = g.Name()
	return k
}

// NewUnknownKind returns a placeholder for an identifier no catalogue knows.
func NewUnknownKind(code uint32, s string) *Kind {
	k := newKind(KindUnknown)
	k.rawCode = code
	k.rawString = s
	return k
}

func (k *Kind) Tag() KindTag { return k.tag }

// Code returns the MBR type code if k is coded.
func (k *Kind) Code() (Code, bool) {
	if k.tag != KindCoded {
		return 0, false
	}
	return k.code, true
}

// GUID returns the GPT type GUID if k holds one.
func (k *Kind) GUID() (GUID, bool) {
	if k.tag != KindGUID {
		return "", false
	}
	return k.guid, true
}

// Unknown returns the raw identifier pair if k is the unknown fallback.
func (k *Kind) Unknown() (uint32, string, bool) {
	if k.tag != KindUnknown {
		return 0, "", false
	}
	return k.rawCode, k.rawString, true
}

func (k *Kind) IsUnknown() bool { return k.tag == KindUnknown }

// NumericCode returns the code carried by a coded or unknown Kind.
func (k *Kind) NumericCode() uint32 {
	switch k.tag {
	case KindCoded:
		return k.code.Uint32()
	case KindUnknown:
		return k.rawCode
	}
	return 0
}

// TypeString returns the string identifier carried by a GUID or unknown Kind.
func (k *Kind) TypeString() string {
	switch k.tag {
	case KindGUID:
		return string(k.guid)
	case KindUnknown:
		return k.rawString
	}
	return ""
}

// Name returns the display name. Unknown kinds have none unless one was set.
func (k *Kind) Name() string { return k.name }

func (k *Kind) SetName(name string) { k.name = name }

// String renders k in the form accepted back by ParseKind.
func (k *Kind) String() string {
	switch k.tag {
	case KindCoded:
		return k.code.String()
	case KindGUID:
		return string(k.guid)
	}
	if k.rawString != "" {
		return k.rawString
	}
	return fmt.Sprintf("0x%02x", k.rawCode)
}

// Equal compares the identifying payload of two kinds, ignoring names.
func (k *Kind) Equal(o *Kind) bool {
	if k == nil || o == nil {
		return k == o
	}
	if k.tag != o.tag {
		return false
	}
	switch k.tag {
	case KindCoded:
		return k.code == o.code
	case KindGUID:
		return k.guid == o.guid
	}
	return k.rawCode == o.rawCode && k.rawString == o.rawString
}

// Clone returns a copy with its own reference count.
func (k *Kind) Clone() *Kind {
	c := newKind(k.tag)
	c.code = k.code
	c.guid = k.guid
	c.rawCode = k.rawCode
	c.rawString = k.rawString
	c.name = k.name
	return c
}

// Ref adds a reference and returns k.
func (k *Kind) Ref() *Kind {
	k.refs.Add(1)
	return k
}

// Unref drops a reference. It reports whether this was the last one, in
// which case k must not be used again.
func (k *Kind) Unref() bool {
	n := k.refs.Add(-1)
	if n < 0 {
		panic("partition: Kind released more times than referenced")
	}
	return n == 0
}

func (k *Kind) RefCount() int32 { return k.refs.Load() }
