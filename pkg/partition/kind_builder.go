package partition

// KindBuilder assembles a Kind. Exactly one of Code, GUID or Unknown must
// be called before Build.
type KindBuilder struct {
	code    *Code
	guid    *GUID
	unknown *Kind
	name    *string
}

func NewKindBuilder() *KindBuilder { return &KindBuilder{} }

func (b *KindBuilder) Code(c Code) *KindBuilder {
	b.code = &c
	return b
}

func (b *KindBuilder) GUID(g GUID) *KindBuilder {
	b.guid = &g
	return b
}

func (b *KindBuilder) Unknown(code uint32, s string) *KindBuilder {
	b.unknown = NewUnknownKind(code, s)
	return b
}

// Name overrides the display name taken from the catalogue.
func (b *KindBuilder) Name(name string) *KindBuilder {
	b.name = &name
	return b
}

// Build returns a *ConfigError when none, or more than one, of the
// identifier setters was called.
func (b *KindBuilder) Build() (*Kind, error) {
	set := 0
	for _, ok := range []bool{b.code != nil, b.guid != nil, b.unknown != nil} {
		if ok {
			set++
		}
	}

	switch {
	case set == 0:
		return nil, &ConfigError{Field: "kind", Reason: "one of Code, GUID or Unknown must be set"}
	case set > 1:
		return nil, &ConfigError{Field: "kind", Reason: "Code, GUID and Unknown are mutually exclusive"}
	}

	var k *Kind
	switch {
	case b.code != nil:
		k = NewCodedKind(*b.code)
	case b.guid != nil:
		k = NewGUIDKind(*b.guid)
	default:
		k = b.unknown.Clone()
	}

	if b.name != nil {
		k.SetName(*b.name)
	}
	return k, nil
}
