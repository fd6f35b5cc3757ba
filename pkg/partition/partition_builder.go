package partition

// Builder assembles a Partition. Number, starting sector and size that are
// not given are left to the label engine.
type Builder struct {
	kind   *Kind
	name   *string
	uuid   *string
	attrs  []byte
	number *uint
	start  *uint64
	size   *uint64
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) Kind(k *Kind) *Builder {
	b.kind = k
	return b
}

func (b *Builder) Name(name string) *Builder {
	b.name = &name
	return b
}

func (b *Builder) UUID(u string) *Builder {
	b.uuid = &u
	return b
}

func (b *Builder) AttributeBits(attrs []byte) *Builder {
	b.attrs = attrs
	return b
}

func (b *Builder) PartitionNumber(n uint) *Builder {
	b.number = &n
	return b
}

func (b *Builder) StartingSector(lba uint64) *Builder {
	b.start = &lba
	return b
}

func (b *Builder) SizeInSectors(n uint64) *Builder {
	b.size = &n
	return b
}

// Build returns the partition, or the *ConfigError of the first field that
// could not be applied.
func (b *Builder) Build() (*Partition, error) {
	p := New()

	if b.kind != nil {
		p.SetKind(b.kind)
	}
	if b.name != nil {
		if err := p.SetName(*b.name); err != nil {
			p.Unref()
			return nil, err
		}
	}
	if b.uuid != nil {
		if err := p.SetUUID(*b.uuid); err != nil {
			p.Unref()
			return nil, err
		}
	}
	if b.attrs != nil {
		p.SetAttributeBits(b.attrs)
	}

	if b.number != nil {
		p.SetPartitionNumber(*b.number)
	} else {
		p.UseFirstFreePartitionNumber(true)
	}
	if b.start != nil {
		p.SetStartingSector(*b.start)
	} else {
		p.UseFirstFreeStartingSector(true)
	}
	if b.size != nil {
		p.SetSizeInSectors(*b.size)
	} else {
		p.UseLastFreeEndingSector(true)
	}
	return p, nil
}
