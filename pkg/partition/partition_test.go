package partition_test

import (
	"testing"

	"github.com/ostafen/partedit/pkg/partition"
	"github.com/stretchr/testify/require"
)

func TestNewPartitionDefersToEngine(t *testing.T) {
	p := partition.New()
	require.True(t, p.UsesDefaultPartitionNumber())
	require.True(t, p.UsesDefaultStartingSector())
	require.True(t, p.UsesDefaultSize())

	_, ok := p.PartitionNumber()
	require.False(t, ok)
	_, ok = p.EndingSector()
	require.False(t, ok)
}

func TestSettersClearDefaultFlags(t *testing.T) {
	fields := []struct {
		name    string
		set     func(*partition.Partition)
		unset   func(*partition.Partition)
		usesDef func(*partition.Partition) bool
	}{
		{
			name:    "number",
			set:     func(p *partition.Partition) { p.SetPartitionNumber(3) },
			unset:   (*partition.Partition).UnsetPartitionNumber,
			usesDef: (*partition.Partition).UsesDefaultPartitionNumber,
		},
		{
			name:    "start",
			set:     func(p *partition.Partition) { p.SetStartingSector(2048) },
			unset:   (*partition.Partition).UnsetStartingSector,
			usesDef: (*partition.Partition).UsesDefaultStartingSector,
		},
		{
			name:    "size",
			set:     func(p *partition.Partition) { p.SetSizeInSectors(4096) },
			unset:   (*partition.Partition).UnsetSizeInSectors,
			usesDef: (*partition.Partition).UsesDefaultSize,
		},
	}

	for _, f := range fields {
		t.Run(f.name, func(t *testing.T) {
			p := partition.New()

			f.set(p)
			require.False(t, f.usesDef(p))
			for _, other := range fields {
				if other.name != f.name {
					require.True(t, other.usesDef(p), other.name)
				}
			}

			f.unset(p)
			require.True(t, f.usesDef(p))

			f.set(p)
			f.set(p)
			require.False(t, f.usesDef(p))
		})
	}
}

func TestUseFirstFreeDiscardsValue(t *testing.T) {
	p := partition.New()
	p.SetStartingSector(2048)
	p.UseFirstFreeStartingSector(true)

	_, ok := p.StartingSector()
	require.False(t, ok)
	require.True(t, p.UsesDefaultStartingSector())

	p.UseLastFreeEndingSector(false)
	require.False(t, p.UsesDefaultSize())
}

func TestEndingSector(t *testing.T) {
	p := partition.New()
	p.SetStartingSector(2048)
	p.SetSizeInSectors(2048)

	end, ok := p.EndingSector()
	require.True(t, ok)
	require.EqualValues(t, 4095, end)
}

func TestSetNameRejectsUnrepresentableText(t *testing.T) {
	p := partition.New()
	require.NoError(t, p.SetName("root"))

	var cerr *partition.ConfigError
	require.ErrorAs(t, p.SetName("a\x00b"), &cerr)
	require.ErrorAs(t, p.SetName(string([]byte{0xff})), &cerr)

	name, ok := p.Name()
	require.True(t, ok)
	require.Equal(t, "root", name)
}

func TestComparePartitionNumbers(t *testing.T) {
	a, b, unset := partition.New(), partition.New(), partition.New()
	a.SetPartitionNumber(1)
	b.SetPartitionNumber(2)

	require.Equal(t, -1, a.ComparePartitionNumbers(b))
	require.Equal(t, 1, b.ComparePartitionNumbers(a))
	require.Equal(t, 0, a.ComparePartitionNumbers(a))
	require.Equal(t, -1, b.ComparePartitionNumbers(unset))
	require.Equal(t, 0, unset.ComparePartitionNumbers(partition.New()))
}

func TestCompareStartingSectors(t *testing.T) {
	a, b, unset := partition.New(), partition.New(), partition.New()
	a.SetStartingSector(64)
	b.SetStartingSector(4096)

	require.Equal(t, -1, a.CompareStartingSectors(b))
	require.Equal(t, 1, b.CompareStartingSectors(a))
	require.Equal(t, -1, unset.CompareStartingSectors(a))
	require.Equal(t, 1, a.CompareStartingSectors(unset))
}

func TestBuilder(t *testing.T) {
	k := partition.NewCodedKind(partition.CodeLinux)

	p, err := partition.NewBuilder().
		Kind(k).
		Name("data").
		PartitionNumber(2).
		SizeInSectors(8192).
		Build()
	require.NoError(t, err)

	n, ok := p.PartitionNumber()
	require.True(t, ok)
	require.EqualValues(t, 2, n)
	require.False(t, p.UsesDefaultPartitionNumber())
	require.True(t, p.UsesDefaultStartingSector())
	require.False(t, p.UsesDefaultSize())
	require.Same(t, k, p.Kind())
	require.EqualValues(t, 2, k.RefCount())

	_, err = partition.NewBuilder().UUID("bad\x00").Build()
	var cerr *partition.ConfigError
	require.ErrorAs(t, err, &cerr)
}

func TestCloneSharesKind(t *testing.T) {
	k := partition.NewGUIDKind(partition.GUIDLinuxFilesystem)
	p := partition.New()
	p.SetKind(k)
	p.SetAttributeBits([]byte{1})

	c := p.Clone()
	require.Same(t, k, c.Kind())
	require.EqualValues(t, 3, k.RefCount())

	c.SetAttributeBits([]byte{2})
	require.Equal(t, []byte{1}, p.AttributeBits())

	require.True(t, c.Unref())
	require.EqualValues(t, 2, k.RefCount())
}

func TestBitFlagToggle(t *testing.T) {
	attrs := partition.GPTLegacyBIOSBootable.Toggle(nil)
	require.Len(t, attrs, 8)
	require.True(t, partition.GPTLegacyBIOSBootable.IsSet(attrs))

	f, err := partition.GPTGUIDSpecific(60)
	require.NoError(t, err)
	attrs = f.Toggle(attrs)
	require.True(t, f.IsSet(attrs))
	require.Equal(t, byte(0x10), attrs[7])

	attrs = partition.GPTLegacyBIOSBootable.Toggle(attrs)
	require.False(t, partition.GPTLegacyBIOSBootable.IsSet(attrs))

	_, err = partition.GPTGUIDSpecific(12)
	require.Error(t, err)

	require.Equal(t, []byte{0x80}, partition.DOSBoot.Toggle(nil))
}
