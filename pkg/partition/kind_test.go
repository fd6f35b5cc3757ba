package partition_test

import (
	"testing"

	"github.com/ostafen/partedit/pkg/partition"
	"github.com/stretchr/testify/require"
)

func TestKindBuilder(t *testing.T) {
	k, err := partition.NewKindBuilder().Code(partition.CodeLinux).Build()
	require.NoError(t, err)
	require.Equal(t, partition.KindCoded, k.Tag())
	require.Equal(t, "Linux", k.Name())

	k, err = partition.NewKindBuilder().GUID(partition.GUIDEFISystem).Name("ESP").Build()
	require.NoError(t, err)
	g, ok := k.GUID()
	require.True(t, ok)
	require.Equal(t, partition.GUIDEFISystem, g)
	require.Equal(t, "ESP", k.Name())

	k, err = partition.NewKindBuilder().Unknown(0x20, "").Name("mystery").Build()
	require.NoError(t, err)
	require.True(t, k.IsUnknown())
	require.Equal(t, "mystery", k.Name())
}

func TestKindBuilderRejectsInvalidCombinations(t *testing.T) {
	var cerr *partition.ConfigError

	_, err := partition.NewKindBuilder().Build()
	require.ErrorAs(t, err, &cerr)

	_, err = partition.NewKindBuilder().Code(partition.CodeLinux).GUID(partition.GUIDLinuxFilesystem).Build()
	require.ErrorAs(t, err, &cerr)
	require.Contains(t, cerr.Reason, "mutually exclusive")

	_, err = partition.NewKindBuilder().GUID(partition.GUIDLinuxFilesystem).Unknown(1, "x").Build()
	require.ErrorAs(t, err, &cerr)
}

func TestKindExactlyOneVariant(t *testing.T) {
	kinds := []*partition.Kind{
		partition.NewCodedKind(partition.CodeLinux),
		partition.NewGUIDKind(partition.GUIDLinuxSwap),
		partition.NewUnknownKind(7, "x"),
	}
	for _, k := range kinds {
		_, isCode := k.Code()
		_, isGUID := k.GUID()
		require.False(t, isCode && isGUID)
		require.Equal(t, k.IsUnknown(), !isCode && !isGUID)
	}
}

func TestKindCloneIsIndependent(t *testing.T) {
	k := partition.NewCodedKind(partition.CodeLinux)
	c := k.Clone()
	require.True(t, k.Equal(c))

	c.SetName("renamed")
	require.Equal(t, "Linux", k.Name())
	require.EqualValues(t, 1, c.RefCount())
}

func TestKindRefCount(t *testing.T) {
	k := partition.NewCodedKind(partition.CodeLinux)
	p := partition.New()

	p.SetKind(k)
	require.EqualValues(t, 2, k.RefCount())

	require.False(t, k.Unref())
	require.EqualValues(t, 1, k.RefCount())
	require.Same(t, k, p.Kind())

	p.UnsetKind()
	require.EqualValues(t, 0, k.RefCount())
	require.Panics(t, func() { k.Unref() })
}
