package dfxml_test

import (
	"bytes"
	"testing"

	"github.com/ostafen/partedit/pkg/dfxml"
	"github.com/stretchr/testify/require"
)

func TestWriteAndReadReport(t *testing.T) {
	var buf bytes.Buffer
	w := dfxml.NewDFXMLWriter(&buf)

	src := dfxml.Source{ImageFilename: "disk.img", SectorSize: 512, ImageSize: 1 << 20, PartitionTable: "dos"}
	require.NoError(t, w.WriteHeader(dfxml.DFXMLHeader{
		XmlOutput: dfxml.XmlOutputVersion,
		Metadata:  dfxml.DefaultMetadata,
		Creator:   dfxml.Creator{Package: "partedit", Version: "test", ExecutionEnvironment: dfxml.GetExecEnv()},
		Source:    src,
	}))

	obj := dfxml.FileObject{
		Filename:    "mbr-0x00000000.bak",
		FileSize:    512,
		ByteRuns:    dfxml.ByteRuns{Runs: []dfxml.ByteRun{{ImgOffset: 0, Length: 512}}},
		HashDigests: []dfxml.HashDigest{{Type: "sha256", Value: "abcd"}},
	}
	require.NoError(t, w.WriteFileObject(obj))
	require.NoError(t, w.Close())

	require.Contains(t, buf.String(), `<dfxml xmloutputversion="1.0">`)

	rep, err := dfxml.ReadReport(&buf)
	require.NoError(t, err)
	require.Equal(t, src, rep.Source)
	require.Len(t, rep.Objects, 1)

	got := rep.Objects[0]
	require.Equal(t, obj.Filename, got.Filename)
	require.Equal(t, obj.FileSize, got.FileSize)
	require.Equal(t, obj.ByteRuns, got.ByteRuns)
	digest, ok := got.Digest("sha256")
	require.True(t, ok)
	require.Equal(t, "abcd", digest)
	_, ok = got.Digest("md5")
	require.False(t, ok)
}

func TestReadReportRejectsGarbage(t *testing.T) {
	_, err := dfxml.ReadReport(bytes.NewBufferString("<dfxml><fileobject><filesize>x</filesize></fileobject></dfxml>"))
	require.Error(t, err)
}
