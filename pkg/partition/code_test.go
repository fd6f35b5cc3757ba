package partition_test

import (
	"testing"

	"github.com/ostafen/partedit/pkg/partition"
	"github.com/stretchr/testify/require"
)

func TestParseCode(t *testing.T) {
	cases := []struct {
		in     string
		want   partition.Code
		reason string
	}{
		{in: "0x83", want: partition.CodeLinux},
		{in: "  0x82  ", want: partition.CodeLinuxSwap},
		{in: `"0xef"`, want: partition.CodeEFISystem},
		{in: `'0x07'`, want: partition.CodeNTFS},
		{in: `" 0x05 "`, want: partition.CodeExtended},
		{in: `"0x83`, reason: "missing closing double-quote"},
		{in: `'0x83`, reason: "missing closing quote"},
		{in: "83", reason: "missing '0x' prefix"},
		{in: "0xzz", reason: "invalid hexadecimal string"},
		{in: "0x", reason: "invalid hexadecimal string"},
		{in: "0x100", reason: "value out of range for a one-byte code"},
		{in: "0x20", reason: "unsupported OS type"},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			c, err := partition.ParseCode(tc.in)
			if tc.reason == "" {
				require.NoError(t, err)
				require.Equal(t, tc.want, c)
				return
			}

			var perr *partition.ParseError
			require.ErrorAs(t, err, &perr)
			require.Equal(t, tc.in, perr.Input)
			require.Equal(t, tc.reason, perr.Reason)
		})
	}
}

func TestCodeFromBytes(t *testing.T) {
	c, err := partition.CodeFromBytes([]byte("0x8e"))
	require.NoError(t, err)
	require.Equal(t, partition.CodeLinuxLVM, c)

	_, err = partition.CodeFromBytes([]byte{0xff, 0xfe, 0x30})
	var cerr *partition.ConversionError
	require.ErrorAs(t, err, &cerr)

	_, err = partition.CodeFromBytes([]byte("0x20"))
	require.ErrorAs(t, err, &cerr)
	var perr *partition.ParseError
	require.ErrorAs(t, err, &perr)
}

func TestCodeStringRoundTrip(t *testing.T) {
	for _, c := range partition.Codes() {
		parsed, err := partition.ParseCode(c.String())
		require.NoError(t, err)
		require.Equal(t, c, parsed)
		require.NotEmpty(t, c.Name())
	}
}

func TestParseGUID(t *testing.T) {
	g, err := partition.ParseGUID("0FC63DAF-8483-4772-8E79-3D69D8477DE4")
	require.NoError(t, err)
	require.Equal(t, partition.GUIDLinuxFilesystem, g)
	require.Equal(t, "Linux filesystem", g.Name())

	for _, in := range []string{"not-a-uuid", `"c12a7328-f81f-11d2-ba4b-00a0c93ec93b`, "11111111-2222-3333-4444-555555555555"} {
		_, err := partition.ParseGUID(in)
		var perr *partition.ParseError
		require.ErrorAs(t, err, &perr, in)
		require.Equal(t, in, perr.Input)
	}

	_, err = partition.GUIDFromBytes([]byte{0xc3, 0x28})
	var cerr *partition.ConversionError
	require.ErrorAs(t, err, &cerr)
}
