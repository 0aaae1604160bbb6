package encoding_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/misrecon/internal/encoding"
)

func TestStripBOM_UTF8(t *testing.T) {
	// UTF-8 BOM (0xEF 0xBB 0xBF) should be stripped.
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Store Code,Date\n")...)

	got, found, err := encoding.StripBOM(input)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Store Code,Date\n", string(got))
}

func TestStripBOM_UTF16LE(t *testing.T) {
	input, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte("Loja,Café\n"))
	require.NoError(t, err)

	got, found, err := encoding.StripBOM(input)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Loja,Café\n", string(got))
}

func TestStripBOM_None(t *testing.T) {
	got, found, err := encoding.StripBOM([]byte("plain"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "plain", string(got))
}

func TestSniff(t *testing.T) {
	assert.Equal(t, "UTF-8", encoding.Sniff([]byte("Descrição;Montante\n")))
	assert.NotEmpty(t, encoding.Sniff([]byte{'D', 'e', 's', 'c', 'r', 'i', 0xE7, 0xE3, 'o', '\n'}))
}

func TestSniff_WindowBoundary(t *testing.T) {
	pad := func(n int) []byte {
		return bytes.Repeat([]byte("a"), n)
	}

	type testCase struct {
		name string
		data []byte
	}

	tests := []testCase{
		{name: "Two-byte character split", data: append(pad(4095), "çã\n"...)},
		{name: "Three-byte character split", data: append(pad(4094), "€ total\n"...)},
		{name: "Four-byte character split", data: append(pad(4093), "😀\n"...)},
		{name: "Character ends on the window", data: append(pad(4094), "ç;x\n"...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, "UTF-8", encoding.Sniff(tt.data))
		})
	}
}
