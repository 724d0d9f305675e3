package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessageID(t *testing.T) {
	ok := "0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20"
	got, err := parseMessageID(ok)
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), got[0])
	assert.Equal(t, byte(0x20), got[31])

	gotPrefixed, err := parseMessageID("0x" + ok)
	require.NoError(t, err)
	assert.Equal(t, got, gotPrefixed)

	_, err = parseMessageID("deadbeef")
	assert.Error(t, err, "too short must fail")
}

func TestDecimalStringTo128(t *testing.T) {
	out, err := decimalStringTo128("0")
	require.NoError(t, err)
	assert.Equal(t, [16]byte{}, out)

	out, err = decimalStringTo128("256")
	require.NoError(t, err)
	assert.Equal(t, byte(0), out[0])
	assert.Equal(t, byte(1), out[1])

	_, err = decimalStringTo128("-1")
	assert.Error(t, err, "negative values must be rejected")

	_, err = decimalStringTo128("not-a-number")
	assert.Error(t, err)

	_, err = decimalStringTo128("340282366920938463463374607431768211456") // 2^128
	assert.Error(t, err, "values over 16 bytes must overflow")
}

func TestLoadDeployArtifact_GeneratesAndReusesKeypair(t *testing.T) {
	envRoot := t.TempDir()
	bytecodePath := envRoot + "/program.so"
	require.NoError(t, os.WriteFile(bytecodePath, []byte{0xde, 0xad, 0xbe, 0xef}, 0o644))

	artifact1, key1, _, err := loadDeployArtifact(envRoot, "mailbox", bytecodePath, "")
	require.NoError(t, err)
	assert.Equal(t, "mailbox", artifact1.ProgramName)

	artifact2, key2, _, err := loadDeployArtifact(envRoot, "mailbox", bytecodePath, "")
	require.NoError(t, err)
	assert.Equal(t, key1.PublicKey(), key2.PublicKey(), "repeated invocation against the same environment must reuse the program keypair")
	assert.Equal(t, artifact1.Bytecode, artifact2.Bytecode)
}
