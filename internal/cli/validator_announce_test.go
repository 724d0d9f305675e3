package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValidatorAddress(t *testing.T) {
	addr20 := strings.Repeat("ab", 20)

	got, err := parseValidatorAddress(addr20)
	require.NoError(t, err)
	assert.Equal(t, byte(0xab), got[0])

	gotPrefixed, err := parseValidatorAddress("0x" + addr20)
	require.NoError(t, err)
	assert.Equal(t, got, gotPrefixed)

	_, err = parseValidatorAddress(strings.Repeat("ab", 19))
	assert.Error(t, err, "19 bytes is too short for a validator address")
}

func TestParseECDSASignature(t *testing.T) {
	sig65 := strings.Repeat("cd", 65)

	got, err := parseECDSASignature(sig65)
	require.NoError(t, err)
	assert.Equal(t, byte(0xcd), got[64])

	_, err = parseECDSASignature(strings.Repeat("cd", 64))
	assert.Error(t, err, "64 bytes is too short for an ECDSA signature")
}
