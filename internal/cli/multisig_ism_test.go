package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValidatorList(t *testing.T) {
	a := "0101010101010101010101010101010101010101" // 20 bytes of 0x01
	b := "0202020202020202020202020202020202020202" // 20 bytes of 0x02

	out, err := parseValidatorList(a + "," + "0x" + b + " ")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, byte(0x01), out[0][0])
	assert.Equal(t, byte(0x02), out[1][0])

	out, err = parseValidatorList("")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = parseValidatorList("not-hex")
	assert.Error(t, err)

	_, err = parseValidatorList("aabb")
	assert.Error(t, err, "too short must fail")
}
