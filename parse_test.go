package sweep

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTargets(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	input := strings.Join([]string{
		"192.0.2.1,3,100",
		"",
		"192.0.2.2, 1, 1",
		"192.0.2.3,10,1000",
	}, "\n")

	targets, err := ParseTargets(strings.NewReader(input))
	require.NoError(err)
	require.Len(targets, 3)

	assert.Equal("192.0.2.1", targets[0].Addr.IP.String())
	assert.Equal(3, targets[0].Count)
	assert.Equal(100*time.Millisecond, targets[0].Interval)

	assert.Equal(1, targets[1].Count)
	assert.Equal(time.Millisecond, targets[1].Interval)

	assert.Equal(10, targets[2].Count)
	assert.Equal(time.Second, targets[2].Interval)
}

func TestParseTargetsSkipsInvalidRows(t *testing.T) {
	require := require.New(t)

	input := strings.Join([]string{
		"not-an-address,3,100",
		"192.0.2.1,0,100",     // count below range
		"192.0.2.2,11,100",    // count above range
		"192.0.2.3,3,0",       // interval below range
		"192.0.2.4,3,1001",    // interval above range
		"192.0.2.5,3",         // missing field
		"2001:db8::1,3,100",   // not IPv4
		"192.0.2.6,three,100", // not a number
		"192.0.2.7,3,100",
	}, "\n")

	targets, err := ParseTargets(strings.NewReader(input))
	require.NoError(err)
	require.Len(targets, 1)
	require.Equal("192.0.2.7", targets[0].Addr.IP.String())
}

func TestParseTargetsDuplicate(t *testing.T) {
	input := "192.0.2.1,3,100\n192.0.2.1,1,50\n"

	_, err := ParseTargets(strings.NewReader(input))
	assert.ErrorContains(t, err, "duplicate address")
}

func TestParseTargetsEmpty(t *testing.T) {
	_, err := ParseTargets(strings.NewReader(""))
	assert.ErrorIs(t, err, errNoTargets)

	_, err = ParseTargets(strings.NewReader("garbage\n"))
	assert.ErrorIs(t, err, errNoTargets)
}

func TestParseTargetsTooMany(t *testing.T) {
	var sb strings.Builder
	for i := 0; i <= MaxTargets; i++ {
		fmt.Fprintf(&sb, "10.3.%d.%d,1,1\n", i/250, i%250+1)
	}

	_, err := ParseTargets(strings.NewReader(sb.String()))
	assert.ErrorIs(t, err, errTooManyTargets)
}
