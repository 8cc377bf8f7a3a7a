package utilities

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIDGenerator_Snowflake(t *testing.T) {
	req := require.New(t)
	g := NewIDGenerator(7)

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := g.Next()
		_, err := strconv.ParseInt(id, 10, 64)
		req.NoError(err, "snowflake id should be numeric: %q", id)
		_, dup := seen[id]
		req.False(dup, "duplicate id %q", id)
		seen[id] = struct{}{}
	}
}

func TestIDGenerator_FallsBackToKSUID(t *testing.T) {
	g := NewIDGenerator(-1)

	id := g.Next()
	require.Len(t, id, 27)
	require.NotEqual(t, id, g.Next())
}

func TestIDGenerator_NilIsUsable(t *testing.T) {
	var g *IDGenerator
	require.NotEmpty(t, g.Next())
}
