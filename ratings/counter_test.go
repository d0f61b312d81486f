package ratings

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCounterAdd(t *testing.T) {
	a := Counter{Value: 3, Count: 1}
	b := Counter{Value: -5, Count: 2}

	require.Equal(t, Counter{Value: -2, Count: 3}, a.Add(b))
	require.Equal(t, a.Add(b), b.Add(a))
	require.Equal(t, a, a.Add(Counter{}))
}
