package consensus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashLess(t *testing.T) {
	a := Hash256{0x01}
	b := Hash256{0x02}
	require.True(t, a.Less(b))
	require.False(t, b.Less(a))
	require.False(t, a.Less(a))
}

func TestBlake3ConcatMatchesManualConcat(t *testing.T) {
	p1 := []byte("abc")
	p2 := []byte("def")
	got := Blake3Concat(p1, p2)
	want := Blake3(append(append([]byte{}, p1...), p2...))
	require.Equal(t, want, got)
}

func TestSortedDedupedHashes(t *testing.T) {
	a := Hash256{0x03}
	b := Hash256{0x01}
	c := Hash256{0x02}
	out := SortedDedupedHashes([]Hash256{a, b, c, a, b})
	require.Equal(t, []Hash256{b, c, a}, out)
}

func TestHashString(t *testing.T) {
	h := Hash256{0xde, 0xad, 0xbe, 0xef}
	require.Contains(t, h.String(), "deadbeef")
	require.Len(t, h.String(), 64)
}
