package shared

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeqGuardSupersedesEarlierRequests(t *testing.T) {
	guard := NewSeqGuard()

	first := guard.Begin("A-101")
	second := guard.Begin("A-101")

	require.False(t, guard.Commit("A-101", first))
	require.True(t, guard.Commit("A-101", second))
}

func TestSeqGuardKeysAreIndependent(t *testing.T) {
	guard := NewSeqGuard()

	a := guard.Begin("A-101")
	b := guard.Begin("B-202")

	require.True(t, guard.Commit("A-101", a))
	require.True(t, guard.Commit("B-202", b))
}

func TestSeqGuardConcurrentBegins(t *testing.T) {
	guard := NewSeqGuard()

	var wg sync.WaitGroup
	const n = 50
	seqs := make([]uint64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seqs[i] = guard.Begin("A-101")
		}(i)
	}
	wg.Wait()

	committed := 0
	for _, seq := range seqs {
		if guard.Commit("A-101", seq) {
			committed++
		}
	}
	require.Equal(t, 1, committed)
}
