package bufferpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	cases := map[string]Strategy{
		"FIFO": FIFO, "lru": LRU, "CLOCK": CLOCK, "LRU_K": LRUK, "lruk": LRUK,
	}
	for in, want := range cases {
		got, err := ParseStrategy(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseStrategy("bogus")
	assert.Error(t, err)
}

func makePool(n int) *BufferPool {
	return &BufferPool{frames: make([]Frame, n)}
}

func TestFIFOReplacerTiesBreakByLowerIndex(t *testing.T) {
	bp := makePool(3)
	bp.frames[0] = Frame{pageNum: 10, loadTick: 5}
	bp.frames[1] = Frame{pageNum: 11, loadTick: 5}
	bp.frames[2] = Frame{pageNum: 12, loadTick: 9}

	idx, ok := fifoReplacer{}.SelectVictim(bp)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestFIFOReplacerSkipsPinnedAndEmpty(t *testing.T) {
	bp := makePool(3)
	bp.frames[0] = Frame{pageNum: 10, loadTick: 1, fixCount: 1}
	bp.frames[1] = Frame{pageNum: NoPage}
	bp.frames[2] = Frame{pageNum: 12, loadTick: 3}

	idx, ok := fifoReplacer{}.SelectVictim(bp)
	require.True(t, ok)
	assert.Equal(t, 2, idx)
}

func TestFIFOReplacerNoneWhenAllPinned(t *testing.T) {
	bp := makePool(2)
	bp.frames[0] = Frame{pageNum: 1, fixCount: 1}
	bp.frames[1] = Frame{pageNum: 2, fixCount: 1}

	_, ok := fifoReplacer{}.SelectVictim(bp)
	assert.False(t, ok)
}

func TestLRUReplacerPicksSmallestAccessTick(t *testing.T) {
	bp := makePool(3)
	bp.frames[0] = Frame{pageNum: 1, accessTick: 50}
	bp.frames[1] = Frame{pageNum: 2, accessTick: 10}
	bp.frames[2] = Frame{pageNum: 3, accessTick: 30}

	idx, ok := lruReplacer{}.SelectVictim(bp)
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestLRUKReplacerDegeneratesToLRU(t *testing.T) {
	bp := makePool(2)
	bp.frames[0] = Frame{pageNum: 1, accessTick: 5}
	bp.frames[1] = Frame{pageNum: 2, accessTick: 2}

	idx, ok := lrukReplacer{}.SelectVictim(bp)
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestClockReplacerSweepAndSecondChance(t *testing.T) {
	bp := makePool(3)
	bp.frames[0] = Frame{pageNum: 1, ref: true}
	bp.frames[1] = Frame{pageNum: 2, ref: true}
	bp.frames[2] = Frame{pageNum: 3, ref: false}
	bp.clockHand = 0

	idx, ok := clockReplacer{}.SelectVictim(bp)
	require.True(t, ok)
	assert.Equal(t, 2, idx)
	assert.False(t, bp.frames[0].ref, "second chance must clear ref on the way past")
	assert.False(t, bp.frames[1].ref)
}

func TestClockReplacerNoneWhenAllPinned(t *testing.T) {
	bp := makePool(2)
	bp.frames[0] = Frame{pageNum: 1, fixCount: 1, ref: true}
	bp.frames[1] = Frame{pageNum: 2, fixCount: 1, ref: true}

	_, ok := clockReplacer{}.SelectVictim(bp)
	assert.False(t, ok)
}

func TestClockReplacerEmptyPoolReturnsNone(t *testing.T) {
	bp := makePool(0)
	_, ok := clockReplacer{}.SelectVictim(bp)
	assert.False(t, ok)
}
