package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagedb/common"
)

// residentFrames returns one resident frame per pin count, frame i holding page i.
func residentFrames(pinCounts ...int) []*Page {
	frames := make([]*Page, len(pinCounts))
	for i, c := range pinCounts {
		frames[i] = newFrame()
		frames[i].pageNum = i
		frames[i].pinCount = c
	}
	return frames
}

func TestFifoReplacer_Should_Cycle_Through_Frames_Skipping_Pinned_Ones(t *testing.T) {
	r := NewFifoReplacer(3)
	frames := residentFrames(0, 1, 0)

	var victims []int
	for i := 0; i < 4; i++ {
		v, err := r.ChooseVictim(frames)
		require.NoError(t, err)
		victims = append(victims, v)
	}

	assert.Equal(t, []int{0, 2, 0, 2}, victims)
}

func TestLruReplacer_Should_Choose_Least_Recently_Pinned_Frame(t *testing.T) {
	r := NewLruReplacer(3)
	frames := residentFrames(0, 0, 0)
	r.OnLoad(0)
	r.OnLoad(1)
	r.OnLoad(2)
	r.OnHit(0)

	v, err := r.ChooseVictim(frames)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	frames[1].pinCount = 1
	v, err = r.ChooseVictim(frames)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestClockReplacer_Should_Give_Referenced_Frames_A_Second_Chance(t *testing.T) {
	r := NewClockReplacer(3)
	frames := residentFrames(0, 0, 0)
	for i := range frames {
		r.OnLoad(i)
	}

	// every bit is set so the hand clears all of them and comes back to frame 0
	v, err := r.ChooseVictim(frames)
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	r.OnLoad(0)
	v, err = r.ChooseVictim(frames)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestClockReplacer_Hit_Should_Advance_The_Hand(t *testing.T) {
	r := NewClockReplacer(3)
	frames := residentFrames(0, 0, 0)

	r.OnHit(1)

	v, err := r.ChooseVictim(frames)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestLfuReplacer_Should_Choose_Least_Hit_Frame_Starting_After_Last_Victim(t *testing.T) {
	r := NewLfuReplacer(3)
	frames := residentFrames(0, 0, 0)
	for i := range frames {
		r.OnLoad(i)
	}
	r.OnHit(0)
	r.OnHit(0)
	r.OnHit(2)

	v, err := r.ChooseVictim(frames)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	r.OnLoad(1)
	r.OnHit(1)
	// frames 1 and 2 are tied, the search starts at 2
	v, err = r.ChooseVictim(frames)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestReplacers_Should_Return_No_Free_Frame_When_Everything_Is_Pinned(t *testing.T) {
	for _, s := range []Strategy{FIFO, LRU, Clock, LFU} {
		r, err := NewReplacer(s, 2)
		require.NoError(t, err)

		_, err = r.ChooseVictim(residentFrames(1, 2))
		assert.ErrorIs(t, err, common.ErrNoFreeFrame, s.String())
		assert.Equal(t, 2, r.GetSize())
	}
}

func TestParseStrategy(t *testing.T) {
	for _, s := range []Strategy{FIFO, LRU, Clock, LFU} {
		parsed, err := ParseStrategy(s.String())
		assert.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseStrategy("random")
	assert.ErrorIs(t, err, common.ErrUnknownStrategy)
}
