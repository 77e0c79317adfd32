package core

import (
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneconcern/datahub/pkg/core/status"
	"github.com/oneconcern/datahub/pkg/errors"
	"github.com/oneconcern/datahub/pkg/model"
)

func TestNextID(t *testing.T) {
	var id ulid.ULID
	id[15] = 0xff
	id[14] = 0xff
	next := nextID(id)
	assert.Equal(t, byte(0), next[15])
	assert.Equal(t, byte(0), next[14])
	assert.Equal(t, byte(1), next[13])
	assert.Equal(t, 1, next.Compare(id))
	assert.Equal(t, byte(0xff), id[15], "the input is not modified")
}

func TestSynthesizeFrameIDs(t *testing.T) {
	ids := synthesizeFrameIDs(20, ulid.ULID{})
	require.Len(t, ids, 20)
	for i := 1; i < len(ids); i++ {
		assert.Equal(t, 1, ids[i].Compare(ids[i-1]))
	}

	var top ulid.ULID
	for i := range top {
		top[i] = 0xfe
	}
	after := synthesizeFrameIDs(3, top)
	assert.Equal(t, nextID(top), after[0])
	assert.Equal(t, 1, after[2].Compare(after[1]))
}

func TestCheckFrameIDs(t *testing.T) {
	item := model.DataItem{LocalPath: "a.bin"}
	withID := func() *model.Frame {
		return model.NewFrame(ulid.Make()).Add("lidar", item)
	}
	withoutID := func() *model.Frame {
		return model.NewFrame().Add("lidar", item)
	}

	explicit, err := checkFrameIDs([]*model.Frame{withID(), withID()})
	require.NoError(t, err)
	assert.True(t, explicit)

	explicit, err = checkFrameIDs([]*model.Frame{withoutID(), withoutID()})
	require.NoError(t, err)
	assert.False(t, explicit)

	explicit, err = checkFrameIDs(nil)
	require.NoError(t, err)
	assert.False(t, explicit)

	for _, frames := range [][]*model.Frame{
		{withID(), withoutID()},
		{withoutID(), withID()},
		{withoutID(), model.NewFrame()},
		{nil},
	} {
		_, err = checkFrameIDs(frames)
		assert.True(t, errors.Is(err, status.ErrFrame))
	}

	dup := withID()
	_, err = checkFrameIDs([]*model.Frame{dup, dup})
	assert.True(t, errors.Is(err, status.ErrFrame))
}
