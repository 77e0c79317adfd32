package model

import (
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(f float64) *float64 {
	return &f
}

func TestDataItemTargetPath(t *testing.T) {
	assert.Equal(t, "a.png", DataItem{LocalPath: "/tmp/x/a.png"}.TargetPath())
	assert.Equal(t, "dir/b.png", DataItem{LocalPath: "/tmp/x/a.png", RemotePath: "dir//b.png"}.TargetPath())
}

func TestFrame(t *testing.T) {
	id := ulid.Make()
	f := NewFrame(id)
	require.NotNil(t, f.ID)
	assert.Equal(t, id, *f.ID)

	f.Add("lidar", DataItem{LocalPath: "l.bin"}).
		Add("camera", DataItem{LocalPath: "c.png", Timestamp: ts(12.5)}).
		Add("lidar", DataItem{LocalPath: "l2.bin"})

	assert.Equal(t, []string{"lidar", "camera"}, f.Sensors())
	item, ok := f.Get("lidar")
	require.True(t, ok)
	assert.Equal(t, "l2.bin", item.LocalPath)
	_, ok = f.Get("radar")
	assert.False(t, ok)

	stamp, ok := f.Timestamp()
	require.True(t, ok)
	assert.Equal(t, 12.5, stamp)

	_, ok = NewFrame().Timestamp()
	assert.False(t, ok)
	assert.Nil(t, NewFrame().ID)
}

func TestLeaseClone(t *testing.T) {
	l := Lease{
		Backend:      BackendS3,
		ObjectPrefix: "prefix/",
		Extra:        map[string]string{"project": "p1"},
		ExpireAt:     time.Unix(1000, 0),
	}
	c := l.Clone()
	c.Extra["project"] = "p2"
	assert.Equal(t, "p1", l.Extra["project"])
	assert.Equal(t, "prefix/a/b.png", l.ObjectKey("a/b.png"))

	assert.True(t, l.Expired(time.Unix(1000, 0)))
	assert.False(t, l.Expired(time.Unix(999, 0)))
}

func TestDiffAction(t *testing.T) {
	assert.Equal(t, "A", DiffAdd.String())
	assert.Equal(t, "?", DiffAction("other").String())
	assert.True(t, DiffModify.Changed())
	assert.False(t, DiffNone.Changed())
}

func TestRemoteFrameDataJSON(t *testing.T) {
	raw := `{"remotePath":"a.png","sensorName":"camera","frameId":"01ARZ3NDEKTSV4RRFFQ69G5FAV","timestamp":1.5}`
	var d RemoteFrameData
	require.NoError(t, jsoniter.UnmarshalFromString(raw, &d))
	assert.Equal(t, "a.png", d.RemotePath)
	assert.Equal(t, "camera", d.SensorName)
	require.NotNil(t, d.Timestamp)
	assert.Equal(t, "1.5", TimestampKey(*d.Timestamp))
	assert.Equal(t, "01ARZ3NDEKTSV4RRFFQ69G5FAV", RemoteFrame{d}.FrameID())
}

func TestDraftRef(t *testing.T) {
	assert.Equal(t, "#12", DraftRef(12))
	assert.True(t, DraftOpen.IsValid())
	assert.False(t, DraftStatus("x").IsValid())
}
