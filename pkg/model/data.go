package model

import (
	"path"
	"path/filepath"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/oklog/ulid/v2"
)

// DataItem describes a local file to be uploaded, with its label.
//
// A DataItem is never mutated after being handed to an upload pipeline.
type DataItem struct {
	LocalPath  string              `json:"localPath" yaml:"localPath"`
	RemotePath string              `json:"remotePath,omitempty" yaml:"remotePath,omitempty"`
	Timestamp  *float64            `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Label      jsoniter.RawMessage `json:"label,omitempty" yaml:"-"`
}

// TargetPath is the remote path of this item: the explicit remote path if any, or the base name of the local file
func (d DataItem) TargetPath() string {
	if d.RemotePath != "" {
		return path.Clean(d.RemotePath)
	}
	return filepath.Base(d.LocalPath)
}

// HasTimestamp tells if this item carries a timestamp
func (d DataItem) HasTimestamp() bool {
	return d.Timestamp != nil
}

// SensorItem associates a data item to the sensor it was captured with
type SensorItem struct {
	Sensor string   `json:"sensorName" yaml:"sensorName"`
	Item   DataItem `json:"data" yaml:"data"`
}

// Frame is an ordered mapping of sensor names to data items, captured at the same time.
//
// ID is an optional, lexicographically time-sortable frame identifier.
// Within one segment, either every frame carries an ID or none does.
type Frame struct {
	ID    *ulid.ULID   `json:"frameId,omitempty" yaml:"frameId,omitempty"`
	Items []SensorItem `json:"items" yaml:"items"`
}

// NewFrame builds an empty frame, with an optional explicit identifier
func NewFrame(id ...ulid.ULID) *Frame {
	f := &Frame{}
	if len(id) > 0 {
		fid := id[0]
		f.ID = &fid
	}
	return f
}

// Add the data item for a sensor. Adding twice the same sensor replaces the item, keeping its original position.
func (f *Frame) Add(sensor string, item DataItem) *Frame {
	for i := range f.Items {
		if f.Items[i].Sensor == sensor {
			f.Items[i].Item = item
			return f
		}
	}
	f.Items = append(f.Items, SensorItem{Sensor: sensor, Item: item})
	return f
}

// Get the data item for a sensor
func (f Frame) Get(sensor string) (DataItem, bool) {
	for _, si := range f.Items {
		if si.Sensor == sensor {
			return si.Item, true
		}
	}
	return DataItem{}, false
}

// Sensors in this frame, in insertion order
func (f Frame) Sensors() []string {
	sensors := make([]string, 0, len(f.Items))
	for _, si := range f.Items {
		sensors = append(sensors, si.Sensor)
	}
	return sensors
}

// Timestamp of the frame, i.e. the timestamp of its first data item carrying one
func (f Frame) Timestamp() (float64, bool) {
	for _, si := range f.Items {
		if si.Item.Timestamp != nil {
			return *si.Item.Timestamp, true
		}
	}
	return 0, false
}

// RemoteData describes a data item as listed from the server
type RemoteData struct {
	RemotePath string              `json:"remotePath" yaml:"remotePath"`
	Timestamp  *float64            `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Checksum   string              `json:"checksum,omitempty" yaml:"checksum,omitempty"`
	FileSize   int64               `json:"fileSize,omitempty" yaml:"fileSize,omitempty"`
	URL        string              `json:"url,omitempty" yaml:"url,omitempty"`
	Label      jsoniter.RawMessage `json:"label,omitempty" yaml:"-"`
}

// RemoteFrameData describes the data of a single sensor within a frame, as listed from the server
type RemoteFrameData struct {
	RemoteData `yaml:",inline"`
	SensorName string `json:"sensorName" yaml:"sensorName"`
	FrameID    string `json:"frameId" yaml:"frameId"`
}

// RemoteFrame groups the data of several sensors sharing the same frame identifier
type RemoteFrame []RemoteFrameData

// FrameID of this frame
func (f RemoteFrame) FrameID() string {
	if len(f) == 0 {
		return ""
	}
	return f[0].FrameID
}

// SyncObject holds the metadata synchronized with the server once an object has been uploaded
type SyncObject struct {
	RemotePath string              `json:"remotePath"`
	ObjectKey  string              `json:"objectKey"`
	VersionID  string              `json:"versionId,omitempty"`
	Checksum   string              `json:"checksum"`
	FileSize   int64               `json:"fileSize"`
	Label      jsoniter.RawMessage `json:"label,omitempty"`
	SensorName string              `json:"sensorName,omitempty"`
	FrameID    string              `json:"frameId,omitempty"`
	Timestamp  *float64            `json:"timestamp,omitempty"`
}

// TimestampKey renders a timestamp as a stable key, used to match frames uploaded by an interrupted run
func TimestampKey(ts float64) string {
	return strconv.FormatFloat(ts, 'f', -1, 64)
}
