package model

import (
	jsoniter "github.com/json-iterator/go"
)

// Segment describes a named partition of a dataset
type Segment struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Sensor describes a named sensor of a fusion segment.
//
// Intrinsics and extrinsics are carried as opaque JSON.
type Sensor struct {
	Name        string              `json:"name" yaml:"name"`
	Type        string              `json:"type" yaml:"type"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	Extrinsics  jsoniter.RawMessage `json:"extrinsics,omitempty" yaml:"-"`
	Intrinsics  jsoniter.RawMessage `json:"intrinsics,omitempty" yaml:"-"`
}

// Sensors is an ordered set of sensors
type Sensors []Sensor

// Names of the sensors, in order
func (s Sensors) Names() []string {
	names := make([]string, 0, len(s))
	for _, sensor := range s {
		names = append(names, sensor.Name)
	}
	return names
}

// Has a sensor with that name
func (s Sensors) Has(name string) bool {
	for _, sensor := range s {
		if sensor.Name == name {
			return true
		}
	}
	return false
}

// MoveStrategy tells the server how to handle conflicting segments when moving or copying
type MoveStrategy string

const (
	// StrategyAbort fails the operation whenever the target exists
	StrategyAbort MoveStrategy = "abort"

	// StrategyOverride replaces the target
	StrategyOverride MoveStrategy = "override"

	// StrategySkip leaves the target unchanged
	StrategySkip MoveStrategy = "skip"
)

// IsValid checks the value of a move strategy
func (s MoveStrategy) IsValid() bool {
	switch s {
	case StrategyAbort, StrategyOverride, StrategySkip:
		return true
	default:
		return false
	}
}
