// Package cereal holds the Cap'n Proto bindings for the subset of the
// viewer's log schema that we emit. The full schema is much larger; only the
// event types written by the route converter are bound here, laid out the way
// capnpc-go lays out generated code so that the two can coexist if the full
// schema is ever compiled in.
package cereal

// SentinelType marks route and segment boundaries in the event stream.
type SentinelType uint16

const (
	SentinelType_startOfRoute   SentinelType = 0
	SentinelType_startOfSegment SentinelType = 1
	SentinelType_endOfSegment   SentinelType = 2
	SentinelType_endOfRoute     SentinelType = 3
)

// EncodeIndexType identifies the encoded video stream a frame index refers to.
type EncodeIndexType uint16

const (
	EncodeIndexType_bigBoxLossless EncodeIndexType = 0
	EncodeIndexType_fullHEVC       EncodeIndexType = 1
	EncodeIndexType_bigBoxHEVC     EncodeIndexType = 2
)

// AlertStatus is the viewer's native alert severity.
type AlertStatus uint16

const (
	AlertStatus_normal     AlertStatus = 0
	AlertStatus_userPrompt AlertStatus = 1
	AlertStatus_critical   AlertStatus = 2
)

// AlertSize controls how much of the viewer UI an alert occupies.
// AlertSize_none signals "no alert" (i.e. a clear).
type AlertSize uint16

const (
	AlertSize_none  AlertSize = 0
	AlertSize_small AlertSize = 1
	AlertSize_mid   AlertSize = 2
	AlertSize_full  AlertSize = 3
)
