package cereal

import (
	"capnproto.org/go/capnp/v3"
)

// Event is the root of every record in a segment log. Exactly one union
// variant is set per event, tagged by Which. logMonoTime occupies data word 0,
// the union discriminant is the uint16 at byte 8, and the valid flag is bit 80.
type Event struct{ capnp.Struct }

type Event_Which uint16

const (
	Event_Which_initData      Event_Which = 0
	Event_Which_carParams     Event_Which = 1
	Event_Which_sentinel      Event_Which = 2
	Event_Which_can           Event_Which = 3
	Event_Which_roadEncodeIdx Event_Which = 4
	Event_Which_thumbnail     Event_Which = 5
	Event_Which_controlsState Event_Which = 6
)

var eventSize = capnp.ObjectSize{DataSize: 16, PointerCount: 1}

func NewRootEvent(s *capnp.Segment) (Event, error) {
	st, err := capnp.NewRootStruct(s, eventSize)
	return Event{st}, err
}

func ReadRootEvent(msg *capnp.Message) (Event, error) {
	root, err := msg.Root()
	return Event{root.Struct()}, err
}

func (s Event) Which() Event_Which {
	return Event_Which(s.Struct.Uint16(8))
}

func (s Event) LogMonoTime() uint64 {
	return s.Struct.Uint64(0)
}

func (s Event) SetLogMonoTime(v uint64) {
	s.Struct.SetUint64(0, v)
}

func (s Event) Valid() bool {
	return s.Struct.Bit(80)
}

func (s Event) SetValid(v bool) {
	s.Struct.SetBit(80, v)
}

func (s Event) NewInitData() (InitData, error) {
	s.Struct.SetUint16(8, uint16(Event_Which_initData))
	ss, err := capnp.NewStruct(s.Struct.Segment(), capnp.ObjectSize{})
	if err != nil {
		return InitData{}, err
	}
	err = s.Struct.SetPtr(0, ss.ToPtr())
	return InitData{ss}, err
}

func (s Event) InitData() (InitData, error) {
	p, err := s.Struct.Ptr(0)
	return InitData{p.Struct()}, err
}

func (s Event) NewCarParams() (CarParams, error) {
	s.Struct.SetUint16(8, uint16(Event_Which_carParams))
	ss, err := capnp.NewStruct(s.Struct.Segment(), capnp.ObjectSize{PointerCount: 2})
	if err != nil {
		return CarParams{}, err
	}
	err = s.Struct.SetPtr(0, ss.ToPtr())
	return CarParams{ss}, err
}

func (s Event) CarParams() (CarParams, error) {
	p, err := s.Struct.Ptr(0)
	return CarParams{p.Struct()}, err
}

func (s Event) NewSentinel() (Sentinel, error) {
	s.Struct.SetUint16(8, uint16(Event_Which_sentinel))
	ss, err := capnp.NewStruct(s.Struct.Segment(), capnp.ObjectSize{DataSize: 8})
	if err != nil {
		return Sentinel{}, err
	}
	err = s.Struct.SetPtr(0, ss.ToPtr())
	return Sentinel{ss}, err
}

func (s Event) Sentinel() (Sentinel, error) {
	p, err := s.Struct.Ptr(0)
	return Sentinel{p.Struct()}, err
}

func (s Event) NewCan(n int32) (CanData_List, error) {
	s.Struct.SetUint16(8, uint16(Event_Which_can))
	l, err := NewCanData_List(s.Struct.Segment(), n)
	if err != nil {
		return CanData_List{}, err
	}
	err = s.Struct.SetPtr(0, l.List.ToPtr())
	return l, err
}

func (s Event) Can() (CanData_List, error) {
	p, err := s.Struct.Ptr(0)
	return CanData_List{p.List()}, err
}

func (s Event) NewRoadEncodeIdx() (EncodeIndex, error) {
	s.Struct.SetUint16(8, uint16(Event_Which_roadEncodeIdx))
	ss, err := capnp.NewStruct(s.Struct.Segment(), capnp.ObjectSize{DataSize: 40})
	if err != nil {
		return EncodeIndex{}, err
	}
	err = s.Struct.SetPtr(0, ss.ToPtr())
	return EncodeIndex{ss}, err
}

func (s Event) RoadEncodeIdx() (EncodeIndex, error) {
	p, err := s.Struct.Ptr(0)
	return EncodeIndex{p.Struct()}, err
}

func (s Event) NewThumbnail() (Thumbnail, error) {
	s.Struct.SetUint16(8, uint16(Event_Which_thumbnail))
	ss, err := capnp.NewStruct(s.Struct.Segment(), capnp.ObjectSize{DataSize: 16, PointerCount: 1})
	if err != nil {
		return Thumbnail{}, err
	}
	err = s.Struct.SetPtr(0, ss.ToPtr())
	return Thumbnail{ss}, err
}

func (s Event) Thumbnail() (Thumbnail, error) {
	p, err := s.Struct.Ptr(0)
	return Thumbnail{p.Struct()}, err
}

func (s Event) NewControlsState() (ControlsState, error) {
	s.Struct.SetUint16(8, uint16(Event_Which_controlsState))
	ss, err := capnp.NewStruct(s.Struct.Segment(), capnp.ObjectSize{DataSize: 8, PointerCount: 2})
	if err != nil {
		return ControlsState{}, err
	}
	err = s.Struct.SetPtr(0, ss.ToPtr())
	return ControlsState{ss}, err
}

func (s Event) ControlsState() (ControlsState, error) {
	p, err := s.Struct.Ptr(0)
	return ControlsState{p.Struct()}, err
}

// InitData is an empty marker written as the first event of every segment.
type InitData struct{ capnp.Struct }

// CarParams carries the car identification the viewer uses to pick a DBC.
type CarParams struct{ capnp.Struct }

func (s CarParams) CarName() (string, error) {
	p, err := s.Struct.Ptr(0)
	return p.Text(), err
}

func (s CarParams) SetCarName(v string) error {
	return s.Struct.SetText(0, v)
}

func (s CarParams) CarFingerprint() (string, error) {
	p, err := s.Struct.Ptr(1)
	return p.Text(), err
}

func (s CarParams) SetCarFingerprint(v string) error {
	return s.Struct.SetText(1, v)
}

type Sentinel struct{ capnp.Struct }

func (s Sentinel) Type() SentinelType {
	return SentinelType(s.Struct.Uint16(0))
}

func (s Sentinel) SetType(v SentinelType) {
	s.Struct.SetUint16(0, uint16(v))
}

// CanData is one bus message inside a can event.
type CanData struct{ capnp.Struct }

var canDataSize = capnp.ObjectSize{DataSize: 8, PointerCount: 1}

func (s CanData) Address() uint32 {
	return s.Struct.Uint32(0)
}

func (s CanData) SetAddress(v uint32) {
	s.Struct.SetUint32(0, v)
}

func (s CanData) BusTime() uint16 {
	return s.Struct.Uint16(4)
}

func (s CanData) SetBusTime(v uint16) {
	s.Struct.SetUint16(4, v)
}

func (s CanData) Src() uint8 {
	return s.Struct.Uint8(6)
}

func (s CanData) SetSrc(v uint8) {
	s.Struct.SetUint8(6, v)
}

func (s CanData) Dat() ([]byte, error) {
	p, err := s.Struct.Ptr(0)
	return p.Data(), err
}

func (s CanData) SetDat(v []byte) error {
	return s.Struct.SetData(0, v)
}

type CanData_List struct{ capnp.List }

func NewCanData_List(s *capnp.Segment, n int32) (CanData_List, error) {
	l, err := capnp.NewCompositeList(s, canDataSize, n)
	return CanData_List{l}, err
}

func (l CanData_List) At(i int) CanData {
	return CanData{l.List.Struct(i)}
}

// EncodeIndex records the identity and segment placement of one video frame.
type EncodeIndex struct{ capnp.Struct }

func (s EncodeIndex) FrameId() uint32 {
	return s.Struct.Uint32(0)
}

func (s EncodeIndex) SetFrameId(v uint32) {
	s.Struct.SetUint32(0, v)
}

func (s EncodeIndex) Type() EncodeIndexType {
	return EncodeIndexType(s.Struct.Uint16(4))
}

func (s EncodeIndex) SetType(v EncodeIndexType) {
	s.Struct.SetUint16(4, uint16(v))
}

func (s EncodeIndex) EncodeId() uint32 {
	return s.Struct.Uint32(8)
}

func (s EncodeIndex) SetEncodeId(v uint32) {
	s.Struct.SetUint32(8, v)
}

func (s EncodeIndex) SegmentNum() int32 {
	return int32(s.Struct.Uint32(12))
}

func (s EncodeIndex) SetSegmentNum(v int32) {
	s.Struct.SetUint32(12, uint32(v))
}

func (s EncodeIndex) SegmentId() uint32 {
	return s.Struct.Uint32(16)
}

func (s EncodeIndex) SetSegmentId(v uint32) {
	s.Struct.SetUint32(16, v)
}

func (s EncodeIndex) SegmentIdEncode() uint32 {
	return s.Struct.Uint32(20)
}

func (s EncodeIndex) SetSegmentIdEncode(v uint32) {
	s.Struct.SetUint32(20, v)
}

func (s EncodeIndex) TimestampSof() uint64 {
	return s.Struct.Uint64(24)
}

func (s EncodeIndex) SetTimestampSof(v uint64) {
	s.Struct.SetUint64(24, v)
}

func (s EncodeIndex) TimestampEof() uint64 {
	return s.Struct.Uint64(32)
}

func (s EncodeIndex) SetTimestampEof(v uint64) {
	s.Struct.SetUint64(32, v)
}

// Thumbnail embeds a JPEG still of the current frame.
type Thumbnail struct{ capnp.Struct }

func (s Thumbnail) FrameId() uint32 {
	return s.Struct.Uint32(0)
}

func (s Thumbnail) SetFrameId(v uint32) {
	s.Struct.SetUint32(0, v)
}

func (s Thumbnail) TimestampEof() uint64 {
	return s.Struct.Uint64(8)
}

func (s Thumbnail) SetTimestampEof(v uint64) {
	s.Struct.SetUint64(8, v)
}

func (s Thumbnail) Thumbnail() ([]byte, error) {
	p, err := s.Struct.Ptr(0)
	return p.Data(), err
}

func (s Thumbnail) SetThumbnail(v []byte) error {
	return s.Struct.SetData(0, v)
}

// ControlsState is the alert surface of the viewer. Only the alert fields of
// the real schema are bound.
type ControlsState struct{ capnp.Struct }

func (s ControlsState) AlertStatus() AlertStatus {
	return AlertStatus(s.Struct.Uint16(0))
}

func (s ControlsState) SetAlertStatus(v AlertStatus) {
	s.Struct.SetUint16(0, uint16(v))
}

func (s ControlsState) AlertSize() AlertSize {
	return AlertSize(s.Struct.Uint16(2))
}

func (s ControlsState) SetAlertSize(v AlertSize) {
	s.Struct.SetUint16(2, uint16(v))
}

func (s ControlsState) AlertText1() (string, error) {
	p, err := s.Struct.Ptr(0)
	return p.Text(), err
}

func (s ControlsState) SetAlertText1(v string) error {
	return s.Struct.SetText(0, v)
}

func (s ControlsState) AlertText2() (string, error) {
	p, err := s.Struct.Ptr(1)
	return p.Text(), err
}

func (s ControlsState) SetAlertText2(v string) error {
	return s.Struct.SetText(1, v)
}
