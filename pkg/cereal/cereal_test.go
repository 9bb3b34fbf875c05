package cereal

import (
	"bytes"
	"testing"

	"capnproto.org/go/capnp/v3"
	"github.com/stretchr/testify/require"
)

func TestCanEventRoundTrip(t *testing.T) {
	msg, seg, err := capnp.NewMessage(capnp.SingleSegment(nil))
	require.NoError(t, err)
	ev, err := NewRootEvent(seg)
	require.NoError(t, err)
	ev.SetLogMonoTime(123456789)
	ev.SetValid(true)

	payloads := [][]byte{
		{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
		{0xff},
		{},
	}
	list, err := ev.NewCan(int32(len(payloads)))
	require.NoError(t, err)
	for i, dat := range payloads {
		cd := list.At(i)
		cd.SetAddress(uint32(0x7e0 + i))
		cd.SetSrc(uint8(i))
		cd.SetBusTime(uint16(1000 * i))
		require.NoError(t, cd.SetDat(dat))
	}

	buf := bytes.Buffer{}
	require.NoError(t, capnp.NewEncoder(&buf).Encode(msg))

	decoded, err := capnp.NewDecoder(&buf).Decode()
	require.NoError(t, err)
	ev2, err := ReadRootEvent(decoded)
	require.NoError(t, err)
	require.Equal(t, uint64(123456789), ev2.LogMonoTime())
	require.True(t, ev2.Valid())
	require.Equal(t, Event_Which_can, ev2.Which())

	list2, err := ev2.Can()
	require.NoError(t, err)
	require.Equal(t, len(payloads), list2.Len())
	for i, dat := range payloads {
		cd := list2.At(i)
		require.Equal(t, uint32(0x7e0+i), cd.Address())
		require.Equal(t, uint8(i), cd.Src())
		require.Equal(t, uint16(1000*i), cd.BusTime())
		got, err := cd.Dat()
		require.NoError(t, err)
		if len(dat) == 0 {
			require.Empty(t, got)
		} else {
			require.Equal(t, dat, got)
		}
	}
}

func TestEventVariants(t *testing.T) {
	encode := func(fill func(ev Event)) Event {
		msg, seg, err := capnp.NewMessage(capnp.SingleSegment(nil))
		require.NoError(t, err)
		ev, err := NewRootEvent(seg)
		require.NoError(t, err)
		fill(ev)
		buf := bytes.Buffer{}
		require.NoError(t, capnp.NewEncoder(&buf).Encode(msg))
		decoded, err := capnp.NewDecoder(&buf).Decode()
		require.NoError(t, err)
		ev2, err := ReadRootEvent(decoded)
		require.NoError(t, err)
		return ev2
	}

	ev := encode(func(ev Event) {
		s, err := ev.NewSentinel()
		require.NoError(t, err)
		s.SetType(SentinelType_startOfRoute)
	})
	require.Equal(t, Event_Which_sentinel, ev.Which())
	s, err := ev.Sentinel()
	require.NoError(t, err)
	require.Equal(t, SentinelType_startOfRoute, s.Type())

	ev = encode(func(ev Event) {
		cp, err := ev.NewCarParams()
		require.NoError(t, err)
		require.NoError(t, cp.SetCarName("Kona Electric 2019"))
		require.NoError(t, cp.SetCarFingerprint("Kona"))
	})
	require.Equal(t, Event_Which_carParams, ev.Which())
	cp, err := ev.CarParams()
	require.NoError(t, err)
	name, err := cp.CarName()
	require.NoError(t, err)
	require.Equal(t, "Kona Electric 2019", name)
	fp, err := cp.CarFingerprint()
	require.NoError(t, err)
	require.Equal(t, "Kona", fp)

	ev = encode(func(ev Event) {
		cs, err := ev.NewControlsState()
		require.NoError(t, err)
		cs.SetAlertStatus(AlertStatus_critical)
		cs.SetAlertSize(AlertSize_small)
		require.NoError(t, cs.SetAlertText1("line one"))
		require.NoError(t, cs.SetAlertText2("line two"))
	})
	require.Equal(t, Event_Which_controlsState, ev.Which())
	cs, err := ev.ControlsState()
	require.NoError(t, err)
	require.Equal(t, AlertStatus_critical, cs.AlertStatus())
	require.Equal(t, AlertSize_small, cs.AlertSize())
	t1, err := cs.AlertText1()
	require.NoError(t, err)
	require.Equal(t, "line one", t1)

	ev = encode(func(ev Event) {
		idx, err := ev.NewRoadEncodeIdx()
		require.NoError(t, err)
		idx.SetFrameId(7)
		idx.SetType(EncodeIndexType_fullHEVC)
		idx.SetSegmentNum(3)
		idx.SetTimestampSof(999)
	})
	require.Equal(t, Event_Which_roadEncodeIdx, ev.Which())
	idx, err := ev.RoadEncodeIdx()
	require.NoError(t, err)
	require.Equal(t, uint32(7), idx.FrameId())
	require.Equal(t, int32(3), idx.SegmentNum())
	require.Equal(t, uint64(999), idx.TimestampSof())
}
