package route

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/require"

	"canroute/pkg/canlog"
	"canroute/pkg/cereal"
	"canroute/pkg/rlog"
	"canroute/pkg/videoenc"
)

type fakeEncoder struct {
	path     string
	frames   []*videoenc.Frame
	finished bool
}

func newFakeEncoder(path string) (*fakeEncoder, error) {
	// Like ffmpeg, the output file exists from the moment the encoder starts.
	if err := os.WriteFile(path, []byte("stub"), 0664); err != nil {
		return nil, err
	}
	return &fakeEncoder{path: path}, nil
}

func (e *fakeEncoder) SendFrame(f *videoenc.Frame) error {
	e.frames = append(e.frames, f)
	return nil
}

func (e *fakeEncoder) Finish() error {
	e.finished = true
	return nil
}

func segmentEvents(t *testing.T, routeBase string, index int) []cereal.Event {
	events, err := rlog.ReadAll(filepath.Join(fmt.Sprintf("%v--%v", routeBase, index), rlog.Filename))
	require.NoError(t, err)
	return events
}

func sentinelType(t *testing.T, ev cereal.Event) cereal.SentinelType {
	require.Equal(t, cereal.Event_Which_sentinel, ev.Which())
	s, err := ev.Sentinel()
	require.NoError(t, err)
	return s.Type()
}

func TestBuildCANOnly(t *testing.T) {
	routeBase := filepath.Join(t.TempDir(), "2023-05-12--18-03-11")
	msgs := []canlog.Message{
		{Timestamp: 100 * time.Millisecond, ID: 0x100, Data: []byte{1}},
		{Timestamp: 200 * time.Millisecond, ID: 0x101, Data: []byte{2}},
		{Timestamp: 60500 * time.Millisecond, ID: 0x102, Data: []byte{3}},
	}
	opts := BuildOptions{
		RouteBase:      routeBase,
		CarName:        "Kona Electric 2019",
		CarFingerprint: "Kona",
		Messages:       msgs,
	}
	require.NoError(t, Build(logs.NewTestingLog(t), opts))

	// Exactly two segment directories.
	require.DirExists(t, routeBase+"--0")
	require.DirExists(t, routeBase+"--1")
	require.NoDirExists(t, routeBase+"--2")

	seg0 := segmentEvents(t, routeBase, 0)
	require.Equal(t, cereal.Event_Which_initData, seg0[0].Which())
	require.Equal(t, uint64(100*time.Millisecond), seg0[0].LogMonoTime())
	require.Equal(t, cereal.Event_Which_carParams, seg0[1].Which())
	require.Equal(t, cereal.SentinelType_startOfRoute, sentinelType(t, seg0[2]))
	require.Equal(t, cereal.SentinelType_startOfSegment, sentinelType(t, seg0[3]))
	require.Equal(t, cereal.SentinelType_endOfSegment, sentinelType(t, seg0[len(seg0)-1]))

	cp, err := seg0[1].CarParams()
	require.NoError(t, err)
	name, err := cp.CarName()
	require.NoError(t, err)
	require.Equal(t, "Kona Electric 2019", name)
	fp, err := cp.CarFingerprint()
	require.NoError(t, err)
	require.Equal(t, "Kona", fp)

	seg1 := segmentEvents(t, routeBase, 1)
	require.Equal(t, cereal.Event_Which_initData, seg1[0].Which())
	require.Equal(t, cereal.SentinelType_startOfSegment, sentinelType(t, seg1[1]))
	require.Equal(t, cereal.SentinelType_endOfSegment, sentinelType(t, seg1[len(seg1)-1]))
	// Segment 1 gets no route-start metadata.
	for _, ev := range seg1 {
		require.NotEqual(t, cereal.Event_Which_carParams, ev.Which())
	}

	// The 60.3s reception gap brackets into expanded alerts: segment 1 sees
	// the ticks from 60.0s up to the clear at 60.5s, then the flushed CAN
	// message, then the closing sentinel.
	nAlerts, nCAN := 0, 0
	for _, ev := range seg1 {
		switch ev.Which() {
		case cereal.Event_Which_controlsState:
			nAlerts++
		case cereal.Event_Which_can:
			nCAN++
		}
	}
	require.Equal(t, 5, nAlerts)
	require.Equal(t, 1, nCAN)
	require.Len(t, seg1, 9)

	// Strict per-segment monotonicity, and two CAN events in segment 0
	// (the 100ms spacing exceeds the batch span).
	for _, seg := range [][]cereal.Event{seg0, seg1} {
		last := uint64(0)
		for _, ev := range seg {
			require.Greater(t, ev.LogMonoTime(), last)
			last = ev.LogMonoTime()
		}
	}
	nCAN = 0
	for _, ev := range seg0 {
		if ev.Which() == cereal.Event_Which_can {
			nCAN++
		}
	}
	require.Equal(t, 2, nCAN)
}

func TestBuildFirstEventTooLate(t *testing.T) {
	opts := BuildOptions{
		RouteBase: filepath.Join(t.TempDir(), "route"),
		Messages:  []canlog.Message{{Timestamp: 61 * time.Second}},
	}
	err := Build(logs.NewTestingLog(t), opts)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrFirstEventTooLate))
}

func TestBuildEmpty(t *testing.T) {
	opts := BuildOptions{RouteBase: filepath.Join(t.TempDir(), "route")}
	require.NoError(t, Build(logs.NewTestingLog(t), opts))
}

func testFrames(times ...time.Duration) []videoenc.Frame {
	frames := make([]videoenc.Frame, len(times))
	for i, ts := range times {
		frames[i] = videoenc.Frame{
			Timestamp: ts,
			Width:     4,
			Height:    4,
			Pixels:    make([]byte, 4*4*3),
		}
	}
	return frames
}

func TestBuildWithVideo(t *testing.T) {
	routeBase := filepath.Join(t.TempDir(), "route")
	msgs := []canlog.Message{
		{Timestamp: 100 * time.Millisecond, ID: 0x100},
		{Timestamp: 105 * time.Millisecond, ID: 0x101},
	}
	frames := testFrames(0, 50*time.Millisecond, 100*time.Millisecond)

	var encoders []*fakeEncoder
	opts := BuildOptions{
		RouteBase: routeBase,
		Messages:  msgs,
		Frames:    &fakeFrameSource{frames: frames},
		NewEncoder: func(path string) (FrameEncoder, error) {
			enc, err := newFakeEncoder(path)
			if err != nil {
				return nil, err
			}
			encoders = append(encoders, enc)
			return enc, nil
		},
	}
	require.NoError(t, Build(logs.NewTestingLog(t), opts))

	require.Len(t, encoders, 1)
	require.Len(t, encoders[0].frames, 3)
	require.True(t, encoders[0].finished)
	require.FileExists(t, filepath.Join(routeBase+"--0", VideoFilename))

	events := segmentEvents(t, routeBase, 0)
	var frameIDs []uint32
	nThumbs := 0
	for _, ev := range events {
		switch ev.Which() {
		case cereal.Event_Which_roadEncodeIdx:
			idx, err := ev.RoadEncodeIdx()
			require.NoError(t, err)
			require.Equal(t, int32(0), idx.SegmentNum())
			frameIDs = append(frameIDs, idx.FrameId())
		case cereal.Event_Which_thumbnail:
			nThumbs++
		}
	}
	// Frame ids are a per-segment 0-based counter.
	require.Equal(t, []uint32{0, 1, 2}, frameIDs)
	// Only the first frame is within the 2.5s thumbnail cadence.
	require.Equal(t, 1, nThumbs)
}

func TestBuildDeletesEmptySegmentVideo(t *testing.T) {
	routeBase := filepath.Join(t.TempDir(), "route")
	msgs := []canlog.Message{
		{Timestamp: 100 * time.Millisecond, ID: 0x100},
		{Timestamp: 60500 * time.Millisecond, ID: 0x101},
	}
	opts := BuildOptions{
		RouteBase: routeBase,
		Messages:  msgs,
		Frames:    &fakeFrameSource{frames: testFrames(0, 50*time.Millisecond)},
		NewEncoder: func(path string) (FrameEncoder, error) {
			return newFakeEncoder(path)
		},
	}
	require.NoError(t, Build(logs.NewTestingLog(t), opts))

	// Segment 0 got both frames; segment 1 had none, so its placeholder
	// video file is removed.
	require.FileExists(t, filepath.Join(routeBase+"--0", VideoFilename))
	require.NoFileExists(t, filepath.Join(routeBase+"--1", VideoFilename))
}

func TestBuildSkipsExistingVideo(t *testing.T) {
	routeBase := filepath.Join(t.TempDir(), "route")
	require.NoError(t, os.MkdirAll(routeBase+"--0", 0775))
	existing := filepath.Join(routeBase+"--0", VideoFilename)
	require.NoError(t, os.WriteFile(existing, []byte("keep me"), 0664))

	opts := BuildOptions{
		RouteBase: routeBase,
		Messages:  []canlog.Message{{Timestamp: 100 * time.Millisecond}},
		Frames:    &fakeFrameSource{frames: testFrames(0, 50*time.Millisecond)},
		NewEncoder: func(path string) (FrameEncoder, error) {
			t.Fatalf("encoder should not be constructed when %v exists", path)
			return nil, nil
		},
	}
	require.NoError(t, Build(logs.NewTestingLog(t), opts))

	content, err := os.ReadFile(existing)
	require.NoError(t, err)
	require.Equal(t, "keep me", string(content))

	// Frame indexes are still written even though encoding was skipped.
	events := segmentEvents(t, routeBase, 0)
	nFrames := 0
	for _, ev := range events {
		if ev.Which() == cereal.Event_Which_roadEncodeIdx {
			nFrames++
		}
	}
	require.Equal(t, 2, nFrames)
}
