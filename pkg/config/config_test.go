package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	filename := filepath.Join(dir, "log_data.yml")
	require.NoError(t, os.WriteFile(filename, []byte(body), 0664))
	return filename
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "drive1.csv"), []byte("x"), 0664))
	filename := writeConfig(t, dir, `
- car: Kona
  car_details: Electric 2019
  logfile: drive1.csv
  video: drive1.mp4
  timestamp: 2023-05-12 18:03:11
  sync:
    video_s: 1.5
    log_us: 2000000
- car: Ioniq
  logfile: /data/drive2.csv
`)
	entries, err := Load(filename)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	e := &entries[0]
	require.Equal(t, filepath.Join(dir, "drive1.csv"), e.LogFile)
	require.Equal(t, filepath.Join(dir, "drive1.mp4"), e.Video)
	require.Equal(t, "Kona Electric 2019", e.CarName())
	require.Equal(t, "Kona", e.Fingerprint())
	// 2_000_000us into the log is 1.5s into the video, so the log clock
	// read 500ms at video zero.
	require.Equal(t, 500*time.Millisecond, e.CANOffset())
	name, err := e.RouteName()
	require.NoError(t, err)
	require.Equal(t, "2023-05-12--18-03-11", name)

	// Absolute paths stay untouched, and a CAN-only entry needs no sync.
	e = &entries[1]
	require.Equal(t, "/data/drive2.csv", e.LogFile)
	require.Equal(t, "", e.Video)
	require.Equal(t, "Ioniq", e.CarName())
	require.Equal(t, time.Duration(0), e.CANOffset())
}

func TestRouteNameFromFileTime(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "drive.csv")
	require.NoError(t, os.WriteFile(logFile, []byte("x"), 0664))
	mtime := time.Date(2022, 11, 2, 9, 30, 5, 0, time.Local)
	require.NoError(t, os.Chtimes(logFile, mtime, mtime))

	e := Entry{Car: "Kona", LogFile: logFile}
	name, err := e.RouteName()
	require.NoError(t, err)
	require.Equal(t, "2022-11-02--09-30-05", name)

	e.LogFile = filepath.Join(dir, "missing.csv")
	_, err = e.RouteName()
	require.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "nope.yml"))
	require.Error(t, err)

	filename := writeConfig(t, dir, "car: [not a list")
	_, err = Load(filename)
	require.Error(t, err)

	// A video without a sync block can't be aligned to the CAN log.
	filename = writeConfig(t, dir, `
- car: Kona
  logfile: drive.csv
  video: drive.mp4
`)
	_, err = Load(filename)
	require.ErrorContains(t, err, "no sync block")

	filename = writeConfig(t, dir, `
- car: Kona
`)
	_, err = Load(filename)
	require.ErrorContains(t, err, "no logfile")
}
