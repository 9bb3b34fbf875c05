// Package config loads the YAML file that describes a set of recorded CAN log
// entries: where the CSV log and companion video live, which car produced
// them, and how the two clocks line up.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// RouteNameFormat is the layout of route directory names, eg
// "2023-05-12--18-03-11".
const RouteNameFormat = "2006-01-02--15-04-05"

// SyncInfo ties a point in the video to a point in the CAN log: at video_s
// seconds into the video, the CAN log clock read log_us microseconds.
type SyncInfo struct {
	VideoS float64 `yaml:"video_s"`
	LogUS  int64   `yaml:"log_us"`
}

// CANOffset returns the CAN log timestamp at 0:00 in the video, which is the
// amount to subtract from every CAN timestamp to place it on the video clock.
func (s *SyncInfo) CANOffset() time.Duration {
	videoUS := int64(s.VideoS * 1e6)
	return time.Duration(s.LogUS-videoUS) * time.Microsecond
}

// Entry is one recording in the config file.
type Entry struct {
	Car        string    `yaml:"car"`
	CarDetails string    `yaml:"car_details"`
	LogFile    string    `yaml:"logfile"`
	Video      string    `yaml:"video"`
	Timestamp  time.Time `yaml:"timestamp"`
	Sync       *SyncInfo `yaml:"sync"`
}

// CarName is the display name written into the route's car params.
func (e *Entry) CarName() string {
	if e.CarDetails == "" {
		return e.Car
	}
	return e.Car + " " + e.CarDetails
}

// Fingerprint is the car identifier written into the route's car params.
func (e *Entry) Fingerprint() string {
	return e.Car
}

// CANOffset returns the sync offset, or zero for an entry with no sync block.
func (e *Entry) CANOffset() time.Duration {
	if e.Sync == nil {
		return 0
	}
	return e.Sync.CANOffset()
}

// RouteName derives the name of the route (and thereby its segment
// directories) from the entry's timestamp, falling back to the CSV file's
// modification time when the config doesn't say.
func (e *Entry) RouteName() (string, error) {
	ts := e.Timestamp
	if ts.IsZero() {
		st, err := os.Stat(e.LogFile)
		if err != nil {
			return "", fmt.Errorf("Error reading timestamp of %v: %w", e.LogFile, err)
		}
		ts = st.ModTime()
	}
	return ts.Format(RouteNameFormat), nil
}

// Load reads the entry list from a YAML file. Relative logfile/video paths
// resolve against the directory containing the YAML file.
func Load(filename string) ([]Entry, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("Error loading %v: %w", filename, err)
	}
	entries := []Entry{}
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("Error loading as YAML %v: %w", filename, err)
	}
	dir := filepath.Dir(filename)
	for i := range entries {
		e := &entries[i]
		if e.LogFile == "" {
			return nil, fmt.Errorf("Entry %v in %v has no logfile", i, filename)
		}
		if e.Video != "" && e.Sync == nil {
			return nil, fmt.Errorf("Entry %v in %v has a video but no sync block", i, filename)
		}
		e.LogFile = resolve(dir, e.LogFile)
		if e.Video != "" {
			e.Video = resolve(dir, e.Video)
		}
	}
	return entries, nil
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
