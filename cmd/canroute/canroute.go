package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/akamensky/argparse"
	"github.com/cyclopcam/logs"

	"canroute/pkg/canlog"
	"canroute/pkg/config"
	"canroute/pkg/route"
	"canroute/pkg/videoenc"
)

func main() {
	parser := argparse.NewParser("canroute", "Convert CSV CAN logs (plus optional video) into Cabana routes")
	configFile := parser.String("c", "config", &argparse.Options{Help: "YAML file listing the log entries to convert", Required: true})
	dataDir := parser.String("d", "data-dir", &argparse.Options{Help: "Directory to write route segments into", Required: true})
	entry := parser.Int("", "entry", &argparse.Options{Help: "Convert only this entry (0-based index into the config)", Default: -1})
	noVideo := parser.Flag("", "no-video", &argparse.Options{Help: "Skip video decoding/encoding, producing CAN-only routes", Default: false})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	logger, err := logs.NewLog()
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	entries, err := config.Load(*configFile)
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
	if *entry >= len(entries) {
		logger.Errorf("Entry %v is out of range: %v has %v entries", *entry, *configFile, len(entries))
		os.Exit(1)
	}

	for i := range entries {
		if *entry >= 0 && i != *entry {
			continue
		}
		if err := convertEntry(logger, &entries[i], *dataDir, *noVideo); err != nil {
			logger.Errorf("Entry %v (%v): %v", i, entries[i].LogFile, err)
			os.Exit(1)
		}
	}
}

func convertEntry(logger logs.Log, entry *config.Entry, dataDir string, noVideo bool) error {
	routeName, err := entry.RouteName()
	if err != nil {
		return err
	}
	logger.Infof("Generating route %v for %v", routeName, entry.CarName())

	msgs, err := canlog.ReadFile(logger, entry.LogFile, entry.CANOffset())
	if err != nil {
		return err
	}

	opts := route.BuildOptions{
		RouteBase:      filepath.Join(dataDir, routeName),
		CarName:        entry.CarName(),
		CarFingerprint: entry.Fingerprint(),
		Messages:       msgs,
	}

	if entry.Video != "" && !noVideo {
		if !videoenc.Available() {
			return fmt.Errorf("ffmpeg/ffprobe not found on PATH (re-run with --no-video for a CAN-only route)")
		}
		source, err := videoenc.NewSource(logger, entry.Video)
		if err != nil {
			return err
		}
		defer source.Close()
		opts.Frames = source
		opts.VideoProps = source.Properties()
	}

	if err := route.Build(logger, opts); err != nil {
		return err
	}
	return writeLauncher(logger, dataDir, routeName)
}

// writeLauncher drops a cabana.sh next to the route dirs, so opening the
// freshest route in the viewer is one command.
func writeLauncher(logger logs.Log, dataDir, routeName string) error {
	absDir, err := filepath.Abs(dataDir)
	if err != nil {
		return err
	}
	script := fmt.Sprintf("#!/bin/sh\nexec cabana --data_dir %q %q\n", absDir, routeName)
	path := filepath.Join(dataDir, "cabana.sh")
	if err := os.WriteFile(path, []byte(script), 0775); err != nil {
		return fmt.Errorf("Error writing %v: %w", path, err)
	}
	logger.Infof("Wrote launcher %v", path)
	return nil
}
