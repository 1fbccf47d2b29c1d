package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/giprobe"
)

func main() {
	res := flag.Int("res", 4, "probe grid resolution per axis (>= 2)")
	extent := flag.Float64("extent", 10.0, "half extent of the probe grid volume")
	samples := flag.Int("samples", 128, "hemisphere sample count per probe")
	bounces := flag.Int("bounces", 2, "indirect light bounce count")
	workers := flag.Int("workers", 0, "bake workers (0 = GOMAXPROCS)")
	seed := flag.Int64("seed", 1337, "bake RNG seed")
	blobOut := flag.String("o", "probes.gipb", "output probe blob path")
	atlasOut := flag.String("atlas", "", "optional debug irradiance atlas PNG path")
	settingsIn := flag.String("settings", "", "optional GI settings JSON to load")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	settings := giprobe.DefaultGISettings()
	if *settingsIn != "" {
		if err := giprobe.LoadGISettingsInto(*settingsIn, &settings); err != nil {
			fmt.Fprintf(os.Stderr, "load settings: %v\n", err)
			os.Exit(1)
		}
	}
	settings.LightProbeSamples = *samples
	settings.Bounces = *bounces

	system := giprobe.NewGISystemSeeded(settings, *seed)
	logger := giprobe.NewDefaultLogger("gibake", *debug)
	system.SetLogger(logger)

	// Demo scene: two spheres resting on a ground plane.
	e := float32(*extent)
	system.SetRayCaster(&giprobe.SphereCaster{
		Spheres: []giprobe.Sphere{
			{Center: mgl32.Vec3{-e * 0.3, 1.0, 0}, Radius: 1.0, Albedo: mgl32.Vec3{0.8, 0.2, 0.2}},
			{Center: mgl32.Vec3{e * 0.3, 1.5, e * 0.2}, Radius: 1.5, Albedo: mgl32.Vec3{0.2, 0.4, 0.8}},
		},
		Ground:       true,
		GroundHeight: 0,
		GroundAlbedo: mgl32.Vec3{0.5, 0.5, 0.5},
	})

	minB := mgl32.Vec3{-e, 0, -e}
	maxB := mgl32.Vec3{e, e, e}
	if err := system.InitializeProbeGrid(minB, maxB, *res, *res, *res); err != nil {
		fmt.Fprintf(os.Stderr, "init grid: %v\n", err)
		os.Exit(1)
	}

	sun := []giprobe.Light{{
		Type:      giprobe.LightTypeDirectional,
		Direction: mgl32.Vec3{-0.3, -1, -0.2}.Normalize(),
		Color:     mgl32.Vec3{1.0, 0.95, 0.85},
		Intensity: 1.0,
	}}

	system.BakeAllLightProbesParallel(sun, *workers, func(completed, total int) {
		if completed%50 == 0 || completed == total {
			logger.Infof("baked %d/%d probes", completed, total)
		}
	})

	data := system.ExportGPUData()
	f, err := os.Create(*blobOut)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create blob: %v\n", err)
		os.Exit(1)
	}
	if _, err := data.WriteTo(f); err != nil {
		fmt.Fprintf(os.Stderr, "write blob: %v\n", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close blob: %v\n", err)
		os.Exit(1)
	}
	logger.Infof("wrote %d probes to %s", len(data.SHData), *blobOut)

	if *atlasOut != "" {
		if err := giprobe.WriteProbeAtlasPNG(system.Grid(), *atlasOut, 64, 32, *res); err != nil {
			fmt.Fprintf(os.Stderr, "write atlas: %v\n", err)
			os.Exit(1)
		}
		logger.Infof("wrote debug atlas to %s", *atlasOut)
	}
}
