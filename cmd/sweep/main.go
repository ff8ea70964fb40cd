// Command sweep steps through the configured exposure levels and reports
// detection and sharpness for each, to sanity-check a camera before
// running the full loop.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/avishur/go-fixate/pkg/camera"
	"github.com/avishur/go-fixate/pkg/policy"
	"github.com/avishur/go-fixate/pkg/vision"
)

func main() {
	device := flag.Int("device", 0, "Camera device index")
	frames := flag.Int("frames", 10, "Frames to evaluate per exposure level")
	settle := flag.Duration("settle", 500*time.Millisecond, "Wait after each exposure change")
	flag.Parse()

	cfg := camera.DefaultConfig()
	cfg.Device = *device
	cam, err := camera.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cam.Close()

	if !cam.ExposureSupported() {
		fmt.Println("Exposure control: NOT SUPPORTED (sweep results will not vary)")
	} else {
		fmt.Println("Exposure control: supported")
	}

	oracle := vision.NewArucoOracle(vision.DefaultArucoConfig())
	defer oracle.Close()
	meter := vision.NewLaplacianMeter()

	ctx := context.Background()
	levels := policy.DefaultConfig().ExposureLevels

	fmt.Printf("Sweeping %d exposure levels, %d frames each\n\n", len(levels), *frames)
	fmt.Printf("%-10s %-10s %-12s %-12s\n", "exposure", "detected", "sharpness", "brightness")

	for _, level := range levels {
		if err := cam.SetExposure(level); err != nil {
			fmt.Fprintf(os.Stderr, "set exposure %g: %v\n", level, err)
			continue
		}
		time.Sleep(*settle)

		hits := 0
		sharpSum, brightSum := 0.0, 0.0
		n := 0
		for i := 0; i < *frames; i++ {
			f, err := cam.Next(ctx)
			if err != nil {
				break
			}
			det, err := oracle.Detect(f, 1.0)
			if err != nil {
				continue
			}
			m, err := meter.Estimate(f)
			if err != nil {
				continue
			}
			if det.Detected {
				hits++
			}
			sharpSum += m.Sharpness
			brightSum += m.Brightness
			n++
		}
		if n == 0 {
			fmt.Printf("%-10g no frames\n", level)
			continue
		}
		fmt.Printf("%-10g %d/%-8d %-12.0f %-12.0f\n",
			level, hits, n, sharpSum/float64(n), brightSum/float64(n))
	}
}
