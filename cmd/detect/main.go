// Command detect is a perception smoke test: it reads frames from the
// camera and prints marker detections until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/avishur/go-fixate/pkg/camera"
	"github.com/avishur/go-fixate/pkg/vision"
)

func main() {
	device := flag.Int("device", 0, "Camera device index")
	crop := flag.Float64("crop", 1.0, "Center-crop fraction before detection (1.0 = full frame)")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	cfg := camera.DefaultConfig()
	cfg.Device = *device
	cam, err := camera.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cam.Close()

	oracle := vision.NewArucoOracle(vision.DefaultArucoConfig())
	defer oracle.Close()
	meter := vision.NewLaplacianMeter()

	fmt.Printf("Reading camera %d, show an ArUco marker (Ctrl-C to quit)\n", *device)

	for ctx.Err() == nil {
		f, err := cam.Next(ctx)
		if err != nil {
			break
		}

		det, err := oracle.Detect(f, *crop)
		if err != nil {
			fmt.Printf("\rdetect error: %v          ", err)
			continue
		}
		m, _ := meter.Estimate(f)

		if det.Detected {
			fmt.Printf("\rIDs %v  quality %.2f  sharpness %.0f   ",
				det.MarkerIDs, det.Quality, m.Sharpness)
		} else {
			fmt.Printf("\rsearching...  sharpness %.0f            ", m.Sharpness)
		}
	}
	fmt.Println("\ndone")
}
