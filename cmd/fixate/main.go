package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/avishur/go-fixate/internal/config"
	"github.com/avishur/go-fixate/internal/log"
	"github.com/avishur/go-fixate/pkg/actuate"
	"github.com/avishur/go-fixate/pkg/camera"
	"github.com/avishur/go-fixate/pkg/control"
	"github.com/avishur/go-fixate/pkg/policy"
	"github.com/avishur/go-fixate/pkg/uncertainty"
	"github.com/avishur/go-fixate/pkg/vision"
	"github.com/avishur/go-fixate/pkg/web"
)

func main() {
	configPath := flag.String("config", "", "Path to TOML config file")
	device := flag.Int("device", -1, "Camera device index (overrides config)")
	serialDev := flag.String("serial", "", "Pan-tilt serial device (overrides config)")
	webAddr := flag.String("web", "", "Dashboard listen address (overrides config)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Environment overrides the file; flags override both.
	cfg.Camera.Device = config.EnvInt("FIXATE_DEVICE", cfg.Camera.Device)
	cfg.Serial.Device = config.EnvString("FIXATE_SERIAL", cfg.Serial.Device)
	cfg.Web.Addr = config.EnvString("FIXATE_WEB_ADDR", cfg.Web.Addr)
	cfg.Log.Level = config.EnvString("FIXATE_LOG_LEVEL", cfg.Log.Level)

	if *device >= 0 {
		cfg.Camera.Device = *device
	}
	if *serialDev != "" {
		cfg.Serial.Device = *serialDev
	}
	if *webAddr != "" {
		cfg.Web.Addr = *webAddr
	}
	if *debug {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(cfg.Log.Level, cfg.Log.JSON)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutting down")
		cancel()
	}()

	cam, err := camera.Open(camera.Config{
		Device:      cfg.Camera.Device,
		Width:       cfg.Camera.Width,
		Height:      cfg.Camera.Height,
		JPEGQuality: cfg.Camera.JPEGQuality,
	})
	if err != nil {
		logger.Error("camera open failed", "err", err)
		os.Exit(1)
	}
	defer cam.Close()

	if !cam.ExposureSupported() {
		logger.Warn("camera does not honor manual exposure, sweep actions may be no-ops")
	}

	oracle := vision.NewArucoOracle(vision.ArucoConfig{
		Dictionary: vision.DefaultArucoConfig().Dictionary,
		AreaLow:    cfg.Vision.AreaLow,
		AreaHigh:   cfg.Vision.AreaHigh,
	})
	defer oracle.Close()

	space, err := policy.NewSpace(cfg.PolicyConfig())
	if err != nil {
		logger.Error("invalid action space", "err", err)
		os.Exit(1)
	}

	var sink control.Sink
	if cfg.Serial.Device != "" {
		pt, err := actuate.OpenPanTilt(cfg.Serial.Device, cfg.Serial.Baud)
		if err != nil {
			logger.Error("serial open failed", "device", cfg.Serial.Device, "err", err)
			os.Exit(1)
		}
		defer pt.Close()
		sink = pt
		logger.Info("actuation via pan-tilt serial link", "device", cfg.Serial.Device)
	} else {
		sink = actuate.NewCameraSink(cam)
		logger.Info("actuation via software camera parameters")
	}

	var emitter control.Emitter
	if cfg.Web.Addr != "" {
		dash := web.NewServer(log.Component(logger, "web"))
		go func() {
			if err := dash.Listen(cfg.Web.Addr); err != nil {
				logger.Error("dashboard stopped", "err", err)
			}
		}()
		defer dash.Shutdown()
		emitter = dash
	}

	// Latest-wins handoff so a slow tick never backs frames up.
	source := camera.NewLatest(cam)
	source.Start(ctx)

	loop := control.NewLoop(
		cfg.ControlConfig(),
		source,
		oracle,
		vision.NewLaplacianMeter(),
		uncertainty.NewEstimator(cfg.UncertaintyConfig()),
		space,
		sink,
		emitter,
		log.Component(logger, "loop"),
	)

	if err := loop.Run(ctx); err != nil {
		logger.Error("loop failed", "err", err)
		os.Exit(1)
	}
}
