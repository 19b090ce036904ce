package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"

	"go.uber.org/zap"
	"nyiyui.ca/hato/rosen/config"
	"nyiyui.ca/hato/rosen/kujo"
	"nyiyui.ca/hato/rosen/sakuragi"
	"nyiyui.ca/hato/rosen/tal"
	"nyiyui.ca/hato/rosen/ui"
)

func main() {
	level := zap.LevelFlag("log-level", zap.InfoLevel, "set log level")
	configPath := flag.String("config", "", "path to a JSON config file (defaults are used if empty)")
	scale := flag.Float64("scale", 4, "world units per braille dot")
	headless := flag.Bool("headless", false, "run without the terminal UI")
	flag.Parse()
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(*level)
	if !*headless {
		// the terminal belongs to the UI
		cfg.OutputPaths = []string{"rosen.log"}
	}
	dev, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	defer dev.Sync()
	zap.ReplaceGlobals(dev)

	c := config.Default()
	if *configPath != "" {
		c, err = config.Load(*configPath)
		if err != nil {
			zap.S().Fatalf("%s", err)
		}
	}

	w := tal.New(c.World())
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	go w.Run(ctx)

	if c.KujoAddr != "" {
		zap.S().Infof("starting kujo on %s…", c.KujoAddr)
		kujoServer := kujo.NewServer(w, c.CORSOrigins)
		defer kujoServer.Close()
		go func() {
			zap.S().Errorf("kujo: %s", http.ListenAndServe(c.KujoAddr, kujoServer.Handler()))
		}()
	}
	if c.SakuragiAddr != "" {
		zap.S().Infof("starting sakuragi on %s…", c.SakuragiAddr)
		go func() {
			zap.S().Errorf("sakuragi: %s", http.ListenAndServe(c.SakuragiAddr, sakuragi.NewServer(w)))
		}()
	}

	if *headless {
		<-ctx.Done()
		return
	}
	ctl := ui.NewController(w, c.CellSize, ui.Spawn{
		Speed: c.Spawn.Speed,
		Track: c.Spawn.Track,
		Dist:  c.Spawn.Dist,
		Form:  c.Form(),
	}, ui.View{Scale: *scale})
	if err := ui.Main(w, ctl); err != nil {
		zap.S().Fatalf("ui: %s", err)
	}
}
