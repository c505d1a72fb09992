// driftwall runs a slide show or an animated cross-fade, looping a schedule
// of still images and transitions indefinitely. It drives the worker against
// wl.Loopback (one synthetic 1920x1080 output) and the headless renderer; it
// does not connect to a Wayland compositor or paint a real output.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/intuitionamiga/driftwall/internal/errs"
	"github.com/intuitionamiga/driftwall/internal/imaging"
	"github.com/intuitionamiga/driftwall/internal/logging"
	"github.com/intuitionamiga/driftwall/internal/render/headless"
	"github.com/intuitionamiga/driftwall/internal/report"
	"github.com/intuitionamiga/driftwall/internal/schedule"
	"github.com/intuitionamiga/driftwall/internal/timeline"
	"github.com/intuitionamiga/driftwall/internal/watchdog"
	"github.com/intuitionamiga/driftwall/internal/wl"
	"github.com/intuitionamiga/driftwall/internal/worker"
)

const appName = "driftwall"

func boilerPlate() {
	fmt.Println("driftwall — Wayland dynamic wallpaper engine")
	fmt.Println("https://github.com/intuitionamiga/driftwall")
}

func main() {
	filterFlag := flag.String("f", "good", "resampling filter: fast, good, best")
	flag.StringVar(filterFlag, "filter", *filterFlag, "resampling filter: fast, good, best")
	scaleFlag := flag.String("s", "fill", "scaling mode: fill, fit, none")
	flag.StringVar(scaleFlag, "scale", *scaleFlag, "scaling mode: fill, fit, none")
	modeFlag := flag.String("m", "", "schedule mode: static, dynamic (default: inferred from extension)")
	flag.StringVar(modeFlag, "mode", *modeFlag, "schedule mode: static, dynamic (default: inferred from extension)")
	debugFlag := flag.Bool("debug", false, "enable debug logging")
	logFile := flag.String("log-file", "", "rotate logs to this path in addition to stderr")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: driftwall [flags] FILE")
		flag.PrintDefaults()
		os.Exit(1)
	}
	path := flag.Arg(0)

	boilerPlate()

	log := logging.New(logging.Config{Debug: *debugFlag, LogFile: *logFile})
	defer log.Sync()

	filter, err := parseFilter(*filterFlag)
	if err != nil {
		fatal(log, err, nil, nil)
	}
	scaling, err := parseScaling(*scaleFlag)
	if err != nil {
		fatal(log, err, nil, nil)
	}

	mode := schedule.Mode(*modeFlag)
	if mode == "" {
		mode, err = schedule.InferMode(path)
		if err != nil {
			fatal(log, err, nil, nil)
		}
	}

	sched, err := schedule.Load(path, mode)
	if err != nil {
		fatal(log, err, nil, nil)
	}

	ds := wl.NewLoopback(1920, 1080)
	factory := headless.New(1920, 1080)
	loader := imaging.NewLoader()

	w := worker.New(ds, factory, loader, sched, scaling, filter, log)

	for _, snap := range ds.Outputs().Snapshot() {
		w.Events() <- worker.AddOutput{Output: mustGetOutput(ds, snap.ID)}
	}

	stop := make(chan struct{})
	go watchdog.RunSleepWatchdog(5*time.Second, w.Events(), stop)

	ipc, err := watchdog.NewIPC(appName, w.Events(), log)
	if err != nil {
		log.Warn("ipc watchdog disabled", zap.Error(err))
	} else {
		go ipc.Run()
		defer ipc.Close()
	}

	if err := w.Run(); err != nil {
		fatal(log, err, ds.Outputs(), sched)
	}
}

func mustGetOutput(ds *wl.Loopback, id uint32) *wl.Output {
	out, _ := ds.Outputs().Get(id)
	return out
}

func parseFilter(s string) (imaging.Filter, error) {
	switch imaging.Filter(s) {
	case imaging.FilterFast, imaging.FilterGood, imaging.FilterBest:
		return imaging.Filter(s), nil
	default:
		return "", errs.System(errs.InvalidDataType, "main.parseFilter", "unknown filter "+s, nil)
	}
}

func parseScaling(s string) (imaging.Scaling, error) {
	switch imaging.Scaling(s) {
	case imaging.ScaleFill, imaging.ScaleFit, imaging.ScaleNone:
		return imaging.Scaling(s), nil
	default:
		return "", errs.System(errs.InvalidDataType, "main.parseScaling", "unknown scale "+s, nil)
	}
}

func fatal(log *zap.Logger, err error, registry *wl.Registry, sched *timeline.Schedule) {
	r := report.New(err, registry, sched)
	fmt.Fprintln(os.Stderr, r.String())
	log.Error("fatal", zap.Error(err))
	os.Exit(1)
}
