package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/iottrends-tech/dvb-s2-SDR/config"
	"github.com/iottrends-tech/dvb-s2-SDR/radio"
)

func main() {
	log.Info("Starting dvb-s2-SDR")
	flags := kong.Parse(&cli)
	if cli.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	if cli.Profile {
		prof, err := os.Create("./cpu.pprof")
		if err != nil {
			log.Fatalf("Could not create profile: %v", err)
		}
		pprof.StartCPUProfile(prof)
		defer pprof.StopCPUProfile()
	}

	conf, _, err := config.Load(cli.Config)
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	if cli.Modcod != "" {
		conf.DVBS2.Modcod = cli.Modcod
	}
	if cli.Frequency != 0 {
		conf.Radio.Frequency = cli.Frequency
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch flags.Command() {
	case "probe":
		err = radio.LogAllSoapySDRDevices()
	case "modcods":
		err = listModcods(cli.Modcods.Frame, cli.Modcods.Pilots)
	case "tx":
		err = runTx(ctx, conf)
	case "rx":
		err = runRx(ctx, conf)
	default:
		log.Info("Command not recognized")
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("%s: %v", flags.Command(), err)
	}
}
