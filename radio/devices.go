package radio

import (
	"github.com/charmbracelet/log"
	"github.com/pothosware/go-soapy-sdr/pkg/device"
	"github.com/pothosware/go-soapy-sdr/pkg/modules"
	"github.com/pothosware/go-soapy-sdr/pkg/sdrlogger"
	"github.com/pothosware/go-soapy-sdr/pkg/version"
)

func InitSoapySDR() {
	log.Debugf("[radio] Using SoapySDR versions: ABI: %s API: %s Lib: %s", version.GetABIVersion(), version.GetAPIVersion(), version.GetLibVersion())
	for i, searchPath := range modules.ListSearchPaths() {
		log.Debugf("[radio] Search path #%d: %v", i, searchPath)
	}
	for _, module := range modules.ListModules() {
		log.Debugf("[radio] Found SoapySDR module: %v, version: %v", module, moduleVersion(module))
	}
	sdrlogger.SetLogLevel(sdrlogger.Error)
}

func moduleVersion(module string) string {
	if v := modules.GetModuleVersion(module); v != "" {
		return v
	}
	return "[None]"
}

// LogAllSoapySDRDevices lists every SoapySDR device with its receive
// channels, sample rates and gain range.
func LogAllSoapySDRDevices() error {
	log.Infof("Using SoapySDR versions: ABI: %s API: %s Lib: %s", version.GetABIVersion(), version.GetAPIVersion(), version.GetLibVersion())
	log.Infof("SoapySDR modules root path: %v", modules.GetRootPath())
	modulesFound := modules.ListModules()
	if len(modulesFound) == 0 {
		log.Info("No SoapySDR modules found")
	}
	for _, module := range modulesFound {
		log.Infof("Found SoapySDR module: %v, version: %v", module, moduleVersion(module))
	}

	// Tune down the logger for soapy so that it doesn't yell about rtl-tcp
	sdrlogger.SetLogLevel(sdrlogger.Error)

	devices := device.Enumerate(nil)
	log.Infof("Found %d devices", len(devices))
	if len(devices) == 0 {
		return nil
	}
	args := make([]map[string]string, len(devices))
	for idx, dev := range devices {
		args[idx] = map[string]string{"driver": dev["driver"]}
	}
	devs, err := device.MakeList(args)
	if err != nil {
		return err
	}
	for idx, dev := range devs {
		log.Infof("Driver: %s", args[idx]["driver"])
		LogAvailSettings(dev)
	}
	// UnmakeList double frees in the cgo bindings; the OS closes the
	// devices on exit.
	return nil
}

func LogAvailSettings(dev *device.SDRDevice) {
	log.Infof("Current settings:")
	for _, setting := range dev.GetSettingInfo() {
		log.Infof("\t- %s: %v", setting.Key, setting.Value)
	}

	numChannels := dev.GetNumChannels(device.DirectionRX)
	log.Info("Channel info:")
	for channel := uint(0); channel < numChannels; channel++ {
		log.Infof("Channel %d:", channel)
		log.Infof("\tAvailable sample rates:")
		log.Infof("\t\t- %v", dev.GetSampleRate(device.DirectionRX, channel))
		for _, sampleRateRange := range dev.GetSampleRateRange(device.DirectionRX, channel) {
			log.Infof("\t\t- %v", sampleRateRange.ToString())
		}
		log.Infof("\tGain range: %v", dev.GetGainRange(device.DirectionRX, channel).ToString())
		log.Infof("\tIQ Sample Types: %v", dev.GetStreamFormats(device.DirectionRX, channel))
	}
}
