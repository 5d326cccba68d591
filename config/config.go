package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/knadh/koanf/parsers/hcl"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const EnvPrefix = "DVBS2SDR_"

type RadioConf struct {
	Driver      string  `koanf:"driver"`
	Address     string  `koanf:"address"`
	DeviceIndex int     `koanf:"device_index"`
	Gain        int     `koanf:"gain"`
	TxGain      int     `koanf:"tx_gain"`
	// TxBackend is "hackrf" for libhackrf or "soapy" for any SoapySDR
	// device named by Driver.
	TxBackend   string  `koanf:"tx_backend"`
	Frequency   float64 `koanf:"frequency"`
	SampleRate  float64 `koanf:"sample_rate"`
	SampleType  string  `koanf:"sample_type"`
	AmpEnable   bool    `koanf:"amp_enable"`
	DigitalGain float64 `koanf:"digital_gain"`
}

type AGCConf struct {
	Enabled   bool    `koanf:"enabled"`
	Rate      float32 `koanf:"rate"`
	Reference float32 `koanf:"reference"`
	Gain      float32 `koanf:"gain"`
	MaxGain   float32 `koanf:"max_gain"`
}

type DVBS2Conf struct {
	Modcod           string  `koanf:"modcod"`
	FrameSize        string  `koanf:"frame_size"`
	Pilots           bool    `koanf:"pilots"`
	Rolloff          float64 `koanf:"rolloff"`
	StreamType       string  `koanf:"stream_type"`
	GoldCode         int     `koanf:"gold_code"`
	SamplesPerSymbol int     `koanf:"samples_per_symbol"`
	RRCSpan          int     `koanf:"rrc_span"`
}

type ReceiverConf struct {
	DetectionThreshold float64 `koanf:"detection_threshold"`
	MaxMisses          int     `koanf:"max_misses"`
	LDPCIterations     int     `koanf:"ldpc_iterations"`
	NoiseVariance      float64 `koanf:"noise_variance"`
	TimingGainP        float64 `koanf:"timing_gain_p"`
	TimingGainI        float64 `koanf:"timing_gain_i"`
	CarrierGainP       float64 `koanf:"carrier_gain_p"`
	CarrierGainI       float64 `koanf:"carrier_gain_i"`
	Workers            int     `koanf:"workers"`
	DoFFT              bool    `koanf:"do_fft"`
}

type StreamConf struct {
	ChunkSize    uint `koanf:"chunk_size"`
	BufferBlocks int  `koanf:"buffer_blocks"`
}

type OutputConf struct {
	UDPAddress string `koanf:"udp_address"`
	File       string `koanf:"file"`
}

type InputConf struct {
	UDPAddress string `koanf:"udp_address"`
	File       string `koanf:"file"`
	Loop       bool   `koanf:"loop"`
}

type MetricsConf struct {
	Listen string `koanf:"listen"`
}

type TuiConf struct {
	RefreshMs       int     `koanf:"refresh_ms"`
	LdpcWarnPct     float64 `koanf:"ldpc_threshold_warn_pct"`
	LdpcCritPct     float64 `koanf:"ldpc_threshold_crit_pct"`
	FrameWarnPct    float64 `koanf:"frame_loss_warn_pct"`
	FrameCritPct    float64 `koanf:"frame_loss_crit_pct"`
	EnableLogOutput bool    `koanf:"enable_log_output"`
}

type Config struct {
	Radio    RadioConf    `koanf:"radio"`
	AGC      AGCConf      `koanf:"agc"`
	DVBS2    DVBS2Conf    `koanf:"dvbs2"`
	Receiver ReceiverConf `koanf:"receiver"`
	Stream   StreamConf   `koanf:"stream"`
	Input    InputConf    `koanf:"input"`
	Output   OutputConf   `koanf:"output"`
	Metrics  MetricsConf  `koanf:"metrics"`
	Tui      TuiConf      `koanf:"tui"`
}

// Default mirrors the reference GNU Radio flowgraphs: 2.4 GHz, TX gain 30,
// RX gain 40, QPSK 1/2 with pilots, roll-off 0.35, 2 samples per symbol, TS
// to 127.0.0.1:5004. Frames are short by default.
func Default() Config {
	return Config{
		Radio: RadioConf{
			Driver:      "hackrf",
			Gain:        40,
			TxGain:      30,
			TxBackend:   "hackrf",
			Frequency:   2.4e9,
			SampleRate:  2e6,
			SampleType:  "complex64",
			AmpEnable:   false,
			DigitalGain: 100,
		},
		AGC: AGCConf{
			Enabled:   true,
			Rate:      0.01,
			Reference: 0.5,
			Gain:      0.5,
			MaxGain:   4000,
		},
		DVBS2: DVBS2Conf{
			Modcod:           "QPSK1/2",
			FrameSize:        "short",
			Pilots:           true,
			Rolloff:          0.35,
			StreamType:       "ts",
			GoldCode:         0,
			SamplesPerSymbol: 2,
			RRCSpan:          10,
		},
		Receiver: ReceiverConf{
			DetectionThreshold: 0.6,
			MaxMisses:          3,
			LDPCIterations:     50,
			NoiseVariance:      0,
			TimingGainP:        0.02,
			TimingGainI:        0.0002,
			CarrierGainP:       0.05,
			CarrierGainI:       0.001,
			Workers:            2,
			DoFFT:              true,
		},
		Stream: StreamConf{
			ChunkSize:    64 * 1024,
			BufferBlocks: 16,
		},
		Output: OutputConf{
			UDPAddress: "127.0.0.1:5004",
		},
		Tui: TuiConf{
			RefreshMs:       500,
			LdpcWarnPct:     60,
			LdpcCritPct:     90,
			FrameWarnPct:    1,
			FrameCritPct:    10,
			EnableLogOutput: true,
		},
	}
}

// SymbolRate is the radio sample rate divided by the oversampling factor.
func (c Config) SymbolRate() float64 {
	return c.Radio.SampleRate / float64(c.DVBS2.SamplesPerSymbol)
}

// Validate applies the transmitter CLI ranges: frequency 70 MHz to
// 6 GHz, sample rate 1 to 56 MHz and gains 0 to 70 dB.
func (c Config) Validate() error {
	var errs []error
	if c.Radio.Frequency < 70e6 || c.Radio.Frequency > 6e9 {
		errs = append(errs, fmt.Errorf("radio.frequency %.0f Hz outside [70 MHz, 6 GHz]", c.Radio.Frequency))
	}
	if c.Radio.SampleRate < 1e6 || c.Radio.SampleRate > 56e6 {
		errs = append(errs, fmt.Errorf("radio.sample_rate %.0f outside [1 MHz, 56 MHz]", c.Radio.SampleRate))
	}
	if c.Radio.Gain < 0 || c.Radio.Gain > 70 {
		errs = append(errs, fmt.Errorf("radio.gain %d outside [0, 70] dB", c.Radio.Gain))
	}
	if c.Radio.TxGain < 0 || c.Radio.TxGain > 70 {
		errs = append(errs, fmt.Errorf("radio.tx_gain %d outside [0, 70] dB", c.Radio.TxGain))
	}
	if c.Radio.TxBackend != "hackrf" && c.Radio.TxBackend != "soapy" {
		errs = append(errs, fmt.Errorf("radio.tx_backend %q is not hackrf or soapy", c.Radio.TxBackend))
	}
	if c.Stream.ChunkSize == 0 || c.Stream.BufferBlocks <= 0 {
		errs = append(errs, errors.New("stream.chunk_size and stream.buffer_blocks must be positive"))
	}
	if c.Receiver.MaxMisses <= 0 {
		errs = append(errs, errors.New("receiver.max_misses must be positive"))
	}
	if c.Receiver.DetectionThreshold <= 0 || c.Receiver.DetectionThreshold >= 1 {
		errs = append(errs, errors.New("receiver.detection_threshold must be in (0, 1)"))
	}
	return errors.Join(errs...)
}

// SearchPaths lists the config files tried in order.
func SearchPaths() []string {
	paths := []string{"/etc/dvbs2sdr/config.hcl"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "dvbs2sdr", "config.hcl"))
	}
	return append(paths, "./config.hcl")
}

func findConfig() string {
	for _, path := range SearchPaths() {
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			log.Infof("Found config file: %s", path)
			return path
		}
	}
	log.Info("Config file not found!")
	return ""
}

// Load reads path (or the first file in SearchPaths when path is empty)
// over the defaults. Without a readable file the environment is used, e.g.
// DVBS2SDR_DVBS2_MODCOD=8PSK2/3.
func Load(path string) (Config, *koanf.Koanf, error) {
	k := koanf.New(".")
	if path == "" {
		path = findConfig()
	}
	if err := k.Load(file.Provider(path), hcl.Parser(true)); err != nil {
		log.Errorf("Could not read config file: %v", err)
		log.Error("Attempting to use environment variables")
		if err := k.Load(env.Provider(".", env.Opt{
			Prefix: EnvPrefix,
			TransformFunc: func(k, v string) (string, any) {
				key := strings.ToLower(strings.TrimPrefix(k, EnvPrefix))
				key = strings.Replace(key, "_", ".", 1)
				log.Debugf("Found config env var: %s=%v", key, v)
				return key, v
			},
		}), nil); err != nil {
			return Config{}, k, fmt.Errorf("loading environment: %w", err)
		}
	}

	conf := Default()
	if err := k.Unmarshal("", &conf); err != nil {
		return conf, k, fmt.Errorf("decoding config: %w", err)
	}
	log.Debugf("Found radio definition: %##v", conf.Radio)
	log.Debugf("Found dvbs2 definition: %##v", conf.DVBS2)
	log.Debugf("Found receiver definition: %##v", conf.Receiver)
	return conf, k, nil
}
