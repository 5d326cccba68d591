package main

var cli struct {
	Verbose bool   `help:"Prints debug output by default"`
	Profile bool   `help:"Output a pprof profile"`
	Config  string `help:"Config file; the default search path is used when empty" type:"path"`

	Modcod    string  `help:"Override dvbs2.modcod, e.g. QPSK1/2 or 8PSK3/4"`
	Frequency float64 `help:"Override radio.frequency in Hz"`

	Probe struct {
	} `cmd:"" help:"List the available radios and SoapySDR configuration"`
	Modcods struct {
		Frame  string `help:"Frame size" enum:"short,normal" default:"short"`
		Pilots bool   `help:"Include pilot blocks" default:"true" negatable:""`
	} `cmd:"" help:"List modcods with their frame geometry"`
	Tx struct {
		Input  string `help:"Input file, - for stdin; input.udp_address is used when empty"`
		IQFile string `name:"iq-file" help:"Write cf32 samples to this file instead of the HackRF"`
	} `cmd:"" help:"Modulate a byte stream and transmit it"`
	Rx struct {
		IQFile   string `name:"iq-file" help:"Read cf32 samples from this file instead of the SDR"`
		Loop     bool   `help:"Rewind the IQ file at EOF"`
		Realtime bool   `help:"Pace IQ file input at radio.sample_rate"`
		Output   string `help:"Output file, - for stdout; output.udp_address is used when empty"`
		Tui      bool   `help:"Show the receiver dashboard"`
	} `cmd:"" help:"Receive, demodulate and decode a DVB-S2 carrier"`
}
