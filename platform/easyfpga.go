package platform

import "github.com/sarchlab/easysoc/hw"

// EasyFPGAName is the name of the RZ-EasyFPGA board.
const EasyFPGAName = "rz_easyfpga"

const lvttl = "3.3-V LVTTL"

// NewEasyFPGA creates the RZ-EasyFPGA A2.2 board (Cyclone IV E EP4CE6E22C8,
// 50 MHz oscillator, 8 MiB SDR SDRAM).
func NewEasyFPGA() *Board {
	return NewBoard(
		EasyFPGAName,
		"EP4CE6E22C8",
		"clk50",
		Programmer{Command: "quartus_pgm", Cable: "USB-Blaster"},
		easyFPGAResources(),
	)
}

func pins(names ...string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, "PIN_"+n)
	}

	return out
}

func easyFPGAResources() []Resource {
	rs := []Resource{
		{Name: "clk50", Pins: pins("23"), IOStandard: lvttl},
		{Name: "serial", Subsignals: []hw.Subsignal{
			{Name: "tx", Pins: pins("114")},
			{Name: "rx", Pins: pins("115")},
		}, IOStandard: lvttl},
		{Name: "sdram_clock", Pins: pins("43"), IOStandard: lvttl},
		{Name: "sdram", Subsignals: []hw.Subsignal{
			{Name: "a", Pins: pins("76", "77", "80", "83", "68", "67",
				"66", "65", "64", "60", "75", "59")},
			{Name: "dq", Pins: pins("28", "30", "31", "32", "33", "34",
				"38", "39", "54", "53", "52", "51", "50", "49", "46", "44")},
			{Name: "ba", Pins: pins("73", "74")},
			{Name: "cas_n", Pins: pins("70")},
			{Name: "cs_n", Pins: pins("72")},
			{Name: "ras_n", Pins: pins("71")},
			{Name: "we_n", Pins: pins("69")},
			{Name: "dm", Pins: pins("42", "55")},
			{Name: "cke", Pins: pins("58")},
		}, IOStandard: lvttl},
	}

	for i, p := range []string{"87", "86", "85", "84"} {
		rs = append(rs, Resource{
			Name: "user_led", Number: i, Pins: pins(p), IOStandard: lvttl,
		})
	}

	for i, p := range []string{"88", "89", "90", "91"} {
		rs = append(rs, Resource{
			Name: "key", Number: i, Pins: pins(p), IOStandard: lvttl,
		})
	}

	return rs
}
