package soc

// DeviceLimits are the on-chip memory sizes the device can hold. They
// override whatever the caller asks for.
type DeviceLimits struct {
	ROMSize  uint64
	SRAMSize uint64
}

// EasyFPGALimits are the limits of the EP4CE6, which has 30 kB of M9K block
// RAM shared by ROM, SRAM and the caches.
var EasyFPGALimits = DeviceLimits{
	ROMSize:  0x6200,
	SRAMSize: 0x1000,
}
