package soc

// DefaultCPUType is the general-purpose core used when no CPU is named.
const DefaultCPUType = "vexriscv"

// MinimalCPUVariant is the smallest configuration of the default core.
const MinimalCPUVariant = "minimal"

// CPU is the selected soft core.
type CPU struct {
	Type    string
	Variant string
}

// SelectCPU applies the logic-capacity limit of the device: the default core
// only fits in its minimal variant. Other cores are kept as requested.
func SelectCPU(cpuType, cpuVariant string) CPU {
	if cpuType == "" || cpuType == DefaultCPUType {
		return CPU{Type: DefaultCPUType, Variant: MinimalCPUVariant}
	}

	return CPU{Type: cpuType, Variant: cpuVariant}
}
