package hw

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Freq", func() {
	It("should get the period in ns", func() {
		Expect((50 * MHz).PeriodNS()).To(BeNumerically("~", 20, 1e-9))
	})

	It("should panic on the period of 0 Hz", func() {
		Expect(func() { Freq(0).PeriodNS() }).To(Panic())
	})

	It("should multiply", func() {
		f, err := (50 * MHz).Multiply(2)
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(Equal(100 * MHz))
	})

	It("should detect overflow", func() {
		_, err := Freq(math.MaxUint64).Multiply(2)
		Expect(errors.Is(err, ErrFrequencyOverflow)).To(BeTrue())
		Expect(errors.Is(err, ErrConfiguration)).To(BeTrue())
	})

	It("should print", func() {
		Expect((50 * MHz).String()).To(Equal("50 MHz"))
		Expect((402500 * KHz).String()).To(Equal("402.500 MHz"))
		Expect((2 * GHz).String()).To(Equal("2 GHz"))
		Expect((12 * KHz).String()).To(Equal("12 kHz"))
		Expect(Freq(7).String()).To(Equal("7 Hz"))
	})

	It("should convert from float notation", func() {
		f, err := FreqFromFloat(50e6)
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(Equal(50 * MHz))

		f, err = FreqFromFloat(12.9)
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(Equal(Freq(12)))
	})

	It("should reject negative float frequencies", func() {
		_, err := FreqFromFloat(-1)
		Expect(errors.Is(err, ErrConfiguration)).To(BeTrue())
	})
})

var _ = Describe("Phase", func() {
	It("should accept 0 to 359", func() {
		Expect(PhaseMustBeValid("p", 0)).To(Succeed())
		Expect(PhaseMustBeValid("p", 359)).To(Succeed())
	})

	It("should reject out of range phases", func() {
		err := PhaseMustBeValid("sys_ps_phase", 360)

		var cfgErr *ConfigurationError
		Expect(errors.As(err, &cfgErr)).To(BeTrue())
		Expect(cfgErr.Param).To(Equal("sys_ps_phase"))
		Expect(cfgErr.Value).To(Equal("360"))

		Expect(PhaseMustBeValid("p", -90)).NotTo(Succeed())
	})
})
