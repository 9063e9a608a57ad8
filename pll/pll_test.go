package pll

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/easysoc/hw"
)

var _ = Describe("PLL", func() {
	var (
		p     *Comp
		clk50 hw.ClockSignal
	)

	BeforeEach(func() {
		p = MakeBuilder().Build("pll")
		clk50 = hw.ClockSignal{Name: "clk50"}
	})

	It("should reject a second reference input", func() {
		Expect(p.RegisterInput(clk50, 50*hw.MHz)).To(Succeed())

		err := p.RegisterInput(clk50, 50*hw.MHz)
		Expect(errors.Is(err, hw.ErrConfiguration)).To(BeTrue())
	})

	It("should reject an input out of range", func() {
		err := p.RegisterInput(clk50, 1*hw.MHz)

		var capErr *hw.CapabilityExceededError
		Expect(errors.As(err, &capErr)).To(BeTrue())
		Expect(capErr.Quantity).To(Equal("input frequency"))
	})

	It("should require the input before outputs", func() {
		_, err := p.CreateOutput("sys", 50*hw.MHz, 0)
		Expect(errors.Is(err, hw.ErrConfiguration)).To(BeTrue())
	})

	Context("with a 50 MHz reference", func() {
		BeforeEach(func() {
			Expect(p.RegisterInput(clk50, 50*hw.MHz)).To(Succeed())
		})

		It("should find dividers for full-rate outputs", func() {
			sys, err := p.CreateOutput("sys", 50*hw.MHz, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(sys.Name).To(Equal("pll_clk0"))

			ps, err := p.CreateOutput("sys_ps", 50*hw.MHz, 180)
			Expect(err).NotTo(HaveOccurred())
			Expect(ps.Phase).To(Equal(hw.Phase(180)))

			cfg := p.Config()
			Expect(cfg.N).To(Equal(1))
			Expect(cfg.M).To(Equal(26))
			Expect(cfg.VCOFreq).To(BeNumerically("~", 1300e6, 1))
			Expect(cfg.Outputs).To(HaveLen(2))
			Expect(cfg.Outputs[0].Divide).To(Equal(26))
			Expect(cfg.Outputs[1].Divide).To(Equal(26))
		})

		It("should find dividers for half-rate outputs", func() {
			_, err := p.CreateOutput("sys", 50*hw.MHz, 0)
			Expect(err).NotTo(HaveOccurred())
			_, err = p.CreateOutput("sys2x", 100*hw.MHz, 0)
			Expect(err).NotTo(HaveOccurred())
			_, err = p.CreateOutput("sys2x_ps", 100*hw.MHz, 270)
			Expect(err).NotTo(HaveOccurred())

			cfg := p.Config()
			Expect(cfg.Outputs[1].Divide).To(Equal(13))
			Expect(cfg.Outputs[2].ActualFreqHz).To(BeNumerically("~", 100e6, 1))
		})

		It("should reject outputs above the speed grade limit", func() {
			_, err := p.CreateOutput("sys2x", 600*hw.MHz, 0)

			var capErr *hw.CapabilityExceededError
			Expect(errors.As(err, &capErr)).To(BeTrue())
			Expect(capErr.Domain).To(Equal("sys2x"))
			Expect(capErr.Quantity).To(Equal("output frequency"))
			Expect(capErr.Max).To(Equal("402.500 MHz"))
		})

		It("should reject invalid phases", func() {
			_, err := p.CreateOutput("sys_ps", 50*hw.MHz, 360)
			Expect(errors.Is(err, hw.ErrConfiguration)).To(BeTrue())
		})

		It("should limit the number of outputs", func() {
			for _, name := range []string{"a", "b", "c", "d", "e"} {
				_, err := p.CreateOutput(name, 50*hw.MHz, 0)
				Expect(err).NotTo(HaveOccurred())
			}

			_, err := p.CreateOutput("f", 50*hw.MHz, 0)
			Expect(errors.Is(err, hw.ErrCapabilityExceeded)).To(BeTrue())
		})

		It("should put every output on the reset net", func() {
			p.BindReset("crg_rst")
			_, _ = p.CreateOutput("sys", 50*hw.MHz, 0)
			_, _ = p.CreateOutput("sys_ps", 50*hw.MHz, 180)

			net := p.ResetNet()
			Expect(net.Signal).To(Equal("crg_rst"))
			Expect(net.Domains).To(Equal([]string{"sys", "sys_ps"}))
		})
	})

	It("should fail when outputs cannot share a VCO frequency", func() {
		p = MakeBuilder().
			WithVCORange(Range{Min: 600 * hw.MHz, Max: 600 * hw.MHz}).
			Build("pll")
		Expect(p.RegisterInput(clk50, 50*hw.MHz)).To(Succeed())

		_, err := p.CreateOutput("sys", 50*hw.MHz, 0)
		Expect(err).NotTo(HaveOccurred())

		_, err = p.CreateOutput("odd", 70*hw.MHz, 0)
		var capErr *hw.CapabilityExceededError
		Expect(errors.As(err, &capErr)).To(BeTrue())
		Expect(capErr.Quantity).To(Equal(
			"output frequency (VCO 600 MHz shared with sys)"))
		Expect(capErr.Requested).To(Equal("70 MHz"))
		Expect(capErr.Min).To(Equal("66.667 MHz"))
		Expect(capErr.Max).To(Equal("75 MHz"))

		Expect(p.ResetNet().Domains).To(Equal([]string{"sys"}))
	})

	It("should report the output range reachable from the VCO", func() {
		p = MakeBuilder().Build("pll")
		Expect(p.RegisterInput(clk50, 50*hw.MHz)).To(Succeed())

		_, err := p.CreateOutput("slow", 1*hw.MHz, 0)

		var capErr *hw.CapabilityExceededError
		Expect(errors.As(err, &capErr)).To(BeTrue())
		Expect(capErr.Quantity).To(Equal("output frequency reachable from the VCO"))
		Expect(capErr.Requested).To(Equal("1 MHz"))
		Expect(capErr.Min).To(Equal("2.344 MHz"))
		Expect(capErr.Max).To(Equal("402.500 MHz"))
	})

	It("should panic on unknown speed grades", func() {
		Expect(func() {
			MakeBuilder().WithSpeedGrade("-9").Build("pll")
		}).To(Panic())
	})
})
