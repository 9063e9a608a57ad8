package platform

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/easysoc/hw"
)

var _ = Describe("EasyFPGA", func() {
	var board *Board

	BeforeEach(func() {
		board = NewEasyFPGA()
	})

	It("should describe the device", func() {
		Expect(board.Name()).To(Equal("rz_easyfpga"))
		Expect(board.Device()).To(Equal("EP4CE6E22C8"))
		Expect(board.DefaultClockName()).To(Equal("clk50"))
		Expect(board.Programmer().Command).To(Equal("quartus_pgm"))
	})

	It("should hand out a resource once", func() {
		g, err := board.RequestResource("sdram_clock")
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Pins).To(Equal([]string{"PIN_43"}))

		_, err = board.RequestResource("sdram_clock")
		var resErr *hw.ResourceUnavailableError
		Expect(errors.As(err, &resErr)).To(BeTrue())
		Expect(resErr.Reason).To(Equal("all instances already requested"))
	})

	It("should fail on unknown resources", func() {
		_, err := board.RequestResource("ddram")

		var resErr *hw.ResourceUnavailableError
		Expect(errors.As(err, &resErr)).To(BeTrue())
		Expect(resErr.Platform).To(Equal("rz_easyfpga"))
		Expect(resErr.Reason).To(Equal("no such resource"))
	})

	It("should request numbered resources in order", func() {
		first, err := board.RequestResource("user_led")
		Expect(err).NotTo(HaveOccurred())
		Expect(first.Number).To(Equal(0))

		second, err := board.RequestResource("user_led")
		Expect(err).NotTo(HaveOccurred())
		Expect(second.Number).To(Equal(1))
	})

	It("should request all remaining resources with a prefix", func() {
		_, err := board.RequestResource("user_led")
		Expect(err).NotTo(HaveOccurred())

		leds, err := board.RequestAllResources("user_led")
		Expect(err).NotTo(HaveOccurred())
		Expect(leds).To(HaveLen(3))
		Expect(leds[0].ID()).To(Equal("user_led:1"))

		_, err = board.RequestAllResources("user_led")
		Expect(errors.Is(err, hw.ErrResourceUnavailable)).To(BeTrue())
	})

	It("should not let callers modify the catalog", func() {
		g, err := board.RequestResource("sdram")
		Expect(err).NotTo(HaveOccurred())
		g.Subsignals[0].Pins[0] = "PIN_0"

		r, ok := board.Lookup("sdram", 0)
		Expect(ok).To(BeTrue())
		Expect(r.Subsignals[0].Pins[0]).To(Equal("PIN_76"))
	})

	It("should list requested resources", func() {
		_, _ = board.RequestResource("clk50")
		_, _ = board.RequestAllResources("key")

		Expect(board.Requested()).To(Equal([]string{
			"clk50:0", "key:0", "key:1", "key:2", "key:3",
		}))
	})

	It("should hand out released resources again", func() {
		clk, err := board.RequestResource("clk50")
		Expect(err).NotTo(HaveOccurred())
		leds, err := board.RequestAllResources("user_led")
		Expect(err).NotTo(HaveOccurred())

		board.ReleaseResources(leds[1], clk)

		Expect(board.Requested()).To(Equal([]string{
			"user_led:0", "user_led:2", "user_led:3",
		}))

		led, err := board.RequestResource("user_led")
		Expect(err).NotTo(HaveOccurred())
		Expect(led.Number).To(Equal(1))

		_, err = board.RequestResource("clk50")
		Expect(err).NotTo(HaveOccurred())
	})

	It("should ignore groups it never handed out", func() {
		board.ReleaseResources(hw.SignalGroup{Name: "nothing"})

		Expect(board.Requested()).To(BeEmpty())
	})
})
