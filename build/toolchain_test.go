package build

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/easysoc/platform"
	"github.com/sarchlab/easysoc/sdram"
	"github.com/sarchlab/easysoc/soc"
)

var _ = Describe("Toolchain", func() {
	var (
		mockCtrl  *gomock.Controller
		runner    *MockRunner
		outputDir string
		board     *platform.Board
		desc      *soc.Description
		toolchain *Toolchain
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		runner = NewMockRunner(mockCtrl)
		outputDir = GinkgoT().TempDir()
		board = platform.NewEasyFPGA()

		cfg := soc.DefaultConfig()
		cfg.TimingMode = sdram.HalfRate

		var err error
		desc, err = soc.MakeBuilder().Build("soc").Compose(cfg, board)
		Expect(err).NotTo(HaveOccurred())

		toolchain = MakeBuilder().
			WithOutputDir(outputDir).
			WithRunner(runner).
			Build("Toolchain")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should place files under the board gateware directory", func() {
		a, err := toolchain.Generate(desc)

		Expect(err).NotTo(HaveOccurred())
		Expect(a.Dir).To(Equal(
			filepath.Join(outputDir, platform.EasyFPGAName, "gateware")))
		Expect(a.Manifest).To(Equal(
			filepath.Join(a.Dir, platform.EasyFPGAName+".json")))
		Expect(a.Bitstream).To(Equal(
			filepath.Join(a.Dir, platform.EasyFPGAName+".sof")))
		Expect(a.BuildID).NotTo(BeEmpty())
	})

	It("should write the description manifest", func() {
		a, err := toolchain.Generate(desc)
		Expect(err).NotTo(HaveOccurred())

		content, err := os.ReadFile(a.Manifest)
		Expect(err).NotTo(HaveOccurred())

		var m BuildManifest
		Expect(json.Unmarshal(content, &m)).To(Succeed())
		Expect(m.BuildID).To(Equal(a.BuildID))
		Expect(m.SoC.Board).To(Equal(platform.EasyFPGAName))
		Expect(m.SoC.Memory).NotTo(BeNil())
		Expect(m.SoC.Memory.Adapter).To(Equal("HalfRateAdapter"))
		Expect(m.SoC.Domains).To(HaveLen(3))
	})

	It("should write pin assignments", func() {
		a, err := toolchain.Generate(desc)
		Expect(err).NotTo(HaveOccurred())

		content, err := os.ReadFile(a.QSF)
		Expect(err).NotTo(HaveOccurred())

		qsf := string(content)
		Expect(qsf).To(ContainSubstring(
			"set_global_assignment -name DEVICE EP4CE6E22C8"))
		Expect(qsf).To(ContainSubstring(
			"set_location_assignment PIN_23 -to clk50\n"))
		Expect(qsf).To(ContainSubstring(
			"set_location_assignment PIN_43 -to sdram_clock\n"))
		Expect(qsf).To(ContainSubstring(
			"set_location_assignment PIN_87 -to user_led0\n"))
		Expect(qsf).To(ContainSubstring(
			"set_location_assignment PIN_84 -to user_led3\n"))
		Expect(qsf).To(ContainSubstring("-to sdram_a[0]\n"))
		Expect(qsf).To(ContainSubstring(
			"set_instance_assignment -name IO_STANDARD \"3.3-V LVTTL\" -to clk50\n"))
	})

	It("should write timing constraints", func() {
		a, err := toolchain.Generate(desc)
		Expect(err).NotTo(HaveOccurred())

		content, err := os.ReadFile(a.SDC)
		Expect(err).NotTo(HaveOccurred())

		sdc := string(content)
		Expect(sdc).To(ContainSubstring(
			"create_clock -name clk50 -period 20.000 [get_ports {clk50}]"))
		Expect(sdc).To(ContainSubstring("# sys2x_ps: 100 MHz, phase 270°"))
		Expect(sdc).To(ContainSubstring("derive_pll_clocks"))
	})

	It("should run synthesis in the gateware directory", func() {
		a, err := toolchain.Generate(desc)
		Expect(err).NotTo(HaveOccurred())

		runner.EXPECT().
			Run(a.Dir, "quartus_sh", "--flow", "compile", platform.EasyFPGAName).
			Return(nil)

		Expect(toolchain.Compile(a)).To(Succeed())
	})

	It("should use the toolchain directory", func() {
		toolchain = MakeBuilder().
			WithOutputDir(outputDir).
			WithRunner(runner).
			WithToolchainDir("/opt/quartus/bin").
			Build("Toolchain")

		a, err := toolchain.Generate(desc)
		Expect(err).NotTo(HaveOccurred())

		runner.EXPECT().
			Run(a.Dir, "/opt/quartus/bin/quartus_sh",
				"--flow", "compile", platform.EasyFPGAName).
			Return(nil)

		Expect(toolchain.Compile(a)).To(Succeed())
	})

	It("should report synthesis failures", func() {
		a, err := toolchain.Generate(desc)
		Expect(err).NotTo(HaveOccurred())

		failure := errors.New("exit status 3")
		runner.EXPECT().
			Run(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(failure)

		Expect(toolchain.Compile(a)).To(MatchError(failure))
	})

	It("should refuse to load a missing bitstream", func() {
		a, err := toolchain.Generate(desc)
		Expect(err).NotTo(HaveOccurred())

		err = toolchain.Load(a, board.Programmer())

		Expect(errors.Is(err, ErrMissingBitstream)).To(BeTrue())
	})

	It("should program the board with the bitstream", func() {
		a, err := toolchain.Generate(desc)
		Expect(err).NotTo(HaveOccurred())
		Expect(os.WriteFile(a.Bitstream, []byte("sof"), 0o644)).To(Succeed())

		runner.EXPECT().
			Run(a.Dir, "quartus_pgm", "-m", "jtag", "-c", "USB-Blaster",
				"-o", "p;"+platform.EasyFPGAName+".sof").
			Return(nil)

		Expect(toolchain.Load(a, board.Programmer())).To(Succeed())
	})
})

var _ = Describe("PinName", func() {
	It("should name single pins after the group", func() {
		Expect(PinName("clk50", "", 0, 1)).To(Equal("clk50"))
	})

	It("should index buses", func() {
		Expect(PinName("sdram", "dq", 15, 16)).To(Equal("sdram_dq[15]"))
	})
})
