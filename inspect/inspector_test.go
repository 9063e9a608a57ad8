package inspect

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/easysoc/hw"
	"github.com/sarchlab/easysoc/platform"
	"github.com/sarchlab/easysoc/pll"
	"github.com/sarchlab/easysoc/soc"
)

var _ = Describe("Inspector", func() {
	var (
		inspector *Inspector
		pllComp   *pll.Comp
		desc      *soc.Description
	)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		inspector.Router().ServeHTTP(rec, req)

		return rec
	}

	BeforeEach(func() {
		inspector = NewInspector()

		composer := soc.MakeBuilder().
			WithPLLFactory(func(name string) hw.PLL {
				pllComp = pll.MakeBuilder().Build(name)
				inspector.RegisterComponent(pllComp)

				return pllComp
			}).
			Build("soc")

		var err error
		desc, err = composer.Compose(soc.DefaultConfig(), platform.NewEasyFPGA())
		Expect(err).NotTo(HaveOccurred())
	})

	It("should report a missing description", func() {
		rec := get("/api/description")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should serve the description manifest", func() {
		inspector.RegisterDescription(desc)

		rec := get("/api/description")

		Expect(rec.Code).To(Equal(http.StatusOK))

		var m soc.Manifest
		Expect(json.Unmarshal(rec.Body.Bytes(), &m)).To(Succeed())
		Expect(m.Ident).To(Equal(soc.Ident))
		Expect(m.DDROutput.Domain).To(Equal("sys_ps"))
	})

	It("should serve the clock domains", func() {
		inspector.RegisterDescription(desc)

		rec := get("/api/domains")

		var domains []soc.DomainManifest
		Expect(json.Unmarshal(rec.Body.Bytes(), &domains)).To(Succeed())
		Expect(domains).To(Equal([]soc.DomainManifest{
			{Name: "sys", FreqHz: 50000000},
			{Name: "sys_ps", FreqHz: 50000000, PhaseDeg: 180, ResetLess: true},
		}))
	})

	It("should list registered components", func() {
		rec := get("/api/list_components")

		var names []string
		Expect(json.Unmarshal(rec.Body.Bytes(), &names)).To(Succeed())
		Expect(names).To(Equal([]string{"soc_pll"}))
	})

	It("should serialize a component", func() {
		rec := get("/api/component/soc_pll")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).To(BeNumerically(">", 0))
	})

	It("should report unknown components", func() {
		rec := get("/api/component/nothing")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should reject malformed field requests", func() {
		rec := get("/api/field/" + url.PathEscape("{not json"))

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should report process resources", func() {
		rec := get("/api/resource")

		Expect(rec.Code).To(Equal(http.StatusOK))

		var rsp resourceRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should serve over TCP", func() {
		inspector.RegisterDescription(desc)

		base, err := inspector.StartServer()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(inspector.StopServer)

		rsp, err := http.Get(base + "/api/domains")
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		body, err := io.ReadAll(rsp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(ContainSubstring("sys_ps"))
	})

	It("should fall back to a random port for reserved ports", func() {
		inspector.WithPortNumber(80)

		Expect(inspector.portNumber).To(Equal(0))
	})
})
