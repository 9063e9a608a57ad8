// Package inspect serves a resolved SoC description over HTTP, so that the
// clock tree and memory wiring can be browsed while a build runs.
package inspect

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/easysoc/soc"
)

// NamedComponent is anything the inspector can list by name.
type NamedComponent interface {
	Name() string
}

// Inspector turns a description into a read-only web server.
type Inspector struct {
	portNumber  int
	openBrowser bool

	lock        sync.RWMutex
	description *soc.Description
	components  []NamedComponent

	listener net.Listener
}

// NewInspector creates a new Inspector.
func NewInspector() *Inspector {
	return &Inspector{}
}

// WithPortNumber sets the port number of the inspector.
func (i *Inspector) WithPortNumber(portNumber int) *Inspector {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the inspector, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	i.portNumber = portNumber

	return i
}

// WithBrowser makes StartServer open the page in the default browser.
func (i *Inspector) WithBrowser() *Inspector {
	i.openBrowser = true
	return i
}

// RegisterDescription sets the description to serve.
func (i *Inspector) RegisterDescription(d *soc.Description) {
	i.lock.Lock()
	defer i.lock.Unlock()

	i.description = d
}

// RegisterComponent registers a component whose fields can be browsed.
func (i *Inspector) RegisterComponent(c NamedComponent) {
	i.lock.Lock()
	defer i.lock.Unlock()

	i.components = append(i.components, c)
}

// Router returns the HTTP routes of the inspector.
func (i *Inspector) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", i.index)
	r.HandleFunc("/api/description", i.describe)
	r.HandleFunc("/api/domains", i.listDomains)
	r.HandleFunc("/api/list_components", i.listComponents)
	r.HandleFunc("/api/component/{name}", i.listComponentDetails)
	r.HandleFunc("/api/field/{json}", i.listFieldValue)
	r.HandleFunc("/api/resource", i.listResources)
	r.HandleFunc("/api/profile", i.collectProfile)

	return r
}

// StartServer starts serving in the background and returns the URL of the
// page.
func (i *Inspector) StartServer() (string, error) {
	actualPort := ":0"
	if i.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(i.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", fmt.Errorf("inspect: %w", err)
	}

	i.listener = listener

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Inspecting SoC description with %s\n", url)

	go func() {
		err := http.Serve(listener, i.Router())
		if err != nil && !isClosedErr(err) {
			log.Printf("inspect: %v", err)
		}
	}()

	if i.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
		}
	}

	return url, nil
}

// StopServer closes the listener.
func (i *Inspector) StopServer() error {
	if i.listener == nil {
		return nil
	}

	return i.listener.Close()
}

func isClosedErr(err error) bool {
	return strings.Contains(err.Error(), "use of closed network connection")
}

func (i *Inspector) index(w http.ResponseWriter, _ *http.Request) {
	i.lock.RLock()
	defer i.lock.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	title := "No description"
	if i.description != nil {
		title = i.description.Ident()
	}

	fmt.Fprintf(w, "<html><head><title>%s</title></head><body>", title)
	fmt.Fprintf(w, "<h1>%s</h1><ul>", title)

	for _, p := range []string{
		"/api/description", "/api/domains", "/api/list_components",
		"/api/resource",
	} {
		fmt.Fprintf(w, "<li><a href=\"%s\">%s</a></li>", p, p)
	}

	fmt.Fprint(w, "</ul></body></html>")
}

func (i *Inspector) descriptionOr404(w http.ResponseWriter) *soc.Description {
	i.lock.RLock()
	defer i.lock.RUnlock()

	if i.description == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Description not resolved"))
		dieOnErr(err)
	}

	return i.description
}

func (i *Inspector) describe(w http.ResponseWriter, _ *http.Request) {
	d := i.descriptionOr404(w)
	if d == nil {
		return
	}

	writeJSON(w, d.Manifest())
}

func (i *Inspector) listDomains(w http.ResponseWriter, _ *http.Request) {
	d := i.descriptionOr404(w)
	if d == nil {
		return
	}

	writeJSON(w, d.Manifest().Domains)
}

func (i *Inspector) listComponents(w http.ResponseWriter, _ *http.Request) {
	i.lock.RLock()
	defer i.lock.RUnlock()

	names := make([]string, 0, len(i.components))
	for _, c := range i.components {
		names = append(names, c.Name())
	}

	writeJSON(w, names)
}

func (i *Inspector) listComponentDetails(
	w http.ResponseWriter,
	r *http.Request,
) {
	name := mux.Vars(r)["name"]

	component := i.findComponentOr404(w, name)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (i *Inspector) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	component := i.findComponentOr404(w, req.CompName)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

func (i *Inspector) findComponentOr404(
	w http.ResponseWriter,
	name string,
) NamedComponent {
	i.lock.RLock()
	defer i.lock.RUnlock()

	for _, c := range i.components {
		if c.Name() == name {
			return c
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Component not found"))
	dieOnErr(err)

	return nil
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (i *Inspector) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (i *Inspector) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
