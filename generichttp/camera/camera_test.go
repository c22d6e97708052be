package camera_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nasa-jpl/gxcam/dx"
	"github.com/nasa-jpl/gxcam/generichttp/camera"
	"github.com/nasa-jpl/gxcam/gx"
	"github.com/nasa-jpl/gxcam/gx/sim"
	"github.com/nasa-jpl/gxcam/imgrec"
)

// grey copies each raw sample to all three channels
type grey struct {
	mu    sync.Mutex
	calls int
}

func (g *grey) Raw8ToRGB24(in, out []byte, w, h uint32, conv dx.BayerConvertType, layout dx.ColorFilter, flip bool) dx.Status {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	for i, v := range in {
		out[3*i], out[3*i+1], out[3*i+2] = v, v, v
	}
	return dx.StatusOK
}

func (g *grey) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type fixture struct {
	dev  *gx.Device
	w    *camera.HTTPWrapper
	h    http.Handler
	done func()
}

func setup(t *testing.T, color bool, p dx.Processor, rec *imgrec.Recorder) fixture {
	t.Helper()
	sdk := sim.New(sim.NewCamera("SIM0", color))
	lib, err := gx.NewLibrary(sdk, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := lib.UpdateDeviceList(0); err != nil {
		t.Fatal(err)
	}
	d, err := lib.OpenDeviceByIndex(1)
	if err != nil {
		t.Fatal(err)
	}
	w := camera.NewHTTPWrapper(d, p, rec, camera.Options{MaxFPS: 100})
	r := chi.NewRouter()
	w.RT().Bind(r)
	return fixture{dev: d, w: w, h: r, done: func() {
		w.Close()
		d.Close()
		lib.Close()
	}}
}

func (f fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	return rec
}

func TestImagePNG(t *testing.T) {
	f := setup(t, false, nil, nil)
	defer f.done()
	resp := f.do(http.MethodGet, "/image?fmt=png", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 480 {
		t.Errorf("expected 640x480, got %v", b)
	}
}

func TestImageScaledJPEG(t *testing.T) {
	f := setup(t, false, nil, nil)
	defer f.done()
	resp := f.do(http.MethodGet, "/image?scale=0.5&exposureTime=2ms", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	img, err := jpeg.Decode(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Errorf("expected 320x240, got %v", b)
	}
	d, _ := f.dev.ExposureDuration()
	if d != 2*time.Millisecond {
		t.Errorf("expected the exposureTime parameter to set 2ms, got %v", d)
	}
}

func TestImageBadParams(t *testing.T) {
	f := setup(t, false, nil, nil)
	defer f.done()
	for _, q := range []string{"fmt=gif", "scale=0", "exposureTime=soon", "timeout=x"} {
		if resp := f.do(http.MethodGet, "/image?"+q, ""); resp.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for %s, got %d", q, resp.Code)
		}
	}
}

func TestImageFITSIsRecorded(t *testing.T) {
	rec := &imgrec.Recorder{Root: t.TempDir(), Prefix: "sim", Enabled: true}
	f := setup(t, false, nil, rec)
	defer f.done()
	resp := f.do(http.MethodGet, "/image?fmt=fits", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if !bytes.HasPrefix(resp.Body.Bytes(), []byte("SIMPLE")) {
		t.Fatal("expected a FITS primary header")
	}
	matches, _ := filepath.Glob(filepath.Join(rec.Root, "*", "sim000000.fits"))
	if len(matches) != 1 {
		t.Fatalf("expected one recorded file, got %v", matches)
	}
	b, _ := os.ReadFile(matches[0])
	if !bytes.Equal(b, resp.Body.Bytes()) {
		t.Error("recorded file differs from the response")
	}
}

func TestColourGoesThroughProcessor(t *testing.T) {
	p := &grey{}
	f := setup(t, true, p, nil)
	defer f.done()
	resp := f.do(http.MethodGet, "/image?fmt=png", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := img.(*image.RGBA); !ok {
		t.Errorf("expected an RGBA image, got %T", img)
	}
	if p.Calls() != 1 {
		t.Errorf("expected one conversion, got %d", p.Calls())
	}
}

func TestColourWithoutProcessorIsGrey(t *testing.T) {
	f := setup(t, true, nil, nil)
	defer f.done()
	resp := f.do(http.MethodGet, "/image?fmt=png", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := img.(*image.Gray); !ok {
		t.Errorf("expected a grey image, got %T", img)
	}
}

func TestSoftwareTriggeredImage(t *testing.T) {
	f := setup(t, false, nil, nil)
	defer f.done()
	if resp := f.do(http.MethodPost, "/trigger-mode", `{"str":"On"}`); resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	resp := f.do(http.MethodGet, "/trigger-mode", "")
	if got := strings.TrimSpace(resp.Body.String()); got != `{"str":"On"}` {
		t.Errorf("expected trigger mode On, got %s", got)
	}
	resp = f.do(http.MethodGet, "/image?fmt=png&timeout=2s", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected a triggered frame, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestExposureTime(t *testing.T) {
	f := setup(t, false, nil, nil)
	defer f.done()
	if resp := f.do(http.MethodPost, "/exposure-time", `{"f64":0.005}`); resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	resp := f.do(http.MethodGet, "/exposure-time", "")
	if got := strings.TrimSpace(resp.Body.String()); got != `{"f64":0.005}` {
		t.Errorf("expected 0.005 s, got %s", got)
	}
	if resp := f.do(http.MethodPost, "/exposure-time?exposureTime=1h", ""); resp.Code != http.StatusBadRequest {
		t.Errorf("expected out of range to be 400, got %d", resp.Code)
	}
	var rng gx.FloatRange
	resp = f.do(http.MethodGet, "/exposure-time/range", "")
	if err := json.NewDecoder(resp.Body).Decode(&rng); err != nil {
		t.Fatal(err)
	}
	if rng.Min != 20 || rng.Max != 1000000 {
		t.Errorf("unexpected range %+v", rng)
	}
}

func TestGainChannels(t *testing.T) {
	f := setup(t, true, nil, nil)
	defer f.done()
	if resp := f.do(http.MethodPost, "/gain?channel=Blue", `{"f64":3}`); resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	g, err := f.dev.Gain(gx.GainSelectorBlue)
	if err != nil || g != 3 {
		t.Errorf("expected blue gain 3, got %v %v", g, err)
	}
	if resp := f.do(http.MethodGet, "/gain?channel=Purple", ""); resp.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for an unknown channel, got %d", resp.Code)
	}
	resp := f.do(http.MethodGet, "/balance-ratio?channel=Blue", "")
	if got := strings.TrimSpace(resp.Body.String()); got != `{"f64":1.8}` {
		t.Errorf("expected blue ratio 1.8, got %s", got)
	}
}

func TestFeatures(t *testing.T) {
	f := setup(t, false, nil, nil)
	defer f.done()
	resp := f.do(http.MethodGet, "/feature/Width", "")
	if got := strings.TrimSpace(resp.Body.String()); got != `{"int":640}` {
		t.Errorf("expected width 640, got %s", got)
	}
	if resp := f.do(http.MethodPost, "/feature/Width", `{"int":320}`); resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if w, _ := f.dev.Width(); w != 320 {
		t.Errorf("expected width 320, got %d", w)
	}
	if resp := f.do(http.MethodGet, "/feature/Nope", ""); resp.Code != http.StatusNotFound {
		t.Errorf("expected 404 for an unknown feature, got %d", resp.Code)
	}
	if resp := f.do(http.MethodPost, "/feature/TimestampLatch", ""); resp.Code != http.StatusOK {
		t.Errorf("expected commands to run, got %d: %s", resp.Code, resp.Body.String())
	}
	var names map[string]string
	resp = f.do(http.MethodGet, "/feature", "")
	if err := json.NewDecoder(resp.Body).Decode(&names); err != nil {
		t.Fatal(err)
	}
	if names["ExposureTime"] != "float" {
		t.Errorf("expected ExposureTime to be listed as float, got %q", names["ExposureTime"])
	}
}

func TestInfo(t *testing.T) {
	f := setup(t, false, nil, nil)
	defer f.done()
	var info camera.Info
	resp := f.do(http.MethodGet, "/info", "")
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if info.SerialNumber != "SIM0" || info.PixelFormat != "Mono8" || info.PayloadSize != 640*480 {
		t.Errorf("unexpected info %+v", info)
	}
}

func TestAcquisitionHold(t *testing.T) {
	f := setup(t, false, nil, nil)
	defer f.done()
	if resp := f.do(http.MethodPost, "/acquisition", `{"bool":true}`); resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	resp := f.do(http.MethodGet, "/acquisition", "")
	if got := strings.TrimSpace(resp.Body.String()); got != `{"bool":true}` {
		t.Errorf("expected acquisition on, got %s", got)
	}
	// the pixel format is locked while streaming
	if resp := f.do(http.MethodPost, "/pixel-format", `{"str":"Mono12"}`); resp.Code == http.StatusOK {
		t.Error("expected changing the pixel format to fail while streaming")
	}
	f.do(http.MethodPost, "/acquisition", `{"bool":false}`)
	if resp := f.do(http.MethodPost, "/pixel-format", `{"str":"Mono12"}`); resp.Code != http.StatusOK {
		t.Errorf("expected the pixel format to change once stopped, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestMJPEG(t *testing.T) {
	f := setup(t, false, nil, nil)
	defer f.done()
	ts := httptest.NewServer(f.h)
	defer ts.Close()
	resp, err := http.Get(ts.URL + "/stream.mjpeg?scale=0.25")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		t.Fatal(err)
	}
	mr := multipart.NewReader(resp.Body, params["boundary"])
	for i := 0; i < 2; i++ {
		part, err := mr.NextPart()
		if err != nil {
			t.Fatal(err)
		}
		img, err := jpeg.Decode(part)
		if err != nil {
			t.Fatal(err)
		}
		if b := img.Bounds(); b.Dx() != 160 || b.Dy() != 120 {
			t.Errorf("expected 160x120, got %v", b)
		}
	}
}

func TestWebsocket(t *testing.T) {
	f := setup(t, false, nil, nil)
	defer f.done()
	ts := httptest.NewServer(f.h)
	defer ts.Close()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	typ, r, err := conn.NextReader()
	if err != nil {
		t.Fatal(err)
	}
	if typ != websocket.BinaryMessage {
		t.Errorf("expected a binary message, got %d", typ)
	}
	b, _ := io.ReadAll(r)
	if _, err := jpeg.Decode(bytes.NewReader(b)); err != nil {
		t.Errorf("expected a JPEG, got %v", err)
	}
}

func TestMetrics(t *testing.T) {
	f := setup(t, false, nil, nil)
	defer f.done()
	reg := prometheus.NewRegistry()
	reg.MustRegister(f.w.Collectors()...)
	if resp := f.do(http.MethodGet, "/image?fmt=png", ""); resp.Code != http.StatusOK {
		t.Fatalf("image request failed %d %s", resp.Code, resp.Body.String())
	}
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	vals := map[string]float64{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			if c := m.GetCounter(); c != nil {
				vals[mf.GetName()] = c.GetValue()
			}
			if g := m.GetGauge(); g != nil {
				vals[mf.GetName()] = g.GetValue()
			}
			for _, l := range m.GetLabel() {
				if l.GetName() == "serial" && l.GetValue() != "SIM0" {
					t.Errorf("expected serial label SIM0, got %q", l.GetValue())
				}
			}
		}
	}
	if vals["gx_hub_frames_total"] < 1 {
		t.Errorf("expected at least one frame counted, got %v", vals["gx_hub_frames_total"])
	}
	if vals["gx_hub_subscribers"] != 0 {
		t.Errorf("expected no subscribers after the request, got %v", vals["gx_hub_subscribers"])
	}
}
