// Package camera provides an HTTP interface to a Galaxy camera
package camera

import (
	"encoding/json"
	"errors"
	"go/types"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi"

	"github.com/nasa-jpl/gxcam/dx"
	"github.com/nasa-jpl/gxcam/generichttp"
	"github.com/nasa-jpl/gxcam/gx"
	"github.com/nasa-jpl/gxcam/imgrec"
	"github.com/nasa-jpl/gxcam/util"
)

// Options tune the image and live view endpoints
type Options struct {
	// MaxFPS caps the rate frames are pulled for live views, 0 for no cap
	MaxFPS float64

	// JPEGQuality is used for jpg images and live views, 1-100
	JPEGQuality int

	// FrameTimeout is added to the exposure time to bound waiting for a frame
	FrameTimeout time.Duration

	// Conversion is the demosaicing algorithm for colour frames
	Conversion dx.BayerConvertType
}

// DefaultOptions are used for zero fields of Options
var DefaultOptions = Options{
	MaxFPS:       15,
	JPEGQuality:  85,
	FrameTimeout: time.Second,
	Conversion:   dx.Adaptive,
}

// HTTPWrapper provides an HTTP interface to a camera
type HTTPWrapper struct {
	// Dev is the camera
	Dev *gx.Device

	// Proc demosaics colour frames; nil serves them as grey raw data
	Proc dx.Processor

	// Recorder saves images as they are served, may be nil
	Recorder *imgrec.Recorder

	opts Options
	hub  *hub

	// RouteTable maps routes to handlers
	RouteTable generichttp.RouteTable
}

// NewHTTPWrapper returns a new wrapper with the route table populated.  If
// rec is not nil its /autowrite routes are included.
func NewHTTPWrapper(d *gx.Device, p dx.Processor, rec *imgrec.Recorder, opts Options) *HTTPWrapper {
	if opts.JPEGQuality <= 0 {
		opts.JPEGQuality = DefaultOptions.JPEGQuality
	}
	if opts.FrameTimeout <= 0 {
		opts.FrameTimeout = DefaultOptions.FrameTimeout
	}
	opts.JPEGQuality = int(util.Clamp(float64(opts.JPEGQuality), 1, 100))
	sn, _ := d.SerialNumber()
	m := newMetrics(sn)
	w := &HTTPWrapper{Dev: d, Proc: p, Recorder: rec, opts: opts, hub: newHub(d, m, opts.MaxFPS, opts.FrameTimeout)}
	rt := generichttp.RouteTable{}
	get := func(path string, h http.HandlerFunc) {
		rt[generichttp.MethodPath{Method: http.MethodGet, Path: path}] = h
	}
	post := func(path string, h http.HandlerFunc) {
		rt[generichttp.MethodPath{Method: http.MethodPost, Path: path}] = h
	}
	get("/image", w.GetFrame)
	get("/stream.mjpeg", w.StreamMJPEG)
	get("/ws", w.StreamWS)

	get("/exposure-time", w.GetExposureTime)
	post("/exposure-time", w.SetExposureTime)
	get("/exposure-time/range", generichttp.JSON(func() (interface{}, error) { return d.ExposureTimeRange() }))
	get("/gain", w.GetGain)
	post("/gain", w.SetGain)
	get("/gain/range", w.GetGainRange)
	get("/balance-ratio", w.GetBalanceRatio)
	post("/balance-ratio", w.SetBalanceRatio)
	enumRoute(rt, d, "/exposure-auto", gx.EnumExposureAuto)
	enumRoute(rt, d, "/gain-auto", gx.EnumGainAuto)
	enumRoute(rt, d, "/trigger-mode", gx.EnumTriggerMode)
	enumRoute(rt, d, "/trigger-source", gx.EnumTriggerSource)
	enumRoute(rt, d, "/pixel-format", gx.EnumPixelFormat)

	post("/trigger", generichttp.Command(d.TriggerCapture))
	get("/acquisition", generichttp.GetBool(func() (bool, error) { return w.hub.Streaming(), nil }))
	post("/acquisition", generichttp.SetBool(w.hub.Hold))
	post("/flush", generichttp.Command(d.FlushQueue))
	get("/timestamp", generichttp.GetInt(w.timestamp))
	post("/timestamp/latch", generichttp.Command(d.LatchTimestamp))
	post("/timestamp/reset", generichttp.Command(d.ResetTimestamp))

	get("/info", generichttp.JSON(func() (interface{}, error) { return Describe(d) }))
	get("/feature", w.GetFeatures)
	get("/feature/{feature}", w.GetFeature)
	post("/feature/{feature}", w.SetFeature)
	w.RouteTable = rt
	if rec != nil {
		imgrec.NewHTTPWrapper(rec).Inject(w)
	}
	return w
}

// RT satisfies generichttp.HTTPer
func (h *HTTPWrapper) RT() generichttp.RouteTable {
	return h.RouteTable
}

// Close stops the live views and any held acquisition
func (h *HTTPWrapper) Close() error {
	return h.hub.Hold(false)
}

// enumRoute adds GET and POST for an enum feature, exchanged by entry name as {"str": name}
func enumRoute(rt generichttp.RouteTable, d *gx.Device, path string, f gx.FeatureID) {
	name := f.String()
	rt[generichttp.MethodPath{Method: http.MethodGet, Path: path}] = generichttp.GetString(func() (string, error) {
		v, err := d.GetFeature(name)
		if err != nil {
			return "", err
		}
		return v.(string), nil
	})
	rt[generichttp.MethodPath{Method: http.MethodPost, Path: path}] = generichttp.SetString(func(s string) error {
		return d.SetFeature(name, s)
	})
}

// errStatus picks the HTTP status for an error from the camera
func errStatus(err error) int {
	var ferr gx.ErrFeatureNotFound
	switch {
	case errors.As(err, &ferr):
		return http.StatusNotFound
	case errors.Is(err, gx.StatusTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, gx.StatusInvalidParameter),
		errors.Is(err, gx.StatusOutOfRange),
		errors.Is(err, gx.StatusErrorType),
		errors.Is(err, gx.StatusNotImplemented):
		return http.StatusBadRequest
	case errors.Is(err, gx.StatusInvalidAccess), errors.Is(err, gx.StatusInvalidCall):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// SetExposureTime sets the exposure time on a POST request.
// it can be provided either as a query parameter exposureTime, formatted in a
// way that is parseable by golang/time.ParseDuration, or a json payload with
// key f64, holding the exposure time in seconds.
func (h *HTTPWrapper) SetExposureTime(w http.ResponseWriter, r *http.Request) {
	texp := r.URL.Query().Get("exposureTime")
	var d time.Duration
	var err error
	if texp == "" {
		f := generichttp.FloatT{}
		err = json.NewDecoder(r.Body).Decode(&f)
		defer r.Body.Close()
		d = util.SecsToDuration(f.F64)
	} else {
		d, err = util.ParseDuration(texp)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.Dev.SetExposureDuration(d)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetExposureTime gets the exposure time in seconds on a GET request
func (h *HTTPWrapper) GetExposureTime(w http.ResponseWriter, r *http.Request) {
	d, err := h.Dev.ExposureDuration()
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	hp := generichttp.HumanPayload{T: types.Float64, Float: d.Seconds()}
	hp.EncodeAndRespond(w, r)
}

// channel reads the channel query parameter as an entry of the selector f
func channel(r *http.Request, f gx.FeatureID, dflt string) (int64, error) {
	s := r.URL.Query().Get("channel")
	if s == "" {
		s = dflt
	}
	return gx.EnumValue(f, s)
}

// GetGain gets the gain of ?channel= (default All) in dB
func (h *HTTPWrapper) GetGain(w http.ResponseWriter, r *http.Request) {
	c, err := channel(r, gx.EnumGainSelector, "All")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	generichttp.GetFloat(func() (float64, error) { return h.Dev.Gain(gx.GainSelector(c)) })(w, r)
}

// SetGain sets the gain of ?channel= (default All) from {"f64": dB}
func (h *HTTPWrapper) SetGain(w http.ResponseWriter, r *http.Request) {
	c, err := channel(r, gx.EnumGainSelector, "All")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	generichttp.SetFloat(func(f float64) error { return h.Dev.SetGain(gx.GainSelector(c), f) })(w, r)
}

// GetGainRange returns the limits of the gain of ?channel= as JSON
func (h *HTTPWrapper) GetGainRange(w http.ResponseWriter, r *http.Request) {
	c, err := channel(r, gx.EnumGainSelector, "All")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	generichttp.JSON(func() (interface{}, error) { return h.Dev.GainRange(gx.GainSelector(c)) })(w, r)
}

// GetBalanceRatio gets the white balance ratio of ?channel= (default Red)
func (h *HTTPWrapper) GetBalanceRatio(w http.ResponseWriter, r *http.Request) {
	c, err := channel(r, gx.EnumBalanceRatioSelector, "Red")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	generichttp.GetFloat(func() (float64, error) { return h.Dev.BalanceRatio(gx.BalanceRatioSelector(c)) })(w, r)
}

// SetBalanceRatio sets the white balance ratio of ?channel= (default Red)
func (h *HTTPWrapper) SetBalanceRatio(w http.ResponseWriter, r *http.Request) {
	c, err := channel(r, gx.EnumBalanceRatioSelector, "Red")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	generichttp.SetFloat(func(f float64) error { return h.Dev.SetBalanceRatio(gx.BalanceRatioSelector(c), f) })(w, r)
}

// timestamp latches the camera clock and reads it
func (h *HTTPWrapper) timestamp() (int, error) {
	if err := h.Dev.LatchTimestamp(); err != nil {
		return 0, err
	}
	v, err := h.Dev.TimestampLatchValue()
	return int(v), err
}

// Info describes a camera and its current image format
type Info struct {
	Vendor       string `json:"vendor"`
	Model        string `json:"model"`
	SerialNumber string `json:"serialNumber"`
	Firmware     string `json:"firmware"`
	UserID       string `json:"userID"`
	PixelFormat  string `json:"pixelFormat"`
	Width        int64  `json:"width"`
	Height       int64  `json:"height"`
	SensorWidth  int64  `json:"sensorWidth"`
	SensorHeight int64  `json:"sensorHeight"`
	PayloadSize  int64  `json:"payloadSize"`
}

// Describe collects an Info from the camera.  Features the camera does not
// implement are left empty.
func Describe(d *gx.Device) (Info, error) {
	var (
		i   Info
		err error
	)
	strs := []struct {
		dst *string
		get func() (string, error)
	}{
		{&i.Vendor, d.VendorName},
		{&i.Model, d.ModelName},
		{&i.SerialNumber, d.SerialNumber},
		{&i.Firmware, d.FirmwareVersion},
		{&i.UserID, d.UserID},
	}
	for _, s := range strs {
		if *s.dst, err = s.get(); err != nil && !errors.Is(err, gx.StatusNotImplemented) {
			return i, err
		}
	}
	ints := []struct {
		dst *int64
		get func() (int64, error)
	}{
		{&i.Width, d.Width},
		{&i.Height, d.Height},
		{&i.SensorWidth, d.SensorWidth},
		{&i.SensorHeight, d.SensorHeight},
		{&i.PayloadSize, d.PayloadSize},
	}
	for _, n := range ints {
		if *n.dst, err = n.get(); err != nil && !errors.Is(err, gx.StatusNotImplemented) {
			return i, err
		}
	}
	pf, err := d.PixelFormat()
	if err != nil {
		return i, err
	}
	i.PixelFormat = pf.String()
	return i, nil
}

// GetFeatures gets all of the possible features, mapped by their
// type
func (h *HTTPWrapper) GetFeatures(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err := json.NewEncoder(w).Encode(gx.FeatureNames())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetFeature gets a feature, the type of which is determined by the server
func (h *HTTPWrapper) GetFeature(w http.ResponseWriter, r *http.Request) {
	feature := chi.URLParam(r, "feature")
	f, err := gx.LookupFeature(feature)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if f.Kind() == gx.KindCommand {
		http.Error(w, "cannot get a command feature", http.StatusBadRequest)
		return
	}
	v, err := h.Dev.GetFeature(feature)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	var hp generichttp.HumanPayload
	switch x := v.(type) {
	case int64:
		hp = generichttp.HumanPayload{T: types.Int, Int: int(x)}
	case float64:
		hp = generichttp.HumanPayload{T: types.Float64, Float: x}
	case bool:
		hp = generichttp.HumanPayload{T: types.Bool, Bool: x}
	case string:
		hp = generichttp.HumanPayload{T: types.String, String: x}
	}
	hp.EncodeAndRespond(w, r)
}

// SetFeature sets a feature, the type of which is determined by the setup.
// Commands are executed and take no body.
func (h *HTTPWrapper) SetFeature(w http.ResponseWriter, r *http.Request) {
	feature := chi.URLParam(r, "feature")
	f, err := gx.LookupFeature(feature)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	defer r.Body.Close()
	var v interface{}
	switch f.Kind() {
	case gx.KindCommand:
		err = h.Dev.Command(feature)
		if err != nil {
			http.Error(w, err.Error(), errStatus(err))
			return
		}
		w.WriteHeader(http.StatusOK)
		return
	case gx.KindInt:
		i := generichttp.IntT{}
		err = json.NewDecoder(r.Body).Decode(&i)
		v = i.Int
	case gx.KindFloat:
		x := generichttp.FloatT{}
		err = json.NewDecoder(r.Body).Decode(&x)
		v = x.F64
	case gx.KindBool:
		b := generichttp.BoolT{}
		err = json.NewDecoder(r.Body).Decode(&b)
		v = b.Bool
	case gx.KindEnum:
		s := generichttp.StrT{}
		err = json.NewDecoder(r.Body).Decode(&s)
		v = s.Str
	default:
		http.Error(w, "cannot set a "+f.Kind().String()+" feature", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.Dev.SetFeature(feature, v)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

// render converts a frame for display and scales it
func (h *HTTPWrapper) render(f *gx.Frame, scale float64) (image.Image, error) {
	img, err := dx.Image(h.Proc, f, h.opts.Conversion)
	if err != nil {
		return nil, err
	}
	return Scale(img, scale), nil
}

// GetFrame takes a picture and returns it on a GET request.
//
// the image format may be specified in the fmt query parameter, one of
// jpg, png, or fits; default to jpg.
//
// the exposure time may be specified as a query parameter in any time-looking
// format, such as "25ms" or "10us".  Strictly speaking, it must be a valid
// input to golang time.ParseDuration.
//
// if no unit is appended, an s (seconds) is added.
//
// if no exposure time is provided, it is not updated and the existing value is used.
//
// scale resizes jpg and png images, timeout bounds the wait for the frame.
func (h *HTTPWrapper) GetFrame(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := strings.ToLower(q.Get("fmt"))
	if format == "" {
		format = "jpg"
	}
	if format != "jpg" && format != "jpeg" && format != "png" && format != "fits" {
		http.Error(w, "fmt must be one of jpg, png, fits", http.StatusBadRequest)
		return
	}
	scale, err := parseScale(q.Get("scale"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	timeout := 0 * time.Second
	if s := q.Get("timeout"); s != "" {
		timeout, err = util.ParseDuration(s)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if texp := q.Get("exposureTime"); texp != "" {
		T, err := util.ParseDuration(texp)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		err = h.Dev.SetExposureDuration(T)
		if err != nil {
			http.Error(w, err.Error(), errStatus(err))
			return
		}
	}
	if timeout == 0 {
		timeout = h.hub.frameTimeout()
	}
	f, err := h.hub.Next(r.Context(), timeout)
	if err != nil {
		http.Error(w, err.Error(), errStatus(err))
		return
	}

	// declare a writer to use to stream the file to
	var w2 io.Writer = w
	if h.Recorder.Active() && h.Recorder.Extension() == format {
		w2 = io.MultiWriter(w, h.Recorder)
		defer h.Recorder.Incr()
	}
	if format == "fits" {
		hdr := w.Header()
		hdr.Set("Content-Type", "image/fits")
		hdr.Set("Content-Disposition", "attachment; filename=image.fits")
		err = WriteFits(w2, frameCards(h.Dev, f), f.Width, f.Height, f.U16())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	img, err := h.render(f, scale)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if format == "png" {
		w.Header().Set("Content-Type", "image/png")
	} else {
		w.Header().Set("Content-Type", "image/jpeg")
	}
	w.WriteHeader(http.StatusOK)
	encode(w2, img, format, h.opts.JPEGQuality)
}
