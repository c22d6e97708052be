package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/google/gousb"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/theckman/yacspin"

	"github.com/nasa-jpl/gxcam/dx"
	"github.com/nasa-jpl/gxcam/generichttp"
	"github.com/nasa-jpl/gxcam/generichttp/camera"
	"github.com/nasa-jpl/gxcam/gx"
	"github.com/nasa-jpl/gxcam/gx/sim"
	"github.com/nasa-jpl/gxcam/imgrec"
	"github.com/nasa-jpl/gxcam/server/middleware/locker"
	"github.com/nasa-jpl/gxcam/usbscan"

	yml "gopkg.in/yaml.v2"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is what it sounds like
	ConfigFileName = "gxhttp.yml"
	k              = koanf.New(".")
)

type openConfig struct {
	// By is one of sn, ip, mac, index, userid
	By      string `koanf:"By" yaml:"By"`
	Content string `koanf:"Content" yaml:"Content"`

	// Access is one of readonly, control, exclusive
	Access string `koanf:"Access" yaml:"Access"`
}

type retryConfig struct {
	Initial    time.Duration `koanf:"Initial" yaml:"Initial"`
	Max        time.Duration `koanf:"Max" yaml:"Max"`
	MaxElapsed time.Duration `koanf:"MaxElapsed" yaml:"MaxElapsed"`
}

type streamConfig struct {
	MaxFPS       float64       `koanf:"MaxFPS" yaml:"MaxFPS"`
	JPEGQuality  int           `koanf:"JPEGQuality" yaml:"JPEGQuality"`
	FrameTimeout time.Duration `koanf:"FrameTimeout" yaml:"FrameTimeout"`
	Conversion   string        `koanf:"Conversion" yaml:"Conversion"`
}

type recorder struct {
	// Root is the root folder to write to
	Root string `koanf:"Root" yaml:"Root"`

	// Prefix is the filename prefix to use
	Prefix string `koanf:"Prefix" yaml:"Prefix"`

	// Ext is the format recorded, fits, jpg or png
	Ext string `koanf:"Ext" yaml:"Ext"`

	Enabled bool `koanf:"Enabled" yaml:"Enabled"`
}

type usbConfig struct {
	VendorID int `koanf:"VendorID" yaml:"VendorID"`
}

type config struct {
	Addr        string                 `koanf:"Addr" yaml:"Addr"`
	Root        string                 `koanf:"Root" yaml:"Root"`
	Mock        bool                   `koanf:"Mock" yaml:"Mock"`
	MetricsPath string                 `koanf:"MetricsPath" yaml:"MetricsPath"`
	Open        openConfig             `koanf:"Open" yaml:"Open"`
	EnumTimeout time.Duration          `koanf:"EnumTimeout" yaml:"EnumTimeout"`
	OpenRetry   retryConfig            `koanf:"OpenRetry" yaml:"OpenRetry"`
	Stream      streamConfig           `koanf:"Stream" yaml:"Stream"`
	Recorder    recorder               `koanf:"Recorder" yaml:"Recorder"`
	BootupArgs  map[string]interface{} `koanf:"BootupArgs" yaml:"BootupArgs"`
	USB         usbConfig              `koanf:"USB" yaml:"USB"`
}

func setupconfig() {
	k.Load(structs.Provider(config{
		Addr:        ":8000",
		Root:        "/",
		MetricsPath: "/metrics",
		Open:        openConfig{By: "index", Content: "1", Access: "exclusive"},
		EnumTimeout: time.Second,
		OpenRetry: retryConfig{
			Initial:    250 * time.Millisecond,
			Max:        4 * time.Second,
			MaxElapsed: 30 * time.Second},
		Stream: streamConfig{
			MaxFPS:       camera.DefaultOptions.MaxFPS,
			JPEGQuality:  camera.DefaultOptions.JPEGQuality,
			FrameTimeout: camera.DefaultOptions.FrameTimeout,
			Conversion:   camera.DefaultOptions.Conversion.String()},
		Recorder: recorder{Ext: imgrec.DefaultExt},
		BootupArgs: map[string]interface{}{
			"TriggerMode":  "Off",
			"ExposureAuto": "Off",
			"GainAuto":     "Off"},
		USB: usbConfig{VendorID: usbscan.DahengVID}}, "koanf"), nil)
	if err := k.Load(file.Provider(ConfigFileName), yaml.Parser()); err != nil {
		errtxt := err.Error()
		if !strings.Contains(errtxt, "no such") { // file missing, who cares
			log.Fatalf("error loading config: %v", err)
		}
	}
}

func root() {
	str := `gxhttp exposes control of Daheng Imaging Galaxy cameras over HTTP
This enables a server-client architecture,
and the clients can leverage the excellent HTTP
libraries for any programming language,
instead of custom socket logic.

Usage:
	gxhttp <command>

Commands:
	run
	list
	usb
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `gxhttp is amenable to configuration via its .yaml file.  For a primer on YAML, see
https://yaml.org/start.html

When no configuration is provided, the defaults are used.
The command mkconf generates the configuration file with the default values.
There is no need to do this unless you want to start from the prepopulated defaults when making
a config file.

Open selects the camera.  By is one of sn, ip, mac, index, userid and Content is the
serial number, address, 1-based index or user id.  Access is one of readonly, control
and exclusive.  If the camera is offline or held by another program, opening is retried
with exponential backoff as configured by OpenRetry.

If for some reason there is an error during server bootup, it may be that a feature is not
supported by the camera.  Modify the BootupArgs portion of the config to remove the offending
parameters.  gxhttp list shows the cameras the SDK can see; if a USB camera is missing there,
gxhttp usb shows whether it is on the bus at all.

Mock serves a simulated colour camera, no hardware or SDK needed.

Prometheus metrics for the live view loop are served at MetricsPath, outside of Root
and the lock.

gxhttp must be built with -tags gxiapi to control real cameras.  Without DxImageProc colour
frames are served as raw grey images.

If the files and folders created do not have the permissions you want on linux,
your umask is likely to blame  gxhttp makes them with permission 666, but your
umask is probably the default of 0022 which knocks them down to 444.  Set your
umask to 0000 before running gxhttp to solve this.`
	fmt.Println(str)
}

func loadconf() config {
	c := config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	return c
}

func mkconf() {
	c := loadconf()
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	err = yml.NewEncoder(f).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func printconf() {
	c := loadconf()
	err := yml.NewEncoder(os.Stdout).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("gxhttp version %v\n", Version)
}

// newSDK returns the simulator in mock mode, else the Galaxy SDK
func newSDK(cfg config) gx.SDK {
	if cfg.Mock {
		return sim.New(sim.NewCamera("MOCK0", true))
	}
	return gx.Native()
}

func list() {
	cfg := loadconf()
	lib, err := gx.NewLibrary(newSDK(cfg), true)
	if err != nil {
		log.Fatal(err)
	}
	defer lib.Close()
	spinner, err := yacspin.New(yacspin.Config{
		Frequency:         100 * time.Millisecond,
		CharSet:           yacspin.CharSets[11],
		Suffix:            " enumerating cameras",
		StopCharacter:     "✓",
		StopColors:        []string{"fgGreen"},
		StopFailCharacter: "✗",
		StopFailColors:    []string{"fgRed"},
	})
	if err == nil {
		spinner.Start()
	}
	devs, err := lib.Devices(cfg.EnumTimeout)
	if spinner != nil {
		if err != nil {
			spinner.StopFailMessage(err.Error())
			spinner.StopFail()
		} else {
			spinner.StopMessage(fmt.Sprintf("found %d", len(devs)))
			spinner.Stop()
		}
	}
	if err != nil {
		log.Fatal(err)
	}
	for i, d := range devs {
		line := fmt.Sprintf("%d: %s %s SN %s (%s)", i+1, d.Vendor, d.Model, d.SerialNumber, d.Class)
		if d.IP != "" {
			line += fmt.Sprintf(" IP %s MAC %s", d.IP, d.MAC)
		}
		if d.UserID != "" {
			line += fmt.Sprintf(" user id %q", d.UserID)
		}
		fmt.Println(line)
	}
}

func usb() {
	cfg := loadconf()
	devs, err := usbscan.Scan(gousb.ID(cfg.USB.VendorID))
	if err != nil {
		log.Fatal(err)
	}
	if len(devs) == 0 {
		fmt.Printf("no USB devices of vendor %04x\n", cfg.USB.VendorID)
		return
	}
	for _, d := range devs {
		fmt.Println(d)
	}
}

func run() {
	cfg := loadconf()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	lib, err := gx.NewLibrary(newSDK(cfg), true)
	if err != nil {
		log.Fatal(err)
	}
	defer lib.Close()
	p, err := gx.ParseOpenParam(cfg.Open.By, cfg.Open.Content, cfg.Open.Access)
	if err != nil {
		log.Fatal(err)
	}
	b := &backoff.ExponentialBackOff{
		InitialInterval:     cfg.OpenRetry.Initial,
		RandomizationFactor: backoff.DefaultRandomizationFactor,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         cfg.OpenRetry.Max,
		MaxElapsedTime:      cfg.OpenRetry.MaxElapsed,
		Clock:               backoff.SystemClock}
	log.Println("opening camera", p)
	d, err := lib.OpenWithRetry(ctx, p, cfg.EnumTimeout, b)
	if err != nil {
		log.Fatal(err)
	}
	defer d.Close()

	info, err := camera.Describe(d)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("connected to %s %s SN %s firmware %s", info.Vendor, info.Model, info.SerialNumber, info.Firmware)
	log.Printf("%dx%d %s", info.Width, info.Height, info.PixelFormat)

	err = d.Configure(cfg.BootupArgs)
	if err != nil {
		log.Fatal(err)
	}

	proc := dx.Native()
	if proc == nil {
		log.Println("DxImageProc is not linked, colour frames will be served as raw grey images")
	}
	conv, err := dx.ParseBayerConvertType(cfg.Stream.Conversion)
	if err != nil {
		log.Fatal(err)
	}

	args := cfg.Recorder
	r := &imgrec.Recorder{Root: args.Root, Prefix: args.Prefix, Ext: args.Ext, Enabled: args.Enabled}
	w := camera.NewHTTPWrapper(d, proc, r, camera.Options{
		MaxFPS:       cfg.Stream.MaxFPS,
		JPEGQuality:  cfg.Stream.JPEGQuality,
		FrameTimeout: cfg.Stream.FrameTimeout,
		Conversion:   conv})
	defer w.Close()
	lock := locker.New()
	locker.Inject(w, lock)

	// clean up the submux string
	hndlrS := generichttp.SubMuxSanitize(cfg.Root)
	top := chi.NewRouter()
	top.Use(middleware.Logger)
	mux := chi.NewRouter()
	mux.Use(lock.Check)
	w.RT().Bind(mux)
	top.Mount(hndlrS, mux)

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	reg.MustRegister(w.Collectors()...)
	top.Method(http.MethodGet, cfg.MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: cfg.Addr, Handler: top}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()
	log.Println("now listening for requests at ", cfg.Addr+hndlrS)
	err = srv.ListenAndServe()
	if err != http.ErrServerClosed {
		log.Println(err)
	}
	log.Println("shutting down")
}

func main() {
	var cmd string
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	setupconfig()
	cmd = args[1]
	cmd = strings.ToLower(cmd)
	switch cmd {
	case "help":
		help()
		return
	case "mkconf":
		mkconf()
		return
	case "conf":
		printconf()
		return
	case "run":
		run()
		return
	case "list":
		list()
		return
	case "usb":
		usb()
		return
	case "version":
		pversion()
		return
	default:
		log.Fatal("unknown command")
	}
}
