// Package imgrec contains an image recorder used to automatically save images to disk.
package imgrec

import (
	"encoding/json"
	"fmt"
	"go/types"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nasa-jpl/gxcam/generichttp"
)

// DefaultExt is the file extension used when Ext is empty
const DefaultExt = "fits"

// Recorder records image sequences with incrementing filenames in yyyy-mm-dd
// subfolders.  The exported fields may be set before first use; afterwards,
// use the setters.
type Recorder struct {
	mu sync.Mutex

	// counter is the internally incrementing counter
	counter int

	// Root is the root path
	Root string

	// Prefix is the prefix for the filenames
	Prefix string

	// Ext is the file extension, without the dot
	Ext string

	// timeFldr is the subfolder with yyyy-mm-dd format.
	timeFldr string

	// Enabled gates Active
	Enabled bool

	// now is time.Now, swapped in tests
	now func() time.Time
}

func (r *Recorder) ext() string {
	if r.Ext == "" {
		return DefaultExt
	}
	return strings.TrimPrefix(r.Ext, ".")
}

// updateFolder checks the current time and updates the folder as needed
func (r *Recorder) updateFolder() {
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	t := now()
	r.timeFldr = fmt.Sprintf("%04d-%02d-%02d", t.Year(), t.Month(), t.Day())
}

// mkDir makes the folder and returns it
func (r *Recorder) mkDir() (string, error) {
	fldr := filepath.Join(r.Root, r.timeFldr)
	err := os.MkdirAll(fldr, 0777)
	return fldr, err
}

// Active is true if the recorder is enabled and has somewhere to write
func (r *Recorder) Active() bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Enabled && r.Root != ""
}

// Extension returns the file extension in use, without the dot
func (r *Recorder) Extension() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ext()
}

// Filename returns the path the next Write will go to
func (r *Recorder) Filename() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateFolder()
	return r.filename()
}

func (r *Recorder) filename() string {
	fn := fmt.Sprintf("%s%06d.%s", r.Prefix, r.counter, r.ext())
	return filepath.Join(r.Root, r.timeFldr, fn)
}

// Write implements io.Writer and appends p to the current file
func (r *Recorder) Write(p []byte) (n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// make sure the folder exists
	r.updateFolder()
	if _, err = r.mkDir(); err != nil {
		return 0, err
	}
	fid, err := os.OpenFile(r.filename(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		return 0, err
	}
	defer fid.Close()
	return fid.Write(p)
}

// Incr updates the filename counter; it scans the folder to do so.  If there is an error, the counter is not incremented
func (r *Recorder) Incr() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateFolder()
	dn, _ := r.mkDir()
	files, err := os.ReadDir(dn)
	if err != nil {
		return
	}
	count := -1
	suffix := "." + r.ext()
	for _, file := range files {
		// skip directories, other extensions, and wrong prefix
		if file.IsDir() {
			continue
		}
		fn := file.Name()
		if !strings.HasSuffix(fn, suffix) || !strings.HasPrefix(fn, r.Prefix) {
			continue
		}
		bit := strings.TrimSuffix(strings.TrimPrefix(fn, r.Prefix), suffix)
		n, err := strconv.Atoi(bit)
		if err != nil {
			continue
		}
		if count < n {
			count = n
		}
	}
	r.counter = count + 1
}

// SetRoot changes the root folder and creates it
func (r *Recorder) SetRoot(root string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Root = root
	r.updateFolder()
	_, err := r.mkDir()
	return err
}

// SetPrefix changes the filename prefix and restarts the count
func (r *Recorder) SetPrefix(prefix string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Prefix = prefix
	r.counter = 0
}

// SetEnabled turns the recorder on or off
func (r *Recorder) SetEnabled(b bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Enabled = b
}

// snapshot returns the root, prefix and enabled flag
func (r *Recorder) snapshot() (string, string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Root, r.Prefix, r.Enabled
}

// HTTPWrapper is an HTTP wrapper around an image recorder that allows the folder and prefix to be changed on the fly
//
// it does not implement generichttp.HTTPer, offering an Inject method allowing it to be injected
// into another HTTPer
type HTTPWrapper struct {
	*Recorder
}

// NewHTTPWrapper returns an HTTP wrapper around a recorder
func NewHTTPWrapper(r *Recorder) HTTPWrapper {
	return HTTPWrapper{r}
}

// SetRoot updates the root folder of the recorder
func (h HTTPWrapper) SetRoot(w http.ResponseWriter, r *http.Request) {
	str := generichttp.StrT{}
	err := json.NewDecoder(r.Body).Decode(&str)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.Recorder.SetRoot(str.Str)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetRoot gets the recorder's root folder and sends it back as JSON
func (h HTTPWrapper) GetRoot(w http.ResponseWriter, r *http.Request) {
	root, _, _ := h.snapshot()
	hp := generichttp.HumanPayload{T: types.String, String: root}
	hp.EncodeAndRespond(w, r)
}

// SetPrefix updates the filename prefix of the recorder
func (h HTTPWrapper) SetPrefix(w http.ResponseWriter, r *http.Request) {
	str := generichttp.StrT{}
	err := json.NewDecoder(r.Body).Decode(&str)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.Recorder.SetPrefix(str.Str)
	w.WriteHeader(http.StatusOK)
}

// GetPrefix gets the recorder's prefix and sends it back as JSON
func (h HTTPWrapper) GetPrefix(w http.ResponseWriter, r *http.Request) {
	_, prefix, _ := h.snapshot()
	hp := generichttp.HumanPayload{T: types.String, String: prefix}
	hp.EncodeAndRespond(w, r)
}

// GetEnabled returns the Recorder's Enabled field
func (h HTTPWrapper) GetEnabled(w http.ResponseWriter, r *http.Request) {
	_, _, enabled := h.snapshot()
	hp := generichttp.HumanPayload{T: types.Bool, Bool: enabled}
	hp.EncodeAndRespond(w, r)
}

// SetEnabled sets the recorder's Enabled field
func (h HTTPWrapper) SetEnabled(w http.ResponseWriter, r *http.Request) {
	bT := generichttp.BoolT{}
	err := json.NewDecoder(r.Body).Decode(&bT)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.Recorder.SetEnabled(bT.Bool)
	w.WriteHeader(http.StatusOK)
}

// Inject adds GET and POST routes for /autowrite/root, /autowrite/prefix and /autowrite/enabled to the HTTPer which manipulate this wrapper's recorder
func (h HTTPWrapper) Inject(other generichttp.HTTPer) {
	rt := other.RT()
	rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/autowrite/root"}] = h.SetRoot
	rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/autowrite/root"}] = h.GetRoot
	rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/autowrite/prefix"}] = h.SetPrefix
	rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/autowrite/prefix"}] = h.GetPrefix
	rt[generichttp.MethodPath{Method: http.MethodPost, Path: "/autowrite/enabled"}] = h.SetEnabled
	rt[generichttp.MethodPath{Method: http.MethodGet, Path: "/autowrite/enabled"}] = h.GetEnabled
}
