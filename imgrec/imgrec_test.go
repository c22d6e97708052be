package imgrec

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func fixed() time.Time { return time.Date(2021, 3, 9, 12, 0, 0, 0, time.UTC) }

func TestWriteGoesToDatedFolder(t *testing.T) {
	root := t.TempDir()
	r := &Recorder{Root: root, Prefix: "cam", now: fixed}
	if _, err := r.Write([]byte("abc")); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, "2021-03-09", "cam000000.fits")
	b, err := os.ReadFile(want)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "abc" {
		t.Errorf("expected abc in %s, got %q", want, b)
	}
}

func TestIncrScansFolder(t *testing.T) {
	root := t.TempDir()
	r := &Recorder{Root: root, Prefix: "cam", Ext: "png", now: fixed}
	dir := filepath.Join(root, "2021-03-09")
	os.MkdirAll(dir, 0777)
	for _, fn := range []string{"cam000004.png", "cam000002.png", "cam000009.fits", "other000020.png"} {
		os.WriteFile(filepath.Join(dir, fn), nil, 0666)
	}
	r.Incr()
	if want := filepath.Join(dir, "cam000005.png"); r.Filename() != want {
		t.Errorf("expected next file %s, got %s", want, r.Filename())
	}
}

func TestActive(t *testing.T) {
	var r *Recorder
	if r.Active() {
		t.Error("nil recorder should not be active")
	}
	r = &Recorder{Enabled: true}
	if r.Active() {
		t.Error("recorder without a root should not be active")
	}
	r.Root = t.TempDir()
	if !r.Active() {
		t.Error("enabled recorder with a root should be active")
	}
}
