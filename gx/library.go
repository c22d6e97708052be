package gx

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
)

var (
	// refs counts the Library values referring to each SDK.  The SDK is
	// initialized when the count leaves zero and closed when it returns to it.
	refs   = map[SDK]int{}
	refsMu sync.Mutex
)

// Library represents a reference to the resources of the SDK.  Any number of
// Library values may refer to the same SDK; GXInitLib runs when the first
// opens and GXCloseLib when the last closes.
//
// SDK implementations must be comparable (pointer types are).
type Library struct {
	sdk   SDK
	refer bool
}

// NewLibrary returns a Library over sdk, calling Open when autoOpen is true
func NewLibrary(sdk SDK, autoOpen bool) (*Library, error) {
	l := &Library{sdk: sdk}
	if autoOpen {
		if err := l.Open(); err != nil {
			return l, err
		}
	}
	return l, nil
}

// SDK returns the SDK this library refers to
func (l *Library) SDK() SDK {
	return l.sdk
}

// IsRefer is true if this value holds a reference to the SDK
func (l *Library) IsRefer() bool {
	refsMu.Lock()
	defer refsMu.Unlock()
	return l.refer
}

// IsOpen is true if the SDK is initialized, by this or any other Library
func (l *Library) IsOpen() bool {
	return l.ReferenceCount() > 0
}

// ReferenceCount is the number of Library values referring to the SDK
func (l *Library) ReferenceCount() int {
	refsMu.Lock()
	defer refsMu.Unlock()
	return refs[l.sdk]
}

// Open increments the reference count, initializing the SDK if the count
// was zero.  Opening an already referring Library does nothing.
func (l *Library) Open() error {
	refsMu.Lock()
	defer refsMu.Unlock()
	if l.refer {
		return nil
	}
	if refs[l.sdk] == 0 {
		if err := check(l.sdk, "GXInitLib", l.sdk.InitLib()); err != nil {
			return err
		}
	}
	l.refer = true
	refs[l.sdk]++
	l.assertInvariant()
	return nil
}

// Close decrements the reference count, closing the SDK if this was the last
// reference.  Closing a Library which does not refer does nothing.
//
// Avoid calling Close from deferred functions of os.Exit paths; the SDK may
// already be torn down by the runtime of the vendor library.
func (l *Library) Close() error {
	refsMu.Lock()
	defer refsMu.Unlock()
	if !l.refer {
		return nil
	}
	if refs[l.sdk] == 1 {
		if err := check(l.sdk, "GXCloseLib", l.sdk.CloseLib()); err != nil {
			return err
		}
	}
	l.refer = false
	refs[l.sdk]--
	if refs[l.sdk] == 0 {
		delete(refs, l.sdk)
	}
	l.assertInvariant()
	return nil
}

// assertInvariant panics if this Library refers to an SDK nobody counts.
// refsMu must be held.
func (l *Library) assertInvariant() {
	if l.refer && refs[l.sdk] < 1 {
		panic("gx: library reference count bug")
	}
}

func millis(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	ms := d.Milliseconds()
	if ms > int64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(ms)
}

// UpdateDeviceList enumerates the devices in the subnet and returns how many
// were found
func (l *Library) UpdateDeviceList(timeout time.Duration) (int, error) {
	n, s := l.sdk.UpdateDeviceList(millis(timeout))
	return int(n), check(l.sdk, "GXUpdateDeviceList", s)
}

// UpdateAllDeviceList enumerates the devices in the entire network and
// returns how many were found
func (l *Library) UpdateAllDeviceList(timeout time.Duration) (int, error) {
	n, s := l.sdk.UpdateAllDeviceList(millis(timeout))
	return int(n), check(l.sdk, "GXUpdateAllDeviceList", s)
}

// DeviceInfo describes the device at a 1-based index of the last enumeration
func (l *Library) DeviceInfo(index int) (DeviceInfo, error) {
	if index < 1 {
		return DeviceInfo{}, ErrInvalidIndex
	}
	info, s := l.sdk.GetDeviceInfo(uint32(index))
	return info, check(l.sdk, "GXGetAllDeviceBaseInfo", s)
}

// Devices enumerates the subnet and describes every device found
func (l *Library) Devices(timeout time.Duration) ([]DeviceInfo, error) {
	n, err := l.UpdateDeviceList(timeout)
	if err != nil {
		return nil, err
	}
	out := make([]DeviceInfo, 0, n)
	for i := 1; i <= n; i++ {
		info, err := l.DeviceInfo(i)
		if err != nil {
			return out, err
		}
		out = append(out, info)
	}
	return out, nil
}

// OpenDeviceByIndex opens the device at a 1-based index of the last enumeration
func (l *Library) OpenDeviceByIndex(index int) (*Device, error) {
	if index < 1 {
		return nil, ErrInvalidIndex
	}
	h, s := l.sdk.OpenDeviceByIndex(uint32(index))
	if err := check(l.sdk, "GXOpenDeviceByIndex", s); err != nil {
		return nil, err
	}
	return NewDevice(l.sdk, h), nil
}

// OpenDevice opens the device identified by p
func (l *Library) OpenDevice(p OpenParam) (*Device, error) {
	h, s := l.sdk.OpenDevice(p)
	if err := check(l.sdk, "GXOpenDevice", s); err != nil {
		return nil, err
	}
	return NewDevice(l.sdk, h), nil
}

// Retryable is true for errors that may clear up on their own: a camera
// still booting, held by another process, or slow to answer
func Retryable(err error) bool {
	switch StatusOf(err) {
	case StatusOffline, StatusNotFoundDevice, StatusInvalidAccess, StatusTimeout:
		return true
	}
	return false
}

// DefaultOpenBackoff is the policy used by OpenWithRetry when b is nil
func DefaultOpenBackoff() backoff.BackOff {
	return &backoff.ExponentialBackOff{
		InitialInterval:     250 * time.Millisecond,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         4 * time.Second,
		MaxElapsedTime:      30 * time.Second,
		Clock:               backoff.SystemClock}
}

// OpenWithRetry opens the device identified by p, re-enumerating and retrying
// while the failure is Retryable.  The policy b may be nil for the default.
func (l *Library) OpenWithRetry(ctx context.Context, p OpenParam, enumTimeout time.Duration, b backoff.BackOff) (*Device, error) {
	if b == nil {
		b = DefaultOpenBackoff()
	}
	b.Reset()
	var dev *Device
	op := func() error {
		// the SDK only opens devices present in its last enumeration
		if _, err := l.UpdateDeviceList(enumTimeout); err != nil {
			if Retryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		d, err := l.OpenDevice(p)
		if err != nil {
			if Retryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		dev = d
		return nil
	}
	err := backoff.Retry(op, backoff.WithContext(b, ctx))
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Err
	}
	return dev, err
}
