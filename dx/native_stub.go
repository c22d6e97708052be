//go:build !gxiapi
// +build !gxiapi

package dx

// Native returns the DxImageProc binding.  This build does not link the
// library, so it returns nil; conversions report ErrNoNativeSDK and Image
// falls back to grey.
func Native() Processor {
	return nil
}
