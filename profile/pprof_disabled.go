//go:build !pprof

package profile

// Modes returns the list of supported profiling modes, which is empty when
// the binary was built without the pprof build tag.
func Modes() []string { return nil }

// start is a no-op without the pprof build tag.
func start(_, _ string, _ bool) interface{ Stop() } {
	return ignore{}
}
