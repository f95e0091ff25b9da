//go:build pprof

package profile

import (
	"maps"
	"slices"
	"sync"

	"github.com/pkg/profile"

	_ "net/http/pprof" // register HTTP handlers
)

// Modes returns the supported profiling modes in sorted order. The special
// mode "quiet" is omitted.
var Modes = sync.OnceValue(
	func() []string {
		m := maps.Clone(mode)
		delete(m, "quiet")

		return slices.Sorted(maps.Keys(m))
	},
)

var mode = map[string]func(*profile.Profile){
	"block":     profile.BlockProfile,
	"cpu":       profile.CPUProfile,
	"clock":     profile.ClockProfile,
	"goroutine": profile.GoroutineProfile,
	"mem":       profile.MemProfile,
	"allocs":    profile.MemProfileAllocs,
	"heap":      profile.MemProfileHeap,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
	"quiet":     profile.Quiet,
}

// option appends pkg/profile settings to a session.
type option func([]func(*profile.Profile)) []func(*profile.Profile)

func start(m, path string, quiet bool) Stopper {
	var opts []func(*profile.Profile)

	opts = withMode(m)(opts)
	if len(opts) == 0 {
		return ignore{}
	}

	for _, opt := range []option{withPath(path), withQuiet(quiet)} {
		opts = opt(opts)
	}

	return profile.Start(opts...)
}

func withMode(m string) option {
	return func(opts []func(*profile.Profile)) []func(*profile.Profile) {
		if fn, ok := mode[m]; ok && m != "quiet" {
			opts = append(opts, fn)
		}

		return opts
	}
}

func withPath(p string) option {
	return func(opts []func(*profile.Profile)) []func(*profile.Profile) {
		if p != "" {
			opts = append(opts, profile.ProfilePath(p))
		}

		return opts
	}
}

func withQuiet(v bool) option {
	return func(opts []func(*profile.Profile)) []func(*profile.Profile) {
		if v {
			opts = append(opts, profile.Quiet)
		}

		return opts
	}
}
