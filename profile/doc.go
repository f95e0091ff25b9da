// Package profile provides optional runtime profiling for the tdl command.
//
// Profiling uses [github.com/pkg/profile] and is compiled in only with the
// "pprof" build tag. Without the tag every [Profiler] is a no-op and [Modes]
// is empty.
//
// # Modes
//
// allocs, block, clock, cpu, goroutine, heap, mem, mutex, thread and trace.
//
// # Usage
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/tdl-prof", Quiet: true}
//	defer p.Start().Stop()
//
// From the command line, build with the tag and select a mode:
//
//	go build -tags pprof -o tdl .
//	./tdl --pprof-mode cpu validate greeting.tdl
//	go tool pprof -http=: ~/.cache/tdl/pprof/cpu.pprof
//
// Building with the tag also registers the [net/http/pprof] handlers.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
