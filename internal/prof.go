// Package internal holds helpers for the datahub command line.
package internal

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/oneconcern/datahub/internal/rand"
)

const profExt = ".prof"

// StartCPUProf starts profiling the CPU to a file. Call the returned func to stop profiling.
func StartCPUProf(path string) (func() error, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		return nil, multierr.Append(err, f.Close())
	}
	return func() error {
		pprof.StopCPUProfile()
		return f.Close()
	}, nil
}

func writeProfIfNExist(path string, name string) (err error) {
	if _, err = os.Stat(path); !os.IsNotExist(err) {
		return err
	}
	fprof, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, fprof.Close())
	}()
	return pprof.Lookup(name).WriteTo(fprof, 0)
}

// MemProfParams tells where to write memory profiles
type MemProfParams struct {
	DestDir    string
	NamePrefix string
	Logger     *zap.Logger
}

// WriteMemProf writes the heap and allocs profiles to files named after a prefix.
//
// Files already present are left untouched.
func WriteMemProf(params MemProfParams) error {
	if params.NamePrefix == "" {
		params.NamePrefix = "mem_" + strings.ToLower(rand.LetterString(3))
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	if err := os.MkdirAll(params.DestDir, 0o755); err != nil {
		return err
	}

	mstats := new(runtime.MemStats)
	runtime.ReadMemStats(mstats)
	params.Logger.Info("memory profile",
		zap.Uint64("MiB for heap (un-GC)", mstats.Alloc/1024/1024),
		zap.Uint64("MiB for heap (max ever)", mstats.HeapSys/1024/1024),
		zap.Int("num go routines", runtime.NumGoroutine()),
	)

	basePath := filepath.Join(params.DestDir, params.NamePrefix)
	if err := writeProfIfNExist(basePath+".mem"+profExt, "heap"); err != nil {
		return err
	}
	return writeProfIfNExist(basePath+".alloc"+profExt, "allocs")
}
