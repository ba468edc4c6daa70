package batch

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/process"
)

// MemorySampler reports the current process memory footprint in bytes.
// Samples are advisory and never gate control flow; a sampler that cannot
// measure returns zero.
type MemorySampler interface {
	Sample() uint64
}

type rssSampler struct {
	proc *process.Process
}

// NewRSSSampler samples the resident set size of this process.
func NewRSSSampler() MemorySampler {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Debug().Err(err).Msg("process handle unavailable, memory samples will be zero")
		proc = nil
	}
	return &rssSampler{proc: proc}
}

func (s *rssSampler) Sample() uint64 {
	if s.proc == nil {
		return 0
	}
	info, err := s.proc.MemoryInfo()
	if err != nil {
		log.Debug().Err(err).Msg("memory sample failed")
		return 0
	}
	return info.RSS
}

// SizeProber estimates the on-disk size of model artifacts. The estimate is
// optional diagnostics: ok is false when no estimate is available.
type SizeProber interface {
	Probe(dir string) (size uint64, ok bool)
}

type dirSizeProber struct{}

// NewDirSizeProber sums regular file sizes under a directory, best effort.
func NewDirSizeProber() SizeProber {
	return dirSizeProber{}
}

func (dirSizeProber) Probe(dir string) (uint64, bool) {
	if dir == "" {
		return 0, false
	}
	var total uint64
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += uint64(info.Size())
		}
		return nil
	})
	if err != nil {
		log.Debug().Err(err).Str("dir", dir).Msg("model size probe failed")
		return 0, false
	}
	return total, true
}
