package flashstore

import (
	"os"
	"strings"

	"tinygo.org/x/tinyfs"
	"tinygo.org/x/tinyfs/littlefs"
)

const (
	recordDir  = "/flash"
	recordFile = "/flash/record.bin"
	tempSuffix = ".tmp"
)

// Store persists the flash record on a LittleFS-formatted block device.
// The record is rewritten as a whole: writes go to a temp file, are synced
// so they actually hit flash, then atomically renamed over the live file —
// the same atomic-write discipline the teacher's pkg/storage uses, applied
// here to a single logical record instead of a directory of profile files.
//
// Load is read-once-at-boot; SaveNow is synchronous and MUST complete
// before any subsequent Load (spec.md §4.1). The caller is responsible for
// wrapping SaveNow in the flash-lockout primitive (pkg/corebus) so Core 1
// is parked across the erase/program interval.
type Store struct {
	fs       *littlefs.LFS
	blockDev tinyfs.BlockDevice
	mounted  bool
}

// Init mounts the filesystem, formatting it first if format is true and the
// mount fails (first boot / corrupt filesystem).
func Init(blockDev tinyfs.BlockDevice, format bool) (*Store, error) {
	lfs := littlefs.New(blockDev)
	lfs.Configure(&littlefs.Config{
		CacheSize:     512,
		LookaheadSize: 128,
	})

	if err := lfs.Mount(); err != nil {
		if !format {
			return nil, err
		}
		if err := lfs.Format(); err != nil {
			return nil, err
		}
		if err := lfs.Mount(); err != nil {
			return nil, err
		}
	}

	s := &Store{fs: lfs, blockDev: blockDev, mounted: true}
	s.bootCleanup()
	return s, nil
}

// Close unmounts the filesystem.
func (s *Store) Close() error {
	if !s.mounted {
		return nil
	}
	s.mounted = false
	return s.fs.Unmount()
}

// bootCleanup removes any temp file left behind by a write interrupted by
// power loss, the way the teacher's storage.bootCleanup does.
func (s *Store) bootCleanup() {
	entries, err := s.fs.Open(recordDir)
	if err != nil {
		return
	}
	defer entries.Close()

	list, err := entries.Readdir(-1)
	if err != nil {
		return
	}
	for _, e := range list {
		if strings.HasSuffix(e.Name(), tempSuffix) {
			s.fs.Remove(recordDir + "/" + e.Name())
		}
	}
}

// Load reads the persisted record. It returns false — and the caller must
// use DefaultRecord() — if the file is absent, the magic is wrong, or the
// CRC doesn't match (spec.md §4.1, §7).
func (s *Store) Load() (Record, bool) {
	f, err := s.fs.Open(recordFile)
	if err != nil {
		return Record{}, false
	}
	defer f.Close()

	buf := make([]byte, recordBodySize+4)
	n, err := f.Read(buf)
	if err != nil || n != len(buf) {
		return Record{}, false
	}

	var r Record
	if err := r.UnmarshalBinary(buf); err != nil {
		return Record{}, false
	}
	return r, true
}

// Stats summarizes flash usage for the configuration console's storage
// query (spec.md §4.2 step 4, teacher's storage.Manager.GetStats).
type Stats struct {
	TotalSpace   int64
	UsedSpace    int64
	FreeSpace    int64
	ProfileCount int
}

// recordOverhead estimates the LittleFS directory-entry cost of the single
// record file, the same fixed-overhead estimate the teacher's GetStats
// used per file.
const recordOverhead = 100

// Stats estimates flash usage from the current record: one record file of
// recordBodySize+4 bytes, plus every occupied (non-empty-name) profile
// slot counted toward ProfileCount. LittleFS has no direct free-space
// query, so UsedSpace is an estimate, matching the teacher's own
// approach.
func (s *Store) Stats() Stats {
	total := s.blockDev.Size()
	used := int64(recordBodySize + 4 + recordOverhead)

	record, ok := s.Load()
	count := 0
	if ok {
		for _, slot := range record.Slots {
			if slot.Name != "" {
				count++
			}
		}
	}

	return Stats{
		TotalSpace:   total,
		UsedSpace:    used,
		FreeSpace:    total - used,
		ProfileCount: count,
	}
}

// SaveNow writes record to flash synchronously and does not return until
// the write has been durably committed.
func (s *Store) SaveNow(record Record) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	data, err := record.MarshalBinary()
	if err != nil {
		return err
	}
	return s.atomicWrite(recordFile, data)
}

func (s *Store) ensureDir() error {
	if err := s.fs.Mkdir(recordDir, 0755); err != nil && !isExist(err) {
		return err
	}
	return nil
}

func isExist(err error) bool {
	if err == nil {
		return false
	}
	if os.IsExist(err) {
		return true
	}
	return strings.Contains(err.Error(), "already exists")
}

// atomicWrite writes data to a temp file, syncs it so it actually hits
// flash, then atomically renames it over filepath. The original file is
// never observed in a partially written state.
func (s *Store) atomicWrite(filepath string, data []byte) error {
	tempPath := filepath + tempSuffix
	s.fs.Remove(tempPath)

	f, err := s.fs.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		s.fs.Remove(tempPath)
		return err
	}

	if syncer, ok := f.(interface{ Sync() error }); ok {
		if err := syncer.Sync(); err != nil {
			f.Close()
			s.fs.Remove(tempPath)
			return err
		}
	}

	if err := f.Close(); err != nil {
		s.fs.Remove(tempPath)
		return err
	}

	s.fs.Remove(filepath)
	if err := s.fs.Rename(tempPath, filepath); err != nil {
		s.fs.Remove(tempPath)
		return err
	}

	return nil
}
