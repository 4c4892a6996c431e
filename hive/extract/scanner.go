package extract

import (
	"sync"

	"github.com/forensicFODs/registry-analysis-tools/hive"
	"github.com/forensicFODs/registry-analysis-tools/hive/artifact"
	"github.com/forensicFODs/registry-analysis-tools/pkg/types"
)

// Options tunes a Scanner.
type Options struct {
	// MaxSeeds caps the seed offsets used per pattern for kinds without a
	// fixed cap. Zero means unlimited.
	MaxSeeds int

	// Workers is the number of kinds extracted concurrently by Run.
	// Values below 2 run every kind on the calling goroutine.
	Workers int
}

// Scanner runs extractors over one hive buffer.
type Scanner struct {
	buf  *hive.Buffer
	typ  types.HiveType
	opts Options

	dosOnce    sync.Once
	dosDevices []driveMarker
}

// New returns a scanner for b, classified as typ.
func New(b *hive.Buffer, typ types.HiveType, opts Options) *Scanner {
	return &Scanner{buf: b, typ: typ, opts: opts}
}

// HiveType returns the type the scanner gates on.
func (s *Scanner) HiveType() types.HiveType { return s.typ }

// seeds returns the ASCII search offsets for pattern, cut to limit (0 = no
// fixed cap) and then to Options.MaxSeeds.
func (s *Scanner) seeds(pattern string, limit int) []int {
	return s.capSeeds(s.buf.SearchString(pattern), limit)
}

func (s *Scanner) seedsUTF16(pattern string, limit int) []int {
	return s.capSeeds(s.buf.SearchUTF16(pattern), limit)
}

func (s *Scanner) capSeeds(offsets []int, limit int) []int {
	if limit > 0 && len(offsets) > limit {
		offsets = offsets[:limit]
	}
	if s.opts.MaxSeeds > 0 && len(offsets) > s.opts.MaxSeeds {
		offsets = offsets[:s.opts.MaxSeeds]
	}
	return offsets
}

func (s *Scanner) isUserHive() bool { return s.typ.IsUserHive() }

// All extracts every kind.
func (s *Scanner) All() *artifact.Findings {
	return s.Run(artifact.AllKinds...)
}

// Run extracts the given kinds. Kinds not listed are left empty.
func (s *Scanner) Run(kinds ...artifact.Kind) *artifact.Findings {
	f := &artifact.Findings{}
	if s.opts.Workers < 2 || len(kinds) < 2 {
		for _, k := range kinds {
			s.extractInto(f, k)
		}
		return f
	}

	// Each kind writes a distinct Findings field.
	sem := make(chan struct{}, s.opts.Workers)
	var (
		wg        sync.WaitGroup
		panicOnce sync.Once
		panicked  any
	)
	for _, k := range kinds {
		wg.Add(1)
		sem <- struct{}{}
		go func(k artifact.Kind) {
			defer func() {
				if r := recover(); r != nil {
					panicOnce.Do(func() { panicked = r })
				}
				<-sem
				wg.Done()
			}()
			s.extractInto(f, k)
		}(k)
	}
	wg.Wait()
	// Re-raised on the caller so the engine's recover sees it.
	if panicked != nil {
		panic(panicked)
	}
	return f
}

func (s *Scanner) extractInto(f *artifact.Findings, k artifact.Kind) {
	switch k {
	case artifact.KindShimCache:
		f.ShimCache = s.ShimCache()
	case artifact.KindAmcache:
		f.Amcache = s.Amcache()
	case artifact.KindUserAssist:
		f.UserAssist = s.UserAssist()
	case artifact.KindBAMDAM:
		f.BAMDAM = s.BAMDAM()
	case artifact.KindUSBDevice:
		f.USBDevices = s.USBDevices()
	case artifact.KindRecentDocs:
		f.RecentDocs = s.RecentDocs()
	case artifact.KindRunKeys:
		f.RunKeys = s.RunKeys()
	case artifact.KindSAMUsers:
		f.SAMUsers = s.SAMUsers()
	case artifact.KindNetworkProfiles:
		f.NetworkProfiles = s.NetworkProfiles()
	case artifact.KindShellBags:
		f.ShellBags = s.ShellBags()
	case artifact.KindMuiCache:
		f.MuiCache = s.MuiCache()
	case artifact.KindPrefetch:
		f.Prefetch = s.Prefetch()
	case artifact.KindLNK:
		f.LNKFiles = s.LNKFiles()
	case artifact.KindInstalledSoftware:
		f.InstalledSoftware = s.InstalledSoftware()
	case artifact.KindSecurity:
		f.Security = s.Security()
	case artifact.KindTypedPaths:
		f.TypedPaths = s.TypedPaths()
	case artifact.KindRecentApps:
		f.RecentApps = s.RecentApps()
	case artifact.KindServices:
		f.Services = s.Services()
	case artifact.KindWLANProfiles:
		f.WLANProfiles = s.WLANProfiles()
	case artifact.KindTimeZone:
		f.TimeZone = s.TimeZone()
	}
}
