package extract

import (
	"sort"
	"strings"

	"github.com/forensicFODs/registry-analysis-tools/hive/artifact"
	"github.com/forensicFODs/registry-analysis-tools/pkg/types"
)

var (
	shimCacheSeeds  = []string{".exe", ".dll", ".sys", ".scr"}
	amcacheSeeds    = []string{".exe", ".dll", ".sys", ".msi"}
	amcacheFields   = []string{"ProgramName", "Publisher", "InstallDate"}
	userAssistSeeds = []string{
		"HRZR_PGYFRFFVBA", // UEME_CTLSESSION
		"HRZR_EHAPZH",     // UEME_RUNPMU
	}
	prefetchSeeds = []string{".pf", "Prefetch", "SCCA"}
)

const (
	devicePrefix     = `\Device\HarddiskVolume`
	devicePathMaxLen = 520
)

// ShimCache recovers AppCompatCache executable paths with their nearby
// modification time and file size.
func (s *Scanner) ShimCache() []artifact.ShimCacheEntry {
	var out []artifact.ShimCacheEntry
	for _, pattern := range shimCacheSeeds {
		for _, off := range s.seeds(pattern, 0) {
			p := s.shimPath(off)
			if len(p) <= 5 || !strings.Contains(p, `:\`) {
				continue
			}
			e := artifact.ShimCacheEntry{
				Base:      artifact.Base{Offset: off},
				Path:      p,
				Timestamp: s.timestampNear(off, timestampRadius, types.ExecutionYears),
			}
			if size, ok := s.dwordNear(off, sizeRadius, shimSizeOK); ok {
				e.FileSize = size
			}
			out = append(out, e)
		}
	}
	return mergeShimCache(out)
}

func shimSizeOK(v uint32) bool {
	return v > types.ShimCacheMinSize && v < types.ShimCacheMaxSize
}

func mergeShimCache(in []artifact.ShimCacheEntry) []artifact.ShimCacheEntry {
	m := newMerger(
		func(e artifact.ShimCacheEntry) string { return strings.ToLower(e.Path) },
		func(old, cand artifact.ShimCacheEntry) bool {
			if cand.Timestamp != "" && old.Timestamp == "" {
				return true
			}
			return cand.FileSize != 0 && old.FileSize == 0
		},
	)
	m.addAll(in)
	out := m.result()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Amcache recovers application inventory records. Only Amcache hives are
// scanned.
func (s *Scanner) Amcache() []artifact.AmcacheEntry {
	if s.typ != types.HiveAmcache {
		return nil
	}
	var out []artifact.AmcacheEntry
	for _, pattern := range amcacheSeeds {
		for _, off := range s.seeds(pattern, 0) {
			p := s.pathAt(off)
			if p == "" {
				continue
			}
			out = append(out, s.amcacheAt(off, baseName(p), p))
		}
	}
	for _, field := range amcacheFields {
		for _, off := range s.seeds(field, 0) {
			name := s.buf.ReadUTF16LE(off+20, 100)
			if len(name) <= 2 {
				continue
			}
			out = append(out, s.amcacheAt(off, name, s.pathAt(off)))
		}
	}
	return mergeAmcache(out)
}

func (s *Scanner) amcacheAt(off int, name, path string) artifact.AmcacheEntry {
	e := artifact.AmcacheEntry{
		Base:        artifact.Base{Offset: off},
		ProgramName: name,
		FilePath:    path,
		SHA1:        s.sha1Near(off),
		Timestamp:   s.nearbyTimestamp(off),
		Publisher:   s.publisherNear(off),
		Version:     s.versionNear(off),
	}
	if size, ok := s.dwordNear(off, sizeRadius, func(v uint32) bool {
		return v > 0 && v < types.AmcacheMaxSize
	}); ok {
		e.FileSize = size
	}
	return e
}

func mergeAmcache(in []artifact.AmcacheEntry) []artifact.AmcacheEntry {
	m := newMerger(
		func(e artifact.AmcacheEntry) string {
			if e.FilePath != "" {
				return strings.ToLower(e.FilePath)
			}
			return strings.ToLower(e.ProgramName)
		},
		func(old, cand artifact.AmcacheEntry) bool {
			return cand.InfoScore() > old.InfoScore()
		},
	)
	m.addAll(in)
	out := m.result()
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProgramName < out[j].ProgramName })
	return out
}

// UserAssist decodes ROT13 program names stored near UserAssist session
// markers, with run count, focus time and last execution time.
func (s *Scanner) UserAssist() []artifact.UserAssistEntry {
	var out []artifact.UserAssistEntry
	for _, pattern := range userAssistSeeds {
		for _, off := range s.seeds(pattern, 0) {
			for _, ctx := range s.contextStrings(off, 200) {
				if len(ctx) <= 5 {
					continue
				}
				decoded := Rot13(ctx)
				if !looksLikePath(decoded) {
					continue
				}
				e := artifact.UserAssistEntry{
					Base:         artifact.Base{Offset: off},
					Program:      strings.ReplaceAll(decoded, "UEME_", ""),
					LastExecuted: s.rawFiletimeNear(off, timestampRadius, types.UserAssistMinFiletime, types.UserAssistMaxFiletime),
				}
				if n, ok := s.dwordNear(off, sizeRadius, inRange(types.MinRunCount, types.MaxRunCount)); ok {
					e.RunCount = n
				}
				if ms, ok := s.dwordNear(off, sizeRadius, inRange(1, types.MaxFocusTimeMs)); ok {
					e.FocusTime = ms
				}
				out = append(out, e)
			}
		}
	}
	return mergeUserAssist(out)
}

// looksLikePath accepts a drive path, or any backslashed string over five
// characters.
func looksLikePath(p string) bool {
	return strings.Contains(p, `:\`) || (strings.Contains(p, `\`) && len(p) > 5)
}

func mergeUserAssist(in []artifact.UserAssistEntry) []artifact.UserAssistEntry {
	m := newMerger(
		func(e artifact.UserAssistEntry) string { return strings.ToLower(e.Program) },
		func(old, cand artifact.UserAssistEntry) bool {
			if cand.RunCount > old.RunCount {
				return true
			}
			if cand.RunCount < old.RunCount {
				return false
			}
			return cand.FocusTime != 0 && old.FocusTime == 0
		},
	)
	m.addAll(in)
	out := m.result()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Program < out[j].Program })
	return out
}

// BAMDAM recovers Background Activity Moderator executable paths, rewriting
// volume device paths to drive letters. Only SYSTEM hives are scanned.
func (s *Scanner) BAMDAM() []artifact.BAMEntry {
	if s.typ != types.HiveSystem {
		return nil
	}
	var out []artifact.BAMEntry
	add := func(off int, p string) {
		if !strings.Contains(p, `\`) {
			return
		}
		ts := s.nearbyTimestamp(off)
		if ts != "" && !types.BAMYears.Contains(yearOf(ts)) {
			return
		}
		out = append(out, artifact.BAMEntry{
			Base:      artifact.Base{Offset: off},
			Path:      DeviceToDrive(p),
			Timestamp: ts,
			UserSID:   s.userSIDNear(off),
		})
	}

	for _, off := range s.seeds(devicePrefix, 0) {
		p := cleanForwardPath(s.readForward(off, devicePathMaxLen, false))
		if p == "" {
			p = s.pathAt(off)
		}
		add(off, p)
	}
	for _, off := range s.seedsUTF16(devicePrefix, 0) {
		add(off, cleanForwardPath(s.readForward(off, devicePathMaxLen, true)))
	}
	for _, off := range s.seeds("SystemRoot", 0) {
		add(off, s.pathAt(off))
	}
	return mergeBAM(out)
}

// cleanForwardPath trims a string read forward from a path seed.
func cleanForwardPath(raw string) string {
	p := stripCellMarkers(asciiOnly(raw))
	if i := strings.IndexByte(p, ';'); i >= 0 {
		p = p[:i]
	}
	return strings.TrimSpace(p)
}

func yearOf(ts string) int {
	y := 0
	for i := 0; i < 4 && i < len(ts); i++ {
		if ts[i] < '0' || ts[i] > '9' {
			return 0
		}
		y = y*10 + int(ts[i]-'0')
	}
	return y
}

func mergeBAM(in []artifact.BAMEntry) []artifact.BAMEntry {
	m := newMerger(
		func(e artifact.BAMEntry) string { return strings.ToLower(e.Path) },
		func(old, cand artifact.BAMEntry) bool {
			if cand.Timestamp > old.Timestamp {
				return true
			}
			if cand.Timestamp < old.Timestamp {
				return false
			}
			return cand.UserSID != "" && old.UserSID == ""
		},
	)
	m.addAll(in)
	out := m.result()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out
}

// Prefetch recovers prefetch file references with run counts. Only SYSTEM
// hives are scanned.
func (s *Scanner) Prefetch() []artifact.PrefetchEntry {
	if s.typ != types.HiveSystem {
		return nil
	}
	m := newMerger(func(e artifact.PrefetchEntry) string { return strings.ToLower(e.Program) }, nil)
	for _, pattern := range prefetchSeeds {
		for _, off := range s.seeds(pattern, 50) {
			for _, ctx := range s.contextStrings(off, 200) {
				lower := strings.ToLower(ctx)
				if !containsAny(lower, ".exe", ".pf") {
					continue
				}
				e := artifact.PrefetchEntry{
					Base:      artifact.Base{Offset: off},
					Program:   ctx,
					Timestamp: s.nearbyTimestamp(off),
				}
				if n, ok := s.dwordNear(off, 20, inRange(types.MinRunCount, types.MaxRunCount)); ok {
					e.RunCount = n
				}
				m.add(e)
			}
		}
	}
	return truncate(m.result(), 100)
}
