package extract

import (
	"strings"
	"unicode/utf16"

	"github.com/forensicFODs/registry-analysis-tools/hive/artifact"
	"github.com/forensicFODs/registry-analysis-tools/internal/buf"
	"github.com/forensicFODs/registry-analysis-tools/internal/format"
)

var (
	documentExts     = []string{".doc", ".pdf", ".xls", ".txt", ".jpg", ".png", ".ppt", ".zip"}
	recentDocsSeeds  = []string{"RecentDocs", `\Explorer\RecentDocs`, "OpenSavePidlMRU"}
	runKeySeeds      = []string{"Run", "RunOnce", "RunServices"}
	executableExts   = []string{".exe", ".dll", ".bat", ".cmd", ".com"}
	shellFolderSeeds = []string{`\Desktop`, `\Documents`, `\Downloads`, `\Pictures`, `\Videos`}
	shellBagFileExts = []string{".exe", ".dll", ".txt", ".doc", ".pdf"}
	muiCacheSeeds    = []string{"MuiCache", "ApplicationCompany", "FriendlyAppName"}
	typedPathSeeds   = []string{"TypedPaths", "url"}
	recentAppSeeds   = []string{"RecentApps", "AppId", "AppPath"}
)

const recentDocsLookahead = 500

// RecentDocs recovers recently opened documents. On NTUSER.DAT and
// UsrClass.dat it reads UTF-16LE names following the RecentDocs keys; on any
// other hive it falls back to drive paths ending in a document extension.
func (s *Scanner) RecentDocs() []artifact.RecentDoc {
	m := newMerger(func(e artifact.RecentDoc) string { return strings.ToLower(e.Document) }, nil)
	if s.isUserHive() {
		for _, pattern := range recentDocsSeeds {
			for _, off := range s.seeds(pattern, 0) {
				s.recentDocsAfter(off, m)
			}
		}
		return truncate(m.result(), 100)
	}

	for _, ext := range documentExts {
		for _, off := range s.seeds(ext, 0) {
			p := s.pathAt(off)
			if len(p) <= 5 || !containsAny(p, `\`, "/") {
				continue
			}
			m.add(artifact.RecentDoc{
				Base:      artifact.Base{Offset: off},
				Document:  p,
				Timestamp: s.nearbyTimestamp(off),
				Source:    artifact.RecentDocsPattern,
			})
		}
	}
	return m.result()
}

// recentDocsAfter walks the UTF-16LE names in the bytes after a RecentDocs
// key name. A recovered name is skipped over so its suffixes are not read
// again as further names.
func (s *Scanner) recentDocsAfter(off int, m *merger[artifact.RecentDoc]) {
	ts := ""
	tsDone := false
	for rel := 0; rel < recentDocsLookahead; rel += 2 {
		at := off + rel
		if at >= s.buf.Len() {
			return
		}
		name := s.buf.ReadUTF16LE(at, format.MaxPathBytes)
		if name == "" || !containsAny(strings.ToLower(name), documentExts...) {
			continue
		}
		if !tsDone {
			ts, tsDone = s.nearbyTimestamp(off), true
		}
		m.add(artifact.RecentDoc{
			Base:      artifact.Base{Offset: off},
			Document:  name,
			Timestamp: ts,
			Source:    artifact.RecentDocsPrecise,
		})
		rel += 2 * len(utf16.Encode([]rune(name)))
	}
}

// RunKeys recovers auto-start commands stored near Run key names.
func (s *Scanner) RunKeys() []artifact.RunKey {
	if !s.isUserHive() {
		return nil
	}
	m := newMerger(func(e artifact.RunKey) string { return strings.ToLower(e.Command) }, nil)
	for _, pattern := range runKeySeeds {
		for _, off := range s.seeds(pattern, 0) {
			buf.Window(s.buf.Len(), off, 200, 2, 2, func(at int) bool {
				cmd := s.buf.ReadUTF16LE(at, 500)
				if !isExecutablePath(cmd) {
					return true
				}
				if len(cmd) > 200 {
					cmd = cmd[:200]
				}
				m.add(artifact.RunKey{
					Base:    artifact.Base{Offset: off},
					Name:    pattern,
					Command: cmd,
				})
				return false
			})
		}
	}
	return m.result()
}

func isExecutablePath(p string) bool {
	return len(p) >= 5 && containsAny(strings.ToLower(p), executableExts...)
}

// ShellBags recovers browsed folder paths from BagMRU neighbourhoods and from
// well-known user folder names.
func (s *Scanner) ShellBags() []artifact.ShellBag {
	if !s.isUserHive() {
		return nil
	}
	m := newMerger(func(e artifact.ShellBag) string { return strings.ToLower(e.Path) }, nil)
	for _, off := range s.seeds("BagMRU", 50) {
		for _, ctx := range s.contextStrings(off, 300) {
			if len(ctx) <= 10 || !strings.Contains(ctx, `\`) {
				continue
			}
			if containsAny(strings.ToLower(ctx), shellBagFileExts...) {
				continue
			}
			m.add(artifact.ShellBag{
				Base:      artifact.Base{Offset: off},
				Path:      ctx,
				Folder:    "folder",
				Timestamp: s.nearbyTimestamp(off),
				Source:    "BagMRU",
			})
		}
	}
	for _, pattern := range shellFolderSeeds {
		for _, off := range s.seeds(pattern, 20) {
			p := s.pathAt(off)
			if len(p) <= 10 {
				continue
			}
			m.add(artifact.ShellBag{
				Base:      artifact.Base{Offset: off},
				Path:      p,
				Folder:    strings.TrimPrefix(pattern, `\`),
				Timestamp: s.nearbyTimestamp(off),
				Source:    "Pattern",
			})
		}
	}
	return truncate(m.result(), 100)
}

// MuiCache recovers executable paths and their cached display names.
func (s *Scanner) MuiCache() []artifact.MuiCacheEntry {
	if !s.isUserHive() {
		return nil
	}
	m := newMerger(func(e artifact.MuiCacheEntry) string { return strings.ToLower(e.Path) }, nil)
	for _, pattern := range muiCacheSeeds {
		for _, off := range s.seeds(pattern, 100) {
			ctx := s.contextStrings(off, 300)
			for _, c := range ctx {
				if !strings.Contains(strings.ToLower(c), ".exe") || !strings.Contains(c, `:\`) {
					continue
				}
				m.add(artifact.MuiCacheEntry{
					Base:      artifact.Base{Offset: off},
					Path:      c,
					AppName:   muiAppName(ctx, c),
					Timestamp: s.nearbyTimestamp(off),
				})
			}
		}
	}
	return truncate(m.result(), 100)
}

func muiAppName(ctx []string, path string) string {
	for _, c := range ctx {
		if c != path && len(c) > 3 && !strings.Contains(c, ".exe") {
			return c
		}
	}
	return ""
}

// LNKFiles recovers shortcut paths and the first other drive path near them.
func (s *Scanner) LNKFiles() []artifact.LNKEntry {
	if !s.isUserHive() {
		return nil
	}
	m := newMerger(func(e artifact.LNKEntry) string { return strings.ToLower(e.LNKPath) }, nil)
	for _, off := range s.seeds(".lnk", 100) {
		p := s.pathAt(off)
		if !strings.Contains(strings.ToLower(p), ".lnk") {
			continue
		}
		e := artifact.LNKEntry{
			Base:      artifact.Base{Offset: off},
			LNKPath:   p,
			Timestamp: s.nearbyTimestamp(off),
		}
		for _, c := range s.contextStrings(off, 300) {
			if strings.Contains(c, `:\`) && c != p {
				e.TargetPath = c
				break
			}
		}
		m.add(e)
	}
	return truncate(m.result(), 100)
}

// TypedPaths recovers Explorer address bar history.
func (s *Scanner) TypedPaths() []artifact.TypedPath {
	if !s.isUserHive() {
		return nil
	}
	m := newMerger(func(e artifact.TypedPath) string { return strings.ToLower(e.Path) }, nil)
	for _, pattern := range typedPathSeeds {
		for _, off := range s.seeds(pattern, 100) {
			for _, c := range s.contextStrings(off, 200) {
				if len(c) <= 5 {
					continue
				}
				if !containsAny(c, `:\`, `\\`) && !strings.Contains(strings.ToLower(c), "http") {
					continue
				}
				e := artifact.TypedPath{Base: artifact.Base{Offset: off}, Path: c}
				if order, ok := s.dwordNear(off, 20, func(v uint32) bool { return v > 0 && v < 100 }); ok {
					e.MRUOrder = order
				}
				m.add(e)
			}
		}
	}
	return truncate(m.result(), 50)
}

// RecentApps recovers Windows 10 RecentApps executable paths.
func (s *Scanner) RecentApps() []artifact.RecentApp {
	if !s.isUserHive() {
		return nil
	}
	m := newMerger(func(e artifact.RecentApp) string { return strings.ToLower(e.AppPath) }, nil)
	for _, pattern := range recentAppSeeds {
		for _, off := range s.seeds(pattern, 100) {
			for _, c := range s.contextStrings(off, 300) {
				if !strings.Contains(strings.ToLower(c), ".exe") || !strings.Contains(c, `:\`) {
					continue
				}
				e := artifact.RecentApp{
					Base:           artifact.Base{Offset: off},
					AppPath:        c,
					AppName:        baseName(c),
					LastAccessTime: s.nearbyTimestamp(off),
				}
				if n, ok := s.dwordNear(off, 30, func(v uint32) bool { return v > 0 && v < 10000 }); ok {
					e.LaunchCount = n
				}
				m.add(e)
			}
		}
	}
	return truncate(m.result(), 100)
}
