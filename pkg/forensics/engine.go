package forensics

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"

	"github.com/forensicFODs/registry-analysis-tools/hive"
	"github.com/forensicFODs/registry-analysis-tools/hive/artifact"
	"github.com/forensicFODs/registry-analysis-tools/hive/extract"
	"github.com/forensicFODs/registry-analysis-tools/internal/logger"
	"github.com/forensicFODs/registry-analysis-tools/internal/mmfile"
	"github.com/forensicFODs/registry-analysis-tools/pkg/types"
)

// State is the engine's position in its load/correlate/timeline cycle.
type State int

const (
	StateEmpty      State = iota // no hive loaded
	StateLoading                 // a hive is being scanned
	StateLoaded                  // at least one hive loaded since the last rebuild
	StateCorrelated              // correlations are current
	StateTimelined               // the timeline is current
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateCorrelated:
		return "correlated"
	case StateTimelined:
		return "timelined"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configures an Engine.
type Options struct {
	// Extract is passed to every hive scanner.
	Extract extract.Options
}

// loadedHive is one scanned hive.
type loadedHive struct {
	typ      types.HiveType
	buf      *hive.Buffer
	findings *artifact.Findings
	release  func() error // unmaps a file-backed buffer; nil otherwise
}

// Engine owns the loaded hives and the results derived from them.
type Engine struct {
	opts  Options
	state State

	hives map[types.HiveType]*loadedHive
	order []types.HiveType

	correlations []Correlation
	timeline     []TimelineEvent

	// scanFn runs the extractors; replaced in tests.
	scanFn func(*hive.Buffer, types.HiveType) *artifact.Findings
}

// NewEngine returns an empty engine.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		opts:  opts,
		hives: make(map[types.HiveType]*loadedHive),
	}
	e.scanFn = func(b *hive.Buffer, typ types.HiveType) *artifact.Findings {
		return extract.New(b, typ, e.opts.Extract).All()
	}
	return e
}

// State returns the current state.
func (e *Engine) State() State { return e.state }

// AddHive scans data and registers it under its resolved type. name is the
// origin file name used for type detection when hint is HiveUnknown. A hive
// of the same type replaces the one already loaded.
//
// On failure nothing is registered and the engine is left as it was.
func (e *Engine) AddHive(data []byte, name string, hint types.HiveType) (types.HiveType, error) {
	return e.add(data, name, hint, nil)
}

// AddHiveFile maps the file at path and adds it. The mapping is released
// when the hive is removed or replaced, or the engine is closed.
func (e *Engine) AddHiveFile(path string, hint types.HiveType) (types.HiveType, error) {
	data, release, err := mmfile.Map(path)
	if err != nil {
		return types.HiveUnknown, types.Wrap(types.ErrKindLoad, "load hive "+path, err)
	}
	typ, err := e.add(data, filepath.Base(path), hint, release)
	if err != nil {
		_ = release()
	}
	return typ, err
}

// AddHiveFS reads path from fsys and adds it.
func (e *Engine) AddHiveFS(fsys afero.Fs, path string, hint types.HiveType) (types.HiveType, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return types.HiveUnknown, types.Wrap(types.ErrKindLoad, "load hive "+path, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return types.HiveUnknown, types.Wrap(types.ErrKindLoad, "load hive "+path, err)
	}
	return e.add(data, filepath.Base(path), hint, nil)
}

func (e *Engine) add(data []byte, name string, hint types.HiveType, release func() error) (typ types.HiveType, err error) {
	if len(data) == 0 {
		return types.HiveUnknown, types.Wrap(types.ErrKindLoad, "load hive "+name, types.ErrEmptyHive)
	}

	prev := e.state
	e.state = StateLoading
	defer func() {
		if err != nil {
			e.state = prev
		}
	}()

	buf := hive.New(data, name)
	typ = hint
	if typ == types.HiveUnknown {
		typ = buf.DetectType()
	}

	findings, err := e.scan(buf, typ)
	if err != nil {
		return types.HiveUnknown, types.Wrap(types.ErrKindLoad, "load hive "+name, err)
	}

	if old, ok := e.hives[typ]; ok {
		e.drop(old)
	}
	e.hives[typ] = &loadedHive{typ: typ, buf: buf, findings: findings, release: release}
	e.order = append(e.order, typ)
	e.correlations, e.timeline = nil, nil
	e.state = StateLoaded

	logger.Info("hive loaded", "name", name, "type", typ.String(), "bytes", len(data),
		"regf", buf.IsRegf(), "artifacts", findings.Total())
	for _, k := range findings.NonEmptyKinds() {
		logger.Debug("artifacts recovered", "type", typ.String(), "kind", k.String(), "count", findings.Len(k))
	}
	return typ, nil
}

// scan runs every extractor, converting a panic into an error.
func (e *Engine) scan(buf *hive.Buffer, typ types.HiveType) (f *artifact.Findings, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("extractor panic", "type", typ.String(), "panic", r)
			f, err = nil, fmt.Errorf("scan %s: %v", typ, r)
		}
	}()
	return e.scanFn(buf, typ), nil
}

// drop unregisters h and releases its buffer.
func (e *Engine) drop(h *loadedHive) {
	delete(e.hives, h.typ)
	e.order = slices.DeleteFunc(e.order, func(t types.HiveType) bool { return t == h.typ })
	if h.release != nil {
		if err := h.release(); err != nil {
			logger.Warn("release hive", "type", h.typ.String(), "err", err)
		}
	}
}

// RemoveHive unloads the hive of type typ.
func (e *Engine) RemoveHive(typ types.HiveType) error {
	h, ok := e.hives[typ]
	if !ok {
		return types.Wrap(types.ErrKindState, "remove hive "+typ.String(), types.ErrHiveNotLoaded)
	}
	e.drop(h)
	e.correlations, e.timeline = nil, nil
	if len(e.hives) == 0 {
		e.state = StateEmpty
	} else {
		e.state = StateLoaded
	}
	logger.Info("hive removed", "type", typ.String())
	return nil
}

// Close unloads every hive.
func (e *Engine) Close() error {
	var firstErr error
	for _, typ := range slices.Clone(e.order) {
		h := e.hives[typ]
		delete(e.hives, typ)
		if h.release != nil {
			if err := h.release(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	e.order = nil
	e.correlations, e.timeline = nil, nil
	e.state = StateEmpty
	return firstErr
}

// Hives returns the loaded hive types in load order.
func (e *Engine) Hives() []types.HiveType {
	return slices.Clone(e.order)
}

// Findings returns the findings of the hive of type typ.
func (e *Engine) Findings(typ types.HiveType) (*artifact.Findings, error) {
	h, ok := e.hives[typ]
	if !ok {
		return nil, types.Wrap(types.ErrKindState, "findings "+typ.String(), types.ErrHiveNotLoaded)
	}
	return h.findings, nil
}

// Strings returns printable strings from the hive of type typ, as
// hive.Buffer.ExtractStrings does.
func (e *Engine) Strings(typ types.HiveType, minLen, maxCount int) ([]string, error) {
	h, ok := e.hives[typ]
	if !ok {
		return nil, types.Wrap(types.ErrKindState, "strings "+typ.String(), types.ErrHiveNotLoaded)
	}
	return h.buf.ExtractStrings(minLen, maxCount), nil
}

// findings returns the findings of typ, or nil when it is not loaded.
func (e *Engine) findings(typ types.HiveType) *artifact.Findings {
	if h, ok := e.hives[typ]; ok {
		return h.findings
	}
	return nil
}

// each calls fn for every loaded hive in load order.
func (e *Engine) each(fn func(types.HiveType, *artifact.Findings)) {
	for _, typ := range e.order {
		fn(typ, e.hives[typ].findings)
	}
}
