package types

// ============================================================================
// Plausibility windows and scan limits
// ============================================================================
// A recovered field outside its window is treated as absent, never as an
// error. Year bounds are exclusive on both ends.

// YearWindow is an exclusive (Min, Max) calendar-year range.
type YearWindow struct {
	Min int
	Max int
}

// Contains reports whether Min < year < Max.
func (w YearWindow) Contains(year int) bool {
	return year > w.Min && year < w.Max
}

var (
	// DefaultYears applies to timestamps recovered near an arbitrary seed.
	DefaultYears = YearWindow{Min: 1990, Max: 2100}

	// ExecutionYears applies to execution caches (ShimCache) and account
	// creation times.
	ExecutionYears = YearWindow{Min: 1995, Max: 2030}

	// BAMYears applies to BAM/DAM entries, which only exist from Windows 10 on.
	BAMYears = YearWindow{Min: 2014, Max: 2100}
)

const (
	// UserAssistMinFiletime and UserAssistMaxFiletime bound raw FILETIME
	// values accepted for UserAssist (1970-01-01 .. 2100-12-31).
	UserAssistMinFiletime uint64 = 116444736000000000
	UserAssistMaxFiletime uint64 = 211845350400000000
)

const (
	// DetectScanBytes is how much of a hive the binary hive-type detector scans.
	DetectScanBytes = 2 << 20

	// StringScanBytes caps bulk string extraction to the head of the buffer.
	StringScanBytes = 500 << 10

	// MaxExtractedStringLen is the exclusive upper bound on extracted string length.
	MaxExtractedStringLen = 100

	// DefaultStringMinLen and DefaultStringMax are the extraction defaults.
	DefaultStringMinLen = 4
	DefaultStringMax    = 100
)

// Value ranges for DWORD fields recovered near a seed.
const (
	ShimCacheMinSize = 100
	ShimCacheMaxSize = 500 << 20

	AmcacheMaxSize = 1 << 31

	MinRunCount = 1
	MaxRunCount = 10000

	MaxFocusTimeMs = 24 * 60 * 60 * 1000

	MaxMRUOrder = 100

	// Time-zone bias in minutes (UTC = local + bias).
	MinTimeZoneBias = -840
	MaxTimeZoneBias = 720
)
