// Package format houses the few fixed facts about the hive file format that the
// heuristic scanner relies on: the base block signature, the two-letter cell
// signatures that leak into recovered strings, and FILETIME conversion.
package format

var (
	// REGFSignature is the four-byte signature at the start of every hive file.
	REGFSignature = []byte{'r', 'e', 'g', 'f'}

	// CellMarkers are the cell signatures (value key, name key, hash leaf and
	// security key) that commonly trail a string read straight out of a hive.
	CellMarkers = []string{"vk", "nk", "lh", "sk"}
)

const (
	// MaxPathChars is the classic MAX_PATH limit in UTF-16 code units.
	MaxPathChars = 260

	// MaxPathBytes is MaxPathChars in UTF-16LE bytes.
	MaxPathBytes = MaxPathChars * 2
)
