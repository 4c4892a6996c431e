package hive

import "github.com/forensicFODs/registry-analysis-tools/pkg/types"

// ExtractStrings collects printable ASCII runs of at least minLen bytes from
// the first 500 KiB of the buffer.
//
// Collection stops once maxCount runs (duplicates included) have been seen.
// The runs are then de-duplicated in first-seen order, runs of 100 bytes or
// longer are dropped, and at most maxCount entries are returned. A run still
// open at the scan boundary is not collected.
func (b *Buffer) ExtractStrings(minLen, maxCount int) []string {
	if maxCount <= 0 {
		return nil
	}
	data := b.data
	if len(data) > types.StringScanBytes {
		data = data[:types.StringScanBytes]
	}

	var runs []string
	start := -1
	for i, c := range data {
		if isPrintableByte(c) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && i-start >= minLen {
			runs = append(runs, string(data[start:i]))
			if len(runs) >= maxCount {
				break
			}
		}
		start = -1
	}

	seen := make(map[string]struct{}, len(runs))
	out := make([]string, 0, len(runs))
	for _, s := range runs {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		if len(s) < minLen || len(s) >= types.MaxExtractedStringLen {
			continue
		}
		out = append(out, s)
		if len(out) == maxCount {
			break
		}
	}
	return out
}
