package hive

import (
	"bytes"
	"strings"

	"github.com/forensicFODs/registry-analysis-tools/pkg/types"
)

// typeIndicators are the UTF-16LE key names scored per hive type. Order
// matters: it is the tie-break order when two types score the same.
var typeIndicators = []struct {
	typ      types.HiveType
	patterns []string
}{
	{types.HiveSAM, []string{"SAM", "Users"}},
	{types.HiveSystem, []string{"ControlSet", "Services"}},
	{types.HiveSoftware, []string{"SOFTWARE", "Classes"}},
	{types.HiveSecurity, []string{"SECURITY", "Policy"}},
	{types.HiveAmcache, []string{"Amcache", "InventoryApplicationFile"}},
	{types.HiveUsrClass, []string{"Local Settings", "Shell"}},
	{types.HiveNTUser, []string{"Software", "Explorer", "Desktop"}},
}

// DetectType classifies the buffer, first by its origin file name and then by
// scoring indicative key names in the first 2 MiB. The result depends only on
// the name and the bytes.
func (b *Buffer) DetectType() types.HiveType {
	if t := TypeFromFileName(b.name); t != types.HiveUnknown {
		return t
	}
	return detectFromBytes(b.data)
}

// TypeFromFileName maps well-known hive file names to a type. Exact names are
// required for SYSTEM, SOFTWARE, SAM and SECURITY; NTUSER.DAT, USRCLASS and
// AMCACHE match as substrings.
func TypeFromFileName(name string) types.HiveType {
	if name == "" {
		return types.HiveUnknown
	}
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	upper := strings.ToUpper(name)
	switch {
	case strings.Contains(upper, "NTUSER.DAT") || upper == "NTUSER":
		return types.HiveNTUser
	case strings.Contains(upper, "USRCLASS"):
		return types.HiveUsrClass
	case upper == "SYSTEM":
		return types.HiveSystem
	case upper == "SOFTWARE":
		return types.HiveSoftware
	case upper == "SAM":
		return types.HiveSAM
	case upper == "SECURITY":
		return types.HiveSecurity
	case strings.Contains(upper, "AMCACHE"):
		return types.HiveAmcache
	}
	return types.HiveUnknown
}

func detectFromBytes(data []byte) types.HiveType {
	if len(data) > types.DetectScanBytes {
		data = data[:types.DetectScanBytes]
	}
	has := func(s string) bool { return bytes.Contains(data, EncodeUTF16(s)) }

	scores := make(map[types.HiveType]int, len(typeIndicators))
	for _, ind := range typeIndicators {
		for _, p := range ind.patterns {
			if has(p) {
				scores[ind.typ]++
			}
		}
	}

	if len(scores) > 0 {
		_, system := scores[types.HiveSystem]
		_, software := scores[types.HiveSoftware]
		_, ntuser := scores[types.HiveNTUser]

		if system && software {
			switch {
			case has("CurrentControlSet") || has("ControlSet001"):
				return types.HiveSystem
			case has("Uninstall"):
				return types.HiveSoftware
			}
		}
		if software && ntuser {
			switch {
			case has("Uninstall"):
				return types.HiveSoftware
			case has("Control Panel") && has("Keyboard"):
				return types.HiveNTUser
			case has("Classes"):
				return types.HiveSoftware
			default:
				return types.HiveNTUser
			}
		}

		best, bestScore := types.HiveUnknown, 0
		for _, ind := range typeIndicators {
			if s := scores[ind.typ]; s > bestScore {
				best, bestScore = ind.typ, s
			}
		}
		return best
	}

	switch {
	case bytes.Contains(data, []byte("ControlSet")):
		return types.HiveSystem
	case bytes.Contains(data, []byte("AppCompatCache")) || bytes.Contains(data, []byte("ShimCache")):
		return types.HiveSoftware
	case bytes.Contains(data, []byte("SAM")) && bytes.Contains(data, []byte("Domains")):
		return types.HiveSAM
	}
	return types.HiveUnknown
}
