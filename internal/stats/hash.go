package stats

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/BrightBytes/insight-cli/internal/dataset"
)

// ContentHash produces a cheap deterministic fingerprint of the row
// set, used only as a change-detection signal between analysis runs.
// It is a 32-bit FNV-1a over a canonical serialization (rows in order,
// keys sorted within each row); collisions are tolerated.
func ContentHash(rows []dataset.Row) string {
	h := fnv.New32a()
	keys := make([]string, 0, 16)
	for _, r := range rows {
		keys = keys[:0]
		for k := range r {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			h.Write([]byte(k))
			h.Write([]byte{'='})
			h.Write([]byte(r[k]))
			h.Write([]byte{';'})
		}
		h.Write([]byte{'\n'})
	}
	return fmt.Sprintf("%08x", h.Sum32())
}
