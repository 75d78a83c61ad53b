package fields

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Column derives the physical column name backing a field definition. The
// mapping is a pure function of the merge tag: stored records key on it, so
// it must stay stable across releases. The custom_ prefix keeps derived
// columns clear of the fixed subscription columns, and the FNV suffix keeps
// the name unique even if two keys lowercase to the same string.
func Column(f *FieldDefinition) string {
	h := fnv.New32a()
	h.Write([]byte(f.Key))
	return fmt.Sprintf("custom_%s_%08x", strings.ToLower(f.Key), h.Sum32())
}
