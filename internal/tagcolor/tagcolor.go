// Package tagcolor derives stable display colors for tag names.
package tagcolor

import "hash/fnv"

// palette is the fixed set of display colors tags are mapped onto.
var palette = []string{
	"#4285f4", // blue
	"#ea4335", // red
	"#fbbc05", // amber
	"#34a853", // green
	"#9c27b0", // purple
	"#00acc1", // cyan
	"#ff7043", // coral
	"#5c6bc0", // indigo
	"#8d6e63", // brown
	"#789262", // olive
}

// For returns the palette color for a tag name. The mapping is a pure
// function of the name, so a tag keeps its color across sessions.
func For(name string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return palette[h.Sum32()%uint32(len(palette))]
}
