// Package fonts locates the bundled UTF-8 capable TrueType font.
package fonts

import "os"

// Name is the family registered by consumers that need a font name
const Name = "DejaVuSans"

// candidates are checked in order: the Docker runtime copy, the source tree, then the system package
var candidates = []string{
	"ttf/DejaVuSans.ttf",
	"internal/pkg/fonts/ttf/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
}

// Resolve returns the first existing font path or an empty string
func Resolve() string {
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
