package audit

import (
	"hash/fnv"

	"github.com/yungbote/brandlens-backend/internal/domain"
)

var brandPalette = []string{
	"#4F46E5", "#0EA5E9", "#10B981", "#F59E0B", "#EF4444",
	"#8B5CF6", "#EC4899", "#14B8A6", "#F97316", "#84CC16",
	"#6366F1", "#06B6D4", "#22C55E", "#EAB308", "#F43F5E",
	"#A855F7",
}

// BrandColor is stable per normalised name, so a brand keeps its chart colour
// across workspaces and restarts.
func BrandColor(name string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(domain.NameKey(name)))
	return brandPalette[h.Sum32()%uint32(len(brandPalette))]
}
