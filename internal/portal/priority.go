package portal

import (
	"strings"

	"github.com/viksitkanpur/portal/internal/model"
)

// urgentKeywords flags a complaint as high priority when any of them appears
// in the description or a category. The Hindi entries match what citizens
// actually type.
var urgentKeywords = []string{
	"emergency", "urgent", "danger", "accident", "fire", "flood",
	"आपातकाल", "खतरा", "दुर्घटना", "आग", "बाढ़",
}

// highPriorityCategories always escalate regardless of wording.
var highPriorityCategories = map[string]bool{
	"water issues":      true,
	"electricity":       true,
	"drainage & sewage": true,
}

// DerivePriority picks high when the description or a category carries an
// urgent keyword, or the category itself is high-priority; medium otherwise.
func DerivePriority(description string, categories []string) string {
	haystack := strings.ToLower(description)
	for _, cat := range categories {
		haystack += " " + strings.ToLower(cat)
	}

	for _, kw := range urgentKeywords {
		if strings.Contains(haystack, kw) {
			return model.PriorityHigh
		}
	}

	for _, cat := range categories {
		if highPriorityCategories[strings.ToLower(model.EnglishCategory(cat))] {
			return model.PriorityHigh
		}
	}

	return model.PriorityMedium
}
