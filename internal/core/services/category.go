package services

import (
	"strings"

	"github.com/custodia-labs/verdict-cli/internal/core/domain"
)

// CategoryRule maps a category to the keywords that select it.
type CategoryRule struct {
	Category domain.Category
	Keywords []string
}

// CategoryTable is evaluated in order; the first rule with a keyword
// contained in the text wins.
var CategoryTable = []CategoryRule{
	{domain.CategoryElectronics, []string{
		"phone", "mobile", "smartphone", "laptop", "computer", "tablet", "headphone",
		"speaker", "camera", "tv", "monitor", "mouse", "keyboard", "charger", "electronics",
	}},
	{domain.CategoryClothing, []string{
		"shirt", "jeans", "dress", "jacket", "shoes", "sneakers", "clothing", "apparel",
		"fashion", "wear", "cotton", "fabric",
	}},
	{domain.CategoryHome, []string{
		"furniture", "chair", "table", "bed", "sofa", "kitchen", "cookware", "home",
		"decor", "lamp", "curtain",
	}},
	{domain.CategoryBeauty, []string{
		"cream", "lotion", "shampoo", "makeup", "cosmetic", "beauty", "skincare", "haircare",
	}},
	{domain.CategoryBooks, []string{
		"book", "novel", "textbook", "author", "edition", "paperback", "hardcover",
	}},
	{domain.CategorySports, []string{
		"sports", "fitness", "gym", "exercise", "yoga", "running", "cricket", "football",
	}},
	{domain.CategoryAutomotive, []string{
		"car", "auto", "vehicle", "motorcycle", "bike", "automotive", "parts",
	}},
	{domain.CategoryHealth, []string{
		"health", "vitamin", "supplement", "medicine", "medical", "wellness",
	}},
}

// ClassifyCategory assigns a category by case-insensitive substring match
// against CategoryTable. It returns domain.CategoryGeneral when nothing matches.
func ClassifyCategory(title, description string) domain.Category {
	return classifyWith(CategoryTable, title+" "+description)
}

func classifyWith(table []CategoryRule, text string) domain.Category {
	text = strings.ToLower(text)
	for _, rule := range table {
		for _, keyword := range rule.Keywords {
			if strings.Contains(text, keyword) {
				return rule.Category
			}
		}
	}
	return domain.CategoryGeneral
}
