package lexicon

import "github.com/custodia-labs/verdict-cli/internal/core/domain"

// positiveWords and negativeWords drive the sentence sentiment. Matching is
// by substring, so "lag" also counts inside "laggy".
var (
	positiveWords = []string{
		"excellent", "amazing", "fantastic", "great", "good", "love", "perfect",
		"awesome", "outstanding", "superb", "wonderful", "impressive", "satisfied",
		"happy", "pleased", "recommend", "best", "brilliant", "solid", "smooth",
	}

	negativeWords = []string{
		"terrible", "awful", "bad", "poor", "hate", "worst", "horrible",
		"disappointing", "useless", "broken", "defective", "cheap", "flimsy",
		"slow", "lag", "problem", "issue", "fail", "waste", "regret",
	}
)

// aspect is a named product attribute and the keywords that mention it.
type aspect struct {
	name     string
	keywords []string
}

// aspectTables lists the aspects tracked per product type. Types without
// their own table use the general one.
var aspectTables = map[domain.ProductType][]aspect{
	domain.ProductTypeSmartphone: {
		{"camera", []string{"camera", "photo", "picture", "video", "lens", "zoom", "selfie"}},
		{"battery", []string{"battery", "charge", "charging", "power", "backup"}},
		{"performance", []string{"performance", "speed", "fast", "slow", "lag", "smooth", "processor"}},
		{"display", []string{"display", "screen", "brightness", "color", "resolution"}},
		{"design", []string{"design", "build", "quality", "premium", "plastic", "metal"}},
		{"software", []string{"software", "ui", "interface", "update", "android", "ios"}},
		{"audio", []string{"sound", "audio", "speaker", "music", "call", "volume"}},
	},
	domain.ProductTypeLaptop: {
		{"performance", []string{"performance", "speed", "processor", "cpu", "ram", "fast", "slow"}},
		{"battery", []string{"battery", "backup", "charge", "power", "hours"}},
		{"keyboard", []string{"keyboard", "typing", "keys", "trackpad", "touchpad"}},
		{"display", []string{"display", "screen", "brightness", "color", "resolution"}},
		{"build", []string{"build", "quality", "construction", "durability", "solid"}},
		{"portability", []string{"weight", "portable", "carry", "travel", "size"}},
		{"cooling", []string{"heat", "temperature", "cooling", "fan", "thermal"}},
	},
	domain.ProductTypeTV: {
		{"picture", []string{"picture", "image", "color", "brightness", "contrast", "clarity"}},
		{"sound", []string{"sound", "audio", "speaker", "volume", "bass"}},
		{"smart_features", []string{"smart", "apps", "interface", "remote", "wifi"}},
		{"design", []string{"design", "look", "appearance", "stand", "mounting"}},
		{"size", []string{"size", "screen", "inch", "big", "small"}},
		{"value", []string{"price", "value", "money", "worth", "expensive", "cheap"}},
	},
	domain.ProductTypeGeneral: {
		{"quality", []string{"quality", "build", "construction", "material"}},
		{"performance", []string{"performance", "speed", "fast", "slow", "work"}},
		{"design", []string{"design", "look", "appearance", "style"}},
		{"value", []string{"price", "value", "money", "worth", "cost"}},
		{"durability", []string{"durable", "lasting", "break", "fragile", "solid"}},
	},
}

func aspectsFor(kind domain.ProductType) []aspect {
	if table, ok := aspectTables[kind]; ok {
		return table
	}
	return aspectTables[domain.ProductTypeGeneral]
}
