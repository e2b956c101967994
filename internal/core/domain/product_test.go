package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want Site
	}{
		{"https://www.amazon.in/dp/B0C1", SiteAmazon},
		{"https://WWW.AMAZON.COM/item", SiteAmazon},
		{"https://www.flipkart.com/p/itm123", SiteFlipkart},
		{"https://shop.example.com/widget", SiteOther},
		{"", SiteOther},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, SiteFromURL(tt.url))
		})
	}
}

func TestAspectSentiment_JSONPair(t *testing.T) {
	data, err := json.Marshal([]AspectSentiment{{Aspect: "battery", Sentiment: 0.5}})
	require.NoError(t, err)
	assert.JSONEq(t, `[["battery",0.5]]`, string(data))

	var decoded []AspectSentiment
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "battery", decoded[0].Aspect)
	assert.InDelta(t, 0.5, decoded[0].Sentiment, 1e-9)
}

func TestAspectSentiment_UnmarshalBareString(t *testing.T) {
	var decoded []AspectSentiment
	require.NoError(t, json.Unmarshal([]byte(`["camera","display"]`), &decoded))

	assert.Equal(t, []string{"camera", "display"}, AspectNames(decoded))
}

func TestAspectSentiment_UnmarshalEmptyPair(t *testing.T) {
	var decoded AspectSentiment
	err := json.Unmarshal([]byte(`[]`), &decoded)

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOverallSentiment_PositiveScore(t *testing.T) {
	t.Run("no reviews defaults to 50", func(t *testing.T) {
		assert.Equal(t, 50, OverallSentiment{}.PositiveScore())
	})

	t.Run("share of positive reviews", func(t *testing.T) {
		o := OverallSentiment{Positive: 3, Negative: 1, Neutral: 0}
		assert.Equal(t, 4, o.Total())
		assert.Equal(t, 75, o.PositiveScore())
	})

	t.Run("truncates toward zero", func(t *testing.T) {
		o := OverallSentiment{Positive: 2, Negative: 1}
		assert.Equal(t, 66, o.PositiveScore())
	})
}

func TestProductData_HasReviews(t *testing.T) {
	var nilData *ProductData
	assert.False(t, nilData.HasReviews())
	assert.False(t, (&ProductData{}).HasReviews())
	assert.True(t, (&ProductData{Reviews: []string{"good"}}).HasReviews())
}

func TestDetectProductType(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		title       string
		description string
		want        ProductType
	}{
		{"title phone", "https://www.amazon.in/dp/X", "OnePlus 12 5G", "", ProductTypeSmartphone},
		{"url laptop", "https://shop.example.com/macbook-air", "", "", ProductTypeLaptop},
		{"description tv", "", "Bravia", "55 inch 4K television", ProductTypeTV},
		{"earlier entry wins", "", "Phone case with laptop sleeve", "", ProductTypeSmartphone},
		{"nothing matches", "https://x.example/p", "Cotton bedsheet", "queen size", ProductTypeGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectProductType(tt.url, tt.title, tt.description))
		})
	}
}
