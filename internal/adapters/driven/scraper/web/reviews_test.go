package web

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanReviews(t *testing.T) {
	tests := []struct {
		name    string
		reviews []string
		want    []string
	}{
		{
			name:    "trims and keeps opinionated reviews",
			reviews: []string{"   The build quality is excellent overall.  "},
			want:    []string{"The build quality is excellent overall."},
		},
		{
			name:    "too short",
			reviews: []string{"good product"},
			want:    []string{},
		},
		{
			name:    "too long",
			reviews: []string{"good " + strings.Repeat("x", 1000)},
			want:    []string{},
		},
		{
			name:    "spam phrases",
			reviews: []string{"Verified Purchase - good product overall", "Read more about this good product"},
			want:    []string{},
		},
		{
			name:    "duplicates ignore case",
			reviews: []string{"I love this phone so much", "I LOVE THIS PHONE SO MUCH"},
			want:    []string{"I love this phone so much"},
		},
		{
			name:    "no opinion words",
			reviews: []string{"Arrived on Tuesday in a brown box"},
			want:    []string{},
		},
		{
			name:    "empty",
			reviews: nil,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanReviews(tt.reviews))
		})
	}
}

func TestCleanReviews_CapsAtFifty(t *testing.T) {
	reviews := make([]string, 80)
	for i := range reviews {
		reviews[i] = fmt.Sprintf("Review number %d says the product is good", i)
	}

	got := CleanReviews(reviews)

	assert.Len(t, got, 50)
	assert.Equal(t, reviews[49], got[49])
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		text string
		want float64
		ok   bool
	}{
		{"₹52,999", 52999, true},
		{"$1,299.99", 1299.99, true},
		{"52,999.", 52999, true},
		{"Rs. 450 only", 450, true},
		{"Currently unavailable", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ParsePrice(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
