package shopify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeShopDomain(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare domain", "example.myshopify.com", "example.myshopify.com"},
		{"https scheme", "https://example.myshopify.com", "example.myshopify.com"},
		{"http scheme", "http://example.myshopify.com", "example.myshopify.com"},
		{"trailing slash", "https://example.myshopify.com/", "example.myshopify.com"},
		{"surrounding whitespace", "  example.myshopify.com ", "example.myshopify.com"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeShopDomain(tt.in))
		})
	}
}
