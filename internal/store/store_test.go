package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStopWordFilter(t *testing.T) {
	filter := NewStopWordFilter([]string{"new", "sealed", "the"})

	assert.Equal(t, "Widget Pro 3000", filter.Filter("New Widget Pro 3000 sealed"))
	assert.Equal(t, "Widget", filter.Filter("the THE Widget"))
	assert.Equal(t, "", filter.Filter("new sealed"))
	assert.Equal(t, "", filter.Filter(""))

	// Word order survives filtering
	assert.Equal(t, "b a c", filter.Filter("b new a c"))
}

func TestStaticTokenProvider(t *testing.T) {
	provider := NewStaticTokenProvider("secret-token")

	token, err := provider.Token(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "secret-token", token)
}
