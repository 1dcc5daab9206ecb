package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"daehyub/dealwatcher/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchPayload = `{
	"itemSummaries": [
		{
			"itemId": "v1|111|0",
			"title": "Widget Pro 3000",
			"itemWebUrl": "https://ebay.example/itm/111",
			"price": {"value": "49.99", "currency": "USD"}
		},
		{
			"itemId": "v1|222|0",
			"title": "Widget Pro 3000 bundle",
			"itemWebUrl": "https://ebay.example/itm/222",
			"price": {"value": "89.00", "currency": "USD"}
		},
		{
			"itemId": "",
			"title": "ghost entry",
			"itemWebUrl": "",
			"price": {"value": "", "currency": ""}
		}
	]
}`

func TestSearchClient_Search(t *testing.T) {
	var gotAuth, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchPayload))
	}))
	defer server.Close()

	client := NewSearchClient(domain.StoreEbay, server.URL,
		NewStaticTokenProvider("tok"), NewStopWordFilter([]string{"new"}))

	offers, err := client.Search(context.Background(), "new Widget Pro 3000", 5)

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "Widget Pro 3000", gotQuery)

	// The entry with no URL and no item ID is dropped
	require.Len(t, offers, 2)
	assert.Equal(t, "Widget Pro 3000", offers[0].Title)
	assert.Equal(t, "v1|111|0", offers[0].ItemID)
	assert.Equal(t, domain.StoreEbay, offers[0].Store)
	require.NotNil(t, offers[0].Price)
	assert.Equal(t, 49.99, *offers[0].Price)
	assert.Equal(t, "USD", offers[0].Currency)
}

func TestSearchClient_LimitCapsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchPayload))
	}))
	defer server.Close()

	client := NewSearchClient(domain.StoreEbay, server.URL, nil, nil)

	offers, err := client.Search(context.Background(), "widget", 1)
	require.NoError(t, err)
	assert.Len(t, offers, 1)
}

func TestSearchClient_EmptyQueryAfterFiltering(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewSearchClient(domain.StoreEbay, server.URL, nil, NewStopWordFilter([]string{"new"}))

	offers, err := client.Search(context.Background(), "new", 5)
	require.NoError(t, err)
	assert.Nil(t, offers)
	assert.False(t, called)
}

func TestSearchClient_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewSearchClient(domain.StoreEbay, server.URL, nil, nil)

	_, err := client.Search(context.Background(), "widget", 5)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
