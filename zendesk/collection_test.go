package zendesk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ticketPages serves count tickets with ids 1..count, paginated by per_page
func ticketPages(t *testing.T, count int, failPage int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, _ := strconv.Atoi(q.Get("page"))
		perPage, _ := strconv.Atoi(q.Get("per_page"))
		assert.Equal(t, "users", q.Get("include"))

		if page == failPage {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"InternalError"}`))
			return
		}

		var tickets []map[string]any
		for id := (page-1)*perPage + 1; id <= page*perPage && id <= count; id++ {
			tickets = append(tickets, map[string]any{"id": id})
		}
		json.NewEncoder(w).Encode(map[string]any{
			"tickets": tickets,
			"count":   count,
		})
	}
}

func ids(records []Response) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = int(r["id"].(float64))
	}
	return out
}

func TestFetchAll(t *testing.T) {
	server := httptest.NewServer(ticketPages(t, 7, 0))
	defer server.Close()

	client := newTestClient(t, server.URL, WithConcurrency(2))

	records, err := client.FetchAll(context.Background(), "/tickets.json", "tickets",
		IteratorOptions{PerPage: 2}, []string{"users"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, ids(records))
}

func TestFetchAllSinglePage(t *testing.T) {
	server := httptest.NewServer(ticketPages(t, 3, 0))
	defer server.Close()

	client := newTestClient(t, server.URL)

	records, err := client.FetchAll(context.Background(), "/tickets.json", "tickets",
		IteratorOptions{}, []string{"users"})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids(records))
}

func TestFetchAllPageError(t *testing.T) {
	server := httptest.NewServer(ticketPages(t, 6, 2))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.FetchAll(context.Background(), "/tickets.json", "tickets",
		IteratorOptions{PerPage: 2}, []string{"users"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch page 2")
}

func TestFetchAllMissingKey(t *testing.T) {
	server := httptest.NewServer(ticketPages(t, 1, 0))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.FetchAll(context.Background(), "/tickets.json", "users",
		IteratorOptions{}, []string{"users"})
	assert.ErrorIs(t, err, ErrNoCollection)

	_, err = client.FetchAll(context.Background(), "/tickets.json", "", IteratorOptions{}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
