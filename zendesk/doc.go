// Package zendesk provides the HTTP transport for the Zendesk REST API.
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := zendesk.NewClient("acme", logger,
//		zendesk.WithAPIToken("agent@acme.com", "api-token"),
//		zendesk.WithTimeout(30*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Side-load users and sort the first page of tickets
//	query := zendesk.PrepareQueryParams([]string{"users"}, zendesk.Params{
//		"per_page": 50,
//		"sort_by":  "created_at",
//	})
//	tickets, err := client.Get(ctx, "/tickets.json", query)
//
//	// Inspect the last request
//	dbg := client.LastDebug()
//	fmt.Println(dbg.StatusCode, dbg.ResponseHeaders.Get("X-Rate-Limit-Remaining"))
//
// # OAuth
//
// ExchangeOAuthCode trades an authorization code for an access token using
// a dedicated net/http client owned by the Client. Build the redirect URI
// of the current handler with RedirectURIFromRequest.
//
// # Error Handling
//
// Transport failures wrap ErrTransport. Responses with status >= 400 are
// returned as *APIError:
//
//	var apiErr *zendesk.APIError
//	if errors.As(err, &apiErr) && apiErr.IsRateLimited() {
//		// back off
//	}
package zendesk
