package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/zendesk/zendesk"
)

var (
	dataJSON    string
	uploadFile  string
	contentType string
	queryPairs  map[string]string
	include     []string
	perPage     int
	page        int
	sortBy      string
	sortOrder   string
	showDebug   bool
)

// requestCmd sends a single request
var requestCmd = &cobra.Command{
	Use:   "request METHOD ENDPOINT",
	Short: "Send a request to an API endpoint",
	Long: `Send a request to an endpoint relative to the API base URL and print the
decoded JSON response.

Examples:
  zendesk request GET /tickets.json --include users --per-page 50
  zendesk request POST /tickets.json --data '{"ticket":{"subject":"Hello"}}'
  zendesk request POST /uploads.json --file ./screenshot.png --content-type image/png --query filename=screenshot.png`,
	Args: cobra.ExactArgs(2),
	RunE: runRequest,
}

func init() {
	rootCmd.AddCommand(requestCmd)

	requestCmd.Flags().StringVarP(&dataJSON, "data", "d", "", "JSON object sent as the request body")
	requestCmd.Flags().StringVar(&uploadFile, "file", "", "file streamed as the request body")
	requestCmd.Flags().StringVar(&contentType, "content-type", "", "Content-Type header (default application/json)")
	requestCmd.Flags().StringToStringVarP(&queryPairs, "query", "q", nil, "extra query parameters (key=value)")
	requestCmd.Flags().BoolVar(&showDebug, "debug", false, "print the request diagnostics to stderr")
	addIteratorFlags(requestCmd)
}

// addIteratorFlags registers the side-load and iterator flags on cmd
func addIteratorFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&include, "include", nil, "side-load related records (comma separated)")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "records per page")
	cmd.Flags().IntVar(&page, "page", 0, "page number")
	cmd.Flags().StringVar(&sortBy, "sort-by", "", "sort field")
	cmd.Flags().StringVar(&sortOrder, "sort-order", "", "sort order (asc/desc)")
}

func iteratorOptions() (zendesk.IteratorOptions, error) {
	it := zendesk.IteratorOptions{
		PerPage: perPage,
		Page:    page,
		SortBy:  sortBy,
	}

	switch zendesk.SortOrder(strings.ToLower(sortOrder)) {
	case "":
	case zendesk.SortAsc:
		it.SortOrder = zendesk.SortAsc
	case zendesk.SortDesc:
		it.SortOrder = zendesk.SortDesc
	default:
		return it, fmt.Errorf("invalid sort order: %s (must be 'asc' or 'desc')", sortOrder)
	}

	return it, nil
}

// buildQuery merges side-loads, iterator options and extra key=value pairs
func buildQuery(sideload []string, it zendesk.IteratorOptions, extra map[string]string) zendesk.Params {
	if len(sideload) == 0 {
		sideload = nil
	}
	query := zendesk.PrepareQueryParams(sideload, it.Params())
	for k, v := range extra {
		query[k] = v
	}
	return query
}

// parseData decodes the --data flag into post fields
func parseData(data string) (zendesk.Params, error) {
	if strings.TrimSpace(data) == "" {
		return nil, nil
	}
	var fields zendesk.Params
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return nil, fmt.Errorf("invalid --data: must be a JSON object: %w", err)
	}
	return fields, nil
}

func runRequest(cmd *cobra.Command, args []string) error {
	method, endpoint := strings.ToUpper(args[0]), args[1]
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	it, err := iteratorOptions()
	if err != nil {
		return err
	}

	fields, err := parseData(dataJSON)
	if err != nil {
		return err
	}

	opts := zendesk.RequestOptions{
		Method:      method,
		ContentType: contentType,
		PostFields:  fields,
		QueryParams: buildQuery(include, it, queryPairs),
		File:        uploadFile,
	}

	resp, err := client.Send(cmd.Context(), endpoint, opts)
	if showDebug {
		printDebug(cmd.ErrOrStderr(), client.LastDebug())
	}
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), resp)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printDebug(w io.Writer, dbg zendesk.Debug) {
	fmt.Fprintf(w, "Request: %s %s (id %s)\n", dbg.Method, dbg.URL, dbg.RequestID)
	for name, values := range dbg.RequestHeaders {
		fmt.Fprintf(w, "> %s: %s\n", name, strings.Join(values, ", "))
	}
	fmt.Fprintf(w, "Status: %d\n", dbg.StatusCode)
	fmt.Fprint(w, dbg.Raw)
	if dbg.Error != nil {
		fmt.Fprintf(w, "API error: %v\n", map[string]any(dbg.Error))
	}
}
