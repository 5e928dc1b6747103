package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/zendesk/filter"
	"github.com/s0up4200/zendesk/zendesk"
)

var (
	collectionKey string
	filterExpr    string
	preset        string
	asJSON        bool
)

// listCmd pages through a collection endpoint
var listCmd = &cobra.Command{
	Use:   "list ENDPOINT",
	Short: "List every record of a collection, optionally filtered",
	Long: `Fetch all pages of a collection endpoint and print the records that match
the filter expression.

Examples:
  zendesk list /tickets.json --key tickets --filter 'status == "open" and hasTag("vip")'
  zendesk list /users.json --key users --preset admins --json`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&collectionKey, "key", "k", "", "collection key in the response (default derived from endpoint)")
	listCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	listCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	listCmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON")
	addIteratorFlags(listCmd)
}

// collectionKeyFor derives "tickets" from "/tickets.json" or "/users/1/tickets.json"
func collectionKeyFor(endpoint string) string {
	endpoint = strings.TrimSuffix(endpoint, ".json")
	if i := strings.LastIndex(endpoint, "/"); i >= 0 {
		endpoint = endpoint[i+1:]
	}
	return endpoint
}

func runList(cmd *cobra.Command, args []string) error {
	endpoint := args[0]
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	key := collectionKey
	if key == "" {
		key = collectionKeyFor(endpoint)
	}

	it, err := iteratorOptions()
	if err != nil {
		return err
	}

	var sideload []string
	if len(include) > 0 {
		sideload = include
	}

	ctx := cmd.Context()
	responses, err := client.FetchAll(ctx, endpoint, key, it, sideload)
	if err != nil {
		return err
	}

	records := make([]filter.Record, len(responses))
	for i, r := range responses {
		records[i] = r
	}

	switch {
	case filterExpr != "":
		logger.Info().Str("filter", filterExpr).Int("records", len(records)).Msg("Filtering records")
		records, err = filterManager.Apply(ctx, filterExpr, records)
	case preset != "":
		logger.Info().Str("preset", preset).Int("records", len(records)).Msg("Filtering records")
		records, err = filterManager.ApplyNamed(ctx, preset, records)
	}
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return printJSON(out, records)
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No records found matching the filter criteria.")
		return nil
	}

	// Display results
	fmt.Fprintf(out, "\nFound %d %s:\n", len(records), key)
	fmt.Fprintln(out, strings.Repeat("-", 80))
	for _, r := range records {
		fmt.Fprintf(out, "• %s\n", summarize(r))
	}

	return nil
}

// summarize renders the id and the first descriptive field of a record
func summarize(r zendesk.Response) string {
	id := r["id"]
	if f, ok := id.(float64); ok {
		id = int64(f)
	}
	for _, field := range []string{"subject", "name", "title", "email"} {
		if v, ok := r[field].(string); ok && v != "" {
			if status, ok := r["status"].(string); ok {
				return fmt.Sprintf("#%v %s [%s]", id, v, status)
			}
			return fmt.Sprintf("#%v %s", id, v)
		}
	}
	return fmt.Sprintf("#%v", id)
}
