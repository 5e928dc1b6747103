package zendesk

import "strings"

// iteratorKeys are the collection iterator options Zendesk accepts
var iteratorKeys = []string{"per_page", "page", "sort_order", "sort_by"}

// PrepareQueryParams merges side-loads and iterator options into a flat
// query map. A non-nil sideload list becomes the comma separated "include"
// parameter; iterator keys outside per_page, page, sort_order and sort_by
// are dropped.
func PrepareQueryParams(sideload []string, iterators Params) Params {
	params := Params{}

	if sideload != nil {
		params["include"] = strings.Join(sideload, ",")
	}

	for _, key := range iteratorKeys {
		if v, ok := iterators[key]; ok {
			params[key] = v
		}
	}

	return params
}

// SortOrder is the direction of a sorted collection
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// IteratorOptions are the typed pagination and sorting options
type IteratorOptions struct {
	PerPage   int
	Page      int
	SortOrder SortOrder
	SortBy    string
}

// Params renders the non-zero options using their query parameter names
func (o IteratorOptions) Params() Params {
	params := Params{}
	if o.PerPage > 0 {
		params["per_page"] = o.PerPage
	}
	if o.Page > 0 {
		params["page"] = o.Page
	}
	if o.SortOrder != "" {
		params["sort_order"] = string(o.SortOrder)
	}
	if o.SortBy != "" {
		params["sort_by"] = o.SortBy
	}
	return params
}
