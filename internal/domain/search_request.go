package domain

import "encoding/json"

// DefaultPageLength is the page size used when a request omits or zeroes length.
const DefaultPageLength = 20

// SearchRequest is the body of a grid search: pagination, sort and the two
// filter groups with their link operators.
type SearchRequest struct {
	Start               int            `json:"start"`
	Length              int            `json:"length"`
	Sort                []SortClause   `json:"sort"`
	Filters             []FilterClause `json:"filters"`
	FiltersLink         LinkOperator   `json:"filtersLinkOperator"`
	ExcludedFilters     []FilterClause `json:"excludedColumnsFilters"`
	ExcludedFiltersLink LinkOperator   `json:"excludedColumnsFiltersLinkOperator"`
}

// NewSearchRequest returns a request carrying the documented defaults.
func NewSearchRequest() SearchRequest {
	return SearchRequest{
		Length:              DefaultPageLength,
		FiltersLink:         LinkAnd,
		ExcludedFiltersLink: LinkAnd,
	}
}

// UnmarshalJSON decodes the request on top of the defaults so absent keys keep
// their documented values.
func (r *SearchRequest) UnmarshalJSON(data []byte) error {
	type plain SearchRequest
	decoded := plain(NewSearchRequest())
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*r = SearchRequest(decoded)
	return nil
}

// Normalize clamps pagination into a usable window. maxLength <= 0 disables
// the upper bound.
func (r SearchRequest) Normalize(maxLength int) SearchRequest {
	if r.Start < 0 {
		r.Start = 0
	}
	if r.Length <= 0 {
		r.Length = DefaultPageLength
	}
	if maxLength > 0 && r.Length > maxLength {
		r.Length = maxLength
	}
	if r.FiltersLink == "" {
		r.FiltersLink = LinkAnd
	}
	if r.ExcludedFiltersLink == "" {
		r.ExcludedFiltersLink = LinkAnd
	}
	return r
}
