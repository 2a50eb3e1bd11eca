// Package search builds the query cascade and runs it against the case
// search index.
package search

import "github.com/jonesrussell/crc-worker/internal/domain"

// textFieldBoost is the relevance boost applied to every textual match
// clause in the cascade.
const textFieldBoost = 10

// Query is one structured search request in the cascade, tagged with a
// label for logging and metrics.
type Query struct {
	Label string
	Body  map[string]any
}

// BuildCascade constructs the prioritized query cascade for a candidate:
// name only, modified name (when it differs), name constrained by district
// then state, then the father-name variants with the same district/state
// tightening. Order matters downstream; the retriever preserves it.
func BuildCascade(p domain.CandidateProfile) []Query {
	queries := []Query{
		{Label: "name", Body: nameQuery(p.Name)},
	}
	if p.UseModifiedName {
		queries = append(queries, Query{Label: "modified_name", Body: nameQuery(p.ModifiedName)})
	}
	queries = append(queries,
		Query{Label: "name_district", Body: nameFilteredQuery(p.Name, "case_district", p.District)},
		Query{Label: "name_state", Body: nameFilteredQuery(p.Name, "case_state", p.State)},
		Query{Label: "name_father", Body: nameFatherQuery(p, nil)},
		Query{Label: "name_father_district", Body: nameFatherQuery(p, map[string]any{"case_district": p.District})},
		Query{Label: "name_father_state", Body: nameFatherQuery(p, map[string]any{"case_state": p.State})},
	)
	return queries
}

func matchClause(field, value string) map[string]any {
	return map[string]any{
		"match": map[string]any{
			field: map[string]any{
				"query": value,
				"boost": textFieldBoost,
			},
		},
	}
}

func nameQuery(name string) map[string]any {
	return map[string]any{
		"query": matchClause("name", name),
	}
}

func nameFilteredQuery(name, filterField, filterValue string) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": []any{matchClause("name", name)},
				"filter": []any{
					map[string]any{
						"term": map[string]any{filterField: filterValue},
					},
				},
			},
		},
	}
}

// nameFatherQuery matches on both name and relative, optionally constrained
// by term filters on jurisdiction fields.
func nameFatherQuery(p domain.CandidateProfile, termFilters map[string]any) map[string]any {
	boolQuery := map[string]any{
		"must": []any{
			matchClause("name", p.Name),
			matchClause("relative", p.FatherName),
		},
	}

	if len(termFilters) > 0 {
		filters := make([]any, 0, len(termFilters))
		for field, value := range termFilters {
			filters = append(filters, map[string]any{
				"term": map[string]any{field: value},
			})
		}
		boolQuery["filter"] = filters
	}

	return map[string]any{
		"query": map[string]any{"bool": boolQuery},
	}
}
