package data

const MAX_LIMIT = 100

type QueryParams struct {
	Limit     int     `json:"limit"`
	NextToken *string `json:"nextToken"`
}

func (q *QueryParams) GetLimit() *int32 {
	limit := int32(q.Limit)
	if limit <= 0 || limit > MAX_LIMIT {
		limit = MAX_LIMIT
	}
	return &limit
}

type QueryResults[T interface{}] struct {
	Items     []T     `json:"items"`
	NextToken *string `json:"nextToken,omitempty"`
}

type NextToken map[string]map[string]string
