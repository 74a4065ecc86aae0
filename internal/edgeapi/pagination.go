package edgeapi

import (
	"net/http"
	"strconv"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type pageParams struct {
	limit  int32
	offset int32
	page   int32
}

// parsePage reads limit/offset or page/perPage from the query string, query
// string as the Edge's own concern: the Data Gateway only ever sees
// limit/offset.
func parsePage(r *http.Request) pageParams {
	q := r.URL.Query()
	limit := int32(defaultLimit)
	if raw := q.Get("perPage"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil {
			limit = int32(v)
		}
	}
	if raw := q.Get("limit"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil {
			limit = int32(v)
		}
	}
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	var page int32 = 1
	if raw := q.Get("page"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil && v > 0 {
			page = int32(v)
		}
	}
	offset := (page - 1) * limit
	if raw := q.Get("offset"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil && v >= 0 {
			offset = int32(v)
		}
	}

	return pageParams{limit: limit, offset: offset, page: page}
}

func (p pageParams) queryString() string {
	return "?limit=" + strconv.Itoa(int(p.limit)) + "&offset=" + strconv.Itoa(int(p.offset))
}

// pageMeta builds the camelCase pagination envelope fields the browser
// expects alongside a page of results.
func pageMeta(total int64, p pageParams) map[string]any {
	hasNext := int64(p.offset)+int64(p.limit) < total
	hasPrev := p.offset > 0
	return map[string]any{
		"total":   total,
		"limit":   p.limit,
		"offset":  p.offset,
		"page":    p.page,
		"perPage": p.limit,
		"hasNext": hasNext,
		"hasPrev": hasPrev,
	}
}
