package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"roomserve/internal/domain"
	"roomserve/internal/repository"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

// decodeBody reads the body once and unmarshals it into out. An empty body
// leaves out untouched.
func decodeBody(r *http.Request, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return domain.Invalid("invalid body: %v", err)
	}
	return nil
}

// listFilter reads page/size and the given equality filters from the query.
// Admins may narrow to one tenant with ?tenant_id=; "direct" selects
// direct-operated rows.
func listFilter(r *http.Request, keys ...string) repository.ListFilter {
	q := r.URL.Query()
	size := parseInt(q.Get("size"), 50)
	if size <= 0 || size > 500 {
		size = 50
	}
	page := parseInt(q.Get("page"), 1)
	if page < 1 {
		page = 1
	}
	f := repository.ListFilter{Limit: size, Offset: (page - 1) * size}
	for _, k := range keys {
		if v := q.Get(k); v != "" {
			if f.Equals == nil {
				f.Equals = map[string]string{}
			}
			f.Equals[k] = v
		}
	}
	switch t := q.Get("tenant_id"); t {
	case "":
	case "direct":
		f = f.WithTenant(nil)
	default:
		f = f.WithTenant(&t)
	}
	return f
}
