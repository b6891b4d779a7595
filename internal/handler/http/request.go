package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// decodeOptionalJSON decodes the request body into v. A missing or empty
// body leaves v untouched, whether or not the client sent a Content-Length.
func decodeOptionalJSON(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
