package providers

import (
	"io"
	"net/http"
)

// readBody drains a response body for inclusion in error messages, capped so
// a misbehaving provider cannot blow up our logs.
func readBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4<<10))
	return string(b)
}

func defaultHTTPClient() *http.Client {
	return http.DefaultClient
}
