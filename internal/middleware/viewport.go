package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	viewportHintHeader = "Sec-CH-Viewport-Width"
	viewportQueryKey   = "vw"
)

// ViewportHint reads the layout width from the Sec-CH-Viewport-Width client hint,
// or the vw query parameter, and marks widths below breakpoint as compact.
// It also asks supporting browsers to send the hint on later requests.
func ViewportHint(breakpoint int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Accept-CH", viewportHintHeader)
			w.Header().Add("Vary", viewportHintHeader)

			width := parseWidth(r.Header.Get(viewportHintHeader))
			if width == 0 {
				width = parseWidth(r.URL.Query().Get(viewportQueryKey))
			}
			info := ViewportInfo{Width: width, Compact: width > 0 && width < breakpoint}
			next.ServeHTTP(w, r.WithContext(WithViewport(r.Context(), info)))
		})
	}
}

func parseWidth(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
