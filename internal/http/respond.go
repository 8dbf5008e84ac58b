package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/fairyhunter13/vegifarm-storefront/internal/feedback"
)

// envelope wraps every /api payload together with the toasts raised while serving it.
type envelope struct {
	Data   any              `json:"data"`
	Toasts []feedback.Toast `json:"toasts,omitempty"`
}

func respond(w http.ResponseWriter, status int, data any, toasts *feedback.Toasts) {
	env := envelope{Data: data}
	if toasts != nil {
		env.Toasts = toasts.All()
	}
	writeJSON(w, status, env)
}

// decodeJSON reads a strict JSON body into v. It writes the error response itself.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return false
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func queryLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
