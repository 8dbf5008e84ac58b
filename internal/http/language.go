package httpapi

import (
	"net/http"

	"github.com/fairyhunter13/vegifarm-storefront/internal/i18n"
)

type languageView struct {
	i18n.State
	Supported []i18n.Locale `json:"supported"`
	Cached    []i18n.Locale `json:"cached"`
}

type languageRequest struct {
	Language string `json:"language"`
}

func (a *App) languageView() languageView {
	return languageView{
		State:     a.Lang.State(),
		Supported: i18n.All(),
		Cached:    a.Lang.CachedLocales(),
	}
}

func (a *App) getLanguageHandler(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, a.languageView(), nil)
}

// setLanguageHandler switches the active language. The new bundle may still be
// loading when the response is written; isLoading reports it.
func (a *App) setLanguageHandler(w http.ResponseWriter, r *http.Request) {
	var req languageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !a.Lang.SetLanguage(r.Context(), req.Language) {
		WriteJSONError(w, http.StatusBadRequest, "unsupported_language", req.Language)
		return
	}
	w.Header().Set("Content-Language", a.Lang.DocumentLang())
	respond(w, http.StatusOK, a.languageView(), nil)
}

type translationView struct {
	Key      string      `json:"key"`
	Language i18n.Locale `json:"language"`
	Text     string      `json:"text"`
}

// translateHandler resolves ?key= against the active bundle. Every other query
// parameter is a placeholder value.
func (a *App) translateHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key := q.Get("key")
	if key == "" {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "key is required")
		return
	}
	params := make(map[string]any, len(q))
	for name, vals := range q {
		if name != "key" && len(vals) > 0 {
			params[name] = vals[0]
		}
	}
	respond(w, http.StatusOK, translationView{Key: key, Language: a.Lang.Language(), Text: a.Lang.T(key, params)}, nil)
}
