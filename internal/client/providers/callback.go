package providers

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
)

type callbackResult struct {
	code string
	err  error
}

// callbackRouter serves the OAuth redirect. Only the first request is
// reported on results.
func callbackRouter(state string, results chan<- callbackResult) http.Handler {
	var once sync.Once

	r := chi.NewRouter()
	r.Get(callbackPath, func(w http.ResponseWriter, req *http.Request) {
		res := parseCallback(req, state)
		if res.err != nil {
			http.Error(w, "Sign-in failed. You can close this window.", http.StatusBadRequest)
		} else {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			fmt.Fprintln(w, "Signed in. You can close this window and return to the terminal.")
		}
		once.Do(func() { results <- res })
	})
	return r
}

func parseCallback(r *http.Request, state string) callbackResult {
	q := r.URL.Query()

	if e := q.Get("error"); e != "" {
		if desc := q.Get("error_description"); desc != "" {
			e += " - " + desc
		}
		return callbackResult{err: fmt.Errorf("%w: %s", ErrAuthorizationDenied, e)}
	}
	if q.Get("state") != state {
		return callbackResult{err: ErrStateMismatch}
	}
	code := q.Get("code")
	if code == "" {
		return callbackResult{err: ErrMissingCode}
	}
	return callbackResult{code: code}
}
