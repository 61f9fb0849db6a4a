package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// pathParam binds a simple-style path parameter, unescaping it.
func pathParam(r *http.Request, name string) (string, error) {
	var v string
	err := runtime.BindStyledParameterWithLocation("simple", false, name, runtime.ParamLocationPath, chi.URLParam(r, name), &v)
	if err != nil {
		return "", fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return v, nil
}

// queryParam binds an optional form-style query parameter. Missing yields "".
func queryParam(r *http.Request, name string) (string, error) {
	var v string
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return "", fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return v, nil
}
