package validators

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/shopcart-backend/pkg/errors"
)

// ParseIDParam extracts a positive int64 identifier from a chi URL parameter.
func ParseIDParam(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s is required", name))
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid %s", name))
	}
	if id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be positive", name))
	}
	return id, nil
}
