package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/supplydesk/supplydesk-backend/pkg/errors"
)

// ParseQueryUint reads an optional positive integer query parameter. A nil
// result means the parameter was absent.
func ParseQueryUint(r *http.Request, key string) (*uint, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be positive").WithDetails(map[string]any{"field": key})
	}
	typed := uint(value)
	return &typed, nil
}
