package mockapi

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type bodyKey struct{}

func withBody(r *http.Request, body map[string]interface{}) *http.Request {
	if body == nil {
		return r
	}
	return r.WithContext(context.WithValue(r.Context(), bodyKey{}, body))
}

func bodyOf(r *http.Request) map[string]interface{} {
	body, _ := r.Context().Value(bodyKey{}).(map[string]interface{})
	if body == nil {
		return map[string]interface{}{}
	}
	return body
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a plain-text error response and logs it
func writeError(w http.ResponseWriter, statusCode int, message string, err error, logger *zap.SugaredLogger) {
	if err != nil {
		logger.Errorw(message, "error", err.Error(), "status_code", statusCode)
	} else {
		logger.Errorw(message, "status_code", statusCode)
	}
	http.Error(w, message, statusCode)
}
