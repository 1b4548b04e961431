package httperrors

import (
	"net/http"

	"github.com/txix-open/isp-kit/json"
)

type HttpError struct {
	statusCode  int
	userMessage string
	headers     map[string]string
	err         error
}

func New(statusCode int, userMessage string, internalError error) HttpError {
	return HttpError{
		statusCode:  statusCode,
		userMessage: userMessage,
		err:         internalError,
	}
}

func (e HttpError) Error() string {
	return e.err.Error()
}

func (e HttpError) Unwrap() error {
	return e.err
}

func (e HttpError) WriteError(w http.ResponseWriter) error {
	for key, value := range e.headers {
		w.Header().Set(key, value)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.statusCode)
	data := map[string]interface{}{
		"errorCode":    http.StatusText(e.statusCode),
		"errorMessage": e.userMessage,
	}
	return json.NewEncoder(w).Encode(data)
}

func (e HttpError) WithHeader(key string, value string) HttpError {
	headers := make(map[string]string, len(e.headers)+1)
	for existingKey, existingValue := range e.headers {
		headers[existingKey] = existingValue
	}
	headers[key] = value
	e.headers = headers
	return e
}
