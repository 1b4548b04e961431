package handler

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/json"
)

func writeJson(writer http.ResponseWriter, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.WithMessage(err, "marshal response")
	}

	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, err = writer.Write(data)
	if err != nil {
		return errors.WithMessage(err, "write response")
	}

	return nil
}
