package handlers

import (
	"encoding/json"
	"net/http"
)

type APIError struct {
	Error string `json:"error"`
}

func jsonResponse(object interface{}, writer http.ResponseWriter) {
	resp, err := json.Marshal(object)
	if err != nil {
		http.Error(writer, err.Error(), http.StatusInternalServerError)
		return
	}
	writer.Write(resp)
}

func jsonError(message string, writer http.ResponseWriter, statusCode int) {
	resp, err := json.Marshal(APIError{Error: message})
	if err != nil {
		http.Error(writer, message, statusCode)
		return
	}
	writer.WriteHeader(statusCode)
	writer.Write(resp)
}
