package helpers

import (
	"encoding/json"
	"net/http"

	"blogsite/internal/blocks"
)

type Response struct {
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
	Fields interface{} `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(Response{Data: data, Error: ""})
	if err != nil {
		return
	}
}

// RawJSON отдаёт уже закодированный data (например, из кеша) в той же обёртке.
func RawJSON(w http.ResponseWriter, status int, data []byte) {
	JSON(w, status, json.RawMessage(data))
}

func Error(w http.ResponseWriter, status int, errMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(Response{Data: nil, Error: errMsg})
	if err != nil {
		return
	}
}

// ValidationError — 400 с ошибками по полям в том же виде, что отдаёт редактор.
func ValidationError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(Response{Error: "validation failed", Fields: blocks.ErrorTree(err)})
}
