package utils_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AlenaMolokova/escort/internal/utils"
	"github.com/stretchr/testify/assert"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()

	err := utils.WriteJSON(w, http.StatusCreated, map[string]int{"n": 1})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, w.Body.String())
}

func TestWriteJSONError(t *testing.T) {
	w := httptest.NewRecorder()

	err := utils.WriteJSONError(w, http.StatusNotFound, "Order not found")
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Order not found"}`, w.Body.String())
}
