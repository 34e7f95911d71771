package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListComments(t *testing.T) {
	env := newEnv()
	env.comments.entries = []Entry{
		{Username: "alice", Comment: "great", Score: 5},
		{Username: "bob", Comment: "ok", Score: 3},
	}

	// Public endpoint: no token.
	rec := env.request(t, http.MethodGet, "/orders/comments/101/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []commentEntryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "alice", resp[0].Username)
	assert.Equal(t, 5, resp[0].Score)
}

func TestListComments_Empty(t *testing.T) {
	env := newEnv()

	rec := env.request(t, http.MethodGet, "/orders/comments/999/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListComments_InvalidID(t *testing.T) {
	env := newEnv()

	rec := env.request(t, http.MethodGet, "/orders/comments/abc/", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitComment(t *testing.T) {
	env := newEnv()

	rec := env.request(t, http.MethodPost, "/orders/5/comments/", testToken,
		jsonBody(`{"sku_id": 101, "comment": "arrived intact", "score": 4}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp orderGoodResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(101), resp.SKUID)
	assert.Equal(t, "arrived intact", resp.Comment)
	assert.Equal(t, 4, resp.Score)
}

func TestSubmitComment_FirstLineItemByDefault(t *testing.T) {
	env := newEnv()

	rec := env.request(t, http.MethodPost, "/orders/5/comments/", testToken,
		jsonBody(`{"comment": "fine", "score": 3}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp orderGoodResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(101), resp.SKUID)
}

func TestSubmitComment_Validation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"empty comment", `{"sku_id": 101, "comment": "", "score": 3}`, "comment"},
		{"score too low", `{"sku_id": 101, "comment": "x", "score": 0}`, "score"},
		{"score too high", `{"sku_id": 101, "comment": "x", "score": 6}`, "score"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv()

			rec := env.request(t, http.MethodPost, "/orders/5/comments/", testToken, jsonBody(tt.body))
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp struct {
				Fields []FieldError `json:"fields"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.NotEmpty(t, resp.Fields)
			assert.Equal(t, tt.field, resp.Fields[0].Field)
		})
	}
}

func TestSubmitComment_OrderNotFound(t *testing.T) {
	env := newEnv()

	rec := env.request(t, http.MethodPost, "/orders/999/comments/", testToken,
		jsonBody(`{"comment": "x", "score": 3}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitComment_ForeignOrder(t *testing.T) {
	env := newEnv()
	env.orders.byID[5].UserID = 99

	rec := env.request(t, http.MethodPost, "/orders/5/comments/", testToken,
		jsonBody(`{"comment": "x", "score": 3}`))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSubmitComment_UnknownSKU(t *testing.T) {
	env := newEnv()

	rec := env.request(t, http.MethodPost, "/orders/5/comments/", testToken,
		jsonBody(`{"sku_id": 999, "comment": "x", "score": 3}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "sku_id")
}

func TestSubmitComment_Unauthenticated(t *testing.T) {
	env := newEnv()

	rec := env.request(t, http.MethodPost, "/orders/5/comments/", "",
		jsonBody(`{"comment": "x", "score": 3}`))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
