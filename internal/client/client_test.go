package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/formify/form-service/internal/errors"
	"github.com/formify/form-service/internal/formschema"
	"github.com/formify/form-service/internal/models"
	"github.com/formify/form-service/internal/submission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestNewAppliesOptions(t *testing.T) {
	c := New("http://example/", WithToken("tok"), WithTimeout(1500*time.Millisecond))

	assert.Equal(t, "http://example", c.baseURL)
	assert.Equal(t, "tok", c.token)
	assert.Equal(t, 1500*time.Millisecond, c.client.Timeout)
}

func TestClient_GetForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/v1/forms/f1":
			writeJSON(w, http.StatusOK, models.Form{ID: "f1", Title: "Feedback", Questions: []models.Question{
				{ID: "q1", Text: "Name", Type: models.QuestionTypeShortText},
			}})
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Form not found"})
		}
	}))
	defer srv.Close()
	c := New(srv.URL, WithToken("tok"))

	form, err := c.GetForm(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, "Feedback", form.Title)
	require.Len(t, form.Questions, 1)

	_, err = c.GetForm(context.Background(), "missing")
	assert.ErrorIs(t, err, submission.ErrFormNotFound)
}

func TestClient_SubmitAnswers(t *testing.T) {
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/forms/f1/responses", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var body struct {
			Answers []formschema.AnswerInput `json:"answers"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if assert.Len(t, body.Answers, 2) {
			assert.Equal(t, "hello", *body.Answers[0].TextValue)
			assert.False(t, *body.Answers[1].BoolValue)
		}

		writeJSON(w, http.StatusCreated, submission.SubmitResult{ResponseID: "r1", CreatedAt: created})
	}))
	defer srv.Close()

	result, err := New(srv.URL).SubmitAnswers(context.Background(), submission.SubmitRequest{
		FormID:  "f1",
		Answers: []formschema.AnswerInput{formschema.TextAnswer("q1", "hello"), formschema.BoolAnswer("q2", false)},
	})

	require.NoError(t, err)
	assert.Equal(t, "r1", result.ResponseID)
	assert.True(t, created.Equal(result.CreatedAt))
}

func TestClient_SubmitAnswersValidationFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"message": "Validation failed",
			"details": []map[string]string{{"field": "q1", "message": "field required", "rule": "required"}},
		})
	}))
	defer srv.Close()

	_, err := New(srv.URL).SubmitAnswers(context.Background(), submission.SubmitRequest{FormID: "f1"})

	var verrs apperrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "field required", verrs.ByField()["q1"])
}

func TestClient_ListResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/forms/f1/responses", r.URL.Path)
		assert.Equal(t, "500", r.URL.Query().Get("limit"))
		if r.Header.Get("Authorization") == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "User not authenticated"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"responses": []models.FormResponse{{ID: "r2", FormID: "f1"}, {ID: "r1", FormID: "f1"}},
			"total":     2,
		})
	}))
	defer srv.Close()

	list, err := New(srv.URL, WithToken("tok")).ListResponses(context.Background(), "f1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "r2", list[0].ID)

	_, err = New(srv.URL).ListResponses(context.Background(), "f1")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestDecodeHTTPError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"forbidden", http.StatusForbidden, `{"message":"Access denied"}`, ErrForbidden},
		{"not found", http.StatusNotFound, ``, submission.ErrFormNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, decodeHTTPError(tt.status, []byte(tt.body)), tt.want)
		})
	}

	err := decodeHTTPError(http.StatusInternalServerError, []byte(`{"message":"Internal server error","code":"internal"}`))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "http 500: Internal server error", apiErr.Error())

	err = decodeHTTPError(http.StatusBadRequest, []byte(`{"message":"Response has no answers"}`))
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Response has no answers", apiErr.Message)
}
