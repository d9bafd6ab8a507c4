package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/listkeeper/core/internal/domain/entities"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		kind entities.ErrorKind
		want int
	}{
		{entities.KindNotFound, http.StatusNotFound},
		{entities.KindAccessDenied, http.StatusForbidden},
		{entities.KindStructuralConflict, http.StatusConflict},
		{entities.KindDependencyBlocked, http.StatusConflict},
		{entities.KindValidationFailed, http.StatusBadRequest},
		{entities.KindStorageFailure, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := statusFor(tc.kind); got != tc.want {
			t.Errorf("statusFor(%s) = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestRespondError(t *testing.T) {
	e := echo.New()

	do := func(err error) (*httptest.ResponseRecorder, ErrorResponse) {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := respondError(c, err); err != nil {
			t.Fatalf("respondError returned %v", err)
		}
		var body ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return rec, body
	}

	t.Run("domain error surfaces kind and reason", func(t *testing.T) {
		rec, body := do(entities.StructuralConflict("list contains sublists"))
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
		}
		if body.Error != string(entities.KindStructuralConflict) || body.Reason != "list contains sublists" {
			t.Fatalf("unexpected body: %+v", body)
		}
	})

	t.Run("wrapped domain error still resolves", func(t *testing.T) {
		wrapped := errors.Join(errors.New("load parent"), entities.ErrListNotFound)
		rec, body := do(wrapped)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
		if body.Error != string(entities.KindNotFound) {
			t.Fatalf("unexpected body: %+v", body)
		}
	})

	t.Run("unknown error hides detail", func(t *testing.T) {
		rec, body := do(errors.New("pq: connection refused"))
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
		}
		if body.Reason != "internal error" {
			t.Fatalf("raw error leaked: %+v", body)
		}
	})
}
