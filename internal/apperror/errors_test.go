package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		sentinel   error
		wantStatus int
	}{
		{"validation", Validation("bad field %q", "x"), ErrValidation, http.StatusBadRequest},
		{"launch", Launch("binary missing"), ErrLaunch, http.StatusBadGateway},
		{"unauthorized", Unauthorized("bad token"), ErrUnauthorized, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Fatalf("%v does not wrap its sentinel", tt.err)
			}
			if tt.err.Status != tt.wantStatus {
				t.Fatalf("status %d, want %d", tt.err.Status, tt.wantStatus)
			}
			if tt.err.Error() == "" {
				t.Fatal("empty error message")
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error status wins", &AppError{Err: ErrUnauthorized, Message: "nope", Status: http.StatusMisdirectedRequest}, http.StatusMisdirectedRequest},
		{"wrapped app error", fmt.Errorf("handling request: %w", Validation("bad")), http.StatusBadRequest},
		{"bare validation sentinel", ErrValidation, http.StatusBadRequest},
		{"bare unauthorized sentinel", ErrUnauthorized, http.StatusUnauthorized},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Fatalf("HTTPStatus = %d, want %d", got, tt.want)
			}
		})
	}
}
