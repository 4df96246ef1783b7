package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"sternwerk/internal/models"
	"sternwerk/internal/security"
)

func TestRequireParentWithoutCookie(t *testing.T) {
	m := NewMiddleware(nil, nil, nil, security.NewCSRFGenerator("test"))

	called := false
	handler := m.RequireParent(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	recorder := httptest.NewRecorder()
	handler(recorder, httptest.NewRequest("GET", "/parent/children", nil))

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
	if called {
		t.Error("handler should not run without a session cookie")
	}
}

func TestRequireChildWithoutToken(t *testing.T) {
	m := NewMiddleware(nil, nil, nil, security.NewCSRFGenerator("test"))

	called := false
	handler := m.RequireChild(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic abc"},
		{name: "empty bearer", header: "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/child/profile", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()
			handler(recorder, r)

			if recorder.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", recorder.Code)
			}
		})
	}
	if called {
		t.Error("handler should not run without a device token")
	}
}

func TestCSRFProtectRejectsMissingToken(t *testing.T) {
	m := NewMiddleware(nil, nil, nil, security.NewCSRFGenerator("test"))

	handler := m.CSRFProtect(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run without a CSRF token")
	})

	r := httptest.NewRequest("POST", "/parent/children", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "session-1"})
	recorder := httptest.NewRecorder()
	handler(recorder, r)

	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", recorder.Code)
	}
}

func TestCSRFProtectAcceptsValidToken(t *testing.T) {
	csrf := security.NewCSRFGenerator("test")
	m := NewMiddleware(nil, nil, nil, csrf)

	called := false
	handler := m.CSRFProtect(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	token, err := csrf.GenerateToken("session-1")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	r := httptest.NewRequest("POST", "/parent/children", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "session-1"})
	r.Header.Set(CSRFHeaderName, token)
	recorder := httptest.NewRecorder()
	handler(recorder, r)

	if !called {
		t.Error("handler should run with a valid CSRF token")
	}
}

func TestGetUserFromContext(t *testing.T) {
	if user := GetUserFromContext(context.Background()); user != nil {
		t.Error("empty context should yield no user")
	}

	want := &models.User{ID: "u1", Email: "mama@example.com"}
	ctx := context.WithValue(context.Background(), UserContextKey, want)
	if got := GetUserFromContext(ctx); got != want {
		t.Error("context user should round-trip")
	}
}

func TestGetChildFromContext(t *testing.T) {
	if child := GetChildFromContext(context.Background()); child != nil {
		t.Error("empty context should yield no child")
	}

	want := &models.Child{ID: "c1", Name: "Emma"}
	ctx := context.WithValue(context.Background(), ChildContextKey, want)
	if got := GetChildFromContext(ctx); got != want {
		t.Error("context child should round-trip")
	}
}
