package terminal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestCollaborator(t *testing.T, handler http.HandlerFunc) *HTTPCollaborator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPCollaborator(srv.URL, 2*time.Second, nil)
}

func TestClientLoginSuccess(t *testing.T) {
	client := newTestCollaborator(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var creds map[string]string
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if creds["username"] != "admin1" || creds["password"] != "pw" {
			t.Fatalf("unexpected credentials %v", creds)
		}
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-1", "role": "admin"})
	})

	reply, err := client.Login(context.Background(), "admin1", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if reply.Token != "tok-1" || reply.Role != "admin" {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestClientLoginAccessDenied(t *testing.T) {
	client := newTestCollaborator(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{
			"accessDenied": true,
			"staffId":      "42",
			"message":      "Access not granted yet.",
		})
	})

	_, err := client.Login(context.Background(), "staff1", "pw")
	var denied *AccessDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected AccessDeniedError, got %v", err)
	}
	if denied.StaffID != "42" || denied.Message != "Access not granted yet." {
		t.Fatalf("unexpected denial %+v", denied)
	}
}

func TestClientLoginAccessDeniedNumericStaffID(t *testing.T) {
	client := newTestCollaborator(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{
			"accessDenied": true,
			"staffId":      42,
			"message":      "Access not granted yet.",
		})
	})

	_, err := client.Login(context.Background(), "staff1", "pw")
	var denied *AccessDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected AccessDeniedError, got %v", err)
	}
	if denied.StaffID != "42" {
		t.Fatalf("numeric staff id not tolerated: %q", denied.StaffID)
	}
}

func TestClientLoginInvalidCredentials(t *testing.T) {
	client := newTestCollaborator(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
	})

	if _, err := client.Login(context.Background(), "x", "y"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestClientLoginServerFault(t *testing.T) {
	client := newTestCollaborator(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if _, err := client.Login(context.Background(), "x", "y"); !errors.Is(err, ErrServerFault) {
		t.Fatalf("expected ErrServerFault, got %v", err)
	}
}

func TestClientListStaffBearerAndStaleMapping(t *testing.T) {
	client := newTestCollaborator(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode([]StaffRecord{{ID: "s1", Name: "Asha", IsOnDuty: true}})
	})

	list, err := client.ListStaff(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("ListStaff: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Asha" {
		t.Fatalf("unexpected listing %+v", list)
	}

	if _, err := client.ListStaff(context.Background(), "revoked"); !errors.Is(err, ErrStaleAuthorization) {
		t.Fatalf("401 must map to ErrStaleAuthorization, got %v", err)
	}
}

func TestClientToggleAccessWirePayload(t *testing.T) {
	var got map[string]any
	client := newTestCollaborator(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/admin/toggle-access" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	})

	if err := client.ToggleAccess(context.Background(), "tok-1", "s1", true); err != nil {
		t.Fatalf("ToggleAccess: %v", err)
	}
	if got["staffId"] != "s1" {
		t.Fatalf("unexpected staffId %v", got["staffId"])
	}
	// Duty state travels as 0|1, not a boolean.
	if got["is_on_duty"] != float64(1) {
		t.Fatalf("unexpected is_on_duty %v", got["is_on_duty"])
	}
}

func TestClientRequestAccessPayload(t *testing.T) {
	var got map[string]string
	client := newTestCollaborator(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/staff/request-access" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	})

	if err := client.RequestAccess(context.Background(), "42"); err != nil {
		t.Fatalf("RequestAccess: %v", err)
	}
	if got["staffId"] != "42" {
		t.Fatalf("unexpected payload %v", got)
	}
}

func TestClientVehicleExitParsesRow(t *testing.T) {
	client := newTestCollaborator(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/staff/vehicle/exit" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(VehicleRow{
			ID: "v1", VehicleNumber: "KA01AB1234", VehicleType: "FOUR_WHEELER",
			Fee: 80, PaymentStatus: "PAID",
		})
	})

	row, err := client.VehicleExit(context.Background(), "tok-1", "KA01AB1234")
	if err != nil {
		t.Fatalf("VehicleExit: %v", err)
	}
	if row.Fee != 80 || row.PaymentStatus != "PAID" {
		t.Fatalf("unexpected row %+v", row)
	}
}

func TestClientUnreachableServerIsFault(t *testing.T) {
	client := NewHTTPCollaborator("http://127.0.0.1:1", 500*time.Millisecond, nil)
	if _, err := client.Login(context.Background(), "x", "y"); !errors.Is(err, ErrServerFault) {
		t.Fatalf("expected ErrServerFault, got %v", err)
	}
}
