package classify

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"reflect"
	"syscall"
	"testing"
	"time"
)

func TestClassify_HTTPStatus(t *testing.T) {
	tests := []struct {
		status        int
		wantType      ErrorType
		wantRetryable bool
	}{
		{400, Validation, false},
		{401, Authentication, false},
		{403, Authentication, false},
		{404, APIError, false},
		{429, RateLimit, true},
		{500, APIError, true},
		{502, APIError, true},
		{503, APIError, true},
		{504, APIError, true},
		{418, APIError, false},
		{599, APIError, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			cerr := Classify("fetch posts", &StatusError{StatusCode: tt.status})

			if cerr.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", cerr.Type, tt.wantType)
			}
			if cerr.Retryable != tt.wantRetryable {
				t.Errorf("Retryable = %v, want %v", cerr.Retryable, tt.wantRetryable)
			}
			if cerr.Code != tt.status {
				t.Errorf("Code = %d, want %d", cerr.Code, tt.status)
			}
		})
	}
}

func TestClassify_RetryAfterHeader(t *testing.T) {
	tests := []struct {
		name   string
		header http.Header
		want   time.Duration
	}{
		{"numeric", http.Header{"Retry-After": []string{"60"}}, 60 * time.Second},
		{"lowercase key", http.Header{}, 0}, // set below via Set for canonical handling
		{"non-numeric", http.Header{"Retry-After": []string{"invalid"}}, 0},
		{"negative", http.Header{"Retry-After": []string{"-5"}}, 0},
		{"absent", nil, 0},
	}

	// Header keys are matched case-insensitively.
	tests[1].header.Set("retry-after", "30")
	tests[1].want = 30 * time.Second

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cerr := Classify("fetch posts", &StatusError{StatusCode: 429, Header: tt.header})

			if cerr.RetryAfter != tt.want {
				t.Errorf("RetryAfter = %v, want %v", cerr.RetryAfter, tt.want)
			}
		})
	}
}

func TestClassify_Transport(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantCause     string
		wantRetryable bool
	}{
		{"connection refused", syscall.ECONNREFUSED, CauseConnRefused, true},
		{"connection reset", syscall.ECONNRESET, CauseConnReset, true},
		{"connection aborted", syscall.ECONNABORTED, CauseConnAborted, true},
		{"etimedout", syscall.ETIMEDOUT, CauseTimedOut, true},
		{"wrapped refused", fmt.Errorf("dial tcp: %w", syscall.ECONNREFUSED), CauseConnRefused, true},
		{"op error", &net.OpError{Op: "dial", Err: syscall.ECONNRESET}, CauseConnReset, true},
		{"dns failure", &net.DNSError{Err: "no such host", Name: "api.example.com"}, CauseNotFound, true},
		{"deadline exceeded", context.DeadlineExceeded, CauseTimedOut, true},
		{"timeout message", errors.New("request timed out after 30s"), CauseTimedOut, true},
		{"unknown authority", x509.UnknownAuthorityError{}, CauseCertificate, false},
		{"hostname mismatch", x509.HostnameError{Host: "api.example.com"}, CauseCertificate, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cerr := Classify("fetch posts", tt.err)

			if cerr.Type != Network {
				t.Errorf("Type = %q, want %q", cerr.Type, Network)
			}
			if cerr.CauseCode() != tt.wantCause {
				t.Errorf("CauseCode() = %q, want %q", cerr.CauseCode(), tt.wantCause)
			}
			if cerr.Retryable != tt.wantRetryable {
				t.Errorf("Retryable = %v, want %v", cerr.Retryable, tt.wantRetryable)
			}
		})
	}
}

func TestClassify_TransportMessagesNameOperation(t *testing.T) {
	cerr := Classify("update tag", syscall.ECONNREFUSED)
	if got, want := cerr.Message, "connection refused during update tag"; got != want {
		t.Errorf("Message = %q, want %q", got, want)
	}

	cerr = Classify("update tag", context.DeadlineExceeded)
	if got, want := cerr.Message, "update tag timed out"; got != want {
		t.Errorf("Message = %q, want %q", got, want)
	}
}

func TestClassify_Validation(t *testing.T) {
	err := &ValidationError{
		Message: "invalid post",
		Fields: map[string]string{
			"title":  "must not be empty",
			"status": "unknown value",
		},
	}

	cerr := Classify("create post", err)

	if cerr.Type != Validation {
		t.Errorf("Type = %q, want %q", cerr.Type, Validation)
	}
	if cerr.Retryable {
		t.Error("Retryable = true, want false")
	}
	// Fields are joined in sorted order for deterministic messages.
	want := "invalid post (status: unknown value; title: must not be empty)"
	if cerr.Message != want {
		t.Errorf("Message = %q, want %q", cerr.Message, want)
	}
	if cerr.Details["field.title"] != "must not be empty" {
		t.Errorf("Details[field.title] = %q, want %q", cerr.Details["field.title"], "must not be empty")
	}
}

func TestClassify_AuthKeywords(t *testing.T) {
	tests := []string{
		"authentication required",
		"request unauthorized",
		"token expired",
		"invalid credentials supplied",
	}

	for _, msg := range tests {
		t.Run(msg, func(t *testing.T) {
			cerr := Classify("fetch posts", errors.New(msg))

			if cerr.Type != Authentication {
				t.Errorf("Type = %q, want %q", cerr.Type, Authentication)
			}
			if cerr.Retryable {
				t.Error("Retryable = true, want false")
			}
		})
	}
}

func TestClassify_UnknownFallback(t *testing.T) {
	cerr := Classify("fetch posts", errors.New("something odd happened"))

	if cerr.Type != Unknown {
		t.Errorf("Type = %q, want %q", cerr.Type, Unknown)
	}
	if cerr.Retryable {
		t.Error("Retryable = true, want false")
	}
	if cerr.Code != 500 {
		t.Errorf("Code = %d, want 500", cerr.Code)
	}
}

func TestClassify_EmptyMessage(t *testing.T) {
	cerr := Classify("fetch posts", errors.New(""))

	if cerr.Message != "no error message available" {
		t.Errorf("Message = %q, want fallback", cerr.Message)
	}
}

func TestClassify_NilError(t *testing.T) {
	cerr := Classify("fetch posts", nil)

	if cerr == nil {
		t.Fatal("Classify(nil) = nil, want non-nil")
	}
	if cerr.Type != Unknown {
		t.Errorf("Type = %q, want %q", cerr.Type, Unknown)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	inputs := []error{
		&StatusError{StatusCode: 429, Header: http.Header{"Retry-After": []string{"60"}}},
		syscall.ECONNREFUSED,
		&ValidationError{Message: "bad", Fields: map[string]string{"a": "x", "b": "y"}},
		errors.New("token expired"),
		errors.New("mystery"),
	}

	for _, in := range inputs {
		a := Classify("fetch posts", in)
		b := Classify("fetch posts", in)

		// Timestamps differ between calls; everything else must match.
		a.Timestamp = time.Time{}
		b.Timestamp = time.Time{}

		if !reflect.DeepEqual(a, b) {
			t.Errorf("Classify(%v) not deterministic:\n  first  = %+v\n  second = %+v", in, a, b)
		}
	}
}

func TestClassifiedError_Unwrap(t *testing.T) {
	cerr := Classify("fetch posts", syscall.ECONNREFUSED)

	if !errors.Is(cerr, syscall.ECONNREFUSED) {
		t.Error("errors.Is(cerr, ECONNREFUSED) = false, want true")
	}
}

func TestClassifiedError_KindHelpers(t *testing.T) {
	timeout := Classify("op", context.DeadlineExceeded)
	if !timeout.IsTimeout() {
		t.Error("IsTimeout() = false for deadline exceeded")
	}
	if timeout.IsConnectionFailure() || timeout.IsDNSFailure() {
		t.Error("timeout misreported as connection or DNS failure")
	}

	refused := Classify("op", syscall.ECONNREFUSED)
	if !refused.IsConnectionFailure() {
		t.Error("IsConnectionFailure() = false for ECONNREFUSED")
	}

	dns := Classify("op", &net.DNSError{Err: "no such host", Name: "x"})
	if !dns.IsDNSFailure() {
		t.Error("IsDNSFailure() = false for DNS error")
	}

	api := Classify("op", &StatusError{StatusCode: 500})
	if api.IsTimeout() || api.IsConnectionFailure() || api.IsDNSFailure() {
		t.Error("APIError misreported as network kind")
	}
}
