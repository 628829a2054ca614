package classify

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// fallbackMessage is used when the raw error carries no message at all.
const fallbackMessage = "no error message available"

// Classify normalizes a raw failure from the named operation into a
// ClassifiedError. It is deterministic, never panics, and never returns
// nil; inputs that match no category fall back to Unknown.
//
// Precedence: HTTP-response-shaped failures first, then transport errors,
// then validation errors, then authentication keyword matches, then Unknown.
func Classify(op string, err error) *ClassifiedError {
	if err == nil {
		return newError(op, Unknown, http.StatusInternalServerError, fallbackMessage, false, nil)
	}

	var serr *StatusError
	if errors.As(err, &serr) {
		return classifyStatus(op, serr, err)
	}

	if cerr := classifyTransport(op, err); cerr != nil {
		return cerr
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		return classifyValidation(op, verr, err)
	}

	msg := err.Error()
	if containsAuthKeyword(msg) {
		cerr := newError(op, Authentication, http.StatusUnauthorized, msg, false, err)
		return cerr
	}

	if msg == "" {
		msg = fallbackMessage
	}
	return newError(op, Unknown, http.StatusInternalServerError, msg, false, err)
}

func newError(op string, typ ErrorType, code int, msg string, retryable bool, cause error) *ClassifiedError {
	return &ClassifiedError{
		Type:      typ,
		Code:      code,
		Message:   msg,
		Retryable: retryable,
		Details:   map[string]string{DetailOperation: op},
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func classifyStatus(op string, serr *StatusError, cause error) *ClassifiedError {
	code := serr.StatusCode
	msg := serr.Message
	if msg == "" {
		msg = http.StatusText(code)
		if msg == "" {
			msg = fmt.Sprintf("unexpected status %d", code)
		}
	}

	var cerr *ClassifiedError
	switch code {
	case http.StatusBadRequest:
		cerr = newError(op, Validation, code, msg, false, cause)
	case http.StatusUnauthorized, http.StatusForbidden:
		cerr = newError(op, Authentication, code, msg, false, cause)
	case http.StatusNotFound:
		cerr = newError(op, APIError, code, msg, false, cause)
	case http.StatusTooManyRequests:
		cerr = newError(op, RateLimit, code, msg, true, cause)
		cerr.RetryAfter = parseRetryAfter(serr.Header)
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		cerr = newError(op, APIError, code, msg, true, cause)
	default:
		cerr = newError(op, APIError, code, msg, code >= 500, cause)
	}

	cerr.Details[DetailStatus] = strconv.Itoa(code)
	return cerr
}

// parseRetryAfter reads the delay-seconds form of the Retry-After header.
// Absent or non-numeric values yield zero (no hint), never a zero-second hint.
func parseRetryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func classifyTransport(op string, err error) *ClassifiedError {
	// Certificate problems are terminal: retrying cannot fix a trust failure.
	if isCertificateError(err) {
		cerr := newError(op, Network, http.StatusServiceUnavailable,
			fmt.Sprintf("TLS certificate verification failed during %s", op), false, err)
		cerr.Details[DetailCause] = CauseCertificate
		return cerr
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNREFUSED:
			return transportError(op, CauseConnRefused,
				fmt.Sprintf("connection refused during %s", op), err)
		case syscall.ECONNRESET:
			return transportError(op, CauseConnReset,
				fmt.Sprintf("connection reset during %s", op), err)
		case syscall.ECONNABORTED:
			return transportError(op, CauseConnAborted,
				fmt.Sprintf("connection aborted during %s", op), err)
		case syscall.ETIMEDOUT:
			return timeoutError(op, err)
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		cerr := transportError(op, CauseNotFound,
			fmt.Sprintf("DNS lookup failed during %s", op), err)
		if dnsErr.Name != "" {
			cerr.Details["host"] = dnsErr.Name
		}
		return cerr
	}

	if isTimeout(err) {
		return timeoutError(op, err)
	}

	return nil
}

func transportError(op, cause, msg string, err error) *ClassifiedError {
	cerr := newError(op, Network, http.StatusServiceUnavailable, msg, true, err)
	cerr.Details[DetailCause] = cause
	return cerr
}

func timeoutError(op string, err error) *ClassifiedError {
	cerr := newError(op, Network, http.StatusRequestTimeout,
		fmt.Sprintf("%s timed out", op), true, err)
	cerr.Details[DetailCause] = CauseTimedOut
	return cerr
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out")
}

func isCertificateError(err error) bool {
	var (
		unknownAuthority x509.UnknownAuthorityError
		certInvalid      x509.CertificateInvalidError
		hostname         x509.HostnameError
		verification     *tls.CertificateVerificationError
	)
	if errors.As(err, &unknownAuthority) ||
		errors.As(err, &certInvalid) ||
		errors.As(err, &hostname) ||
		errors.As(err, &verification) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "certificate") || strings.Contains(msg, "x509:")
}

func classifyValidation(op string, verr *ValidationError, cause error) *ClassifiedError {
	msg := verr.Message
	if msg == "" {
		msg = "validation failed"
	}

	if len(verr.Fields) > 0 {
		names := make([]string, 0, len(verr.Fields))
		for name := range verr.Fields {
			names = append(names, name)
		}
		sort.Strings(names)

		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, name+": "+verr.Fields[name])
		}
		msg = msg + " (" + strings.Join(parts, "; ") + ")"
	}

	cerr := newError(op, Validation, http.StatusBadRequest, msg, false, cause)
	for name, problem := range verr.Fields {
		cerr.Details["field."+name] = problem
	}
	return cerr
}

var authKeywords = []string{
	"authentication",
	"unauthorized",
	"forbidden",
	"token",
	"credential",
	"api key",
}

func containsAuthKeyword(msg string) bool {
	lower := strings.ToLower(msg)
	for _, kw := range authKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
