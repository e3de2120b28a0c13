package failure

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Classify maps a transport error and/or HTTP status onto the taxonomy.
// It returns nil when there is neither an error nor a failing status.
func Classify(err error, statusCode int) error {
	if err == nil && statusCode < http.StatusBadRequest {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout{Err: err}
	}

	if statusCode >= http.StatusBadRequest {
		wrapped := err
		if wrapped == nil {
			wrapped = fmt.Errorf("%s", http.StatusText(statusCode))
		}
		if statusCode == http.StatusUnauthorized {
			return ErrInvalidCredential{Reason: wrapped.Error()}
		}
		return ErrNetwork{StatusCode: statusCode, Err: wrapped}
	}

	return ErrNetwork{Err: err}
}
