package notify

import "fmt"

// DeliveryError reports a webhook call that did not succeed. StatusCode is
// zero when the request never got a response.
type DeliveryError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("failed to deliver notification: %v", e.Err)
	}
	return fmt.Sprintf("failed to deliver notification: HTTP error: %d %s", e.StatusCode, e.Body)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
