package paymentgateway

import (
	"errors"
	"fmt"
)

var ErrNotConfigured = errors.New("razorpay credentials are not configured")

// BadRequestError means Razorpay refused the request as invalid. Retrying it unchanged will not help.
type BadRequestError struct {
	StatusCode  int
	Code        string
	Description string
	Field       string
}

func (e *BadRequestError) Error() string {
	return e.Description
}

// GatewayError covers every other failure: 5xx, auth problems, transport errors and timeouts.
type GatewayError struct {
	StatusCode  int
	Code        string
	Description string
	Err         error
}

func (e *GatewayError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Description, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s (status %d)", e.Description, e.StatusCode)
	}
	return e.Description
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
