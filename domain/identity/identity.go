/*
Package identity - existence checks against the customer service.

Only existence is consulted; no customer attributes are needed on this
side of the service boundary.
*/
package identity

import (
	"context"
	"errors"
)

var (
	// ErrCustomerNotFound the customer service authoritatively reports no
	// such customer
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrSourceUnavailable the check failed for transport reasons; whether
	// the customer exists is unknown, which is different from "absent"
	ErrSourceUnavailable = errors.New("customer source unavailable")
)

// IdentitySource checks customer existence in the customer service. One
// bounded network attempt per call.
type IdentitySource interface {
	// Exists returns (true, nil) when the customer exists, (false, nil)
	// when the service authoritatively says it does not, and
	// (false, ErrSourceUnavailable) when the answer is unknown.
	Exists(ctx context.Context, customerID int64) (bool, error)
}
