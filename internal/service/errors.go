// SPDX-License-Identifier: Apache-2.0

package service

import "errors"

var (
	// ErrPassInFlight is returned by RunPass when another pass already holds
	// the in-flight guard. Triggers treat it as a no-op, not a failure.
	ErrPassInFlight = errors.New("sync pass already in flight")

	// ErrInvalidOperation is returned by Enqueue for an unknown operation verb.
	ErrInvalidOperation = errors.New("invalid queue operation")

	// ErrInvalidEntityType is returned when a caller names an unknown collection.
	ErrInvalidEntityType = errors.New("invalid entity type")
)
