package data

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// IsTransient classifies a store error as retryable. Connection and timeout
// failures are transient; everything else (malformed queries, decode errors,
// duplicate keys) is fatal and must not be retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, mongo.ErrClientDisconnected) {
		return true
	}
	return mongo.IsTimeout(err) || mongo.IsNetworkError(err)
}
