package service

import (
	"errors"
	"fmt"
)

// ValidationError reports a bad request input, naming the offending field.
// Never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports that no matching records exist. Distinct from a
// transient store failure; never retried.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Resource, e.ID)
}

// AggregationError reports malformed intermediate data. It indicates an
// upstream data-quality bug and is fatal for the query.
type AggregationError struct {
	Reason string
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregation failed: %s", e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// IsAggregation reports whether err is an AggregationError.
func IsAggregation(err error) bool {
	var ae *AggregationError
	return errors.As(err, &ae)
}
