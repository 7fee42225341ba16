package repository

import "errors"

// Sentinel errors shared by the record repositories. Services translate
// these into the API error taxonomy.
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)
