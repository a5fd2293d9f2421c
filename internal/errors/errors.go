package errors

import (
	"github.com/pingcap/errors"
)

// Is tests whether the specified err causes by the rfc error.
func Is(err error, is *errors.Error) bool {
	return is.Equal(errors.Cause(err))
}

// query errors
var (
	ErrEmptyQuery        = errors.Normalize("invalid query: %q is empty", errors.RFCCodeText("FileIndex:Query:ErrEmptyQuery"))
	ErrInvalidFieldValue = errors.Normalize("invalid value %q for field %s", errors.RFCCodeText("FileIndex:Query:ErrInvalidFieldValue"))
)

// record and index errors
var (
	ErrAttributeUnresolved = errors.Normalize("unable to determine %s of %s: %s", errors.RFCCodeText("FileIndex:Record:ErrAttributeUnresolved"))
	ErrIndexCorrupted      = errors.Normalize("index file is corrupted: %s", errors.RFCCodeText("FileIndex:Store:ErrIndexCorrupted"))
	ErrUnstorableRecord    = errors.Normalize("cannot store %s: %s", errors.RFCCodeText("FileIndex:Store:ErrUnstorableRecord"))
)

var ErrInvalidConfig = errors.Normalize("invalid config: %s", errors.RFCCodeText("FileIndex:Config:ErrInvalidConfig"))
