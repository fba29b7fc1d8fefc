package vectorstore

import (
	"errors"
	"fmt"
)

// ErrMissingUserID is returned when a filter lacks the user dimension.
var ErrMissingUserID = errors.New("filter requires a user id")

// Filter narrows a similarity query to an access-control scope.
//
// UserID is mandatory: it is the primary multi-tenant isolation dimension
// and is ANDed into every query. FileID and FolderID are optional scope
// conditions; when both are set the query matches points carrying both.
type Filter struct {
	FileID   string
	FolderID string
	UserID   string
}

// Validate checks that the filter carries the mandatory user dimension.
func (f Filter) Validate() error {
	if f.UserID == "" {
		return ErrMissingUserID
	}
	return nil
}

// String renders the filter for logs.
func (f Filter) String() string {
	s := fmt.Sprintf("userId=%s", f.UserID)
	if f.FileID != "" {
		s += fmt.Sprintf(" fileId=%s", f.FileID)
	}
	if f.FolderID != "" {
		s += fmt.Sprintf(" folderId=%s", f.FolderID)
	}
	return s
}
