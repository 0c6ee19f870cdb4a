// Package domain holds typed identifiers shared across the catalog. Typed
// ids make cross-entity assignment a compile error; parsing enforces the
// "valid, non-empty, non-nil UUID" invariant at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "dramcask/pkg/domain-errors"
)

type (
	// UserID identifies the acting user on a request.
	UserID uuid.UUID

	// CompanyID identifies a company.
	CompanyID uuid.UUID

	// DistilleryID identifies a distillery.
	DistilleryID uuid.UUID

	// RevisionID identifies a revision.
	RevisionID uuid.UUID
)

func (id UserID) String() string       { return uuid.UUID(id).String() }
func (id CompanyID) String() string    { return uuid.UUID(id).String() }
func (id DistilleryID) String() string { return uuid.UUID(id).String() }
func (id RevisionID) String() string   { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id CompanyID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id DistilleryID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id RevisionID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// Text marshaling keeps ids as canonical UUID strings in JSON payloads.

func (id UserID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }
func (id CompanyID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id DistilleryID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id RevisionID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(text []byte) error {
	parsed, err := uuid.ParseBytes(text)
	if err != nil {
		return err
	}
	*id = UserID(parsed)
	return nil
}

func (id *CompanyID) UnmarshalText(text []byte) error {
	parsed, err := uuid.ParseBytes(text)
	if err != nil {
		return err
	}
	*id = CompanyID(parsed)
	return nil
}

func (id *DistilleryID) UnmarshalText(text []byte) error {
	parsed, err := uuid.ParseBytes(text)
	if err != nil {
		return err
	}
	*id = DistilleryID(parsed)
	return nil
}

func (id *RevisionID) UnmarshalText(text []byte) error {
	parsed, err := uuid.ParseBytes(text)
	if err != nil {
		return err
	}
	*id = RevisionID(parsed)
	return nil
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeBadRequest, "%s is required", label)
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeBadRequest, "%s is not a valid UUID", label)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeBadRequest, "%s must not be the nil UUID", label)
	}
	return parsed, nil
}

// ParseUserID validates and converts a string into a UserID.
func ParseUserID(s string) (UserID, error) {
	parsed, err := parseUUID(s, "user id")
	if err != nil {
		return UserID{}, err
	}
	return UserID(parsed), nil
}

// ParseCompanyID validates and converts a string into a CompanyID.
func ParseCompanyID(s string) (CompanyID, error) {
	parsed, err := parseUUID(s, "company id")
	if err != nil {
		return CompanyID{}, err
	}
	return CompanyID(parsed), nil
}

// ParseDistilleryID validates and converts a string into a DistilleryID.
func ParseDistilleryID(s string) (DistilleryID, error) {
	parsed, err := parseUUID(s, "distillery id")
	if err != nil {
		return DistilleryID{}, err
	}
	return DistilleryID(parsed), nil
}

// ParseRevisionID validates and converts a string into a RevisionID.
func ParseRevisionID(s string) (RevisionID, error) {
	parsed, err := parseUUID(s, "revision id")
	if err != nil {
		return RevisionID{}, err
	}
	return RevisionID(parsed), nil
}
