package domain

import dErrors "dsarhub/pkg/domain-errors"

// DSARType identifies the kind of privacy request being processed.
type DSARType string

const (
	DSARAccess        DSARType = "access"
	DSARDeletion      DSARType = "deletion"
	DSARRectification DSARType = "rectification"
	DSARPortability   DSARType = "portability"
)

// ParseDSARType creates a DSARType from a string, validating it.
func ParseDSARType(s string) (DSARType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "dsar type cannot be empty")
	}
	t := DSARType(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown dsar type: "+s)
	}
	return t, nil
}

// IsValid checks if the DSAR type is one of the supported enum values.
func (t DSARType) IsValid() bool {
	switch t {
	case DSARAccess, DSARDeletion, DSARRectification, DSARPortability:
		return true
	}
	return false
}

// String returns the string representation.
func (t DSARType) String() string {
	return string(t)
}

// DataSubjectType identifies the relationship of the subject to the organization.
// An empty value means "not specified" and is valid at this layer; rules treat
// it as matching any subject-type restriction that is itself empty.
type DataSubjectType string

const (
	SubjectEmployee  DataSubjectType = "employee"
	SubjectCustomer  DataSubjectType = "customer"
	SubjectCandidate DataSubjectType = "candidate"
	SubjectVendor    DataSubjectType = "vendor"
)

// ParseDataSubjectType creates a DataSubjectType from a string, validating it.
// The empty string parses to the empty value.
func ParseDataSubjectType(s string) (DataSubjectType, error) {
	if s == "" {
		return "", nil
	}
	t := DataSubjectType(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown data subject type: "+s)
	}
	return t, nil
}

// IsValid checks if the data subject type is one of the supported enum values.
func (t DataSubjectType) IsValid() bool {
	switch t {
	case SubjectEmployee, SubjectCustomer, SubjectCandidate, SubjectVendor:
		return true
	}
	return false
}

// String returns the string representation.
func (t DataSubjectType) String() string {
	return string(t)
}
