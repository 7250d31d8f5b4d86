package domain

import dErrors "dsarhub/pkg/domain-errors"

// IdentifierType classifies one known fact about a data subject.
// Invariant: the value must be one of the supported identifier types.
//
// Usage: construct via ParseIdentifierType at trust boundaries to enforce the
// allowlist; direct casting bypasses validation. The resolver deliberately does
// not parse: inside the graph an unrecognized type degrades to custom weighting
// rather than being rejected.
type IdentifierType string

const (
	IdentifierEmail      IdentifierType = "email"
	IdentifierUPN        IdentifierType = "upn"
	IdentifierObjectID   IdentifierType = "objectId"
	IdentifierEmployeeID IdentifierType = "employeeId"
	IdentifierPhone      IdentifierType = "phone"
	IdentifierName       IdentifierType = "name"
	IdentifierCustom     IdentifierType = "custom"
)

// ParseIdentifierType creates an IdentifierType from a string, validating it.
func ParseIdentifierType(s string) (IdentifierType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identifier type cannot be empty")
	}
	t := IdentifierType(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown identifier type: "+s)
	}
	return t, nil
}

// IsValid checks if the identifier type is one of the supported enum values.
func (t IdentifierType) IsValid() bool {
	switch t {
	case IdentifierEmail, IdentifierUPN, IdentifierObjectID, IdentifierEmployeeID,
		IdentifierPhone, IdentifierName, IdentifierCustom:
		return true
	}
	return false
}

// String returns the string representation.
func (t IdentifierType) String() string {
	return string(t)
}
