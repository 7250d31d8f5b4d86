package domain

import (
	"github.com/google/uuid"

	dErrors "dsarhub/pkg/domain-errors"
)

// Typed identifiers for the core entities. These are domain primitives: construct
// via the Parse functions at trust boundaries so an invalid string never crosses
// into services as a valid-looking ID.

// CaseID identifies a privacy-request case.
type CaseID uuid.UUID

// TenantID identifies a tenant owning catalogues and cases.
type TenantID uuid.UUID

// RuleID identifies a discovery rule row.
type RuleID uuid.UUID

// SystemID identifies a catalogued backend system.
type SystemID uuid.UUID

func parseUUID(s, kind string) (uuid.UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" must not be nil")
	}
	return u, nil
}

// ParseCaseID validates and returns a CaseID.
func ParseCaseID(s string) (CaseID, error) {
	u, err := parseUUID(s, "case ID")
	return CaseID(u), err
}

// ParseTenantID validates and returns a TenantID.
func ParseTenantID(s string) (TenantID, error) {
	u, err := parseUUID(s, "tenant ID")
	return TenantID(u), err
}

// ParseRuleID validates and returns a RuleID.
func ParseRuleID(s string) (RuleID, error) {
	u, err := parseUUID(s, "rule ID")
	return RuleID(u), err
}

// ParseSystemID validates and returns a SystemID.
func ParseSystemID(s string) (SystemID, error) {
	u, err := parseUUID(s, "system ID")
	return SystemID(u), err
}

func (id CaseID) String() string   { return uuid.UUID(id).String() }
func (id TenantID) String() string { return uuid.UUID(id).String() }
func (id RuleID) String() string   { return uuid.UUID(id).String() }
func (id SystemID) String() string { return uuid.UUID(id).String() }

func (id CaseID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id TenantID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id RuleID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id SystemID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// The typed IDs travel through JSON payloads as canonical UUID strings. A nil
// UUID is allowed here so zero-valued IDs survive encode/decode; trust
// boundaries reject nil via the Parse functions instead.

func (id CaseID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id TenantID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id RuleID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id SystemID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *CaseID) UnmarshalText(text []byte) error {
	u, err := uuid.Parse(string(text))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid case ID")
	}
	*id = CaseID(u)
	return nil
}

func (id *TenantID) UnmarshalText(text []byte) error {
	u, err := uuid.Parse(string(text))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid tenant ID")
	}
	*id = TenantID(u)
	return nil
}

func (id *RuleID) UnmarshalText(text []byte) error {
	u, err := uuid.Parse(string(text))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid rule ID")
	}
	*id = RuleID(u)
	return nil
}

func (id *SystemID) UnmarshalText(text []byte) error {
	u, err := uuid.Parse(string(text))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid system ID")
	}
	*id = SystemID(u)
	return nil
}
