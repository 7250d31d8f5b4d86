package models

// MergeRequest is a connector's callback payload: newly discovered identifier
// facts plus zero or more located accounts. Entry sources default to the
// authenticated connector's name.
type MergeRequest struct {
	Identifiers     []IdentityEntry  `json:"identifiers"`
	ResolvedSystems []ResolvedSystem `json:"resolved_systems,omitempty"`
}
