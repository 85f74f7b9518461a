package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action names the sensitive operation an audit event records.
type Action string

const (
	ActionOpeningCreate    Action = "OPENING_CREATE"
	ActionOpeningApproval  Action = "OPENING_APPROVAL"
	ActionViewTokenIssue   Action = "VIEW_TOKEN_ISSUE"
	ActionOpeningView      Action = "OPENING_VIEW"
	ActionCaseCreate       Action = "CASE_CREATE"
	ActionResolutionCreate Action = "RESOLUTION_CREATE"
	ActionResolutionSign   Action = "RESOLUTION_SIGN"
	ActionAuditRead        Action = "AUDIT_READ"
)

// Entry is what domain services emit. It carries real identifiers; the sink
// derives every privacy-preserving projection exactly once, at write time.
type Entry struct {
	Actor   string // real username
	Role    string
	Action  Action
	Target  string // e.g. "opening:<id>", "case:<id>"
	Success bool
	Details string // free text; redacted before storage
}

// Event is the stored audit record. Real actor/target are restricted to the
// out-of-scope forensic path; everything auditor-facing is derived.
type Event struct {
	ID        uuid.UUID
	Timestamp time.Time

	// Real identifiers (restricted visibility)
	Actor  string
	Target string

	// Derived projections (auditor-visible)
	ActorPseudo     string
	TargetPseudo    string
	IPMasked        string
	DetailsRedacted string

	Role      string
	Action    Action
	Success   bool
	RequestID string
	Device    string
}

// AuditorEvent is the only shape the auditor role ever sees.
// Real actor/target identifiers never pass through this projection.
type AuditorEvent struct {
	ID              uuid.UUID `json:"id"`
	Timestamp       time.Time `json:"ts"`
	ActorPseudo     string    `json:"actor_pseudo"`
	Role            string    `json:"role"`
	Action          Action    `json:"action"`
	TargetPseudo    string    `json:"target_pseudo"`
	IPMasked        string    `json:"ip_masked"`
	Success         bool      `json:"success"`
	DetailsRedacted string    `json:"details_redacted"`
}

// Auditor projects the stored event into its auditor-visible shape.
func (e *Event) Auditor() AuditorEvent {
	return AuditorEvent{
		ID:              e.ID,
		Timestamp:       e.Timestamp,
		ActorPseudo:     e.ActorPseudo,
		Role:            e.Role,
		Action:          e.Action,
		TargetPseudo:    e.TargetPseudo,
		IPMasked:        e.IPMasked,
		Success:         e.Success,
		DetailsRedacted: e.DetailsRedacted,
	}
}

// Filters narrows auditor reads. Zero values mean "no filter".
type Filters struct {
	Action  Action
	Actions []Action
	Role    string
	Success *bool
	Limit   int
}

// Stats are aggregate counts that reveal no individual information.
type Stats struct {
	ByAction  map[string]int `json:"by_action"`
	ByRole    map[string]int `json:"by_role"`
	BySuccess map[string]int `json:"by_success"`
	Total     int            `json:"total_events"`
}
