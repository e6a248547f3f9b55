package transport

// Lead status values. Status may also be absent (null) on legacy rows.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusOpen      LeadStatus = "open"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusWon       LeadStatus = "won"
	LeadStatusLost      LeadStatus = "lost"
	LeadStatusDuplicate LeadStatus = "duplicate"
)

// AllowedStatuses is the whitelist enforced on admin updates.
var AllowedStatuses = map[LeadStatus]bool{
	LeadStatusNew:       true,
	LeadStatusOpen:      true,
	LeadStatusContacted: true,
	LeadStatusQualified: true,
	LeadStatusWon:       true,
	LeadStatusLost:      true,
	LeadStatusDuplicate: true,
}

// Lead event types recorded on the audit trail.
const (
	EventStatusChanged   = "status_changed"
	EventScoreChanged    = "score_changed"
	EventScoreRecomputed = "score_recomputed"
	EventNoteAdded       = "note_added"
)

// Request DTOs

type UpdateLeadRequest struct {
	Status *string `json:"status" validate:"omitempty,min=1,max=30"`
	Score  *int    `json:"score" validate:"omitempty,min=0,max=100"`
}

type AddNoteRequest struct {
	Note  string `json:"note" validate:"required,min=1,max=5000"`
	Actor string `json:"actor" validate:"omitempty,max=50"`
}

type CreateRuleRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Field    string `json:"field" validate:"required,min=1,max=50"`
	Operator string `json:"operator" validate:"required,min=1,max=20"`
	Value    string `json:"value" validate:"max=255"`
	Points   *int   `json:"points" validate:"required"`
	Active   *bool  `json:"active"`
}

type UpdateRuleRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Field    *string `json:"field" validate:"omitempty,min=1,max=50"`
	Operator *string `json:"operator" validate:"omitempty,min=1,max=20"`
	Value    *string `json:"value" validate:"omitempty,max=255"`
	Points   *int    `json:"points"`
	Active   *bool   `json:"active"`
}

// Response DTOs

type LeadResponse struct {
	ID        string  `json:"id"`
	ContactID string  `json:"contactId"`
	Status    *string `json:"status"`
	Score     int     `json:"score"`
	Summary   *string `json:"summary"`
	CreatedAt string  `json:"createdAt"`
}

type LeadEventResponse struct {
	ID        string  `json:"id"`
	EventType string  `json:"eventType"`
	OldValue  *string `json:"oldValue"`
	NewValue  *string `json:"newValue"`
	Note      *string `json:"note"`
	Actor     string  `json:"actor"`
	CreatedAt string  `json:"createdAt"`
}

type RuleResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Field     string `json:"field"`
	Operator  string `json:"operator"`
	Value     string `json:"value"`
	Points    int    `json:"points"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"createdAt"`
}

type RecomputeResponse struct {
	UpdatedCount    int `json:"updatedCount"`
	RulesConsidered int `json:"rulesConsidered"`
}
