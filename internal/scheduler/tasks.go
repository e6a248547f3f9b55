package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadFollowupDraft = "drafts.lead_followup"

const TaskTicketReplyDraft = "drafts.ticket_reply"

type LeadFollowupDraftPayload struct {
	LeadID   string `json:"leadId"`
	TenantID string `json:"tenantId"`
}

type TicketReplyDraftPayload struct {
	TicketID string `json:"ticketId"`
	TenantID string `json:"tenantId"`
}

func NewLeadFollowupDraftTask(payload LeadFollowupDraftPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadFollowupDraft, data), nil
}

func ParseLeadFollowupDraftPayload(task *asynq.Task) (LeadFollowupDraftPayload, error) {
	var payload LeadFollowupDraftPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadFollowupDraftPayload{}, err
	}
	return payload, nil
}

func NewTicketReplyDraftTask(payload TicketReplyDraftPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTicketReplyDraft, data), nil
}

func ParseTicketReplyDraftPayload(task *asynq.Task) (TicketReplyDraftPayload, error) {
	var payload TicketReplyDraftPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return TicketReplyDraftPayload{}, err
	}
	return payload, nil
}
