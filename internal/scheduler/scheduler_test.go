package scheduler

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type stubConfig struct {
	redisURL string
	queue    string
}

func (c stubConfig) GetRedisURL() string       { return c.redisURL }
func (c stubConfig) GetRedisTLSInsecure() bool { return false }
func (c stubConfig) GetAsynqQueueName() string { return c.queue }
func (c stubConfig) GetAsynqConcurrency() int  { return 1 }

func TestLeadFollowupDraftPayloadRoundTrip(t *testing.T) {
	payload := LeadFollowupDraftPayload{LeadID: uuid.NewString(), TenantID: uuid.NewString()}

	task, err := NewLeadFollowupDraftTask(payload)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != TaskLeadFollowupDraft {
		t.Fatalf("expected task type %s, got %s", TaskLeadFollowupDraft, task.Type())
	}

	parsed, err := ParseLeadFollowupDraftPayload(task)
	if err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	if parsed != payload {
		t.Fatalf("expected %+v, got %+v", payload, parsed)
	}
}

func TestParseTicketReplyDraftPayloadRejectsGarbage(t *testing.T) {
	task := asynq.NewTask(TaskTicketReplyDraft, []byte("not json"))
	if _, err := ParseTicketReplyDraftPayload(task); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(stubConfig{}); err == nil {
		t.Fatal("expected error when redis url is missing")
	}
}

func TestClientEnqueuesDraftTasks(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(stubConfig{redisURL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	tenantID := uuid.New()
	leadID := uuid.New()
	if err := client.EnqueueLeadFollowupDraft(context.Background(), tenantID, leadID); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer inspector.Close()

	pending, err := inspector.ListPendingTasks("default")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending task, got %d", len(pending))
	}
	if pending[0].Type != TaskLeadFollowupDraft {
		t.Fatalf("expected task type %s, got %s", TaskLeadFollowupDraft, pending[0].Type)
	}

	var payload LeadFollowupDraftPayload
	if err := json.Unmarshal(pending[0].Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.LeadID != leadID.String() || payload.TenantID != tenantID.String() {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestClientUsesConfiguredQueue(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(stubConfig{redisURL: "redis://" + mr.Addr(), queue: "drafts"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	if err := client.EnqueueTicketReplyDraft(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer inspector.Close()

	pending, err := inspector.ListPendingTasks("drafts")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 task on drafts queue, got %d", len(pending))
	}
}
