package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"gen8n-be/internal/dto"
	"gen8n-be/internal/entity"
	"gen8n-be/internal/pkg/serverutils"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTrigger struct {
	resp *dto.ProxyResponse
	err  error
	seen map[string]interface{}
}

func (s *stubTrigger) Trigger(_ context.Context, _ uuid.UUID, body map[string]interface{}) (*dto.ProxyResponse, error) {
	s.seen = body
	return s.resp, s.err
}

func newWorkflows(db *memDB, trigger ITriggerService, secret string) (IWorkflowService, *gochannel.GoChannel) {
	bus := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, watermill.NopLogger{})
	return NewWorkflowService(&memFactory{db}, trigger, bus, secret, nopLog()), bus
}

func seedWorkflow(db *memDB, userID uuid.UUID, name string, status entity.WorkflowStatus, age time.Duration) entity.Workflow {
	w := entity.NewPlaceholder(userID, name, name+" description")
	w.Status = status
	w.CreatedAt = time.Now().Add(-age)
	db.workflows[w.Id] = *w
	return *w
}

func TestGenerateRemovesPlaceholderOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		trigger *stubTrigger
	}{
		{name: "ineligible", trigger: &stubTrigger{err: serverutils.NewForbidden("Insufficient available credits")}},
		{name: "upstream error", trigger: &stubTrigger{resp: &dto.ProxyResponse{StatusCode: http.StatusInternalServerError}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newMemDB()
			user := db.addUser(entity.User{})
			svc, _ := newWorkflows(db, tt.trigger, "")

			_, id, _ := svc.Generate(context.Background(), user.Id, &dto.GenerateWorkflowRequest{Name: "Sync", Description: "Sync sheets"})

			assert.Equal(t, uuid.Nil, id)
			assert.Zero(t, db.workflowCount(user.Id))
			assert.NotEmpty(t, tt.trigger.seen["workflow_id"])
		})
	}
}

func TestGenerateKeepsPlaceholderOnSuccess(t *testing.T) {
	db := newMemDB()
	user := db.addUser(entity.User{})
	trigger := &stubTrigger{resp: &dto.ProxyResponse{StatusCode: http.StatusOK}}
	svc, _ := newWorkflows(db, trigger, "")

	_, id, err := svc.Generate(context.Background(), user.Id, &dto.GenerateWorkflowRequest{Name: "Sync", Description: "Sync sheets"})

	require.NoError(t, err)
	assert.Equal(t, id.String(), trigger.seen["workflow_id"])
	w := db.workflows[id]
	assert.Equal(t, entity.WorkflowStatusPending, w.Status)
}

func TestCallbackCountsUsageOnce(t *testing.T) {
	db := newMemDB()
	user := db.addUser(entity.User{})
	w := seedWorkflow(db, user.Id, "Sync", entity.WorkflowStatusPending, 0)
	svc, bus := newWorkflows(db, &stubTrigger{}, "s3cret")
	updates, err := bus.Subscribe(context.Background(), WorkflowUpdatedTopic)
	require.NoError(t, err)

	req := &dto.WorkflowCallbackRequest{
		WorkflowID: w.Id.String(),
		JSON:       json.RawMessage(`{"nodes":[]}`),
		Status:     "completed",
	}
	res, err := svc.HandleCallback(context.Background(), "s3cret", req)
	require.NoError(t, err)
	assert.Equal(t, "complete", res.Status)
	assert.JSONEq(t, `{"nodes":[]}`, string(db.workflows[w.Id].JSON))

	_, err = svc.HandleCallback(context.Background(), "s3cret", req)
	require.NoError(t, err)
	assert.Equal(t, 1, db.user(user.Id).UsageCount)

	select {
	case msg := <-updates:
		var event dto.WorkflowEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &event))
		assert.Equal(t, w.Id, event.WorkflowID)
		assert.Equal(t, user.Id, event.UserID)
		msg.Ack()
	case <-time.After(time.Second):
		t.Fatal("no workflow update published")
	}
}

func TestCallbackDefaultsToReady(t *testing.T) {
	db := newMemDB()
	user := db.addUser(entity.User{})
	w := seedWorkflow(db, user.Id, "Sync", entity.WorkflowStatusPending, 0)
	svc, _ := newWorkflows(db, &stubTrigger{}, "")

	res, err := svc.HandleCallback(context.Background(), "", &dto.WorkflowCallbackRequest{WorkflowID: w.Id.String()})

	require.NoError(t, err)
	assert.Equal(t, "ready", res.Status)
	assert.Equal(t, 1, db.user(user.Id).UsageCount)
}

func TestCallbackRejections(t *testing.T) {
	db := newMemDB()
	user := db.addUser(entity.User{})
	w := seedWorkflow(db, user.Id, "Sync", entity.WorkflowStatusPending, 0)
	svc, _ := newWorkflows(db, &stubTrigger{}, "s3cret")
	ctx := context.Background()

	_, err := svc.HandleCallback(ctx, "wrong", &dto.WorkflowCallbackRequest{WorkflowID: w.Id.String()})
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	_, err = svc.HandleCallback(ctx, "s3cret", &dto.WorkflowCallbackRequest{WorkflowID: w.Id.String(), Status: "exploded"})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	_, err = svc.HandleCallback(ctx, "s3cret", &dto.WorkflowCallbackRequest{WorkflowID: "not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	_, err = svc.HandleCallback(ctx, "s3cret", &dto.WorkflowCallbackRequest{WorkflowID: uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	assert.Equal(t, entity.WorkflowStatusPending, db.workflows[w.Id].Status)
	assert.Zero(t, db.user(user.Id).UsageCount)
}

func TestListPagesNewestFirst(t *testing.T) {
	db := newMemDB()
	user := db.addUser(entity.User{})
	other := db.addUser(entity.User{})
	for i := 0; i < 5; i++ {
		seedWorkflow(db, user.Id, "Flow", entity.WorkflowStatusReady, time.Duration(i)*time.Hour)
	}
	seedWorkflow(db, other.Id, "Foreign", entity.WorkflowStatusReady, 0)
	svc, _ := newWorkflows(db, &stubTrigger{}, "")

	first, err := svc.List(context.Background(), user.Id, 0, 2, "")
	require.NoError(t, err)
	assert.Len(t, first.Workflows, 3)
	assert.True(t, first.HasMore)
	assert.True(t, first.Workflows[0].CreatedAt.After(first.Workflows[1].CreatedAt))

	last, err := svc.List(context.Background(), user.Id, 3, 5, "")
	require.NoError(t, err)
	assert.Len(t, last.Workflows, 2)
	assert.False(t, last.HasMore)
}

func TestDownloadAndDelete(t *testing.T) {
	db := newMemDB()
	user := db.addUser(entity.User{})
	pending := seedWorkflow(db, user.Id, "Draft", entity.WorkflowStatusPending, 0)
	ready := seedWorkflow(db, user.Id, "Sync Sheets -> Slack!", entity.WorkflowStatusReady, 0)
	svc, _ := newWorkflows(db, &stubTrigger{}, "")
	ctx := context.Background()

	_, _, err := svc.Download(ctx, user.Id, pending.Id)
	assert.Equal(t, http.StatusConflict, statusOf(t, err))

	name, body, err := svc.Download(ctx, user.Id, ready.Id)
	require.NoError(t, err)
	assert.Equal(t, "sync-sheets-slack.json", name)
	assert.JSONEq(t, `{}`, string(body))

	stranger := uuid.New()
	assert.Equal(t, http.StatusNotFound, statusOf(t, svc.Delete(ctx, stranger, ready.Id)))
	require.NoError(t, svc.Delete(ctx, user.Id, ready.Id))
	assert.Equal(t, 1, db.workflowCount(user.Id))
}

func TestSummaryCountsEveryStatus(t *testing.T) {
	db := newMemDB()
	user := db.addUser(entity.User{Credits: 4, ReservedCredits: 1, UsageCount: 7})
	seedWorkflow(db, user.Id, "a", entity.WorkflowStatusReady, 0)
	seedWorkflow(db, user.Id, "b", entity.WorkflowStatusReady, 0)
	seedWorkflow(db, user.Id, "c", entity.WorkflowStatusError, 0)
	svc, _ := newWorkflows(db, &stubTrigger{}, "")

	res, err := svc.Summary(context.Background(), user.Id)

	require.NoError(t, err)
	assert.Equal(t, int64(3), res.TotalWorkflows)
	assert.Equal(t, map[string]int64{"pending": 0, "ready": 2, "complete": 0, "error": 1}, res.ByStatus)
	assert.Equal(t, 3, res.AvailableCredits)
	assert.Equal(t, "credits", res.Mode)
}
