package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"doc-compliance/internal/domain/apperr"
	"doc-compliance/internal/domain/doctype"
	"doc-compliance/internal/domain/event"
	"doc-compliance/internal/domain/requirement"
	"doc-compliance/internal/testutil/doctypemock"
	"doc-compliance/internal/testutil/notifymock"
	"doc-compliance/internal/testutil/requirementmock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// store is a single-record repository that applies CAS like the database does.
func store(r *requirement.Requirement) *requirementmock.Repo {
	return &requirementmock.Repo{
		GetByRequirementIDFn: func(_ context.Context, id string) (*requirement.Requirement, error) {
			if r == nil || id != r.RequirementID {
				return nil, gorm.ErrRecordNotFound
			}
			cp := *r
			return &cp, nil
		},
		CompareAndSwapFn: func(_ context.Context, id string, from requirement.Status, c requirement.Change) (bool, error) {
			if r == nil || id != r.RequirementID || r.Status != from {
				return false, nil
			}
			r.Apply(c)
			return true, nil
		},
	}
}

func monthlyType() *doctypemock.Repo {
	one := 1
	unit := doctype.UnitMonths
	return &doctypemock.Repo{GetByTypeIDFn: func(_ context.Context, id string) (*doctype.DocumentType, error) {
		return &doctype.DocumentType{TypeID: id, Name: "Medical", Required: true, HasExpiration: true,
			RenewalPeriod: &one, RenewalUnit: &unit, Active: true}, nil
	}}
}

func strPtr(s string) *string { return &s }

func TestSubmit(t *testing.T) {
	tests := []struct {
		name    string
		from    requirement.Status
		id      string
		wantErr error
	}{
		{name: "from pending", from: requirement.StatusPending, id: "R1"},
		{name: "from rejected", from: requirement.StatusRejected, id: "R1"},
		{name: "from submitted", from: requirement.StatusSubmitted, id: "R1", wantErr: apperr.ErrInvalidTransition},
		{name: "from approved", from: requirement.StatusApproved, id: "R1", wantErr: apperr.ErrInvalidTransition},
		{name: "from expired", from: requirement.StatusExpired, id: "R1", wantErr: apperr.ErrInvalidTransition},
		{name: "unknown id", from: requirement.StatusPending, id: "nope", wantErr: apperr.ErrNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := &requirement.Requirement{RequirementID: "R1", EmployeeID: "E1", DocumentTypeID: "T1",
				Status: tc.from, Notes: strPtr("blurry scan")}
			notifier := &notifymock.Recorder{}
			uc := NewUsecase(store(rec), monthlyType(), WithClock(clock), WithNotifier(notifier))

			got, err := uc.Submit(context.Background(), SubmitInput{RequirementID: tc.id, ActorID: "E1"})
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Empty(t, notifier.Events())
				assert.Equal(t, tc.from, rec.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, requirement.StatusSubmitted, got.Status)
			require.NotNil(t, got.SubmittedAt)
			assert.True(t, got.SubmittedAt.Equal(fixedNow))
			assert.Nil(t, got.Notes, "resubmission clears the rejection notes")
			assert.Equal(t, []event.Kind{event.KindSubmitted}, notifier.Kinds())
		})
	}
}

func TestApprove(t *testing.T) {
	tests := []struct {
		name    string
		from    requirement.Status
		actor   string
		wantErr error
	}{
		{name: "from submitted", from: requirement.StatusSubmitted, actor: "A1"},
		{name: "already approved", from: requirement.StatusApproved, actor: "A1", wantErr: apperr.ErrAlreadyApproved},
		{name: "from pending", from: requirement.StatusPending, actor: "A1", wantErr: apperr.ErrInvalidTransition},
		{name: "from rejected", from: requirement.StatusRejected, actor: "A1", wantErr: apperr.ErrInvalidTransition},
		{name: "from expired", from: requirement.StatusExpired, actor: "A1", wantErr: apperr.ErrInvalidTransition},
		{name: "missing approver", from: requirement.StatusSubmitted, actor: "  ", wantErr: apperr.ErrValidation},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := &requirement.Requirement{RequirementID: "R1", EmployeeID: "E1", DocumentTypeID: "T1", Status: tc.from}
			notifier := &notifymock.Recorder{}
			uc := NewUsecase(store(rec), monthlyType(), WithClock(clock), WithNotifier(notifier))

			got, err := uc.Approve(context.Background(), ApproveInput{RequirementID: "R1", ActorID: tc.actor, Notes: strPtr("ok")})
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Empty(t, notifier.Events())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, requirement.StatusApproved, got.Status)
			require.NotNil(t, got.ApproverID)
			assert.Equal(t, "A1", *got.ApproverID)
			require.NotNil(t, got.ExpiresAt)
			assert.Equal(t, time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC), *got.ExpiresAt)
			assert.Equal(t, "ok", *got.Notes)

			events := notifier.Events()
			require.Len(t, events, 1)
			assert.Equal(t, event.KindApproved, events[0].Kind)
			assert.Equal(t, "A1", events[0].ActorID)
			assert.Equal(t, got.ExpiresAt, events[0].ExpiresAt)
		})
	}
}

func TestApprove_NoExpirationLeavesExpiryEmpty(t *testing.T) {
	rec := &requirement.Requirement{RequirementID: "R1", DocumentTypeID: "T1", Status: requirement.StatusSubmitted}
	types := &doctypemock.Repo{GetByTypeIDFn: func(_ context.Context, id string) (*doctype.DocumentType, error) {
		return &doctype.DocumentType{TypeID: id, Active: true}, nil
	}}
	uc := NewUsecase(store(rec), types, WithClock(clock))

	got, err := uc.Approve(context.Background(), ApproveInput{RequirementID: "R1", ActorID: "A1"})
	require.NoError(t, err)
	assert.Nil(t, got.ExpiresAt)
	assert.Nil(t, got.Notes)
}

func TestApprove_LostRaceIsStale(t *testing.T) {
	reqs := &requirementmock.Repo{
		GetByRequirementIDFn: func(context.Context, string) (*requirement.Requirement, error) {
			return &requirement.Requirement{RequirementID: "R1", DocumentTypeID: "T1", Status: requirement.StatusSubmitted}, nil
		},
		CompareAndSwapFn: func(context.Context, string, requirement.Status, requirement.Change) (bool, error) {
			return false, nil
		},
	}
	notifier := &notifymock.Recorder{}
	uc := NewUsecase(reqs, monthlyType(), WithClock(clock), WithNotifier(notifier))

	_, err := uc.Approve(context.Background(), ApproveInput{RequirementID: "R1", ActorID: "A1"})
	require.ErrorIs(t, err, apperr.ErrStaleState)
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "R1", ae.Ref)
	assert.Empty(t, notifier.Events())
}

func TestReject(t *testing.T) {
	tests := []struct {
		name    string
		from    requirement.Status
		notes   string
		wantErr error
	}{
		{name: "from submitted", from: requirement.StatusSubmitted, notes: "expired passport"},
		{name: "blank notes", from: requirement.StatusSubmitted, notes: "   ", wantErr: apperr.ErrValidation},
		{name: "from pending", from: requirement.StatusPending, notes: "x", wantErr: apperr.ErrInvalidTransition},
		{name: "from approved", from: requirement.StatusApproved, notes: "x", wantErr: apperr.ErrInvalidTransition},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			approver := "A0"
			rec := &requirement.Requirement{RequirementID: "R1", DocumentTypeID: "T1", Status: tc.from, ApproverID: &approver}
			notifier := &notifymock.Recorder{}
			uc := NewUsecase(store(rec), monthlyType(), WithClock(clock), WithNotifier(notifier))

			got, err := uc.Reject(context.Background(), RejectInput{RequirementID: "R1", ActorID: "A1", Notes: tc.notes})
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				if errors.Is(err, apperr.ErrValidation) {
					ae, _ := apperr.As(err)
					assert.Equal(t, "notes", ae.Field)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, requirement.StatusRejected, got.Status)
			assert.Equal(t, tc.notes, *got.Notes)
			assert.Nil(t, got.ApproverID)
			assert.Nil(t, got.ApprovedAt)

			events := notifier.Events()
			require.Len(t, events, 1)
			assert.Equal(t, event.KindRejected, events[0].Kind)
			assert.Equal(t, tc.notes, events[0].Notes)
		})
	}
}

func TestNotifierFailureDoesNotFailTransition(t *testing.T) {
	rec := &requirement.Requirement{RequirementID: "R1", Status: requirement.StatusPending}
	notifier := &notifymock.Recorder{Err: errors.New("queue down")}
	uc := NewUsecase(store(rec), monthlyType(), WithClock(clock), WithNotifier(notifier))

	got, err := uc.Submit(context.Background(), SubmitInput{RequirementID: "R1", ActorID: "E1"})
	require.NoError(t, err)
	assert.Equal(t, requirement.StatusSubmitted, got.Status)
	assert.Len(t, notifier.Events(), 1)
}
