package service

import (
	"sync"
	"time"

	"testing"

	"github.com/intunedeck/intunedeck/internal/api/dto"
	"github.com/intunedeck/intunedeck/internal/domain/assignment"
	ierr "github.com/intunedeck/intunedeck/internal/errors"
	"github.com/intunedeck/intunedeck/internal/testutil"
	"github.com/intunedeck/intunedeck/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type AssignmentServiceSuite struct {
	testutil.BaseServiceTestSuite
	service AssignmentService
}

func TestAssignmentService(t *testing.T) {
	suite.Run(t, new(AssignmentServiceSuite))
}

func (s *AssignmentServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	s.service = NewAssignmentService(ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		GraphClient:    s.GetGraphClient(),
		Limiter:        s.GetLimiter(),
		AppRepo:        stores.AppRepo,
		GroupRepo:      stores.GroupRepo,
		DeviceRepo:     stores.DeviceRepo,
		AuditRepo:      stores.AuditRepo,
		AssignmentRepo: stores.AssignmentRepo,
	})
}

func (s *AssignmentServiceSuite) newRequest(appIDs, groupIDs []string) dto.BulkAssignmentRequest {
	apps := make([]dto.ApplicationSelection, len(appIDs))
	for i, id := range appIDs {
		apps[i] = dto.ApplicationSelection{
			ID:      id,
			Name:    "App " + id,
			AppType: types.AppTypeIOSStore,
		}
	}
	groups := make([]dto.GroupSelection, len(groupIDs))
	for i, id := range groupIDs {
		groups[i] = dto.GroupSelection{
			ID:   id,
			Name: "Group " + id,
		}
	}
	return dto.BulkAssignmentRequest{
		Applications: apps,
		Groups:       groups,
		Intent:       types.IntentRequired,
	}
}

func (s *AssignmentServiceSuite) TestBulkAssignmentCrossProduct() {
	req := s.newRequest([]string{"app-1", "app-2"}, []string{"grp-1", "grp-2", "grp-3"})

	resp, err := s.service.PerformBulkAssignment(s.GetContext(), req)
	s.NoError(err)
	s.Equal(types.OperationStateCompleted, resp.State)
	s.Len(resp.Completed, 6)
	s.Empty(resp.Failed)
	s.Empty(resp.Cancelled)

	// One write per application, not per pair.
	s.Equal(1, s.GetGraphClient().AssignCalls("app-1"))
	s.Equal(1, s.GetGraphClient().AssignCalls("app-2"))

	s.Equal(6, resp.Progress.Total)
	s.Equal(6, resp.Progress.Completed)

	pairs := make(map[string]struct{})
	for _, a := range resp.Completed {
		s.Equal(types.AssignmentStatusSuccess, a.Status)
		s.Equal(types.IntentRequired, a.Intent)
		pairs[a.PairKey()] = struct{}{}
	}
	s.Len(pairs, 6)
}

func (s *AssignmentServiceSuite) TestDuplicatesSkippedNotResent() {
	appStore := s.GetStores().AppRepo.(*testutil.InMemoryApplicationStore)
	appStore.SeedAssignments("app-1", []*assignment.Assignment{
		{
			ID:            "existing",
			ApplicationID: "app-1",
			GroupID:       "grp-1",
			TargetType:    types.TargetTypeGroup,
			Intent:        types.IntentRequired,
			Status:        types.AssignmentStatusSuccess,
		},
	})

	req := s.newRequest([]string{"app-1"}, []string{"grp-1", "grp-2"})

	resp, err := s.service.PerformBulkAssignment(s.GetContext(), req)
	s.NoError(err)
	s.Equal(types.OperationStateCompleted, resp.State)
	s.Len(resp.Completed, 1)
	s.Len(resp.Skipped, 1)
	s.Empty(resp.Failed)
	s.Equal("grp-2", resp.Completed[0].GroupID)

	// The duplicate pair is excluded from the progress totals.
	s.Equal(1, resp.Progress.Total)
	s.Equal(1, resp.Progress.Completed)
}

func (s *AssignmentServiceSuite) TestRunningTwiceIsIdempotent() {
	req := s.newRequest([]string{"app-1"}, []string{"grp-1", "grp-2"})

	first, err := s.service.PerformBulkAssignment(s.GetContext(), req)
	s.NoError(err)
	s.Len(first.Completed, 2)
	s.Equal(1, s.GetGraphClient().AssignCalls("app-1"))

	second, err := s.service.PerformBulkAssignment(s.GetContext(), req)
	s.NoError(err)
	s.Equal(types.OperationStateCompleted, second.State)
	s.Empty(second.Completed)
	s.Len(second.Skipped, 2)

	// The second run detects every pair as a duplicate and issues no writes.
	s.Equal(1, s.GetGraphClient().AssignCalls("app-1"))
}

func (s *AssignmentServiceSuite) TestValidationRejectionWithoutRemoteCalls() {
	req := s.newRequest([]string{"app-1"}, []string{"grp-1"})
	req.Applications[0].AppType = types.AppTypeWebLink
	req.Intent = types.IntentUninstall

	// Web links cannot be silently uninstalled, so every pair is rejected
	// in planning.
	resp, err := s.service.PerformBulkAssignment(s.GetContext(), req)
	s.NoError(err)
	s.Equal(types.OperationStateFatallyFailed, resp.State)
	s.Len(resp.Failed, 1)
	s.NotEmpty(resp.Failed[0].ErrorDetail)
	s.Equal(0, s.GetGraphClient().TotalAssignCalls())
}

func (s *AssignmentServiceSuite) TestPermanentFailureDoesNotAbortOperation() {
	s.GetGraphClient().QueueAssignError("app-1", ierr.NewError("access denied").
		WithHint("The token lacks DeviceManagementApps.ReadWrite.All").
		Mark(ierr.ErrPermissionDenied))

	req := s.newRequest([]string{"app-1", "app-2"}, []string{"grp-1"})

	resp, err := s.service.PerformBulkAssignment(s.GetContext(), req)
	s.NoError(err)
	s.Equal(types.OperationStatePartiallyFailed, resp.State)
	s.Len(resp.Completed, 1)
	s.Len(resp.Failed, 1)
	s.Equal("app-1", resp.Failed[0].ApplicationID)
	s.NotEmpty(resp.Failed[0].ErrorDetail)

	// Permanent failures are never retried.
	s.Equal(1, s.GetGraphClient().AssignCalls("app-1"))
	s.Equal(1, s.GetGraphClient().AssignCalls("app-2"))
}

func (s *AssignmentServiceSuite) TestTransientFailureRetriedWithBackoff() {
	s.GetGraphClient().QueueAssignError("app-1",
		ierr.NewError("throttled").Mark(ierr.ErrRateLimited),
		ierr.NewError("throttled").Mark(ierr.ErrRateLimited),
	)

	req := s.newRequest([]string{"app-1"}, []string{"grp-1"})

	resp, err := s.service.PerformBulkAssignment(s.GetContext(), req)
	s.NoError(err)
	s.Equal(types.OperationStateCompleted, resp.State)
	s.Len(resp.Completed, 1)
	s.Equal(3, s.GetGraphClient().AssignCalls("app-1"))
}

func (s *AssignmentServiceSuite) TestTransientFailureExhaustsRetryBudget() {
	s.GetGraphClient().QueueAssignError("app-1",
		ierr.NewError("throttled").Mark(ierr.ErrRateLimited),
		ierr.NewError("throttled").Mark(ierr.ErrRateLimited),
		ierr.NewError("throttled").Mark(ierr.ErrRateLimited),
	)

	req := s.newRequest([]string{"app-1"}, []string{"grp-1"})

	resp, err := s.service.PerformBulkAssignment(s.GetContext(), req)
	s.NoError(err)
	s.Equal(types.OperationStateFatallyFailed, resp.State)
	s.Len(resp.Failed, 1)
	s.Equal(s.GetConfig().RateLimit.MaxRetries, s.GetGraphClient().AssignCalls("app-1"))
}

func (s *AssignmentServiceSuite) TestCancellationMarksRemainingTasks() {
	// Serialize writes so cancellation after the first one is deterministic.
	cfg := s.GetConfig()
	originalWorkers := cfg.RateLimit.Workers
	cfg.RateLimit.Workers = 1
	defer func() { cfg.RateLimit.Workers = originalWorkers }()

	var once sync.Once
	s.GetGraphClient().OnAssign = func(string) {
		once.Do(func() {
			s.NoError(s.service.CancelActiveAssignments(s.GetContext()))
		})
	}

	req := s.newRequest([]string{"app-1", "app-2", "app-3"}, []string{"grp-1"})

	resp, err := s.service.PerformBulkAssignment(s.GetContext(), req)
	s.NoError(err)
	s.Equal(types.OperationStateCancelled, resp.State)

	// The in-flight write completes; the rest are cancelled, not failed.
	s.Len(resp.Completed, 1)
	s.Len(resp.Cancelled, 2)
	s.Empty(resp.Failed)
	s.Equal(1, resp.Progress.Completed)

	for _, a := range resp.Cancelled {
		s.Equal(types.AssignmentStatusCancelled, a.Status)
	}
}

func (s *AssignmentServiceSuite) TestCancellationDuringPlanningMarksTasksCancelled() {
	appStore := s.GetStores().AppRepo.(*testutil.InMemoryApplicationStore)

	var once sync.Once
	appStore.OnFetch = func(string) {
		once.Do(func() {
			s.NoError(s.service.CancelActiveAssignments(s.GetContext()))
		})
	}

	req := s.newRequest([]string{"app-1", "app-2"}, []string{"grp-1"})

	resp, err := s.service.PerformBulkAssignment(s.GetContext(), req)
	s.NoError(err)
	s.Equal(types.OperationStateCancelled, resp.State)

	// Pairs whose planning fetch saw the cancelled context are cancelled,
	// never failed, and no remote write goes out.
	s.Empty(resp.Failed)
	s.Empty(resp.Completed)
	s.Len(resp.Cancelled, 2)
	for _, a := range resp.Cancelled {
		s.Equal(types.AssignmentStatusCancelled, a.Status)
	}
	s.Zero(s.GetGraphClient().TotalAssignCalls())

	// Nothing entered the retained failed set, so a selective retry has
	// nothing to replay.
	_, err = s.service.RetryFailedAssignments(s.GetContext(), dto.RetryAssignmentsRequest{Selective: true})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *AssignmentServiceSuite) TestWorkerPoolCappedRegardlessOfConfig() {
	cfg := s.GetConfig()
	originalWorkers := cfg.RateLimit.Workers
	cfg.RateLimit.Workers = 64
	defer func() { cfg.RateLimit.Workers = originalWorkers }()

	var mu sync.Mutex
	inFlight, peak := 0, 0
	s.GetGraphClient().OnAssign = func(string) {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
	}

	req := s.newRequest([]string{"app-1", "app-2", "app-3", "app-4", "app-5", "app-6"}, []string{"grp-1"})

	resp, err := s.service.PerformBulkAssignment(s.GetContext(), req)
	s.NoError(err)
	s.Equal(types.OperationStateCompleted, resp.State)
	s.Len(resp.Completed, 6)
	s.LessOrEqual(peak, 4)
}

func (s *AssignmentServiceSuite) TestCancelWhenIdleIsNoOp() {
	s.NoError(s.service.CancelActiveAssignments(s.GetContext()))
}

func (s *AssignmentServiceSuite) TestSelectiveRetryReplaysOnlyFailedPairs() {
	s.GetGraphClient().QueueAssignError("app-1", ierr.NewError("bad request").
		Mark(ierr.ErrValidation))

	req := s.newRequest([]string{"app-1", "app-2"}, []string{"grp-1"})

	first, err := s.service.PerformBulkAssignment(s.GetContext(), req)
	s.NoError(err)
	s.Len(first.Failed, 1)
	s.Len(first.Completed, 1)

	// The queued error is consumed, so the retried write succeeds.
	retry, err := s.service.RetryFailedAssignments(s.GetContext(), dto.RetryAssignmentsRequest{Selective: true})
	s.NoError(err)
	s.Equal(types.OperationStateCompleted, retry.State)
	s.Len(retry.Completed, 1)
	s.Equal("app-1", retry.Completed[0].ApplicationID)

	// app-2 already succeeded and is not touched again.
	s.Equal(1, s.GetGraphClient().AssignCalls("app-2"))
	s.Equal(2, s.GetGraphClient().AssignCalls("app-1"))

	// The retained failed set is drained by the successful retry.
	_, err = s.service.RetryFailedAssignments(s.GetContext(), dto.RetryAssignmentsRequest{Selective: true})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *AssignmentServiceSuite) TestFullRetrySkipsAlreadyAssignedPairs() {
	s.GetGraphClient().QueueAssignError("app-1", ierr.NewError("bad request").
		Mark(ierr.ErrValidation))

	req := s.newRequest([]string{"app-1", "app-2"}, []string{"grp-1"})

	_, err := s.service.PerformBulkAssignment(s.GetContext(), req)
	s.NoError(err)

	retry, err := s.service.RetryFailedAssignments(s.GetContext(), dto.RetryAssignmentsRequest{Selective: false})
	s.NoError(err)
	s.Equal(types.OperationStateCompleted, retry.State)
	s.Len(retry.Completed, 1)
	s.Len(retry.Skipped, 1)

	// The pair that already landed is a duplicate on replan.
	s.Equal(1, s.GetGraphClient().AssignCalls("app-2"))
}

func (s *AssignmentServiceSuite) TestRetryWithoutPreviousOperationFails() {
	_, err := s.service.RetryFailedAssignments(s.GetContext(), dto.RetryAssignmentsRequest{Selective: true})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *AssignmentServiceSuite) TestBusyRejectsConcurrentOperation() {
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	s.GetGraphClient().OnAssign = func(string) {
		once.Do(func() { close(started) })
		<-release
	}

	req := s.newRequest([]string{"app-1"}, []string{"grp-1"})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.service.PerformBulkAssignment(s.GetContext(), req)
		s.NoError(err)
	}()

	<-started
	_, err := s.service.PerformBulkAssignment(s.GetContext(), s.newRequest([]string{"app-2"}, []string{"grp-1"}))
	s.Error(err)
	s.True(ierr.IsBusy(err))

	close(release)
	wg.Wait()
}

func (s *AssignmentServiceSuite) TestGroupOverridesApplyPerGroup() {
	req := s.newRequest([]string{"app-1"}, []string{"grp-1", "grp-2"})
	req.GroupSettings = map[string]dto.GroupSettingsOverride{
		"grp-2": {Intent: lo.ToPtr(types.IntentAvailable)},
	}

	resp, err := s.service.PerformBulkAssignment(s.GetContext(), req)
	s.NoError(err)
	s.Len(resp.Completed, 2)

	byGroup := lo.KeyBy(resp.Completed, func(a *assignment.Assignment) string { return a.GroupID })
	s.Equal(types.IntentRequired, byGroup["grp-1"].Intent)
	s.Equal(types.IntentAvailable, byGroup["grp-2"].Intent)
}

func (s *AssignmentServiceSuite) TestBuiltInTargetsDedupedByTargetType() {
	req := s.newRequest([]string{"app-1"}, nil)
	req.Groups = []dto.GroupSelection{
		{ID: "virtual-1", Name: "All Devices", TargetType: types.TargetTypeAllDevices},
		{ID: "virtual-2", Name: "All Devices", TargetType: types.TargetTypeAllDevices},
	}

	resp, err := s.service.PerformBulkAssignment(s.GetContext(), req)
	s.NoError(err)
	s.Len(resp.Completed, 1)
	s.Equal(types.TargetTypeAllDevices, resp.Completed[0].TargetType)
}

func (s *AssignmentServiceSuite) TestConflictOverwrittenByDefault() {
	appStore := s.GetStores().AppRepo.(*testutil.InMemoryApplicationStore)
	appStore.SeedAssignments("app-1", []*assignment.Assignment{
		{
			ID:            "existing",
			ApplicationID: "app-1",
			GroupID:       "grp-1",
			TargetType:    types.TargetTypeGroup,
			Intent:        types.IntentAvailable,
			Status:        types.AssignmentStatusSuccess,
		},
	})

	req := s.newRequest([]string{"app-1"}, []string{"grp-1"})

	resp, err := s.service.PerformBulkAssignment(s.GetContext(), req)
	s.NoError(err)
	s.Len(resp.Completed, 1)
	s.Equal(1, s.GetGraphClient().AssignCalls("app-1"))
}

func (s *AssignmentServiceSuite) TestConflictSkippedWhenOverwriteDisabled() {
	appStore := s.GetStores().AppRepo.(*testutil.InMemoryApplicationStore)
	appStore.SeedAssignments("app-1", []*assignment.Assignment{
		{
			ID:            "existing",
			ApplicationID: "app-1",
			GroupID:       "grp-1",
			TargetType:    types.TargetTypeGroup,
			Intent:        types.IntentAvailable,
			Status:        types.AssignmentStatusSuccess,
		},
	})

	req := s.newRequest([]string{"app-1"}, []string{"grp-1"})
	req.OverwriteConflicts = lo.ToPtr(false)

	resp, err := s.service.PerformBulkAssignment(s.GetContext(), req)
	s.NoError(err)
	s.Empty(resp.Completed)
	s.Len(resp.Skipped, 1)
	s.Equal(0, s.GetGraphClient().TotalAssignCalls())
}

func (s *AssignmentServiceSuite) TestAssignmentFetchFailureFailsOnlyThatApp() {
	appStore := s.GetStores().AppRepo.(*testutil.InMemoryApplicationStore)
	appStore.FailFetch("app-1", ierr.NewError("graph unavailable").Mark(ierr.ErrUnavailable))

	req := s.newRequest([]string{"app-1", "app-2"}, []string{"grp-1"})

	resp, err := s.service.PerformBulkAssignment(s.GetContext(), req)
	s.NoError(err)
	s.Equal(types.OperationStatePartiallyFailed, resp.State)
	s.Len(resp.Failed, 1)
	s.Len(resp.Completed, 1)
	s.Equal("app-1", resp.Failed[0].ApplicationID)
	s.Equal(0, s.GetGraphClient().AssignCalls("app-1"))
}

func (s *AssignmentServiceSuite) TestProgressObserversReceiveSnapshots() {
	var mu sync.Mutex
	var snapshots []assignment.ProgressSnapshot
	unsubscribe := s.service.Subscribe(func(snap assignment.ProgressSnapshot) {
		mu.Lock()
		defer mu.Unlock()
		snapshots = append(snapshots, snap)
	})
	defer unsubscribe()

	req := s.newRequest([]string{"app-1", "app-2"}, []string{"grp-1"})

	_, err := s.service.PerformBulkAssignment(s.GetContext(), req)
	s.NoError(err)

	mu.Lock()
	defer mu.Unlock()
	s.GreaterOrEqual(len(snapshots), 3)

	// Completed never decreases across snapshots.
	last := 0
	for _, snap := range snapshots {
		s.GreaterOrEqual(snap.Completed, last)
		last = snap.Completed
	}
	s.Equal(2, snapshots[len(snapshots)-1].Completed)
	s.Equal(types.OperationStateCompleted, snapshots[len(snapshots)-1].State)
}

func (s *AssignmentServiceSuite) TestProgressIdleBeforeFirstRun() {
	progress := s.service.GetProgress(s.GetContext())
	s.False(progress.IsProcessing)
	s.Equal(types.OperationStateIdle, progress.State)
}

func (s *AssignmentServiceSuite) TestHistoryRetainsOutcomesNewestFirst() {
	req := s.newRequest([]string{"app-1"}, []string{"grp-1"})
	_, err := s.service.PerformBulkAssignment(s.GetContext(), req)
	s.NoError(err)

	req2 := s.newRequest([]string{"app-2"}, []string{"grp-1"})
	_, err = s.service.PerformBulkAssignment(s.GetContext(), req2)
	s.NoError(err)

	history, err := s.service.GetAssignmentHistory(s.GetContext(), types.NewDefaultQueryFilter())
	s.NoError(err)
	s.Equal(2, history.Pagination.Total)
	s.Equal("app-2", history.Items[0].ApplicationID)
	s.Equal("app-1", history.Items[1].ApplicationID)
}

func (s *AssignmentServiceSuite) TestEmptySelectionRejected() {
	req := s.newRequest(nil, []string{"grp-1"})
	_, err := s.service.PerformBulkAssignment(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsValidation(err))
	s.Equal(0, s.GetGraphClient().TotalAssignCalls())
}

func (s *AssignmentServiceSuite) TestOperationInputsAreFrozen() {
	req := s.newRequest([]string{"app-1"}, []string{"grp-1"})

	op, err := req.ToBulkOperation()
	s.NoError(err)

	// Mutating the request after construction never leaks into the
	// operation value.
	req.Applications[0].Name = "mutated"
	req.Groups[0].ID = "mutated"

	s.Equal("App app-1", op.Applications[0].Name)
	s.Equal("grp-1", op.Groups[0].ID)
}

func (s *AssignmentServiceSuite) TestTimeoutRetriedOnce() {
	s.GetGraphClient().QueueAssignError("app-1",
		ierr.NewError("deadline exceeded").Mark(ierr.ErrTimeout),
		ierr.NewError("deadline exceeded").Mark(ierr.ErrTimeout),
	)

	req := s.newRequest([]string{"app-1"}, []string{"grp-1"})

	start := time.Now()
	resp, err := s.service.PerformBulkAssignment(s.GetContext(), req)
	s.NoError(err)
	s.Less(time.Since(start), 10*time.Second)

	// One retry for timeouts, then the task is failed.
	s.Equal(types.OperationStateFatallyFailed, resp.State)
	s.Len(resp.Failed, 1)
	s.Equal(2, s.GetGraphClient().AssignCalls("app-1"))
}
