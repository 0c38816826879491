package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/intunedeck/intunedeck/internal/api/dto"
	"github.com/intunedeck/intunedeck/internal/domain/assignment"
	ierr "github.com/intunedeck/intunedeck/internal/errors"
	"github.com/intunedeck/intunedeck/internal/graph"
	"github.com/intunedeck/intunedeck/internal/types"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
)

// maxWorkers caps the assignment worker pool regardless of configuration so
// a single operation cannot saturate the tenant's Graph quota.
const maxWorkers = 4

// ProgressObserver receives progress snapshots while a bulk operation runs.
// Observers must not block; slow consumers should hand off to their own
// channel.
type ProgressObserver func(assignment.ProgressSnapshot)

// AssignmentService plans and executes bulk application-to-group
// assignments. One operation is in flight at a time; a second call while one
// is executing fails fast with a busy error instead of interleaving.
type AssignmentService interface {
	PerformBulkAssignment(ctx context.Context, req dto.BulkAssignmentRequest) (*dto.BulkAssignmentResponse, error)
	RetryFailedAssignments(ctx context.Context, req dto.RetryAssignmentsRequest) (*dto.BulkAssignmentResponse, error)
	CancelActiveAssignments(ctx context.Context) error
	GetProgress(ctx context.Context) *dto.ProgressResponse
	Subscribe(observer ProgressObserver) func()
	GetAssignmentHistory(ctx context.Context, filter *types.QueryFilter) (*dto.ListAssignmentsResponse, error)
}

type assignmentService struct {
	ServiceParams

	mu       sync.Mutex
	state    types.OperationState
	progress *assignment.Progress
	cancel   context.CancelFunc

	lastOp   *assignment.BulkOperation
	retained map[string]*assignment.Assignment

	obsMu     sync.Mutex
	observers map[int]ProgressObserver
	nextObsID int
}

func NewAssignmentService(params ServiceParams) AssignmentService {
	return &assignmentService{
		ServiceParams: params,
		state:         types.OperationStateIdle,
		retained:      make(map[string]*assignment.Assignment),
		observers:     make(map[int]ProgressObserver),
	}
}

// plan is the outcome of the planning phase: executable tasks grouped per
// application, plus the pairs resolved without a remote call.
type plan struct {
	batches  []*appBatch
	rejected []*assignment.Assignment
	skipped  []*assignment.Assignment
}

type appBatch struct {
	app   assignment.ApplicationRef
	tasks []*assignment.Assignment
}

func (p *plan) taskCount() int {
	total := 0
	for _, b := range p.batches {
		total += len(b.tasks)
	}
	return total
}

func (s *assignmentService) PerformBulkAssignment(ctx context.Context, req dto.BulkAssignmentRequest) (*dto.BulkAssignmentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	op, err := req.ToBulkOperation()
	if err != nil {
		return nil, err
	}

	runCtx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}

	return s.run(runCtx, op)
}

func (s *assignmentService) RetryFailedAssignments(ctx context.Context, req dto.RetryAssignmentsRequest) (*dto.BulkAssignmentResponse, error) {
	s.mu.Lock()
	if s.state.IsActive() {
		s.mu.Unlock()
		return nil, ierr.NewError("a bulk operation is already in progress").
			WithHint("Wait for the active operation to finish or cancel it").
			Mark(ierr.ErrBusy)
	}
	lastOp := s.lastOp
	failed := lo.Values(s.retained)
	s.mu.Unlock()

	if lastOp == nil {
		return nil, ierr.NewError("no previous operation to retry").
			WithHint("Run a bulk assignment first").
			Mark(ierr.ErrInvalidOperation)
	}

	if req.Selective {
		if len(failed) == 0 {
			return nil, ierr.NewError("no failed assignments to retry").
				WithHint("The retained failed set is empty").
				Mark(ierr.ErrInvalidOperation)
		}

		runCtx, err := s.begin(ctx)
		if err != nil {
			return nil, err
		}
		return s.runRetained(runCtx, lastOp, failed)
	}

	// Full retry replays the whole previous selection; pairs that already
	// succeeded are skipped as duplicates during planning.
	runCtx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	return s.run(runCtx, lastOp)
}

func (s *assignmentService) CancelActiveAssignments(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.IsActive() || s.cancel == nil {
		s.Logger.Debugw("cancel requested with no active operation")
		return nil
	}

	s.Logger.Infow("cancelling active bulk operation")
	s.cancel()
	return nil
}

func (s *assignmentService) GetProgress(_ context.Context) *dto.ProgressResponse {
	s.mu.Lock()
	progress := s.progress
	state := s.state
	s.mu.Unlock()

	if progress == nil {
		return &dto.ProgressResponse{
			ProgressSnapshot: assignment.ProgressSnapshot{State: state},
			IsProcessing:     false,
		}
	}
	return &dto.ProgressResponse{
		ProgressSnapshot: progress.Snapshot(),
		IsProcessing:     state.IsActive(),
	}
}

func (s *assignmentService) Subscribe(observer ProgressObserver) func() {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()

	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = observer

	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		delete(s.observers, id)
	}
}

func (s *assignmentService) GetAssignmentHistory(ctx context.Context, filter *types.QueryFilter) (*dto.ListAssignmentsResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	items, err := s.AssignmentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.AssignmentRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	response := types.NewListResponse(items, total, filter.GetLimit(), filter.GetOffset())
	return &response, nil
}

// begin claims the single run slot, failing fast when one is active. The
// returned context is cancelled by CancelActiveAssignments.
func (s *assignmentService) begin(ctx context.Context) (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.IsActive() {
		return nil, ierr.NewError("a bulk operation is already in progress").
			WithHint("Wait for the active operation to finish or cancel it").
			Mark(ierr.ErrBusy)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.state = types.OperationStatePlanning
	s.cancel = cancel
	return runCtx, nil
}

// finish records the terminal state and releases the run slot.
func (s *assignmentService) finish(state types.OperationState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.progress != nil {
		s.progress.SetState(state)
	}
}

// run drives one full plan-then-execute cycle for an operation.
func (s *assignmentService) run(ctx context.Context, op *assignment.BulkOperation) (*dto.BulkAssignmentResponse, error) {
	s.Logger.Infow("starting bulk assignment",
		"operation_id", op.ID,
		"display_id", op.DisplayID,
		"applications", len(op.Applications),
		"groups", len(op.Groups),
		"intent", op.Intent,
	)

	p := s.buildPlan(ctx, op, nil)
	return s.execute(ctx, op, p)
}

// runRetained re-plans and executes only the retained failed pairs. Planning
// runs in full: a pair that meanwhile landed remotely is skipped as a
// duplicate rather than re-sent.
func (s *assignmentService) runRetained(ctx context.Context, op *assignment.BulkOperation, failed []*assignment.Assignment) (*dto.BulkAssignmentResponse, error) {
	s.Logger.Infow("retrying failed assignments",
		"operation_id", op.ID,
		"tasks", len(failed),
	)

	only := make(map[string]struct{}, len(failed))
	for _, task := range failed {
		only[task.PairKey()] = struct{}{}
	}

	p := s.buildPlan(ctx, op, only)
	return s.execute(ctx, op, p)
}

// buildPlan expands the cross product, validates intents, and resolves
// conflicts. Invalid pairs fail locally without a remote call; duplicates
// are skipped and never re-sent. Each (application, target) pair yields at
// most one task. A non-nil only set restricts planning to those pair keys.
func (s *assignmentService) buildPlan(ctx context.Context, op *assignment.BulkOperation, only map[string]struct{}) *plan {
	p := &plan{}
	seen := make(map[string]struct{})

	for _, app := range op.Applications {
		if only != nil && !appSelected(app.ID, only) {
			continue
		}
		existing, fetchErr := s.fetchExisting(ctx, app.ID)

		var batch *appBatch
		for _, grp := range op.Groups {
			key := assignment.PairKey(app.ID, grp.ID, grp.TargetType)
			if only != nil {
				if _, keep := only[key]; !keep {
					continue
				}
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			intent := op.IntentFor(grp.ID)
			appType := op.AppTypeFor(app, grp.ID)
			task := newTask(app, grp, intent, op.SettingsFor(grp.ID))

			if validation := assignment.ValidateIntent(appType, app.Platforms, intent); !validation.Valid {
				task.MarkFailed(validation.Reason)
				p.rejected = append(p.rejected, task)
				continue
			}

			if fetchErr != nil {
				if ierr.IsCancelled(fetchErr) {
					task.MarkCancelled()
				} else {
					task.MarkFailed("could not read current assignments: " + fetchErr.Error())
				}
				p.rejected = append(p.rejected, task)
				continue
			}

			switch assignment.DetectConflict(existing, grp, intent) {
			case assignment.ResolutionDuplicate:
				task.MarkSuccess()
				p.skipped = append(p.skipped, task)
				continue
			case assignment.ResolutionConflicting:
				if !op.OverwriteConflicts {
					task.MarkCancelled()
					p.skipped = append(p.skipped, task)
					continue
				}
			}

			if batch == nil {
				batch = &appBatch{app: app}
				p.batches = append(p.batches, batch)
			}
			batch.tasks = append(batch.tasks, task)
		}
	}

	s.Logger.Infow("bulk assignment planned",
		"operation_id", op.ID,
		"tasks", p.taskCount(),
		"rejected", len(p.rejected),
		"skipped", len(p.skipped),
	)
	return p
}

func (s *assignmentService) fetchExisting(ctx context.Context, appID string) ([]*assignment.Assignment, error) {
	if ctx.Err() != nil {
		return nil, ierr.WithError(ctx.Err()).
			WithHint("Operation cancelled during planning").
			Mark(ierr.ErrCancelled)
	}
	return s.AppRepo.FetchAssignments(ctx, appID)
}

// appSelected reports whether any retried pair belongs to the application,
// so planning skips the assignment fetch for untouched apps.
func appSelected(appID string, only map[string]struct{}) bool {
	for key := range only {
		if strings.HasPrefix(key, appID+"|") {
			return true
		}
	}
	return false
}

func newTask(app assignment.ApplicationRef, grp assignment.GroupRef, intent types.AssignmentIntent, settings *assignment.AssignmentSettings) *assignment.Assignment {
	return &assignment.Assignment{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ASSIGNMENT),
		ApplicationID:   app.ID,
		ApplicationName: app.Name,
		GroupID:         grp.ID,
		GroupName:       grp.Name,
		TargetType:      grp.TargetType,
		Intent:          intent,
		Settings:        settings,
		CreatedDate:     time.Now().UTC(),
		Status:          types.AssignmentStatusPending,
	}
}

// execute drives the planned batches through the rate limiter with a bounded
// worker pool. A failure in one application's write never aborts the whole
// operation.
func (s *assignmentService) execute(ctx context.Context, op *assignment.BulkOperation, p *plan) (*dto.BulkAssignmentResponse, error) {
	progress := assignment.NewProgress(op.ID, p.taskCount())

	s.mu.Lock()
	s.state = types.OperationStateExecuting
	s.progress = progress
	s.mu.Unlock()
	s.notify(progress.Snapshot())

	workers := s.Config.RateLimit.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}

	runner := pool.New().WithMaxGoroutines(workers)
	for _, batch := range p.batches {
		batch := batch
		runner.Go(func() {
			s.executeBatch(ctx, batch, progress)
		})
	}
	runner.Wait()

	results := s.collect(op, p)
	state := finalState(ctx, results)

	s.mu.Lock()
	s.lastOp = op
	s.retained = make(map[string]*assignment.Assignment)
	for _, task := range results.failed {
		s.retained[task.PairKey()] = task
	}
	s.mu.Unlock()

	s.finish(state)
	s.notify(progress.Snapshot())

	// The run context may already be cancelled; history is written either way.
	if err := s.AssignmentRepo.CreateBulk(context.WithoutCancel(ctx), results.all); err != nil {
		s.Logger.Errorw("failed to record assignment history",
			"operation_id", op.ID,
			"error", err,
		)
	}

	s.Logger.Infow("bulk assignment finished",
		"operation_id", op.ID,
		"state", state,
		"completed", len(results.completed),
		"failed", len(results.failed),
		"cancelled", len(results.cancelled),
		"skipped", len(p.skipped),
	)

	return &dto.BulkAssignmentResponse{
		OperationID: op.ID,
		State:       state,
		Assignments: results.all,
		Completed:   results.completed,
		Failed:      results.failed,
		Cancelled:   results.cancelled,
		Skipped:     p.skipped,
		Progress:    progress.Snapshot(),
	}, nil
}

// executeBatch issues one application's assignment write, retrying transient
// failures with the limiter's indicated delay. Cancellation is honored
// between attempts, never mid-write.
func (s *assignmentService) executeBatch(ctx context.Context, batch *appBatch, progress *assignment.Progress) {
	maxAttempts := s.Config.RateLimit.MaxRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			markCancelled(batch.tasks)
			return
		}

		if err := s.Limiter.Acquire(ctx); err != nil {
			markCancelled(batch.tasks)
			return
		}

		err := s.GraphClient.AssignApp(ctx, batch.app.ID, batch.tasks)
		if err == nil {
			s.Limiter.ReportSuccess()
			for _, task := range batch.tasks {
				task.MarkSuccess()
			}
			s.AppRepo.InvalidateAssignments(ctx, batch.app.ID)
			s.advance(progress, batch)
			return
		}

		if ierr.IsCancelled(err) {
			markCancelled(batch.tasks)
			return
		}

		// Timeouts get one retry; other transient failures use the full
		// retry budget.
		budget := maxAttempts
		if ierr.IsTimeout(err) {
			budget = 2
		}

		if ierr.IsTransient(err) && attempt < budget {
			delay := s.Limiter.ReportThrottled(graph.RetryAfterFromError(err))
			s.Logger.Warnw("transient assignment failure, retrying",
				"application_id", batch.app.ID,
				"attempt", attempt,
				"delay", delay,
				"error", err,
			)
			select {
			case <-ctx.Done():
				markCancelled(batch.tasks)
				return
			case <-time.After(delay):
			}
			continue
		}

		detail := err.Error()
		if internal, ok := lo.ErrorsAs[*ierr.InternalError](err); ok {
			detail = internal.DisplayError()
		}
		for _, task := range batch.tasks {
			task.MarkFailed(detail)
		}
		s.advance(progress, batch)
		s.Logger.Errorw("assignment write failed",
			"application_id", batch.app.ID,
			"tasks", len(batch.tasks),
			"error", err,
		)
		return
	}
}

func (s *assignmentService) advance(progress *assignment.Progress, batch *appBatch) {
	groupName := ""
	if len(batch.tasks) > 0 {
		groupName = batch.tasks[len(batch.tasks)-1].GroupName
	}
	progress.Advance(len(batch.tasks), batch.app.Name, groupName)
	s.notify(progress.Snapshot())
}

func (s *assignmentService) notify(snapshot assignment.ProgressSnapshot) {
	s.obsMu.Lock()
	observers := lo.Values(s.observers)
	s.obsMu.Unlock()

	for _, observer := range observers {
		observer(snapshot)
	}
}

func markCancelled(tasks []*assignment.Assignment) {
	for _, task := range tasks {
		if !task.Status.IsTerminal() {
			task.MarkCancelled()
		}
	}
}

type runResults struct {
	all       []*assignment.Assignment
	completed []*assignment.Assignment
	failed    []*assignment.Assignment
	cancelled []*assignment.Assignment
}

func (s *assignmentService) collect(_ *assignment.BulkOperation, p *plan) runResults {
	var results runResults
	appendTask := func(task *assignment.Assignment) {
		results.all = append(results.all, task)
		switch task.Status {
		case types.AssignmentStatusSuccess:
			results.completed = append(results.completed, task)
		case types.AssignmentStatusFailed:
			results.failed = append(results.failed, task)
		case types.AssignmentStatusCancelled:
			results.cancelled = append(results.cancelled, task)
		}
	}

	for _, batch := range p.batches {
		for _, task := range batch.tasks {
			appendTask(task)
		}
	}
	for _, task := range p.rejected {
		appendTask(task)
	}
	return results
}

func finalState(ctx context.Context, results runResults) types.OperationState {
	switch {
	case ctx.Err() != nil || len(results.cancelled) > 0:
		return types.OperationStateCancelled
	case len(results.failed) == 0:
		return types.OperationStateCompleted
	case len(results.completed) == 0:
		return types.OperationStateFatallyFailed
	default:
		return types.OperationStatePartiallyFailed
	}
}
