package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/safepath/internal/core/domain"
	"github.com/samirrijal/safepath/internal/core/usecases"
)

// TaskQueue is the default queue the worker polls.
const TaskQueue = "safepath-analysis"

// AnalysisInput is the input for the safest-path workflow. ID defaults to
// the workflow ID when empty.
type AnalysisInput struct {
	ID      string
	Request domain.AnalysisRequest
}

// SafestPathWorkflow fetches route candidates, scores each one in its own
// activity, ranks them and publishes the result. A routing outage that
// outlasts the retries produces an empty analysis rather than a failure.
func SafestPathWorkflow(ctx workflow.Context, input AnalysisInput) (*domain.Analysis, error) {
	logger := workflow.GetLogger(ctx)

	if err := usecases.ValidateRequest(input.Request); err != nil {
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), "InvalidRequest", err)
	}

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	id := input.ID
	if id == "" {
		id = workflow.GetInfo(ctx).WorkflowExecution.ID
	}
	analysis := usecases.NewAnalysis(id, input.Request, workflow.Now(ctx))
	sc := domain.NewScoringContext(analysis.Hour)
	logger.Info("Starting safest-path workflow", "analysisID", id, "hour", sc.Hour)

	// Step 1: Fetch candidates
	var candidates []domain.RouteCandidate
	err := workflow.ExecuteActivity(ctx, "FetchCandidates", input.Request.Start, input.Request.End).Get(ctx, &candidates)
	if err != nil {
		logger.Warn("routing unavailable, returning empty analysis", "error", err)
		candidates = nil
	}

	// Step 2: Score candidates in parallel
	futures := make([]workflow.Future, len(candidates))
	for i, c := range candidates {
		futures[i] = workflow.ExecuteActivity(ctx, "ScoreCandidate", c, sc)
	}
	scored := make([]domain.ScoredRoute, 0, len(candidates))
	for i, f := range futures {
		var r domain.ScoredRoute
		if err := f.Get(ctx, &r); err != nil {
			logger.Error("candidate skipped", "routeID", candidates[i].ID, "error", err)
			continue
		}
		scored = append(scored, r)
	}

	// Step 3: Rank
	usecases.Complete(analysis, scored)

	// Step 4: Publish
	if err := workflow.ExecuteActivity(ctx, "PublishAnalysis", analysis).Get(ctx, nil); err != nil {
		logger.Warn("publish failed", "analysisID", id, "error", err)
	}

	logger.Info("Safest-path workflow complete", "analysisID", id, "routes", len(analysis.Routes))
	return analysis, nil
}
