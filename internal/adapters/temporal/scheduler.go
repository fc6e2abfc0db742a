// Package temporal starts safest-path analyses as Temporal workflows.
package temporal

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/safepath/internal/core/domain"
	"github.com/samirrijal/safepath/internal/core/usecases"
	"github.com/samirrijal/safepath/internal/workflows"
)

// WorkflowIDPrefix namespaces analysis workflow IDs.
const WorkflowIDPrefix = "safepath-analysis-"

// starter is the subset of client.Client the scheduler uses.
type starter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// Scheduler implements ports.AnalysisScheduler.
type Scheduler struct {
	client    starter
	taskQueue string
}

// NewScheduler creates a new Scheduler.
func NewScheduler(c client.Client, taskQueue string) *Scheduler {
	return newScheduler(c, taskQueue)
}

func newScheduler(c starter, taskQueue string) *Scheduler {
	if taskQueue == "" {
		taskQueue = workflows.TaskQueue
	}
	return &Scheduler{client: c, taskQueue: taskQueue}
}

// Dial connects to Temporal.
func Dial(hostPort, namespace string) (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  hostPort,
		Namespace: namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("temporal client: %w", err)
	}
	return c, nil
}

// Schedule validates req and starts a workflow for it. The returned ID is
// the analysis ID the result will be archived under.
func (s *Scheduler) Schedule(ctx context.Context, req domain.AnalysisRequest) (string, error) {
	if err := usecases.ValidateRequest(req); err != nil {
		return "", err
	}
	id := uuid.NewString()
	opts := client.StartWorkflowOptions{
		ID:        WorkflowIDPrefix + id,
		TaskQueue: s.taskQueue,
	}
	if _, err := s.client.ExecuteWorkflow(ctx, opts, workflows.SafestPathWorkflow, workflows.AnalysisInput{ID: id, Request: req}); err != nil {
		return "", fmt.Errorf("start analysis workflow: %w", err)
	}
	return id, nil
}
