// ABOUTME: Asynchronous processing pipeline: extract, run command catalogue, parse, record outcome.
// ABOUTME: One job per cluster result with in-flight tracking and cancel-on-delete.

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fleetops/aerospike-health-analyzer/models"
	"golang.org/x/sync/errgroup"
)

// ErrJobInFlight is returned when a job for a result key is already running.
var ErrJobInFlight = errors.New("processing job already in flight for this result")

// Extractor unpacks an uploaded archive and returns the collectinfo file
// the command runner should read, plus a cleanup that removes the
// extraction directory once the job is done. Nil extractor means the
// uploaded file is used directly.
type Extractor interface {
	Extract(ctx context.Context, archivePath string) (string, func(), error)
}

// CommandRunner executes one diagnostic command against a collectinfo file.
type CommandRunner interface {
	Run(ctx context.Context, filePath, command string) (CommandResult, error)
}

// StructuredParser turns combined command output into structured data.
// partial=true reports usable data with known gaps.
type StructuredParser interface {
	Parse(ctx context.Context, combined string) (*models.ClusterData, bool, error)
}

// Processor owns the processing jobs for cluster results. Each result key
// has at most one job in flight; deleting a result cancels its job, and a
// completion arriving for a deleted key is discarded by the registry.
type Processor struct {
	registry  *Registry
	extractor Extractor
	runner    CommandRunner
	parser    StructuredParser
	commands  []string
	timeout   time.Duration

	mu       sync.Mutex
	inflight map[string]context.CancelFunc
	wg       sync.WaitGroup
}

// NewProcessor wires the pipeline collaborators together.
func NewProcessor(registry *Registry, extractor Extractor, runner CommandRunner, parser StructuredParser, commands []string, timeout time.Duration) *Processor {
	return &Processor{
		registry:  registry,
		extractor: extractor,
		runner:    runner,
		parser:    parser,
		commands:  commands,
		timeout:   timeout,
		inflight:  make(map[string]context.CancelFunc),
	}
}

// Start launches a processing job for a cluster result, transitioning it to
// processing first. Rejected when a job for the key is already in flight or
// the result's status does not allow processing.
func (p *Processor) Start(resultKey, archivePath string) error {
	p.mu.Lock()
	if _, running := p.inflight[resultKey]; running {
		p.mu.Unlock()
		return ErrJobInFlight
	}

	if err := p.registry.MarkProcessing(resultKey); err != nil {
		p.mu.Unlock()
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	p.inflight[resultKey] = cancel
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.finish(resultKey, cancel)
		p.run(ctx, resultKey, archivePath)
	}()

	slog.Info("Processing job started", "result_key", resultKey)
	return nil
}

// Cancel aborts the in-flight job for a result key, if any. Used on delete
// so the job's eventual completion is discarded instead of resurrecting
// the deleted key.
func (p *Processor) Cancel(resultKey string) {
	p.mu.Lock()
	cancel, ok := p.inflight[resultKey]
	p.mu.Unlock()
	if ok {
		cancel()
		slog.Info("Processing job cancelled", "result_key", resultKey)
	}
}

// InFlight reports whether a job is currently running for the key.
func (p *Processor) InFlight(resultKey string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.inflight[resultKey]
	return ok
}

// Wait blocks until all running jobs have finished. Test helper and
// shutdown hook.
func (p *Processor) Wait() {
	p.wg.Wait()
}

func (p *Processor) finish(resultKey string, cancel context.CancelFunc) {
	cancel()
	p.mu.Lock()
	delete(p.inflight, resultKey)
	p.mu.Unlock()
}

// run drives one job to a terminal status. Every failure path resolves the
// result to failed with a descriptive error; a result is never left in
// processing once its job returns.
func (p *Processor) run(ctx context.Context, resultKey, archivePath string) {
	if p.parser == nil {
		p.fail(resultKey, "structured parser not configured: set ANTHROPIC_API_KEY")
		return
	}

	filePath := archivePath
	if p.extractor != nil {
		extracted, cleanup, err := p.extractor.Extract(ctx, archivePath)
		if err != nil {
			p.fail(resultKey, fmt.Sprintf("archive extraction failed: %v", err))
			return
		}
		defer cleanup()
		filePath = extracted
	}

	results := make([]CommandResult, len(p.commands))
	g, gctx := errgroup.WithContext(ctx)
	for i, command := range p.commands {
		g.Go(func() error {
			res, err := p.runner.Run(gctx, filePath, command)
			if err != nil {
				// The runner could not execute at all; record the failure
				// as a section so partial output still reaches the parser.
				res = CommandResult{Command: command, Stderr: err.Error()}
			}
			results[i] = res
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		p.fail(resultKey, fmt.Sprintf("diagnostic commands aborted: %v", err))
		return
	}

	succeeded := 0
	for _, res := range results {
		if res.Success {
			succeeded++
		}
	}
	if succeeded == 0 {
		p.fail(resultKey, "all diagnostic commands failed")
		return
	}

	combined := CombineResults(results)
	data, partial, err := p.parser.Parse(ctx, combined)
	if err != nil {
		// Command output is still on hand; scrape the basics out of it
		// rather than throwing the bundle away.
		slog.Warn("Structured parsing failed, falling back to scraped output",
			"result_key", resultKey, "error", err)
		p.registry.CompleteProcessing(resultKey, models.StatusPartial, FallbackClusterData(combined), "")
		slog.Info("Processing job finished", "result_key", resultKey, "status", models.StatusPartial)
		return
	}

	status := models.StatusCompleted
	if partial || succeeded < len(p.commands) {
		status = models.StatusPartial
	}

	p.registry.CompleteProcessing(resultKey, status, data, "")
	slog.Info("Processing job finished", "result_key", resultKey, "status", status)
}

func (p *Processor) fail(resultKey, message string) {
	p.registry.CompleteProcessing(resultKey, models.StatusFailed, nil, message)
	slog.Warn("Processing job failed", "result_key", resultKey, "error", message)
}
