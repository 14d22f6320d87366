package analyzefood

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"foodlens/internal/analysis"
	apperrors "foodlens/internal/common/errors"
	"foodlens/internal/common/logger"
	"foodlens/internal/common/metrics"
	"foodlens/internal/common/observability"
	"foodlens/internal/formatter"
	"foodlens/internal/profile"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "analyze-food"

type ProfileSource interface {
	Load(ctx context.Context, userID string) (*profile.HealthProfile, error)
	Corpus(ctx context.Context, userID string) string
}

type Runner interface {
	Run(ctx context.Context, images analysis.Images, p *profile.HealthProfile, corpus string) (*analysis.Result, error)
}

type ReportSender interface {
	SendReport(ctx context.Context, to, subject, body string) (string, error)
}

type Handler struct {
	config       *Config
	profiles     ProfileSource
	runner       Runner
	sender       ReportSender
	obs          *observability.Observability
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

type Dependencies struct {
	Profiles ProfileSource
	Runner   Runner
	// Sender may be nil when email delivery is disabled.
	Sender        ReportSender
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewHandler(config *Config, deps Dependencies) *Handler {
	obs := deps.Observability
	if obs == nil {
		obs = observability.Noop()
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		profiles:     deps.Profiles,
		runner:       deps.Runner,
		sender:       deps.Sender,
		obs:          obs,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	if err := h.checkInput(job.Variables); err != nil {
		h.fail(ctx, client, job, err, start)
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, apperrors.NewValidationError(fmt.Sprintf("parse input: %v", err)), start)
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err, start)
		return
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		h.fail(ctx, client, job, err, start)
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.obs.RecordJob(ctx, TaskType, metrics.StatusSuccess, time.Since(start))
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error, start time.Time) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.CodeOf(err))).Inc()
	h.obs.RecordJob(ctx, TaskType, metrics.StatusError, time.Since(start))
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) checkInput(variables string) error {
	if h.config.InputSchema == nil {
		return nil
	}
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &doc); err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("parse input: %v", err))
	}
	res, err := h.config.InputSchema.Validate(doc)
	if err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	if !res.Valid {
		return apperrors.NewValidationError(strings.Join(res.GetErrorMessages(), "; "))
	}
	return nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	userID := strings.TrimSpace(input.UserID)
	p, err := h.profiles.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	corpus := h.profiles.Corpus(ctx, userID)
	result, err := h.runner.Run(ctx, analysis.Images{Front: input.FrontImage, Back: input.BackImage}, p, corpus)
	if err != nil {
		return nil, err
	}

	out := &Output{
		FoodName:        result.FoodName,
		FoodIngredients: result.FoodIngredients,
		HealthAnalysis:  result.HealthAnalysis,
		Sections:        formatter.ParseSections(result.HealthAnalysis),
		SourceLinks:     formatter.ExtractURLs(result.HealthAnalysis),
		UsedEnrichment:  corpus != "",
	}

	if input.SendEmail {
		h.email(ctx, userID, result, out)
	}

	h.logger.Info("analysis completed", map[string]interface{}{
		"userId":   userID,
		"foodName": out.FoodName,
		"sections": len(out.Sections),
	})
	return out, nil
}

// email failures are logged and never fail the job.
func (h *Handler) email(ctx context.Context, to string, result *analysis.Result, out *Output) {
	if !h.config.EmailReports || h.sender == nil {
		h.logger.Warn("email requested but reports are disabled", map[string]interface{}{"userId": to})
		return
	}

	body := formatter.RenderReport(result.FoodName, result.FoodIngredients, result.HealthAnalysis)
	id, err := h.sender.SendReport(ctx, to, fmt.Sprintf("Food analysis: %s", strings.TrimSpace(result.FoodName)), body)
	h.obs.RecordReport(ctx, err == nil)
	if err != nil {
		h.logger.Warn("report email failed", map[string]interface{}{
			"userId": to,
			"error":  err,
		})
		return
	}
	out.EmailSent = true
	out.EmailMessageID = id
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
