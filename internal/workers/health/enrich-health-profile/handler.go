package enrichhealthprofile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "foodlens/internal/common/errors"
	"foodlens/internal/common/logger"
	"foodlens/internal/common/metrics"
	"foodlens/internal/common/observability"
	"foodlens/internal/profile"
	"foodlens/internal/session"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "enrich-health-profile"

type ProfileSaver interface {
	Save(ctx context.Context, draft *profile.HealthProfile, editing bool) (*session.SaveResult, error)
}

type Handler struct {
	config       *Config
	saver        ProfileSaver
	obs          *observability.Observability
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, saver ProfileSaver, obs *observability.Observability, log logger.Logger) *Handler {
	if obs == nil {
		obs = observability.Noop()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		saver:        saver,
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
	draft, err := toDraft(input)
	if err != nil {
		return nil, err
	}

	res, err := h.saver.Save(ctx, draft, input.Editing)
	if err != nil {
		return nil, err
	}

	out := &Output{
		ProfileOutcome: string(res.Outcome),
		Enriched:       res.Enriched,
	}
	if res.Profile != nil {
		out.Age = res.Profile.Age
	}
	if res.Record != nil {
		out.TotalConditions = res.Record.TotalConditions
		out.SuccessfulSearches = res.Record.SuccessfulSearches
	}
	if res.EnrichmentErr != nil {
		out.EnrichmentWarning = res.EnrichmentErr.Error()
	}

	h.obs.RecordProfileSave(ctx, out.ProfileOutcome, out.Enriched, out.TotalConditions, out.SuccessfulSearches)
	h.logger.Info("profile processed", map[string]interface{}{
		"userId":   draft.UserID,
		"outcome":  out.ProfileOutcome,
		"enriched": out.Enriched,
	})
	return out, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func toDraft(input *Input) (*profile.HealthProfile, error) {
	dob, err := parseDate(input.DateOfBirth)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("dateOfBirth: %v", err))
	}
	return &profile.HealthProfile{
		UserID:               strings.TrimSpace(input.UserID),
		DateOfBirth:          dob,
		Gender:               profile.Gender(input.Gender),
		Weight:               input.Weight,
		WeightUnit:           profile.WeightUnit(input.WeightUnit),
		Height:               input.Height,
		HeightUnit:           profile.HeightUnit(input.HeightUnit),
		FoodAllergy:          input.FoodAllergy,
		ExistingDisease:      input.ExistingDisease,
		OtherHealthCondition: input.OtherHealthCondition,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("is required")
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
