package session

import (
	"context"
	"fmt"
	"sync"

	"foodlens/internal/analysis"
	apperrors "foodlens/internal/common/errors"
	"foodlens/internal/common/logger"
	"foodlens/internal/profile"

	"github.com/google/uuid"
)

type Runner interface {
	Run(ctx context.Context, images analysis.Images, p *profile.HealthProfile, corpus string) (*analysis.Result, error)
}

// Controller is the single owner of in-memory session state: the loaded
// profile acting as the edit baseline, the current photos and the last
// analysis result. Each reset starts a new epoch; results from an older
// epoch are dropped.
type Controller struct {
	profiles       *ProfileService
	runner         Runner
	keysConfigured bool
	logger         logger.Logger

	mu       sync.Mutex
	baseline *profile.HealthProfile
	editing  bool
	epoch    string
	images   analysis.Images
	result   *analysis.Result
}

func NewController(profiles *ProfileService, runner Runner, keysConfigured bool, log logger.Logger) *Controller {
	return &Controller{
		profiles:       profiles,
		runner:         runner,
		keysConfigured: keysConfigured,
		logger:         logger.Component(log, "session"),
		epoch:          uuid.NewString(),
	}
}

// NewProfile drops the baseline so the next save creates a profile.
func (c *Controller) NewProfile() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseline = nil
	c.editing = false
}

// LoadProfile makes the stored profile the baseline and enters editing mode.
func (c *Controller) LoadProfile(ctx context.Context, userID string) (*profile.HealthProfile, error) {
	p, err := c.profiles.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.baseline = p
	c.editing = true
	c.mu.Unlock()
	return p, nil
}

// SaveProfile saves draft as a new profile, or as an edit of the baseline once
// one is loaded. The user id of a baseline cannot change.
func (c *Controller) SaveProfile(ctx context.Context, draft *profile.HealthProfile) (*SaveResult, error) {
	c.mu.Lock()
	editing := c.editing
	baseline := c.baseline
	c.mu.Unlock()

	if editing && baseline != nil && draft.UserID != baseline.UserID {
		return nil, apperrors.NewValidationError(fmt.Sprintf(
			"user id cannot change while editing %q; start a new profile instead", baseline.UserID))
	}

	res, err := c.profiles.Save(ctx, draft, editing)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.baseline = res.Profile
	c.editing = true
	c.mu.Unlock()
	return res, nil
}

func (c *Controller) Profile() *profile.HealthProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseline
}

func (c *Controller) Editing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editing
}

// Analyze runs the analysis for the loaded profile. If Reset is called while
// the request is in flight, the late result is discarded and ErrSessionReset
// is returned.
func (c *Controller) Analyze(ctx context.Context, front, back string) (*analysis.Result, error) {
	if front == "" || back == "" {
		return nil, apperrors.NewValidationError("both front and back images are required")
	}
	if !c.keysConfigured {
		return nil, apperrors.NewValidationError("API keys are not configured")
	}

	c.mu.Lock()
	p := c.baseline
	epoch := c.epoch
	c.images = analysis.Images{Front: front, Back: back}
	c.result = nil
	c.mu.Unlock()

	if p == nil {
		return nil, apperrors.NewValidationError("load or save a profile before analysing food")
	}

	corpus := c.profiles.Corpus(ctx, p.UserID)
	res, err := c.runner.Run(ctx, analysis.Images{Front: front, Back: back}, p, corpus)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		c.logger.Info("discarding analysis from a reset session", map[string]interface{}{"userId": p.UserID})
		return nil, fmt.Errorf("%w: %w", analysis.ErrSessionReset, apperrors.NewSessionResetError())
	}
	if err != nil {
		return nil, err
	}
	c.result = res
	return res, nil
}

// Reset clears photos and result and starts a new epoch. In-flight requests
// are not cancelled.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images = analysis.Images{}
	c.result = nil
	c.epoch = uuid.NewString()
}

func (c *Controller) Result() *analysis.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

func (c *Controller) Images() analysis.Images {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.images
}
