package enrichhealthprofile

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "foodlens/internal/common/errors"
	"foodlens/internal/common/logger"
	"foodlens/internal/enrichment"
	"foodlens/internal/profile"
	"foodlens/internal/session"
	"foodlens/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockSaver struct {
	mock.Mock
}

func (m *MockSaver) Save(ctx context.Context, draft *profile.HealthProfile, editing bool) (*session.SaveResult, error) {
	args := m.Called(ctx, draft, editing)
	if res := args.Get(0); res != nil {
		return res.(*session.SaveResult), args.Error(1)
	}
	return nil, args.Error(1)
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 1,
		Timeout:       5 * time.Second,
	}
}

func createTestInput() *Input {
	return &Input{
		UserID:          "jane@example.com",
		DateOfBirth:     "1990-04-02",
		Gender:          "Female",
		Weight:          62,
		WeightUnit:      "KG",
		Height:          168,
		HeightUnit:      "cm",
		FoodAllergy:     "peanut",
		ExistingDisease: "diabetes",
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Created(t *testing.T) {
	saver := new(MockSaver)
	saver.On("Save", mock.Anything, mock.MatchedBy(func(p *profile.HealthProfile) bool {
		return p.UserID == "jane@example.com" &&
			p.DateOfBirth.Equal(time.Date(1990, 4, 2, 0, 0, 0, 0, time.UTC)) &&
			p.Gender == profile.GenderFemale &&
			p.WeightUnit == profile.WeightKG &&
			p.FoodAllergy == "peanut"
	}), false).Return(&session.SaveResult{
		Outcome:  session.OutcomeCreated,
		Profile:  &profile.HealthProfile{Age: 35},
		Enriched: true,
		Record:   &enrichment.Record{TotalConditions: 2, SuccessfulSearches: 1},
	}, nil)

	handler := NewHandler(createTestConfig(), saver, nil, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, "created", output.ProfileOutcome)
	assert.Equal(t, 35, output.Age)
	assert.True(t, output.Enriched)
	assert.Equal(t, 2, output.TotalConditions)
	assert.Equal(t, 1, output.SuccessfulSearches)
	assert.Empty(t, output.EnrichmentWarning)
	saver.AssertExpectations(t)
}

func TestHandler_Execute_Outcomes(t *testing.T) {
	tests := []struct {
		name     string
		editing  bool
		result   *session.SaveResult
		validate func(t *testing.T, out *Output)
	}{
		{
			name:    "unchanged edit",
			editing: true,
			result:  &session.SaveResult{Outcome: session.OutcomeUnchanged, Profile: &profile.HealthProfile{Age: 35}},
			validate: func(t *testing.T, out *Output) {
				assert.Equal(t, "unchanged", out.ProfileOutcome)
				assert.False(t, out.Enriched)
				assert.Zero(t, out.TotalConditions)
			},
		},
		{
			name:    "updated with cache failure",
			editing: true,
			result: &session.SaveResult{
				Outcome:       session.OutcomeUpdated,
				Profile:       &profile.HealthProfile{Age: 35},
				Enriched:      true,
				Record:        &enrichment.Record{TotalConditions: 1},
				EnrichmentErr: apperrors.NewStorageError("save enrichment", errors.New("disk full")),
			},
			validate: func(t *testing.T, out *Output) {
				assert.Equal(t, "updated", out.ProfileOutcome)
				assert.True(t, out.Enriched)
				assert.Contains(t, out.EnrichmentWarning, "disk full")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saver := new(MockSaver)
			saver.On("Save", mock.Anything, mock.Anything, tt.editing).Return(tt.result, nil)

			input := createTestInput()
			input.Editing = tt.editing
			handler := NewHandler(createTestConfig(), saver, nil, logger.NewTestLogger(t))

			output, err := handler.Execute(context.Background(), input)

			require.NoError(t, err)
			tt.validate(t, output)
		})
	}
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_ProfileExists(t *testing.T) {
	saver := new(MockSaver)
	saver.On("Save", mock.Anything, mock.Anything, false).
		Return(nil, errors.Join(session.ErrProfileExists, apperrors.NewProfileExistsError("jane@example.com")))

	handler := NewHandler(createTestConfig(), saver, nil, logger.NewTestLogger(t))
	_, err := handler.Execute(context.Background(), createTestInput())

	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrProfileExists)
	assert.Equal(t, apperrors.ErrCodeProfileExists, apperrors.CodeOf(err))
}

func TestHandler_Execute_InvalidDateOfBirth(t *testing.T) {
	tests := []struct {
		name string
		dob  string
	}{
		{name: "missing", dob: ""},
		{name: "unparseable", dob: "02/04/1990"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saver := new(MockSaver)
			input := createTestInput()
			input.DateOfBirth = tt.dob

			handler := NewHandler(createTestConfig(), saver, nil, logger.NewTestLogger(t))
			_, err := handler.Execute(context.Background(), input)

			assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
			saver.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestParseDate_RFC3339(t *testing.T) {
	got, err := parseDate("1990-04-02T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 1990, got.Year())
	assert.Equal(t, time.April, got.Month())
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Timeout = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.MaxJobsActive = 0
	assert.Error(t, cfg.Validate())
}

func TestHandler_CheckInput(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)
	activity, ok := reg.Find(TaskType)
	require.True(t, ok)
	schema, err := activity.InputValidator()
	require.NoError(t, err)

	cfg := createTestConfig()
	cfg.InputSchema = schema
	handler := NewHandler(cfg, nil, nil, logger.NewTestLogger(t))

	assert.NoError(t, handler.checkInput(`{"userId":"jane@example.com","dateOfBirth":"1990-04-02","gender":"Female","weight":62,"weightUnit":"KG","height":168,"heightUnit":"cm"}`))

	err = handler.checkInput(`{"userId":"jane@example.com","gender":"Female"}`)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
	assert.Contains(t, err.Error(), "dateOfBirth")

	err = handler.checkInput(`not json`)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}

func TestHandler_CheckInput_NoSchema(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, nil, logger.NewTestLogger(t))
	assert.NoError(t, handler.checkInput(`{}`))
}
