// Package analysis turns two package photos and a saved profile into a
// health analysis of the product.
package analysis

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"

	apperrors "foodlens/internal/common/errors"
	"foodlens/internal/common/logger"
	"foodlens/internal/completion"
	"foodlens/internal/profile"

	"golang.org/x/sync/errgroup"
)

// Images are the two package photos as data URIs or URLs.
type Images struct {
	Front string
	Back  string
}

// Result lives only for the current analysis session.
type Result struct {
	FoodName        string `json:"foodName"`
	FoodIngredients string `json:"foodIngredients"`
	HealthAnalysis  string `json:"healthAnalysis"`
}

type Orchestrator struct {
	completer completion.Completer
	logger    logger.Logger
}

func NewOrchestrator(completer completion.Completer, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		completer: completer,
		logger:    logger.Component(log, "analysis"),
	}
}

// Run extracts product identity and ingredients concurrently, then issues the
// single correlation request. Nothing is retried.
func (o *Orchestrator) Run(ctx context.Context, images Images, p *profile.HealthProfile, corpus string) (*Result, error) {
	if images.Front == "" || images.Back == "" {
		return nil, apperrors.NewValidationError("both front and back images are required")
	}
	if p == nil {
		return nil, apperrors.NewValidationError("a saved profile is required")
	}

	var foodName, ingredients string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		foodName, err = o.ExtractIdentity(gctx, images.Front)
		return err
	})
	g.Go(func() error {
		var err error
		ingredients, err = o.ExtractIngredients(gctx, images.Back)
		return err
	})
	if err := g.Wait(); err != nil {
		o.logger.Error("image extraction failed", map[string]interface{}{"userId": p.UserID, "error": err})
		return nil, err
	}

	analysis, err := o.Analyze(ctx, p, foodName, ingredients, corpus)
	if err != nil {
		return nil, err
	}

	return &Result{
		FoodName:        foodName,
		FoodIngredients: ingredients,
		HealthAnalysis:  analysis,
	}, nil
}

func (o *Orchestrator) ExtractIdentity(ctx context.Context, frontImage string) (string, error) {
	return o.completer.Complete(ctx, completion.Request{
		Purpose:   "identity",
		System:    identitySystem,
		Parts:     []completion.Part{{Text: identityPrompt}, {ImageURL: frontImage}},
		MaxTokens: identityMaxTokens,
	})
}

func (o *Orchestrator) ExtractIngredients(ctx context.Context, backImage string) (string, error) {
	return o.completer.Complete(ctx, completion.Request{
		Purpose:   "ingredients",
		System:    ingredientsSystem,
		Parts:     []completion.Part{{Text: ingredientsPrompt}, {ImageURL: backImage}},
		MaxTokens: ingredientsMaxTokens,
	})
}

// Analyze correlates the extracted texts with the profile and the cached
// enrichment corpus in one round trip.
func (o *Orchestrator) Analyze(ctx context.Context, p *profile.HealthProfile, foodName, ingredients, corpus string) (string, error) {
	text, err := o.completer.Complete(ctx, completion.Request{
		Purpose:   "health",
		System:    healthSystem,
		Parts:     []completion.Part{{Text: healthPrompt(p, foodName, ingredients, corpus)}},
		MaxTokens: healthMaxTokens,
	})
	if err != nil {
		o.logger.Error("health analysis failed", map[string]interface{}{"userId": p.UserID, "error": err})
		return "", err
	}
	return text, nil
}

// ImageDataURI encodes raw image bytes as a base64 data URI.
func ImageDataURI(data []byte) string {
	mime := http.DetectContentType(data)
	if mime == "application/octet-stream" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ErrSessionReset is returned when a result arrives after the session that
// requested it was reset. The result is discarded.
var ErrSessionReset = errors.New("analysis session was reset")
