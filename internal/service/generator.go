package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"github.com/accessivision/backend/internal/domain"
	"github.com/accessivision/backend/internal/logger"
	"github.com/accessivision/backend/internal/prompts"
	"github.com/go-resty/resty/v2"
	_ "golang.org/x/image/webp"
)

// Generator renders a renovated version of a photo. A (nil, nil) return is
// the explicit "no result" signal: the item keeps its audit but gains no
// artifact, and the caller must not treat it as a failure.
type Generator interface {
	Render(ctx context.Context, imageURL string, spec domain.RenderSpec) ([]byte, error)
}

// GeneratorService visualizes renovations through a Stability-style
// search-and-replace image edit endpoint. Two-pass specs chain a removal
// edit into a construction edit on the intermediate image.
type GeneratorService struct {
	client   *resty.Client
	endpoint string
	log      *logger.Logger
}

// GeneratorConfig holds configuration for the generator service.
type GeneratorConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

const defaultGeneratorBaseURL = "https://api.stability.ai"

// NewGeneratorService creates a new generator service.
func NewGeneratorService(cfg *GeneratorConfig, log *logger.Logger) *GeneratorService {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Accept", "image/*")

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	client.SetTimeout(timeout)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGeneratorBaseURL
	}

	return &GeneratorService{
		client:   client,
		endpoint: baseURL + "/v2beta/stable-image/edit/search-and-replace",
		log:      log,
	}
}

// Render produces the renovated image bytes for the spec, or (nil, nil)
// when the upstream declines to produce one.
func (s *GeneratorService) Render(ctx context.Context, imageURL string, spec domain.RenderSpec) ([]byte, error) {
	sourceImage, err := s.downloadImage(ctx, imageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download source image: %w", err)
	}

	if spec.TwoPass {
		return s.renderTwoPass(ctx, sourceImage, spec)
	}

	return s.edit(ctx, sourceImage, spec.ImageGenPrompt, spec.MaskPrompt, spec.WheelchairAccessible)
}

// renderTwoPass removes the barrier first, then builds the accessible
// feature into the cleared image. A "no result" on the removal pass ends
// the attempt; there is nothing sensible to build on.
func (s *GeneratorService) renderTwoPass(ctx context.Context, sourceImage []byte, spec domain.RenderSpec) ([]byte, error) {
	cleared, err := s.edit(ctx, sourceImage, spec.ClearPrompt, spec.ClearMask, spec.WheelchairAccessible)
	if err != nil {
		return nil, fmt.Errorf("removal pass: %w", err)
	}
	if cleared == nil {
		return nil, nil
	}

	built, err := s.edit(ctx, cleared, spec.BuildPrompt, spec.BuildMask, spec.WheelchairAccessible)
	if err != nil {
		return nil, fmt.Errorf("construction pass: %w", err)
	}
	return built, nil
}

// edit performs one search-and-replace call. Non-2xx answers are logged and
// mapped to the "no result" signal, mirroring the audit-still-valuable
// policy: a missing visual never invalidates the finding.
func (s *GeneratorService) edit(ctx context.Context, imageData []byte, fillPrompt, searchPrompt string, wheelchairAccessible bool) ([]byte, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetFileReader("image", "image.webp", bytes.NewReader(imageData)).
		SetFormData(map[string]string{
			"prompt":          prompts.RenderPrompt(fillPrompt, wheelchairAccessible),
			"search_prompt":   searchPrompt,
			"negative_prompt": prompts.NegativePrompt,
			"output_format":   "webp",
		}).
		Post(s.endpoint)

	if err != nil {
		return nil, fmt.Errorf("failed to call generation API: %w", err)
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		s.log.WithFields(logger.Fields{
			"status": resp.StatusCode(),
			"body":   string(resp.Body()),
		}).Warn("Generation API declined to produce an image")
		return nil, nil
	}

	result := resp.Body()
	if _, _, err := image.DecodeConfig(bytes.NewReader(result)); err != nil {
		s.log.WithError(err).Warn("Generation API returned undecodable image data")
		return nil, nil
	}

	return result, nil
}

func (s *GeneratorService) downloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get(imageURL)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("image download returned HTTP %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

// EncodeArtifact wraps generated image bytes into a data URL for transport.
func EncodeArtifact(imageData []byte) string {
	return "data:image/webp;base64," + base64.StdEncoding.EncodeToString(imageData)
}
