package dto

import "post-composer/internal/domain"

type GenerateRequest struct {
	PropertyText string           `json:"propertyText" validate:"required,max=5000"`
	APIKey       string           `json:"apiKey" validate:"required"`
	Settings     *SettingsRequest `json:"settings"`
}

type SettingsRequest struct {
	Tone           string `json:"tone" validate:"omitempty,oneof=polite casual professional friendly"`
	Style          string `json:"style" validate:"omitempty,oneof=detailed concise creative factual"`
	TargetAudience string `json:"targetAudience" validate:"omitempty,oneof=family investor young senior general"`
	Emphasis       string `json:"emphasis" validate:"omitempty,oneof=location price features investment lifestyle"`
}

type GenerateResponse struct {
	PRTexts     []domain.PromotionalText `json:"prTexts"`
	PostContent *domain.PostContent      `json:"postContent,omitempty"`
	Usage       *domain.TokenUsage       `json:"usage,omitempty"`
}

// PromptSettings fills unset fields from the defaults.
func (s *SettingsRequest) PromptSettings() *domain.PromptSettings {
	if s == nil {
		return nil
	}
	out := domain.DefaultPromptSettings
	if s.Tone != "" {
		out.Tone = domain.Tone(s.Tone)
	}
	if s.Style != "" {
		out.Style = domain.Style(s.Style)
	}
	if s.TargetAudience != "" {
		out.TargetAudience = domain.Audience(s.TargetAudience)
	}
	if s.Emphasis != "" {
		out.Emphasis = domain.Emphasis(s.Emphasis)
	}
	return &out
}
