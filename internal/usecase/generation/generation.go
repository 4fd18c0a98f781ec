package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"post-composer/internal/domain"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
	"golang.org/x/text/unicode/norm"
)

var apiKeyRe = regexp.MustCompile(`^sk-[a-zA-Z0-9]{48}$`)

// Request is one generation call. Settings falls back to the defaults.
type Request struct {
	PropertyText string
	APIKey       string
	Settings     *domain.PromptSettings
}

type Generator struct {
	client chatClient
	logger *zlog.Zerolog
	newID  func() string
}

func NewGenerator(client chatClient, logger *zlog.Zerolog) *Generator {
	return &Generator{
		client: client,
		logger: logger,
		newID:  func() string { return uuid.New().String() },
	}
}

// ValidateAPIKey checks the key shape before anything leaves the process.
func ValidateAPIKey(key string) error {
	if !apiKeyRe.MatchString(key) {
		return ErrInvalidAPIKey
	}
	return nil
}

func (g *Generator) Generate(ctx context.Context, req Request) (*domain.GenerationResult, error) {
	if strings.TrimSpace(req.PropertyText) == "" {
		return nil, ErrEmptyPropertyText
	}
	if err := ValidateAPIKey(req.APIKey); err != nil {
		return nil, err
	}

	settings := domain.DefaultPromptSettings
	if req.Settings != nil {
		settings = *req.Settings
	}
	system, user := BuildPrompts(settings, req.PropertyText)

	g.logger.Debug().
		Str("template", SelectTemplate(settings).ID).
		Str("tone", string(settings.Tone)).
		Str("audience", string(settings.TargetAudience)).
		Msg("Requesting promotional texts")

	content, usage, err := g.client.Complete(ctx, req.APIKey, system, user)
	if err != nil {
		g.logger.Error().Err(err).Msg("Generation request failed")
		return nil, fmt.Errorf("failed to generate texts: %w", err)
	}

	result, err := g.ParseReply(content)
	if err != nil {
		g.logger.Warn().Err(err).Int("reply_size", len(content)).Msg("Malformed generation reply")
		return nil, err
	}
	result.Usage = usage

	g.logger.Info().
		Int("texts", len(result.Texts)).
		Bool("post_content", result.PostContent != nil).
		Msg("Promotional texts generated")

	return result, nil
}

type rawReply struct {
	PRTexts *[]struct {
		Text     string `json:"text"`
		Category string `json:"category"`
		Priority int    `json:"priority"`
	} `json:"prTexts"`
	PostContent *struct {
		Captions []struct {
			Text     string   `json:"text"`
			Hashtags []string `json:"hashtags"`
		} `json:"captions"`
		SuggestedHashtags []string                  `json:"suggestedHashtags"`
		HashtagCategories *domain.HashtagCategories `json:"hashtagCategories"`
	} `json:"postContent"`
}

// ParseReply validates a model reply. The reply may be wrapped in a fenced
// code block. A missing prTexts list is malformed; missing categories and
// priorities default to general and 1.
func (g *Generator) ParseReply(content string) (*domain.GenerationResult, error) {
	var raw rawReply
	if err := json.Unmarshal([]byte(stripFence(content)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGenerationResponse, err)
	}
	if raw.PRTexts == nil {
		return nil, fmt.Errorf("%w: prTexts missing", ErrMalformedGenerationResponse)
	}

	out := &domain.GenerationResult{Texts: make([]domain.PromotionalText, 0, len(*raw.PRTexts))}
	for _, t := range *raw.PRTexts {
		text := norm.NFC.String(t.Text)
		category := domain.TextCategory(t.Category)
		if category == "" {
			category = domain.CategoryGeneral
		}
		priority := t.Priority
		if priority == 0 {
			priority = 1
		}
		out.Texts = append(out.Texts, domain.PromotionalText{
			ID:             g.newID(),
			Text:           text,
			Category:       category,
			Priority:       priority,
			CharacterCount: utf8.RuneCountInString(text),
		})
	}

	if pc := raw.PostContent; pc != nil {
		post := &domain.PostContent{
			Captions:          make([]domain.PostCaption, 0, len(pc.Captions)),
			SuggestedHashtags: nonNil(pc.SuggestedHashtags),
			HashtagCategories: domain.HashtagCategories{
				Location:  []string{},
				Property:  []string{},
				Lifestyle: []string{},
				General:   []string{},
			},
		}
		if hc := pc.HashtagCategories; hc != nil {
			post.HashtagCategories = domain.HashtagCategories{
				Location:  nonNil(hc.Location),
				Property:  nonNil(hc.Property),
				Lifestyle: nonNil(hc.Lifestyle),
				General:   nonNil(hc.General),
			}
		}
		for _, c := range pc.Captions {
			caption := norm.NFC.String(c.Text)
			tags := nonNil(c.Hashtags)
			post.Captions = append(post.Captions, domain.PostCaption{
				ID:             g.newID(),
				Caption:        caption,
				Hashtags:       tags,
				CharacterCount: utf8.RuneCountInString(caption),
				HashtagCount:   len(tags),
			})
		}
		out.PostContent = post
	}

	return out, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
