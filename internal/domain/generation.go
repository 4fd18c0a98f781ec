package domain

type TextCategory string

const (
	CategoryLocation TextCategory = "location"
	CategoryPrice    TextCategory = "price"
	CategoryFeatures TextCategory = "features"
	CategorySpecs    TextCategory = "specs"
	CategoryAppeal   TextCategory = "appeal"
	CategoryGeneral  TextCategory = "general"
	CategorySummary  TextCategory = "summary"
)

// PromotionalText is one short generated snippet. Priority runs 1..5, 5 most important.
type PromotionalText struct {
	ID             string       `json:"id"`
	Text           string       `json:"text"`
	Category       TextCategory `json:"category"`
	Priority       int          `json:"priority"`
	CharacterCount int          `json:"characterCount"`
}

type PostCaption struct {
	ID             string   `json:"id"`
	Caption        string   `json:"caption"`
	Hashtags       []string `json:"hashtags"`
	CharacterCount int      `json:"characterCount"`
	HashtagCount   int      `json:"hashtagCount"`
}

type HashtagCategories struct {
	Location  []string `json:"location"`
	Property  []string `json:"property"`
	Lifestyle []string `json:"lifestyle"`
	General   []string `json:"general"`
}

type PostContent struct {
	Captions          []PostCaption     `json:"captions"`
	SuggestedHashtags []string          `json:"suggestedHashtags"`
	HashtagCategories HashtagCategories `json:"hashtagCategories"`
}

type Tone string
type Style string
type Audience string
type Emphasis string

const (
	TonePolite       Tone = "polite"
	ToneCasual       Tone = "casual"
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"

	StyleDetailed Style = "detailed"
	StyleConcise  Style = "concise"
	StyleCreative Style = "creative"
	StyleFactual  Style = "factual"

	AudienceFamily   Audience = "family"
	AudienceInvestor Audience = "investor"
	AudienceYoung    Audience = "young"
	AudienceSenior   Audience = "senior"
	AudienceGeneral  Audience = "general"

	EmphasisLocation   Emphasis = "location"
	EmphasisPrice      Emphasis = "price"
	EmphasisFeatures   Emphasis = "features"
	EmphasisInvestment Emphasis = "investment"
	EmphasisLifestyle  Emphasis = "lifestyle"
)

type PromptSettings struct {
	Tone           Tone     `json:"tone"`
	Style          Style    `json:"style"`
	TargetAudience Audience `json:"targetAudience"`
	Emphasis       Emphasis `json:"emphasis"`
}

var DefaultPromptSettings = PromptSettings{
	Tone:           ToneProfessional,
	Style:          StyleDetailed,
	TargetAudience: AudienceGeneral,
	Emphasis:       EmphasisFeatures,
}

// GenerationResult is the validated outcome of one text-generation exchange.
type GenerationResult struct {
	Texts       []PromotionalText
	PostContent *PostContent
	Usage       *TokenUsage
}

type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
