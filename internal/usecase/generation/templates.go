package generation

import (
	"regexp"

	"post-composer/internal/domain"
)

type PromptTemplate struct {
	ID                 string                `json:"id"`
	Name               string                `json:"name"`
	Description        string                `json:"description"`
	SystemPrompt       string                `json:"systemPrompt"`
	UserPromptTemplate string                `json:"userPromptTemplate"`
	Settings           domain.PromptSettings `json:"settings"`
	IsDefault          bool                  `json:"isDefault"`
}

const replyFormat = `
Property information:
{{propertyText}}

Reply with JSON only, in this shape:
{
  "prTexts": [
    {"text": "snippet", "category": "location|price|features|specs|appeal|general|summary", "priority": 1}
  ],
  "postContent": {
    "captions": [{"text": "caption, at most 300 characters", "hashtags": ["#tag"]}],
    "suggestedHashtags": ["#tag"],
    "hashtagCategories": {"location": [], "property": [], "lifestyle": [], "general": []}
  }
}

Post content:
- 2 to 3 captions of at most 300 characters, each with 5 to 10 hashtags
- captions should speak to the {{targetAudience}} audience
- include popular real-estate and housing hashtags
`

const snippetRules = `
Rules for every snippet:
1. 15 to 50 characters
2. one of the categories location, price, features, specs, appeal, general, summary
3. a priority from 1 to 5, 5 being the most important
4. always include 1 or 2 "summary" snippets listing type, floor area, price and layout, e.g. "3LDK・75㎡・駅徒歩5分・3980万円"
`

// Templates are the built-in prompt presets. The first one is the fallback.
var Templates = []PromptTemplate{
	{
		ID:           "default-balanced",
		Name:         "Balanced",
		Description:  "Readable, appealing snippets for a broad audience",
		SystemPrompt: "You are an experienced real-estate marketer who writes catchy promotional copy that captures what makes a property special. Answer in Japanese.",
		UserPromptTemplate: `Write about 20 short promotional snippets for an Instagram post about the property below.

Style:
- tone: {{tone}}
- style: {{style}}
- audience: {{targetAudience}}
- emphasis: {{emphasis}}

Describe the property {{style === 'concise' ? 'concisely' : 'in detail'}}, appeal to the {{targetAudience}} audience and stress {{emphasis}}.
` + snippetRules + replyFormat,
		Settings:  domain.DefaultPromptSettings,
		IsDefault: true,
	},
	{
		ID:           "family-friendly",
		Name:         "Family",
		Description:  "Warm copy for households with children",
		SystemPrompt: "You are a housing advisor for families. You write warm copy about everyday life, schools, safety and a good neighbourhood. Answer in Japanese.",
		UserPromptTemplate: `Write about 20 short promotional snippets for families, for an Instagram post about the property below.

Focus:
- scenes of family life that are easy to picture
- schools and childcare nearby
- safety and a calm neighbourhood
- a warm, friendly voice
` + snippetRules + replyFormat,
		Settings: domain.PromptSettings{
			Tone:           domain.ToneFriendly,
			Style:          domain.StyleDetailed,
			TargetAudience: domain.AudienceFamily,
			Emphasis:       domain.EmphasisLifestyle,
		},
	},
	{
		ID:           "investment-focused",
		Name:         "Investor",
		Description:  "Yield and asset value for investors",
		SystemPrompt: "You are a real-estate investment analyst. You state yield, location strength and future value precisely. Answer in Japanese.",
		UserPromptTemplate: `Write about 20 short promotional snippets for investors, for an Instagram post about the property below.

Focus:
- yield, income and asset value
- the future of the location and planned development
- low investment risk
- objective wording backed by numbers; summary snippets should include the expected yield
` + snippetRules + replyFormat,
		Settings: domain.PromptSettings{
			Tone:           domain.ToneProfessional,
			Style:          domain.StyleFactual,
			TargetAudience: domain.AudienceInvestor,
			Emphasis:       domain.EmphasisInvestment,
		},
	},
	{
		ID:           "young-casual",
		Name:         "Young casual",
		Description:  "Trendy, social-media friendly copy for young renters and buyers",
		SystemPrompt: "You are a housing consultant who knows how young people live. You write trendy copy that looks good on social media. Answer in Japanese.",
		UserPromptTemplate: `Write about 20 short promotional snippets for young people, for an Instagram post about the property below.

Focus:
- trendy words and expressions
- a fulfilling lifestyle
- design and convenience
- a casual, friendly voice
` + snippetRules + replyFormat,
		Settings: domain.PromptSettings{
			Tone:           domain.ToneCasual,
			Style:          domain.StyleCreative,
			TargetAudience: domain.AudienceYoung,
			Emphasis:       domain.EmphasisLifestyle,
		},
	},
}

func findTemplate(id string) PromptTemplate {
	for _, t := range Templates {
		if t.ID == id {
			return t
		}
	}
	return Templates[0]
}

// SelectTemplate picks the preset matching the target audience.
func SelectTemplate(s domain.PromptSettings) PromptTemplate {
	switch s.TargetAudience {
	case domain.AudienceFamily:
		return findTemplate("family-friendly")
	case domain.AudienceInvestor:
		return findTemplate("investment-focused")
	case domain.AudienceYoung:
		return findTemplate("young-casual")
	}
	return Templates[0]
}

var (
	placeholderRe = regexp.MustCompile(`\{\{(\w+(?:\s*===\s*'[^']*'\s*\?\s*'[^']*'\s*:\s*'[^']*')?)\}\}`)
	ternaryRe     = regexp.MustCompile(`^(\w+)\s*===\s*'([^']*)'\s*\?\s*'([^']*)'\s*:\s*'([^']*)'$`)
)

// Interpolate replaces {{name}} with vars[name] and evaluates
// {{name === 'v' ? 'a' : 'b'}}. Unknown or empty names are left verbatim.
func Interpolate(tpl string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(tpl, func(match string) string {
		expr := placeholderRe.FindStringSubmatch(match)[1]

		if m := ternaryRe.FindStringSubmatch(expr); m != nil {
			if vars[m[1]] == m[2] {
				return m[3]
			}
			return m[4]
		}

		if v := vars[expr]; v != "" {
			return v
		}
		return match
	})
}

// BuildPrompts resolves the template for s and fills it in.
func BuildPrompts(s domain.PromptSettings, propertyText string) (system, user string) {
	t := SelectTemplate(s)
	vars := map[string]string{
		"tone":           string(s.Tone),
		"style":          string(s.Style),
		"targetAudience": string(s.TargetAudience),
		"emphasis":       string(s.Emphasis),
		"propertyText":   propertyText,
	}
	return t.SystemPrompt, Interpolate(t.UserPromptTemplate, vars)
}
