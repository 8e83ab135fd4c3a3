package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/fadilmartias/hireprep/internal/prompt"
	"github.com/fadilmartias/hireprep/internal/repository"
	"github.com/fadilmartias/hireprep/internal/util"
)

// AnalysisInput is everything needed to render one analysis prompt.
type AnalysisInput struct {
	Key      string
	Language string
	Values   map[string]string
	// attach the company-research block before the JSON schema marker
	CompanyResearch bool
}

type BuiltPrompt struct {
	Key      string
	Language string
	// 0 when the built-in default was used
	Version int
	Text    string
	// false when company research was requested but the template has no marker
	ResearchAttached bool
}

type AnalysisBuilder struct {
	prompts         PromptTemplateRepository
	defaultLanguage string
}

func NewAnalysisBuilder(prompts PromptTemplateRepository, defaultLanguage string) *AnalysisBuilder {
	if defaultLanguage == "" {
		defaultLanguage = "en"
	}
	return &AnalysisBuilder{prompts: prompts, defaultLanguage: defaultLanguage}
}

func (b *AnalysisBuilder) Build(ctx context.Context, in AnalysisInput) (*BuiltPrompt, error) {
	content, language, version, err := b.resolve(ctx, in.Key, in.Language)
	if err != nil {
		return nil, err
	}

	built := &BuiltPrompt{Key: in.Key, Language: language, Version: version}
	if in.CompanyResearch {
		content, built.ResearchAttached = prompt.WithCompanyResearch(content)
		if !built.ResearchAttached {
			log.Printf("Warning: template %s/%s v%d has no JSON schema marker, company research not attached", in.Key, language, version)
		}
	}

	text, err := prompt.Format(content, in.Values)
	if err != nil {
		return nil, util.NewUpstreamError("failed to build analysis prompt", fmt.Errorf("template %s/%s v%d: %w", in.Key, language, version, err))
	}
	built.Text = text
	return built, nil
}

// resolve finds the active template for key in language, then in the default language,
// then among the compiled-in defaults.
func (b *AnalysisBuilder) resolve(ctx context.Context, key, language string) (string, string, int, error) {
	if language == "" {
		language = b.defaultLanguage
	}
	candidates := []string{language}
	if language != b.defaultLanguage {
		candidates = append(candidates, b.defaultLanguage)
	}

	for _, lang := range candidates {
		tpl, err := b.prompts.FindLatest(ctx, key, lang)
		if err == nil {
			return tpl.Content, lang, tpl.Version, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return "", "", 0, util.NewUpstreamError("failed to load prompt template", err)
		}
	}

	for _, d := range prompt.Defaults {
		if d.Key == key && d.Language == b.defaultLanguage {
			log.Printf("Warning: prompt %s not in registry, using built-in default", key)
			return d.Content, d.Language, 0, nil
		}
	}
	return "", "", 0, util.NewUpstreamError("failed to build analysis prompt", fmt.Errorf("no template for key %q", key))
}
