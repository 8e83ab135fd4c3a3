package dto

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/fadilmartias/hireprep/internal/model"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var languagePattern = regexp.MustCompile(`^[a-z]{2}(-[A-Za-z]{2})?$`)

// UploadedFile is a multipart upload already read into memory.
type UploadedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// StepOneRequest is the identity and consent step shared by both flows.
// Company only applies to interviewers.
type StepOneRequest struct {
	FirstName string `json:"first_name" form:"first_name"`
	LastName  string `json:"last_name" form:"last_name"`
	Email     string `json:"email" form:"email"`
	Phone     string `json:"phone" form:"phone"`
	Company   string `json:"company" form:"company"`

	ConsentPrivacyPolicy bool `json:"consent_privacy_policy" form:"consent_privacy_policy"`
	ConsentTerms         bool `json:"consent_terms" form:"consent_terms"`
	ConsentStoreData     bool `json:"consent_store_data" form:"consent_store_data"`
	ConsentAIProcessing  bool `json:"consent_ai_processing" form:"consent_ai_processing"`
}

func (r *StepOneRequest) Consents() model.Consents {
	return model.Consents{
		PrivacyPolicy: r.ConsentPrivacyPolicy,
		Terms:         r.ConsentTerms,
		StoreData:     r.ConsentStoreData,
		AIProcessing:  r.ConsentAIProcessing,
	}
}

func (r *StepOneRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Phone, validation.Length(0, 50)),
		validation.Field(&r.Company, validation.Length(0, 255)),
	)
}

// Fields is what gets stored for step 1 inside the session.
func (r *StepOneRequest) Fields() map[string]any {
	fields := map[string]any{
		"first_name":             r.FirstName,
		"last_name":              r.LastName,
		"email":                  r.Email,
		"consent_privacy_policy": r.ConsentPrivacyPolicy,
		"consent_terms":          r.ConsentTerms,
		"consent_store_data":     r.ConsentStoreData,
		"consent_ai_processing":  r.ConsentAIProcessing,
	}
	if r.Phone != "" {
		fields["phone"] = r.Phone
	}
	if r.Company != "" {
		fields["company"] = r.Company
	}
	return fields
}

type CVRequest struct {
	SessionID string        `json:"session_id" form:"session_id"`
	CVText    string        `json:"cv_text" form:"cv_text"`
	CVFile    *UploadedFile `json:"-" form:"-"`
}

func (r *CVRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SessionID, validation.Required, is.UUID),
		validation.Field(&r.CVText, validation.When(r.CVFile == nil, validation.Required.Error("cv_text or cv_file is required"))),
	)
}

type JobPostingRequest struct {
	SessionID      string        `json:"session_id" form:"session_id"`
	JobTitle       string        `json:"job_title" form:"job_title"`
	JobPosting     string        `json:"job_posting" form:"job_posting"`
	JobPostingFile *UploadedFile `json:"-" form:"-"`
}

func (r *JobPostingRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SessionID, validation.Required, is.UUID),
		validation.Field(&r.JobTitle, validation.Length(0, 255)),
		validation.Field(&r.JobPosting, validation.When(r.JobPostingFile == nil, validation.Required.Error("job_posting or job_posting_file is required"))),
	)
}

type CandidateFinalRequest struct {
	SessionID       string `json:"session_id" form:"session_id"`
	CompanyName     string `json:"company_name" form:"company_name"`
	CompanyResearch string `json:"company_research" form:"company_research"`
	TargetLanguage  string `json:"target_language" form:"target_language"`
}

func (r *CandidateFinalRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SessionID, validation.Required, is.UUID),
		validation.Field(&r.CompanyName, validation.Length(0, 255)),
		validation.Field(&r.TargetLanguage, validation.Match(languagePattern).Error("must be a language code such as en or pt-BR")),
	)
}

type InterviewerFinalRequest struct {
	SessionID string `json:"session_id" form:"session_id"`
	// criterion -> percent; values must add up to 100
	Weights        map[string]float64 `json:"weights" form:"-"`
	HardBlockers   []string           `json:"hard_blockers" form:"hard_blockers"`
	CVText         string             `json:"cv_text" form:"cv_text"`
	CVFile         *UploadedFile      `json:"-" form:"-"`
	TargetLanguage string             `json:"target_language" form:"target_language"`
}

func (r *InterviewerFinalRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SessionID, validation.Required, is.UUID),
		validation.Field(&r.Weights, validation.Required, validation.By(validWeights)),
		validation.Field(&r.HardBlockers, validation.Each(validation.Required, validation.Length(1, 255))),
		validation.Field(&r.TargetLanguage, validation.Match(languagePattern).Error("must be a language code such as en or pt-BR")),
	)
}

func validWeights(value interface{}) error {
	weights, _ := value.(map[string]float64)
	var total float64
	for criterion, w := range weights {
		if strings.TrimSpace(criterion) == "" {
			return errors.New("criterion names cannot be empty")
		}
		if w < 0 || w > 100 {
			return fmt.Errorf("weight for %q must be between 0 and 100", criterion)
		}
		total += w
	}
	if math.Abs(total-100) > 0.01 {
		return fmt.Errorf("weights must add up to 100, got %g", total)
	}
	return nil
}
