package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fadilmartias/hireprep/internal/config"
	"github.com/fadilmartias/hireprep/internal/dto"
	"github.com/fadilmartias/hireprep/internal/metrics"
	"github.com/fadilmartias/hireprep/internal/model"
	"github.com/fadilmartias/hireprep/internal/prompt"
	"github.com/fadilmartias/hireprep/internal/repository"
	"github.com/fadilmartias/hireprep/internal/service"
	"github.com/fadilmartias/hireprep/internal/util"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/tidwall/gjson"
)

const (
	similarRolesLimit = 3
	embeddingTimeout  = 20 * time.Second
)

// FlowDefinition describes one wizard: its length and what the final step produces.
type FlowDefinition struct {
	UserType  model.UserType
	Steps     int
	Kind      string
	PromptKey string
}

var (
	CandidateFlow = FlowDefinition{
		UserType:  model.UserTypeCandidate,
		Steps:     4,
		Kind:      model.AnalysisKindCandidatePreparation,
		PromptKey: prompt.KeyCandidatePreparation,
	}
	InterviewerFlow = FlowDefinition{
		UserType:  model.UserTypeInterviewer,
		Steps:     3,
		Kind:      model.AnalysisKindInterviewerQuestions,
		PromptKey: prompt.KeyInterviewerQuestions,
	}
)

func FlowFor(userType model.UserType) (FlowDefinition, bool) {
	switch userType {
	case model.UserTypeCandidate:
		return CandidateFlow, true
	case model.UserTypeInterviewer:
		return InterviewerFlow, true
	}
	return FlowDefinition{}, false
}

type FlowDeps struct {
	Sessions     SessionRepository
	Candidates   CandidateRepository
	Interviewers InterviewerRepository
	Analyses     AnalysisRepository
	JobPostings  JobPostingRepository
	Builder      *AnalysisBuilder
	AI           AIClient
	// optional
	Files   FileStore
	Events  SessionEventPublisher
	Metrics *metrics.Metrics

	App              *config.AppConfig
	CVBucket         string
	JobPostingBucket string
}

// FlowUsecase drives the candidate and interviewer wizards. Every step loads the session,
// checks it may advance, merges the submitted fields and saves it back.
type FlowUsecase struct {
	FlowDeps
	now func() time.Time
}

func NewFlowUsecase(deps FlowDeps) *FlowUsecase {
	return &FlowUsecase{FlowDeps: deps, now: time.Now}
}

func (uc *FlowUsecase) StartCandidate(ctx context.Context, req *dto.StepOneRequest) (*dto.SessionResponse, error) {
	return uc.start(ctx, CandidateFlow, req)
}

func (uc *FlowUsecase) StartInterviewer(ctx context.Context, req *dto.StepOneRequest) (*dto.SessionResponse, error) {
	return uc.start(ctx, InterviewerFlow, req)
}

func (uc *FlowUsecase) start(ctx context.Context, flow FlowDefinition, req *dto.StepOneRequest) (res *dto.SessionResponse, err error) {
	defer func() { uc.Metrics.ObserveStep(string(flow.UserType), model.StepName(1), err) }()

	if err := uc.checkEnabled(flow); err != nil {
		return nil, err
	}
	consents := req.Consents()
	if missing := consents.Missing(); len(missing) > 0 {
		return nil, util.NewConsentError(missing)
	}
	if err := req.Validate(); err != nil {
		return nil, util.ValidationErrorFrom(err)
	}

	now := uc.now()
	consents.ConsentedAt = &now
	ownerID := uuid.New()

	switch flow.UserType {
	case model.UserTypeCandidate:
		candidate := &model.Candidate{
			ID:        ownerID,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Phone:     req.Phone,
			Consents:  consents,
		}
		if err := uc.Candidates.Create(ctx, candidate); err != nil {
			return nil, util.NewUpstreamError("failed to save candidate", err)
		}
	case model.UserTypeInterviewer:
		interviewer := &model.Interviewer{
			ID:        ownerID,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Phone:     req.Phone,
			Company:   req.Company,
			Consents:  consents,
		}
		if err := uc.Interviewers.Create(ctx, interviewer); err != nil {
			return nil, util.NewUpstreamError("failed to save interviewer", err)
		}
	}

	session := &model.Session{
		ID:          uuid.New(),
		UserType:    flow.UserType,
		OwnerID:     ownerID,
		CurrentStep: 1,
		Status:      model.SessionStatusInProgress,
		Data:        model.StepData{},
	}
	session.Data.Merge(model.StepName(1), req.Fields())
	if err := uc.Sessions.Create(ctx, session); err != nil {
		return nil, util.NewUpstreamError("failed to create session", err)
	}
	return dto.NewSessionResponse(session, flow.Steps), nil
}

// CandidateCV is candidate step 2.
func (uc *FlowUsecase) CandidateCV(ctx context.Context, req *dto.CVRequest) (res *dto.SessionResponse, err error) {
	const step = 2
	defer func() { uc.Metrics.ObserveStep(string(model.UserTypeCandidate), model.StepName(step), err) }()

	session, err := uc.prepareStep(ctx, CandidateFlow, step, req)
	if err != nil {
		return nil, err
	}
	text, upload, err := uc.readDocument(ctx, uc.CVBucket, session.OwnerID, "cv_file", req.CVText, req.CVFile)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{"cv_text": text}
	if upload != nil {
		fields["cv_file"] = upload
	}
	return uc.saveStep(ctx, CandidateFlow, session, step, fields)
}

// CandidateJobPosting is candidate step 3.
func (uc *FlowUsecase) CandidateJobPosting(ctx context.Context, req *dto.JobPostingRequest) (*dto.SessionResponse, error) {
	return uc.jobPostingStep(ctx, CandidateFlow, 3, req)
}

// InterviewerJobPosting is interviewer step 2.
func (uc *FlowUsecase) InterviewerJobPosting(ctx context.Context, req *dto.JobPostingRequest) (*dto.SessionResponse, error) {
	return uc.jobPostingStep(ctx, InterviewerFlow, 2, req)
}

func (uc *FlowUsecase) jobPostingStep(ctx context.Context, flow FlowDefinition, step int, req *dto.JobPostingRequest) (res *dto.SessionResponse, err error) {
	defer func() { uc.Metrics.ObserveStep(string(flow.UserType), model.StepName(step), err) }()

	session, err := uc.prepareStep(ctx, flow, step, req)
	if err != nil {
		return nil, err
	}
	text, upload, err := uc.readDocument(ctx, uc.JobPostingBucket, session.OwnerID, "job_posting_file", req.JobPosting, req.JobPostingFile)
	if err != nil {
		return nil, err
	}

	posting := &model.JobPosting{
		ID:        uuid.New(),
		SessionID: session.ID,
		OwnerID:   session.OwnerID,
		Title:     req.JobTitle,
		Content:   text,
	}
	fields := map[string]any{
		"job_title":      req.JobTitle,
		"job_posting":    text,
		"job_posting_id": posting.ID.String(),
	}
	if upload != nil {
		posting.ObjectKey, _ = upload["object_key"].(string)
		fields["job_posting_file"] = upload
	}
	if err := uc.JobPostings.Create(ctx, posting); err != nil {
		return nil, util.NewUpstreamError("failed to save job posting", err)
	}
	uc.embedPosting(ctx, posting)

	return uc.saveStep(ctx, flow, session, step, fields)
}

// CandidateFinal is candidate step 4: company context and language, then the preparation analysis.
func (uc *FlowUsecase) CandidateFinal(ctx context.Context, req *dto.CandidateFinalRequest) (res *dto.SessionResponse, err error) {
	step := CandidateFlow.Steps
	defer func() { uc.Metrics.ObserveStep(string(model.UserTypeCandidate), model.StepName(step), err) }()

	session, err := uc.prepareStep(ctx, CandidateFlow, step, req)
	if err != nil {
		return nil, err
	}
	language := uc.targetLanguage(req.TargetLanguage)
	research := strings.TrimSpace(req.CompanyResearch)

	data := cloneData(session.Data)
	data.Merge(model.StepName(step), map[string]any{
		"company_name":     req.CompanyName,
		"company_research": research,
		"target_language":  language,
	})

	in := AnalysisInput{
		Key:      CandidateFlow.PromptKey,
		Language: language,
		Values: map[string]string{
			"target_language":  language,
			"job_posting":      data.Field(model.StepName(3), "job_posting"),
			"cv_text":          data.Field(model.StepName(2), "cv_text"),
			"company_name":     req.CompanyName,
			"company_research": research,
		},
		CompanyResearch: research != "",
	}
	return uc.complete(ctx, CandidateFlow, session, data, in)
}

// InterviewerFinal is interviewer step 3: weights, blockers and an optional CV, then the question suggestions.
func (uc *FlowUsecase) InterviewerFinal(ctx context.Context, req *dto.InterviewerFinalRequest) (res *dto.SessionResponse, err error) {
	step := InterviewerFlow.Steps
	defer func() { uc.Metrics.ObserveStep(string(model.UserTypeInterviewer), model.StepName(step), err) }()

	session, err := uc.prepareStep(ctx, InterviewerFlow, step, req)
	if err != nil {
		return nil, err
	}
	cvText, upload, err := uc.readDocument(ctx, uc.CVBucket, session.OwnerID, "cv_file", req.CVText, req.CVFile)
	if err != nil {
		return nil, err
	}
	language := uc.targetLanguage(req.TargetLanguage)
	blockers := req.HardBlockers
	if blockers == nil {
		blockers = []string{}
	}

	fields := map[string]any{
		"weights":         req.Weights,
		"hard_blockers":   blockers,
		"cv_text":         cvText,
		"target_language": language,
	}
	if upload != nil {
		fields["cv_file"] = upload
	}
	data := cloneData(session.Data)
	data.Merge(model.StepName(step), fields)

	if cvText == "" {
		cvText = "(no CV provided)"
	}
	in := AnalysisInput{
		Key:      InterviewerFlow.PromptKey,
		Language: language,
		Values: map[string]string{
			"target_language": language,
			"job_posting":     data.Field(model.StepName(2), "job_posting"),
			"weights":         formatWeights(req.Weights),
			"hard_blockers":   formatList(blockers),
			"cv_text":         cvText,
			"similar_roles":   formatRoles(uc.similarRoles(ctx, session)),
		},
	}
	return uc.complete(ctx, InterviewerFlow, session, data, in)
}

// GetSession returns the session with its analysis once completed.
func (uc *FlowUsecase) GetSession(ctx context.Context, userType model.UserType, rawID string) (*dto.SessionResponse, error) {
	flow, ok := FlowFor(userType)
	if !ok {
		return nil, util.NewNotFoundError("flow not found", nil)
	}
	if err := uc.checkEnabled(flow); err != nil {
		return nil, err
	}
	session, err := uc.loadSession(ctx, flow, rawID)
	if err != nil {
		return nil, err
	}

	res := dto.NewSessionResponse(session, flow.Steps)
	if session.Status == model.SessionStatusCompleted {
		analysis, err := uc.Analyses.FindLatestBySession(ctx, session.ID, flow.Kind)
		switch {
		case err == nil:
			res.Analysis = dto.NewAnalysisResponse(analysis)
		case !errors.Is(err, repository.ErrNotFound):
			return nil, util.NewUpstreamError("failed to load analysis", err)
		}
	}
	return res, nil
}

// Suggestions returns the interview questions generated at the final interviewer step.
func (uc *FlowUsecase) Suggestions(ctx context.Context, rawID string) (*dto.SuggestionsResponse, error) {
	if err := uc.checkEnabled(InterviewerFlow); err != nil {
		return nil, err
	}
	session, err := uc.loadSession(ctx, InterviewerFlow, rawID)
	if err != nil {
		return nil, err
	}
	analysis, err := uc.Analyses.FindLatestBySession(ctx, session.ID, InterviewerFlow.Kind)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, util.NewNotFoundError(fmt.Sprintf("suggestions are not ready, complete step %d first", InterviewerFlow.Steps), err)
		}
		return nil, util.NewUpstreamError("failed to load suggestions", err)
	}

	roles := []dto.SimilarRole{}
	for _, j := range uc.similarRoles(ctx, session) {
		roles = append(roles, dto.SimilarRole{ID: j.ID, Title: j.Title})
	}
	return &dto.SuggestionsResponse{
		SessionID:    session.ID,
		Score:        analysis.Score,
		Suggestions:  json.RawMessage(analysis.Result),
		SimilarRoles: roles,
		Provider:     analysis.Provider,
		Model:        analysis.Model,
		GeneratedAt:  analysis.CreatedAt,
	}, nil
}

type validatable interface {
	Validate() error
}

// prepareStep validates the request and loads a session that may take step.
func (uc *FlowUsecase) prepareStep(ctx context.Context, flow FlowDefinition, step int, req validatable) (*model.Session, error) {
	if err := uc.checkEnabled(flow); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, util.ValidationErrorFrom(err)
	}

	session, err := uc.loadSession(ctx, flow, requestSessionID(req))
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionStatusCompleted {
		return nil, util.NewConflictError("session is already completed")
	}
	if session.CurrentStep < step-1 {
		return nil, util.NewConflictError(fmt.Sprintf("step %d must be completed before step %d", session.CurrentStep+1, step))
	}
	return session, nil
}

func requestSessionID(req validatable) string {
	switch r := req.(type) {
	case *dto.CVRequest:
		return r.SessionID
	case *dto.JobPostingRequest:
		return r.SessionID
	case *dto.CandidateFinalRequest:
		return r.SessionID
	case *dto.InterviewerFinalRequest:
		return r.SessionID
	}
	return ""
}

func (uc *FlowUsecase) loadSession(ctx context.Context, flow FlowDefinition, rawID string) (*model.Session, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, util.NewValidationError("invalid request", map[string]string{"session_id": "must be a valid UUID"})
	}
	session, err := uc.Sessions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, util.NewNotFoundError("session not found", err)
		}
		return nil, util.NewUpstreamError("failed to load session", err)
	}
	if session.UserType != flow.UserType {
		return nil, util.NewNotFoundError("session not found", nil)
	}
	return session, nil
}

// saveStep merges fields into an intermediate step. Current step never moves backwards.
func (uc *FlowUsecase) saveStep(ctx context.Context, flow FlowDefinition, session *model.Session, step int, fields map[string]any) (*dto.SessionResponse, error) {
	session.Data = cloneData(session.Data)
	session.Data.Merge(model.StepName(step), fields)
	if step > session.CurrentStep {
		session.CurrentStep = step
	}
	if err := uc.Sessions.Save(ctx, session); err != nil {
		return nil, util.NewUpstreamError("failed to save session", err)
	}
	return dto.NewSessionResponse(session, flow.Steps), nil
}

// complete runs the analysis and only then persists the final step. A failed AI call leaves
// the session exactly as it was so the caller can resubmit.
func (uc *FlowUsecase) complete(ctx context.Context, flow FlowDefinition, session *model.Session, data model.StepData, in AnalysisInput) (*dto.SessionResponse, error) {
	built, err := uc.Builder.Build(ctx, in)
	if err != nil {
		return nil, err
	}
	aiRes, err := uc.AI.Generate(ctx, service.AIRequest{Prompt: built.Text})
	if err != nil {
		return nil, util.NewUpstreamError("analysis failed, please resubmit", err)
	}

	result := util.CleanJSON(aiRes.Text)
	if !gjson.Valid(result) {
		raw, _ := json.Marshal(map[string]string{"raw": aiRes.Text})
		result = string(raw)
	}
	score, _ := service.ExtractScore(aiRes.Text)

	analysis := &model.Analysis{
		ID:            uuid.New(),
		SessionID:     session.ID,
		OwnerType:     flow.UserType,
		OwnerID:       session.OwnerID,
		Kind:          flow.Kind,
		PromptKey:     built.Key,
		PromptVersion: built.Version,
		Language:      in.Language,
		Provider:      aiRes.Provider,
		Model:         aiRes.Model,
		Status:        "completed",
		Result:        result,
		Score:         score,
		InputTokens:   aiRes.InputTokens,
		OutputTokens:  aiRes.OutputTokens,
		Cost:          aiRes.Cost,
	}
	if err := uc.Analyses.Create(ctx, analysis); err != nil {
		return nil, util.NewUpstreamError("failed to save analysis", err)
	}

	now := uc.now()
	session.Data = data
	session.CurrentStep = flow.Steps
	session.Status = model.SessionStatusCompleted
	session.CompletedAt = &now
	if err := uc.Sessions.Save(ctx, session); err != nil {
		return nil, util.NewUpstreamError("failed to save session", err)
	}

	if uc.Events != nil {
		err := uc.Events.PublishSessionUpdate(session.ID.String(), map[string]any{
			"session_id":  session.ID.String(),
			"user_type":   session.UserType,
			"status":      session.Status,
			"analysis_id": analysis.ID.String(),
			"score":       analysis.Score,
		})
		if err != nil {
			log.Printf("publish session %s update: %v", session.ID, err)
		}
	}

	res := dto.NewSessionResponse(session, flow.Steps)
	res.Analysis = dto.NewAnalysisResponse(analysis)
	return res, nil
}

// readDocument resolves a text-or-file field. An uploaded file wins over pasted text;
// its text is extracted and the original is stored when storage is configured.
func (uc *FlowUsecase) readDocument(ctx context.Context, bucket string, ownerID uuid.UUID, field, text string, file *dto.UploadedFile) (string, map[string]any, error) {
	if file == nil {
		return strings.TrimSpace(text), nil, nil
	}
	if limit := uc.App.MaxUploadSizeBytes(); limit > 0 && int64(len(file.Data)) > limit {
		return "", nil, util.NewValidationError("invalid request", map[string]string{
			field: fmt.Sprintf("file is too large (max %dMB)", uc.App.MaxUploadSizeMB),
		})
	}

	mime := util.DetectMime(file.Filename, file.ContentType)
	extracted, err := util.ExtractText(mime, file.Data)
	if err != nil {
		return "", nil, &util.AppError{
			Kind:    util.KindValidation,
			Message: "invalid request",
			Details: map[string]string{field: "could not read text from file"},
			Err:     err,
		}
	}

	meta := map[string]any{
		"filename":  file.Filename,
		"mime_type": mime,
		"size":      len(file.Data),
	}
	if uc.Files != nil {
		key, err := uc.Files.Upload(ctx, bucket, ownerID.String(), file.Filename, mime, file.Data)
		if err != nil {
			return "", nil, util.NewUpstreamError("failed to store upload", err)
		}
		if key != "" {
			meta["object_key"] = key
		}
	}
	return extracted, meta, nil
}

// embedPosting is best-effort: a posting without an embedding is just left out of similarity search.
func (uc *FlowUsecase) embedPosting(ctx context.Context, posting *model.JobPosting) {
	ctx, cancel := context.WithTimeout(ctx, embeddingTimeout)
	defer cancel()

	vec, err := uc.AI.GenerateEmbedding(ctx, posting.Content)
	if err != nil {
		log.Printf("embed job posting %s: %v", posting.ID, err)
		return
	}
	emb := pgvector.NewVector(vec)
	if err := uc.JobPostings.UpdateEmbedding(ctx, posting.ID, emb); err != nil {
		log.Printf("store job posting %s embedding: %v", posting.ID, err)
		return
	}
	posting.Embedding = &emb
}

func (uc *FlowUsecase) similarRoles(ctx context.Context, session *model.Session) []model.JobPosting {
	postingID, err := uuid.Parse(session.Data.Field(model.StepName(2), "job_posting_id"))
	if err != nil {
		return nil
	}
	posting, err := uc.JobPostings.FindByID(ctx, postingID)
	if err != nil {
		log.Printf("load job posting %s: %v", postingID, err)
		return nil
	}
	if posting.Embedding == nil {
		return nil
	}
	similar, err := uc.JobPostings.SearchSimilar(ctx, *posting.Embedding, session.ID, similarRolesLimit)
	if err != nil {
		log.Printf("similar roles for session %s: %v", session.ID, err)
		return nil
	}
	return similar
}

func (uc *FlowUsecase) checkEnabled(flow FlowDefinition) error {
	f := uc.App.Features
	if (flow.UserType == model.UserTypeCandidate && !f.CandidateFlow) ||
		(flow.UserType == model.UserTypeInterviewer && !f.InterviewerFlow) {
		return util.NewNotFoundError(fmt.Sprintf("%s flow is disabled", flow.UserType), nil)
	}
	return nil
}

// targetLanguage honours the requested language only when translation is switched on.
func (uc *FlowUsecase) targetLanguage(requested string) string {
	if !uc.App.Features.Translation || requested == "" {
		return uc.App.DefaultLanguage
	}
	return requested
}

func cloneData(d model.StepData) model.StepData {
	if d == nil {
		return model.StepData{}
	}
	return d.Clone()
}

func formatWeights(weights map[string]float64) string {
	criteria := make([]string, 0, len(weights))
	for c := range weights {
		criteria = append(criteria, c)
	}
	sort.Strings(criteria)

	lines := make([]string, len(criteria))
	for i, c := range criteria {
		lines[i] = fmt.Sprintf("- %s: %s%%", c, strconv.FormatFloat(weights[c], 'f', -1, 64))
	}
	return strings.Join(lines, "\n")
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "- " + it
	}
	return strings.Join(lines, "\n")
}

func formatRoles(jobs []model.JobPosting) string {
	if len(jobs) == 0 {
		return "none"
	}
	lines := make([]string, len(jobs))
	for i, j := range jobs {
		title := j.Title
		if title == "" {
			title = "untitled role"
		}
		lines[i] = fmt.Sprintf("- %s", title)
	}
	return strings.Join(lines, "\n")
}
