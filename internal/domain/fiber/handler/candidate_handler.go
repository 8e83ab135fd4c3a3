package handler

import (
	"github.com/fadilmartias/hireprep/internal/dto"
	"github.com/fadilmartias/hireprep/internal/model"
	"github.com/fadilmartias/hireprep/internal/usecase"
	"github.com/fadilmartias/hireprep/internal/util"
	"github.com/gofiber/fiber/v2"
)

type CandidateHandler struct {
	uc        *usecase.FlowUsecase
	maxUpload int64
}

func NewCandidateHandler(uc *usecase.FlowUsecase, maxUpload int64) *CandidateHandler {
	return &CandidateHandler{uc: uc, maxUpload: maxUpload}
}

func (h *CandidateHandler) RegisterRoutes(r fiber.Router) {
	g := r.Group("/candidate")
	g.Post("/step1", h.Step1)
	g.Post("/step2", h.Step2)
	g.Post("/step3", h.Step3)
	g.Post("/step4", h.Step4)
	g.Get("/session/:session_id", h.Session)
}

func (h *CandidateHandler) Step1(c *fiber.Ctx) error {
	var req dto.StepOneRequest
	if err := parseBody(c, &req); err != nil {
		return util.HandleError(c, err)
	}
	res, err := h.uc.StartCandidate(c.UserContext(), &req)
	if err != nil {
		return util.HandleError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Candidate session created",
		Data:    res,
	})
}

func (h *CandidateHandler) Step2(c *fiber.Ctx) error {
	var req dto.CVRequest
	if err := parseBody(c, &req); err != nil {
		return util.HandleError(c, err)
	}
	file, err := formFile(c, "cv_file", h.maxUpload)
	if err != nil {
		return util.HandleError(c, err)
	}
	req.CVFile = file

	res, err := h.uc.CandidateCV(c.UserContext(), &req)
	if err != nil {
		return util.HandleError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "CV saved",
		Data:    res,
	})
}

func (h *CandidateHandler) Step3(c *fiber.Ctx) error {
	var req dto.JobPostingRequest
	if err := parseBody(c, &req); err != nil {
		return util.HandleError(c, err)
	}
	file, err := formFile(c, "job_posting_file", h.maxUpload)
	if err != nil {
		return util.HandleError(c, err)
	}
	req.JobPostingFile = file

	res, err := h.uc.CandidateJobPosting(c.UserContext(), &req)
	if err != nil {
		return util.HandleError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Job posting saved",
		Data:    res,
	})
}

func (h *CandidateHandler) Step4(c *fiber.Ctx) error {
	var req dto.CandidateFinalRequest
	if err := parseBody(c, &req); err != nil {
		return util.HandleError(c, err)
	}
	res, err := h.uc.CandidateFinal(c.UserContext(), &req)
	if err != nil {
		return util.HandleError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Preparation analysis ready",
		Data:    res,
	})
}

func (h *CandidateHandler) Session(c *fiber.Ctx) error {
	res, err := h.uc.GetSession(c.UserContext(), model.UserTypeCandidate, c.Params("session_id"))
	if err != nil {
		return util.HandleError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get session",
		Data:    res,
	})
}
