package handler

import (
	"github.com/fadilmartias/hireprep/internal/dto"
	"github.com/fadilmartias/hireprep/internal/model"
	"github.com/fadilmartias/hireprep/internal/usecase"
	"github.com/fadilmartias/hireprep/internal/util"
	"github.com/gofiber/fiber/v2"
)

type InterviewerHandler struct {
	uc        *usecase.FlowUsecase
	maxUpload int64
}

func NewInterviewerHandler(uc *usecase.FlowUsecase, maxUpload int64) *InterviewerHandler {
	return &InterviewerHandler{uc: uc, maxUpload: maxUpload}
}

func (h *InterviewerHandler) RegisterRoutes(r fiber.Router) {
	g := r.Group("/interviewer")
	g.Post("/step1", h.Step1)
	g.Post("/step2", h.Step2)
	g.Post("/step3", h.Step3)
	g.Get("/step3/suggestions/:session_id", h.Suggestions)
	g.Get("/session/:session_id", h.Session)
}

func (h *InterviewerHandler) Step1(c *fiber.Ctx) error {
	var req dto.StepOneRequest
	if err := parseBody(c, &req); err != nil {
		return util.HandleError(c, err)
	}
	res, err := h.uc.StartInterviewer(c.UserContext(), &req)
	if err != nil {
		return util.HandleError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Interviewer session created",
		Data:    res,
	})
}

func (h *InterviewerHandler) Step2(c *fiber.Ctx) error {
	var req dto.JobPostingRequest
	if err := parseBody(c, &req); err != nil {
		return util.HandleError(c, err)
	}
	file, err := formFile(c, "job_posting_file", h.maxUpload)
	if err != nil {
		return util.HandleError(c, err)
	}
	req.JobPostingFile = file

	res, err := h.uc.InterviewerJobPosting(c.UserContext(), &req)
	if err != nil {
		return util.HandleError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Job posting saved",
		Data:    res,
	})
}

func (h *InterviewerHandler) Step3(c *fiber.Ctx) error {
	var req dto.InterviewerFinalRequest
	if err := parseBody(c, &req); err != nil {
		return util.HandleError(c, err)
	}
	if isMultipart(c) {
		if err := jsonFormValue(c, "weights", &req.Weights); err != nil {
			return util.HandleError(c, err)
		}
	}
	file, err := formFile(c, "cv_file", h.maxUpload)
	if err != nil {
		return util.HandleError(c, err)
	}
	req.CVFile = file

	res, err := h.uc.InterviewerFinal(c.UserContext(), &req)
	if err != nil {
		return util.HandleError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Interview suggestions ready",
		Data:    res,
	})
}

func (h *InterviewerHandler) Suggestions(c *fiber.Ctx) error {
	res, err := h.uc.Suggestions(c.UserContext(), c.Params("session_id"))
	if err != nil {
		return util.HandleError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get suggestions",
		Data:    res,
	})
}

func (h *InterviewerHandler) Session(c *fiber.Ctx) error {
	res, err := h.uc.GetSession(c.UserContext(), model.UserTypeInterviewer, c.Params("session_id"))
	if err != nil {
		return util.HandleError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get session",
		Data:    res,
	})
}
