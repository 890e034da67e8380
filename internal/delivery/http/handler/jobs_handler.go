package handler

import (
	"context"

	"getjobs/internal/delivery/http/dto"
	"getjobs/internal/domain/job"
	"getjobs/internal/pkg/response"
	ucjob "getjobs/internal/usecase/job"

	"github.com/gofiber/fiber/v3"
)

type JobUsecase interface {
	Insert(ctx context.Context, in ucjob.InsertInput) (job.Posting, error)
	Update(ctx context.Context, id int64, f job.UpdateFields) (job.Posting, error)
	Delete(ctx context.Context, id int64) (job.Posting, error)
	GetByID(ctx context.Context, id int64) (job.Posting, error)
	Search(ctx context.Context, params ucjob.SearchParams) ([]job.Posting, error)
	GetUserJobView(ctx context.Context, email string) (job.UserJobView, error)
	MarkJobsOK(ctx context.Context, ownerID int64, ids []int64) (int64, error)
	RenewJob(ctx context.Context, ownerID, id int64) error
}

type JobsHandler struct {
	uc JobUsecase
}

func NewJobsHandler(uc JobUsecase) *JobsHandler {
	return &JobsHandler{uc: uc}
}

func (h *JobsHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.HandleSearch)
	r.Post("/", h.HandleCreate)
	r.Get("/:id", h.HandleGet)
	r.Put("/:id", h.HandleUpdate)
	r.Delete("/:id", h.HandleDelete)
}

func (h *JobsHandler) HandleSearch(c fiber.Ctx) error {
	limit, err := parseQueryIntStrict(c, "limit", 0)
	if err != nil {
		return badRequest(err)
	}
	offset, err := parseQueryIntStrict(c, "offset", 0)
	if err != nil {
		return badRequest(err)
	}
	remote, err := parseQueryBool(c, "remote")
	if err != nil {
		return badRequest(err)
	}

	postings, err := h.uc.Search(c.Context(), ucjob.SearchParams{
		Offset:   offset,
		Limit:    limit,
		Search:   c.Query("search"),
		Location: c.Query("location"),
		Remote:   remote,
	})
	if err != nil {
		return mapJobUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, "success", dto.NewJobListResponse(postings))
}

func (h *JobsHandler) HandleGet(c fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	p, err := h.uc.GetByID(c.Context(), id)
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "success", dto.NewJobResponse(p))
}

func (h *JobsHandler) HandleCreate(c fiber.Ctx) error {
	var req dto.CreateJobRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	p, err := h.uc.Insert(c.Context(), ucjob.InsertInput{
		Fields:      req.Fields(),
		PosterName:  req.PosterName(),
		PosterEmail: req.Email,
	})
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, "created", dto.NewJobResponse(p))
}

func (h *JobsHandler) HandleUpdate(c fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}
	var req dto.UpdateJobRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(err)
	}

	p, err := h.uc.Update(c.Context(), id, req.Fields())
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "updated", dto.NewJobResponse(p))
}

func (h *JobsHandler) HandleDelete(c fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return err
	}

	p, err := h.uc.Delete(c.Context(), id)
	if err != nil {
		return mapJobUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, "deleted", dto.NewJobResponse(p))
}
