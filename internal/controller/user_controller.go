package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tutorlink-be/internal/dto"
	"tutorlink-be/internal/pkg/serverutils"
	"tutorlink-be/internal/service"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	GetProfile(ctx *fiber.Ctx) error
	UpdateProfile(ctx *fiber.Ctx) error
	ListSubjects(ctx *fiber.Ctx) error
	SetTutorSubject(ctx *fiber.Ctx) error
	RemoveTutorSubject(ctx *fiber.Ctx) error
	ListTutorsBySubject(ctx *fiber.Ctx) error
}

type userController struct {
	service service.IUserService
}

func NewUserController(service service.IUserService) IUserController {
	return &userController{service: service}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	// Public directory endpoints.
	r.Get("/subjects", c.ListSubjects)
	r.Get("/subjects/:subjectId/tutors", c.ListTutorsBySubject)
	r.Get("/users/:userId", c.GetProfile)

	h := r.Group("/profile", serverutils.JwtMiddleware)
	h.Patch("/", c.UpdateProfile)
	h.Put("/subjects", c.SetTutorSubject)
	h.Delete("/subjects/:subjectId", c.RemoveTutorSubject)
}

func (c *userController) GetProfile(ctx *fiber.Ctx) error {
	userId, err := uuid.Parse(ctx.Params("userId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}

	res, err := c.service.GetProfile(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Profile fetched", res))
}

func (c *userController) UpdateProfile(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromCtx(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateProfileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	res, err := c.service.UpdateProfile(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Profile updated", res))
}

func (c *userController) ListSubjects(ctx *fiber.Ctx) error {
	res, err := c.service.ListSubjects(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subjects fetched", res))
}

func (c *userController) SetTutorSubject(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromCtx(ctx)
	if err != nil {
		return err
	}

	var req dto.SetTutorSubjectRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	if err := c.service.SetTutorSubject(ctx.Context(), userId, &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subject offering saved", nil))
}

func (c *userController) RemoveTutorSubject(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromCtx(ctx)
	if err != nil {
		return err
	}
	subjectId, err := uuid.Parse(ctx.Params("subjectId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid subject id")
	}

	if err := c.service.RemoveTutorSubject(ctx.Context(), userId, subjectId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Subject offering removed", nil))
}

func (c *userController) ListTutorsBySubject(ctx *fiber.Ctx) error {
	subjectId, err := uuid.Parse(ctx.Params("subjectId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid subject id")
	}

	res, err := c.service.ListTutorsBySubject(ctx.Context(), subjectId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Tutors fetched", res))
}
