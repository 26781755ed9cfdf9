package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/learning"
)

type objectiveApi struct {
	svc      learning.Service
	validate *validator.Validate
}

func registerObjectiveAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc learning.Service, validate *validator.Validate) {
	api := objectiveApi{
		svc:      svc,
		validate: validate,
	}

	og := g.Group("/objectives", jwt)
	og.POST("", api.create, teacherMiddleware())
	og.GET("", api.query)
	og.GET("/:id", api.retrieve)
	og.DELETE("/:id", api.destroy, teacherMiddleware())
	og.DELETE("", api.destroyMultiple, adminMiddleware())

	// validation toggles live on the attachment, not the objective
	og.POST("/validations/:attachmentID", api.changeValidation)
}

// Handlers

func (api *objectiveApi) create(ctx echo.Context) error {
	var data learning.NewObjective
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewObjective")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	obj, err := api.svc.CreateObjective(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating objective")
	}
	return ctx.JSON(http.StatusCreated, obj)
}

func (api *objectiveApi) query(ctx echo.Context) error {
	filter := new(learning.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []learning.Objective{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	objectives, err := api.svc.QueryObjectives(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying objectives")
	}
	if objectives == nil {
		objectives = []learning.Objective{}
	}
	return ctx.JSON(http.StatusOK, objectives)
}

func (api *objectiveApi) retrieve(ctx echo.Context) error {
	obj, err := api.svc.GetObjective(ctx.Request().Context(), learning.GetFilter{ID: ctx.Param("id")})
	if err != nil {
		return errors.Wrap(err, "finding objective")
	}
	return ctx.JSON(http.StatusOK, obj)
}

func (api *objectiveApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	obj, err := api.svc.GetObjective(ctx.Request().Context(), learning.GetFilter{ID: ctx.Param("id")})
	if err != nil {
		return errors.Wrap(err, "finding objective")
	}
	// only the author or an admin may delete a global objective
	if obj.AuthorID != claims.Subject && !claims.IsAdmin {
		return errHttpForbidden
	}

	if err := api.svc.DeleteObjectives(ctx.Request().Context(), obj.ID); err != nil {
		return errors.Wrap(err, "deleting objective")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *objectiveApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.DeleteObjectives(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting objectives")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *objectiveApi) changeValidation(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data ValidationRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ValidationRequest")
	}

	// students toggle their own validation; teachers may toggle for a student
	studentID := claims.Subject
	if data.StudentID != "" && data.StudentID != claims.Subject {
		if !(claims.IsTeacher || claims.IsAdmin) {
			return errHttpForbidden
		}
		studentID = data.StudentID
	}

	change, err := api.svc.ChangeValidation(ctx.Request().Context(), ctx.Param("attachmentID"), studentID)
	if err != nil {
		return errors.Wrap(err, "changing validation")
	}
	return ctx.JSON(http.StatusOK, ValidationResponse{
		Validated: change.Add,
		StudentID: change.StudentID,
	})
}

type (
	ValidationRequest struct {
		StudentID string `json:"student_id"`
	}

	ValidationResponse struct {
		Validated bool   `json:"validated"`
		StudentID string `json:"student_id"`
	}
)
