package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/learning"
)

type activityApi struct {
	svc      learning.Service
	validate *validator.Validate
}

func registerActivityAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc learning.Service, validate *validator.Validate) {
	api := activityApi{
		svc:      svc,
		validate: validate,
	}

	ag := g.Group("/activities", jwt)
	ag.POST("", api.create, teacherMiddleware())
	ag.GET("", api.query)
	ag.DELETE("", api.destroyMultiple, adminMiddleware())

	dg := ag.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/permissions", api.permissions)

	dg.POST("/collaborators", api.addCollaborator)
	dg.PUT("/collaborators/:userID", api.changeCollaboratorRole)
	dg.DELETE("/collaborators/:userID", api.removeCollaborator)

	dg.POST("/resources", api.addResource)
	dg.DELETE("/resources/:resourceID", api.removeResource)

	dg.POST("/favourite", api.toggleFavourite)

	dg.POST("/objectives", api.attachObjective)
	dg.DELETE("/objectives/:objectiveID", api.detachObjective)
}

func (api *activityApi) getWithPerm(ctx echo.Context, perm learning.Permission) (learning.Activity, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return learning.Activity{}, err
	}

	act, err := api.svc.GetActivity(ctx.Request().Context(), learning.GetFilter{ID: ctx.Param("id")})
	if err != nil {
		return learning.Activity{}, errors.Wrap(err, "finding activity")
	}

	perms := act.Permissions(claims.Subject)
	if claims.IsAdmin || perms.Has(perm) {
		return act, nil
	}
	if perms.Has(learning.PermView) {
		return learning.Activity{}, errHttpForbidden
	}
	return learning.Activity{}, errHttpNotFound
}

// Handlers

func (api *activityApi) create(ctx echo.Context) error {
	var data learning.NewActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewActivity")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	act, err := api.svc.CreateActivity(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating activity")
	}
	return ctx.JSON(http.StatusCreated, act)
}

func (api *activityApi) query(ctx echo.Context) error {
	filter := new(learning.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []learning.Activity{})
	}
	filter.Clean()

	// link candidates for a course the user is editing
	if courseID := ctx.QueryParam("reusable_for_course"); courseID != "" {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		filter.ReusableForCourse = courseID
		filter.ReusableBy = claims.Subject
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	activities, err := api.svc.QueryActivities(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying activities")
	}
	if activities == nil {
		activities = []learning.Activity{}
	}
	return ctx.JSON(http.StatusOK, activities)
}

func (api *activityApi) retrieve(ctx echo.Context) error {
	act, err := api.getWithPerm(ctx, learning.PermView)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, act)
}

func (api *activityApi) update(ctx echo.Context) error {
	act, err := api.getWithPerm(ctx, learning.PermChange)
	if err != nil {
		return err
	}

	var data learning.UpdateActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateActivity")
	}

	act, err = api.svc.UpdateActivity(ctx.Request().Context(), act.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating activity")
	}
	return ctx.JSON(http.StatusOK, act)
}

func (api *activityApi) destroy(ctx echo.Context) error {
	act, err := api.getWithPerm(ctx, learning.PermDelete)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteActivities(ctx.Request().Context(), act.ID); err != nil {
		return errors.Wrap(err, "deleting activity")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *activityApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.DeleteActivities(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting activities")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *activityApi) permissions(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	act, err := api.svc.GetActivity(ctx.Request().Context(), learning.GetFilter{ID: ctx.Param("id")})
	if err != nil {
		return errors.Wrap(err, "finding activity")
	}
	return ctx.JSON(http.StatusOK, PermissionsResponse{Permissions: act.Permissions(claims.Subject).Slice()})
}

func (api *activityApi) addCollaborator(ctx echo.Context) error {
	act, err := api.getWithPerm(ctx, learning.PermAddCollaborator)
	if err != nil {
		return err
	}

	var data CollaboratorRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CollaboratorRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	if err := api.svc.AddActivityCollaborator(ctx.Request().Context(), act.ID, data.UserID, data.Role); err != nil {
		return errors.Wrap(err, "adding collaborator")
	}
	return ctx.NoContent(http.StatusCreated)
}

func (api *activityApi) changeCollaboratorRole(ctx echo.Context) error {
	act, err := api.getWithPerm(ctx, learning.PermChangeCollaborator)
	if err != nil {
		return err
	}

	var data CollaboratorRoleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CollaboratorRoleRequest")
	}

	if err := api.svc.ChangeActivityCollaboratorRole(ctx.Request().Context(), act.ID, ctx.Param("userID"), data.Role); err != nil {
		return errors.Wrap(err, "changing collaborator role")
	}
	return ctx.NoContent(http.StatusOK)
}

func (api *activityApi) removeCollaborator(ctx echo.Context) error {
	act, err := api.getWithPerm(ctx, learning.PermDeleteCollaborator)
	if err != nil {
		return err
	}
	if err := api.svc.RemoveActivityCollaborator(ctx.Request().Context(), act.ID, ctx.Param("userID")); err != nil {
		return errors.Wrap(err, "removing collaborator")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *activityApi) addResource(ctx echo.Context) error {
	act, err := api.getWithPerm(ctx, learning.PermChange)
	if err != nil {
		return err
	}

	var data LinkRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LinkRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	if err := api.svc.AddResourceToActivity(ctx.Request().Context(), act.ID, data.ID); err != nil {
		return errors.Wrap(err, "adding resource")
	}
	return ctx.NoContent(http.StatusCreated)
}

func (api *activityApi) removeResource(ctx echo.Context) error {
	act, err := api.getWithPerm(ctx, learning.PermChange)
	if err != nil {
		return err
	}
	if err := api.svc.RemoveResourceFromActivity(ctx.Request().Context(), act.ID, ctx.Param("resourceID")); err != nil {
		return errors.Wrap(err, "removing resource")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *activityApi) toggleFavourite(ctx echo.Context) error {
	act, err := api.getWithPerm(ctx, learning.PermView)
	if err != nil {
		return err
	}
	claims, _ := getContextClaims(ctx)

	favourite, err := api.svc.ToggleActivityFavourite(ctx.Request().Context(), act.ID, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "toggling favourite")
	}
	return ctx.JSON(http.StatusOK, FavouriteResponse{Favourite: favourite})
}

func (api *activityApi) attachObjective(ctx echo.Context) error {
	act, err := api.getWithPerm(ctx, learning.PermAddObjective)
	if err != nil {
		return err
	}

	var data learning.AttachObjective
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AttachObjective")
	}

	eo, err := api.svc.AttachObjectiveTo(ctx.Request().Context(), learning.KindActivity, act.ID, data)
	if err != nil {
		return errors.Wrap(err, "attaching objective")
	}
	return ctx.JSON(http.StatusCreated, eo)
}

func (api *activityApi) detachObjective(ctx echo.Context) error {
	act, err := api.getWithPerm(ctx, learning.PermDeleteObjective)
	if err != nil {
		return err
	}
	if err := api.svc.DetachObjectiveFrom(ctx.Request().Context(), learning.KindActivity, act.ID, ctx.Param("objectiveID")); err != nil {
		return errors.Wrap(err, "detaching objective")
	}
	return ctx.NoContent(http.StatusNoContent)
}
