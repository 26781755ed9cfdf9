package echoapi

import (
	"net/http"
	"path"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/learning"
)

type resourceApi struct {
	svc      learning.Service
	conf     *core.Config
	validate *validator.Validate
}

func registerResourceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc learning.Service, conf *core.Config, validate *validator.Validate) {
	api := resourceApi{
		svc:      svc,
		conf:     conf,
		validate: validate,
	}

	rg := g.Group("/resources", jwt)
	rg.POST("", api.create, teacherMiddleware())
	rg.GET("", api.query)
	rg.DELETE("", api.destroyMultiple, adminMiddleware())

	dg := rg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/permissions", api.permissions)

	dg.POST("/collaborators", api.addCollaborator)
	dg.PUT("/collaborators/:userID", api.changeCollaboratorRole)
	dg.DELETE("/collaborators/:userID", api.removeCollaborator)

	dg.POST("/attachment", api.uploadAttachment)
	dg.GET("/attachment", api.downloadAttachment)

	dg.POST("/favourite", api.toggleFavourite)

	dg.POST("/objectives", api.attachObjective)
	dg.DELETE("/objectives/:objectiveID", api.detachObjective)
}

func (api *resourceApi) getWithPerm(ctx echo.Context, perm learning.Permission) (learning.Resource, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return learning.Resource{}, err
	}

	res, err := api.svc.GetResource(ctx.Request().Context(), learning.GetFilter{ID: ctx.Param("id")})
	if err != nil {
		return learning.Resource{}, errors.Wrap(err, "finding resource")
	}

	perms := res.Permissions(claims.Subject)
	if claims.IsAdmin || perms.Has(perm) {
		return res, nil
	}
	if perms.Has(learning.PermView) {
		return learning.Resource{}, errHttpForbidden
	}
	return learning.Resource{}, errHttpNotFound
}

// Handlers

func (api *resourceApi) create(ctx echo.Context) error {
	var data learning.NewResource
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResource")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	res, err := api.svc.CreateResource(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating resource")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *resourceApi) query(ctx echo.Context) error {
	filter := new(learning.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []learning.Resource{})
	}
	filter.Clean()

	// link candidates for an activity the user is editing
	if activityID := ctx.QueryParam("reusable_for_activity"); activityID != "" {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		filter.ReusableForActivity = activityID
		filter.ReusableBy = claims.Subject
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)

	resources, err := api.svc.QueryResources(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying resources")
	}
	if resources == nil {
		resources = []learning.Resource{}
	}
	return ctx.JSON(http.StatusOK, resources)
}

func (api *resourceApi) retrieve(ctx echo.Context) error {
	res, err := api.getWithPerm(ctx, learning.PermView)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *resourceApi) update(ctx echo.Context) error {
	res, err := api.getWithPerm(ctx, learning.PermChange)
	if err != nil {
		return err
	}

	var data learning.UpdateResource
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateResource")
	}

	res, err = api.svc.UpdateResource(ctx.Request().Context(), res.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating resource")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *resourceApi) destroy(ctx echo.Context) error {
	res, err := api.getWithPerm(ctx, learning.PermDelete)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteResources(ctx.Request().Context(), res.ID); err != nil {
		return errors.Wrap(err, "deleting resource")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *resourceApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.DeleteResources(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting resources")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *resourceApi) permissions(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	res, err := api.svc.GetResource(ctx.Request().Context(), learning.GetFilter{ID: ctx.Param("id")})
	if err != nil {
		return errors.Wrap(err, "finding resource")
	}
	return ctx.JSON(http.StatusOK, PermissionsResponse{Permissions: res.Permissions(claims.Subject).Slice()})
}

func (api *resourceApi) addCollaborator(ctx echo.Context) error {
	res, err := api.getWithPerm(ctx, learning.PermAddCollaborator)
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

	if err := api.svc.AddResourceCollaborator(ctx.Request().Context(), res.ID, data.UserID, data.Role); err != nil {
		return errors.Wrap(err, "adding collaborator")
	}
	return ctx.NoContent(http.StatusCreated)
}

func (api *resourceApi) changeCollaboratorRole(ctx echo.Context) error {
	res, err := api.getWithPerm(ctx, learning.PermChangeCollaborator)
	if err != nil {
		return err
	}

	var data CollaboratorRoleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CollaboratorRoleRequest")
	}

	if err := api.svc.ChangeResourceCollaboratorRole(ctx.Request().Context(), res.ID, ctx.Param("userID"), data.Role); err != nil {
		return errors.Wrap(err, "changing collaborator role")
	}
	return ctx.NoContent(http.StatusOK)
}

func (api *resourceApi) removeCollaborator(ctx echo.Context) error {
	res, err := api.getWithPerm(ctx, learning.PermDeleteCollaborator)
	if err != nil {
		return err
	}
	if err := api.svc.RemoveResourceCollaborator(ctx.Request().Context(), res.ID, ctx.Param("userID")); err != nil {
		return errors.Wrap(err, "removing collaborator")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *resourceApi) uploadAttachment(ctx echo.Context) error {
	res, err := api.getWithPerm(ctx, learning.PermChange)
	if err != nil {
		return err
	}

	fileHeader, err := ctx.FormFile("attachment")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "attachment", Error: "no file supplied"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return errors.Wrap(err, "opening upload")
	}
	defer func() { _ = file.Close() }()

	res, err = api.svc.SaveResourceAttachment(ctx.Request().Context(), res.ID, fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		return errors.Wrap(err, "saving attachment")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *resourceApi) downloadAttachment(ctx echo.Context) error {
	res, err := api.getWithPerm(ctx, learning.PermView)
	if err != nil {
		return err
	}

	file, name, err := api.svc.OpenResourceAttachment(ctx.Request().Context(), res.ID)
	if err != nil {
		return errors.Wrap(err, "opening attachment")
	}
	defer func() { _ = file.Close() }()

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+path.Base(name)+`"`)
	return ctx.Stream(http.StatusOK, echo.MIMEOctetStream, file)
}

func (api *resourceApi) toggleFavourite(ctx echo.Context) error {
	res, err := api.getWithPerm(ctx, learning.PermView)
	if err != nil {
		return err
	}
	claims, _ := getContextClaims(ctx)

	favourite, err := api.svc.ToggleResourceFavourite(ctx.Request().Context(), res.ID, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "toggling favourite")
	}
	return ctx.JSON(http.StatusOK, FavouriteResponse{Favourite: favourite})
}

func (api *resourceApi) attachObjective(ctx echo.Context) error {
	res, err := api.getWithPerm(ctx, learning.PermAddObjective)
	if err != nil {
		return err
	}

	var data learning.AttachObjective
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AttachObjective")
	}

	eo, err := api.svc.AttachObjectiveTo(ctx.Request().Context(), learning.KindResource, res.ID, data)
	if err != nil {
		return errors.Wrap(err, "attaching objective")
	}
	return ctx.JSON(http.StatusCreated, eo)
}

func (api *resourceApi) detachObjective(ctx echo.Context) error {
	res, err := api.getWithPerm(ctx, learning.PermDeleteObjective)
	if err != nil {
		return err
	}
	if err := api.svc.DetachObjectiveFrom(ctx.Request().Context(), learning.KindResource, res.ID, ctx.Param("objectiveID")); err != nil {
		return errors.Wrap(err, "detaching objective")
	}
	return ctx.NoContent(http.StatusNoContent)
}
