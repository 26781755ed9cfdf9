package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/learning"
)

type courseApi struct {
	svc      learning.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc learning.Service, validate *validator.Validate) {
	api := courseApi{
		svc:      svc,
		validate: validate,
	}

	cg := g.Group("/courses", jwt)
	cg.POST("", api.create, teacherMiddleware())
	cg.GET("", api.query)
	cg.DELETE("", api.destroyMultiple, adminMiddleware())

	dg := cg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/permissions", api.permissions)

	dg.POST("/collaborators", api.addCollaborator)
	dg.PUT("/collaborators/:userID", api.changeCollaboratorRole)
	dg.DELETE("/collaborators/:userID", api.removeCollaborator)

	dg.POST("/register", api.register)
	dg.DELETE("/register", api.unsubscribe)
	dg.POST("/students", api.addStudent)
	dg.DELETE("/students/:studentID", api.removeStudent)

	dg.POST("/activities", api.addActivity)
	dg.DELETE("/activities/:activityID", api.removeActivity)
	dg.PUT("/activities/:activityID/rank", api.setActivityRank)
	dg.POST("/reorder", api.reorder)

	dg.POST("/favourite", api.toggleFavourite)
	dg.GET("/progression", api.progression)
	dg.GET("/progression/:studentID", api.studentProgression)

	dg.POST("/objectives", api.attachObjective)
	dg.DELETE("/objectives/:objectiveID", api.detachObjective)
}

// getWithPerm loads the course and ensures the context user holds perm on
// it. A course the user cannot even view stays a 404.
func (api *courseApi) getWithPerm(ctx echo.Context, perm learning.Permission) (learning.Course, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return learning.Course{}, err
	}

	course, err := api.svc.GetCourse(ctx.Request().Context(), learning.GetFilter{ID: ctx.Param("id")})
	if err != nil {
		return learning.Course{}, errors.Wrap(err, "finding course")
	}

	perms := course.Permissions(claims.Subject)
	if claims.IsAdmin || perms.Has(perm) {
		return course, nil
	}
	if perms.Has(learning.PermView) {
		return learning.Course{}, errHttpForbidden
	}
	return learning.Course{}, errHttpNotFound
}

// Handlers

func (api *courseApi) create(ctx echo.Context) error {
	var data learning.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	course, err := api.svc.CreateCourse(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, course)
}

func (api *courseApi) query(ctx echo.Context) error {
	filter := new(learning.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []learning.Course{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	courses, err := api.svc.QueryCourses(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []learning.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	course, err := api.getWithPerm(ctx, learning.PermView)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, course)
}

func (api *courseApi) update(ctx echo.Context) error {
	course, err := api.getWithPerm(ctx, learning.PermChange)
	if err != nil {
		return err
	}

	var data learning.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}

	course, err = api.svc.UpdateCourse(ctx.Request().Context(), course.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, course)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	course, err := api.getWithPerm(ctx, learning.PermDelete)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteCourses(ctx.Request().Context(), course.ID); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.DeleteCourses(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) permissions(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	course, err := api.svc.GetCourse(ctx.Request().Context(), learning.GetFilter{ID: ctx.Param("id")})
	if err != nil {
		return errors.Wrap(err, "finding course")
	}
	return ctx.JSON(http.StatusOK, PermissionsResponse{Permissions: course.Permissions(claims.Subject).Slice()})
}

func (api *courseApi) addCollaborator(ctx echo.Context) error {
	course, err := api.getWithPerm(ctx, learning.PermAddCollaborator)
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

	if err := api.svc.AddCourseCollaborator(ctx.Request().Context(), course.ID, data.UserID, data.Role); err != nil {
		return errors.Wrap(err, "adding collaborator")
	}
	return ctx.NoContent(http.StatusCreated)
}

func (api *courseApi) changeCollaboratorRole(ctx echo.Context) error {
	course, err := api.getWithPerm(ctx, learning.PermChangeCollaborator)
	if err != nil {
		return err
	}

	var data CollaboratorRoleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CollaboratorRoleRequest")
	}

	if err := api.svc.ChangeCourseCollaboratorRole(ctx.Request().Context(), course.ID, ctx.Param("userID"), data.Role); err != nil {
		return errors.Wrap(err, "changing collaborator role")
	}
	return ctx.NoContent(http.StatusOK)
}

func (api *courseApi) removeCollaborator(ctx echo.Context) error {
	course, err := api.getWithPerm(ctx, learning.PermDeleteCollaborator)
	if err != nil {
		return err
	}
	if err := api.svc.RemoveCourseCollaborator(ctx.Request().Context(), course.ID, ctx.Param("userID")); err != nil {
		return errors.Wrap(err, "removing collaborator")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) register(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Register(ctx.Request().Context(), ctx.Param("id"), claims.Subject); err != nil {
		return errors.Wrap(err, "registering")
	}
	return ctx.NoContent(http.StatusCreated)
}

func (api *courseApi) unsubscribe(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Unsubscribe(ctx.Request().Context(), ctx.Param("id"), claims.Subject); err != nil {
		return errors.Wrap(err, "unsubscribing")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) addStudent(ctx echo.Context) error {
	course, err := api.getWithPerm(ctx, learning.PermAddStudent)
	if err != nil {
		return err
	}

	var data StudentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StudentRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	if err := api.svc.RegisterStudent(ctx.Request().Context(), course.ID, data.StudentID, data.Locked); err != nil {
		return errors.Wrap(err, "registering student")
	}
	return ctx.NoContent(http.StatusCreated)
}

func (api *courseApi) removeStudent(ctx echo.Context) error {
	course, err := api.getWithPerm(ctx, learning.PermDeleteStudent)
	if err != nil {
		return err
	}
	if err := api.svc.UnsubscribeStudent(ctx.Request().Context(), course.ID, ctx.Param("studentID")); err != nil {
		return errors.Wrap(err, "unsubscribing student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) addActivity(ctx echo.Context) error {
	course, err := api.getWithPerm(ctx, learning.PermChange)
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

	if err := api.svc.AddActivityToCourse(ctx.Request().Context(), course.ID, data.ID); err != nil {
		return errors.Wrap(err, "adding activity")
	}
	return ctx.NoContent(http.StatusCreated)
}

func (api *courseApi) removeActivity(ctx echo.Context) error {
	course, err := api.getWithPerm(ctx, learning.PermChange)
	if err != nil {
		return err
	}
	if err := api.svc.RemoveActivityFromCourse(ctx.Request().Context(), course.ID, ctx.Param("activityID")); err != nil {
		return errors.Wrap(err, "removing activity")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) setActivityRank(ctx echo.Context) error {
	course, err := api.getWithPerm(ctx, learning.PermChange)
	if err != nil {
		return err
	}

	var data RankRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RankRequest")
	}

	if err := api.svc.SetActivityRank(ctx.Request().Context(), course.ID, ctx.Param("activityID"), data.Rank); err != nil {
		return errors.Wrap(err, "setting activity rank")
	}
	return ctx.NoContent(http.StatusOK)
}

func (api *courseApi) reorder(ctx echo.Context) error {
	course, err := api.getWithPerm(ctx, learning.PermChange)
	if err != nil {
		return err
	}
	if err := api.svc.ReorderCourseActivities(ctx.Request().Context(), course.ID); err != nil {
		return errors.Wrap(err, "reordering activities")
	}
	return ctx.NoContent(http.StatusOK)
}

func (api *courseApi) toggleFavourite(ctx echo.Context) error {
	course, err := api.getWithPerm(ctx, learning.PermView)
	if err != nil {
		return err
	}
	claims, _ := getContextClaims(ctx)

	favourite, err := api.svc.ToggleCourseFavourite(ctx.Request().Context(), course.ID, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "toggling favourite")
	}
	return ctx.JSON(http.StatusOK, FavouriteResponse{Favourite: favourite})
}

func (api *courseApi) progression(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	report, err := api.svc.Progression(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "computing progression")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *courseApi) studentProgression(ctx echo.Context) error {
	course, err := api.getWithPerm(ctx, learning.PermViewStudents)
	if err != nil {
		return err
	}

	report, err := api.svc.Progression(ctx.Request().Context(), course.ID, ctx.Param("studentID"))
	if err != nil {
		return errors.Wrap(err, "computing progression")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *courseApi) attachObjective(ctx echo.Context) error {
	course, err := api.getWithPerm(ctx, learning.PermAddObjective)
	if err != nil {
		return err
	}

	var data learning.AttachObjective
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AttachObjective")
	}

	eo, err := api.svc.AttachObjectiveTo(ctx.Request().Context(), learning.KindCourse, course.ID, data)
	if err != nil {
		return errors.Wrap(err, "attaching objective")
	}
	return ctx.JSON(http.StatusCreated, eo)
}

func (api *courseApi) detachObjective(ctx echo.Context) error {
	course, err := api.getWithPerm(ctx, learning.PermDeleteObjective)
	if err != nil {
		return err
	}
	if err := api.svc.DetachObjectiveFrom(ctx.Request().Context(), learning.KindCourse, course.ID, ctx.Param("objectiveID")); err != nil {
		return errors.Wrap(err, "detaching objective")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	PermissionsResponse struct {
		Permissions []learning.Permission `json:"permissions"`
	}

	CollaboratorRequest struct {
		UserID string                    `json:"user_id" validate:"required"`
		Role   learning.CollaboratorRole `json:"role"`
	}

	CollaboratorRoleRequest struct {
		Role learning.CollaboratorRole `json:"role"`
	}

	StudentRequest struct {
		StudentID string `json:"student_id" validate:"required"`
		Locked    bool   `json:"registration_locked"`
	}

	LinkRequest struct {
		ID string `json:"id" validate:"required"`
	}

	RankRequest struct {
		Rank int `json:"rank"`
	}

	FavouriteResponse struct {
		Favourite bool `json:"favourite"`
	}
)
