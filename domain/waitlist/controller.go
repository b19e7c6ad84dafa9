package waitlist

import (
	"errors"
	"io"
	"net/http"

	"github.com/akeren/trustlink-waitlist/config/router"
	apperrors "github.com/akeren/trustlink-waitlist/pkg/errors"
)

// NewWaitlistController exposes the public signup endpoint.
func NewWaitlistController(service WaitlistService) *router.RESTController {
	return router.NewRESTController(
		"WaitlistController",
		"/api/waitlist",
		func(rs *router.RouterService, c *router.RESTController) {
			rs.AddPostHandler(c, "", signupHandler(service))
		},
	)
}

// NewAdminWaitlistController exposes the admin endpoints behind the x-admin-key gate.
func NewAdminWaitlistController(service WaitlistService, adminKey string) *router.RESTController {
	return router.NewRESTController(
		"AdminWaitlistController",
		"/api/admin/waitlist",
		func(rs *router.RouterService, c *router.RESTController) {
			requireAdmin := rs.AdminKeyMiddleware(adminKey)

			rs.AddGetHandler(c, "", listHandler(service), requireAdmin)
			rs.AddGetHandler(c, "stats", statsHandler(service), requireAdmin)
			rs.AddGetHandler(c, "export", exportHandler(service), requireAdmin)
			rs.AddPatchHandler(c, ":id/notify", notifyHandler(service), requireAdmin)
		},
	)
}

func signupHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		var req SignupRequest

		// An empty body is treated as an empty object so it reports the missing fields.
		if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			logger.Warn("Failed to bind signup request", "error", err, "fields", apperrors.FormatValidationErrors(err, &req))
			return router.BadRequestResult(msgInvalidBody, nil)
		}

		response, err := service.Signup(ctx.Request.Context(), &req)
		if err != nil {
			if apperrors.HTTPStatusCode(err) == http.StatusInternalServerError {
				return router.ErrorResult(http.StatusInternalServerError, msgJoinFailed, map[string]any{"message": msgTryLater})
			}
			return router.ResultFromError(err, msgJoinFailed)
		}

		return router.CreatedResult(response, msgSignupSuccess)
	}
}

func listHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		query := ParseListQuery(ctx.GetQuery)

		response, err := service.List(ctx.Request.Context(), query)
		if err != nil {
			return router.ResultFromError(err, msgFetchWaitlistFail)
		}

		return router.OKResult(response)
	}
}

func statsHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		response, err := service.Stats(ctx.Request.Context())
		if err != nil {
			return router.ResultFromError(err, msgFetchStatsFail)
		}

		return router.OKResult(response)
	}
}

func notifyHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		id, errResult := router.ParseIDParam(ctx, "id")
		if errResult != nil {
			return errResult
		}

		var req NotifyRequest

		// The body is optional; an absent one leaves notes untouched.
		if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			logger.Warn("Failed to bind notify request", "error", err)
			return router.BadRequestResult(msgInvalidBody, nil)
		}

		entry, err := service.MarkNotified(ctx.Request.Context(), id, &req)
		if err != nil {
			return router.ResultFromError(err, msgUpdateEntryFail)
		}

		return router.SuccessResult(entry)
	}
}

func exportHandler(service WaitlistService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		file, err := service.Export(ctx.Request.Context(), ctx.Query("actor_type"))
		if err != nil {
			return router.ResultFromError(err, msgExportFail)
		}

		return router.FileDownloadResult(file.Filename, file.ContentType, file.Content)
	}
}
