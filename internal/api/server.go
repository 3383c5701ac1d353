package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {

	// (GET /health)
	GetHealth(c *gin.Context)

	// (GET /events/{eventId}/invites/{id})
	GetInvite(c *gin.Context, eventId EventId, id openapi_types.UUID)

	// (PUT /events/{eventId}/invites/{id})
	PutInvite(c *gin.Context, eventId EventId, id openapi_types.UUID)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandler       func(*gin.Context, error, int)
}

type MiddlewareFunc func(c *gin.Context)

// GetHealth operation middleware
func (siw *ServerInterfaceWrapper) GetHealth(c *gin.Context) {
	for _, middleware := range siw.HandlerMiddlewares {
		middleware(c)
		if c.IsAborted() {
			return
		}
	}

	siw.Handler.GetHealth(c)
}

func (siw *ServerInterfaceWrapper) inviteParams(c *gin.Context) (EventId, openapi_types.UUID, bool) {
	var eventId EventId
	err := runtime.BindStyledParameterWithOptions("simple", "eventId", c.Param("eventId"), &eventId, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter eventId: %w", err), http.StatusBadRequest)
		return "", openapi_types.UUID{}, false
	}

	var id openapi_types.UUID
	err = runtime.BindStyledParameterWithOptions("simple", "id", c.Param("id"), &id, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandler(c, fmt.Errorf("Invalid format for parameter id: %w", err), http.StatusBadRequest)
		return "", openapi_types.UUID{}, false
	}

	for _, middleware := range siw.HandlerMiddlewares {
		middleware(c)
		if c.IsAborted() {
			return "", openapi_types.UUID{}, false
		}
	}
	return eventId, id, true
}

// GetInvite operation middleware
func (siw *ServerInterfaceWrapper) GetInvite(c *gin.Context) {
	eventId, id, ok := siw.inviteParams(c)
	if !ok {
		return
	}
	siw.Handler.GetInvite(c, eventId, id)
}

// PutInvite operation middleware
func (siw *ServerInterfaceWrapper) PutInvite(c *gin.Context) {
	eventId, id, ok := siw.inviteParams(c)
	if !ok {
		return
	}
	siw.Handler.PutInvite(c, eventId, id)
}

// GinServerOptions provides options for the Gin server.
type GinServerOptions struct {
	BaseURL      string
	Middlewares  []MiddlewareFunc
	ErrorHandler func(*gin.Context, error, int)
}

// RegisterHandlers creates http.Handler with routing matching OpenAPI spec.
func RegisterHandlers(router gin.IRouter, si ServerInterface) {
	RegisterHandlersWithOptions(router, si, GinServerOptions{})
}

// RegisterHandlersWithOptions creates http.Handler with additional options
func RegisterHandlersWithOptions(router gin.IRouter, si ServerInterface, options GinServerOptions) {
	errorHandler := options.ErrorHandler
	if errorHandler == nil {
		errorHandler = func(c *gin.Context, err error, statusCode int) {
			c.JSON(statusCode, Error{Message: err.Error()})
		}
	}

	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandler:       errorHandler,
	}

	router.GET(options.BaseURL+"/health", wrapper.GetHealth)
	router.GET(options.BaseURL+"/events/:eventId/invites/:id", wrapper.GetInvite)
	router.PUT(options.BaseURL+"/events/:eventId/invites/:id", wrapper.PutInvite)
}
