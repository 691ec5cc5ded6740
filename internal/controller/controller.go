package controller

import (
	"github.com/ahmadrazza2001/backend-trynbuy/internal/domain"
	"github.com/ahmadrazza2001/backend-trynbuy/internal/dto"
	"github.com/ahmadrazza2001/backend-trynbuy/internal/middleware"
	"github.com/ahmadrazza2001/backend-trynbuy/internal/service"
	pkgdto "github.com/ahmadrazza2001/backend-trynbuy/pkg/dto"
	"github.com/ahmadrazza2001/backend-trynbuy/pkg/errs"
	"github.com/ahmadrazza2001/backend-trynbuy/pkg/response"
	"github.com/ahmadrazza2001/backend-trynbuy/pkg/utils"
	"github.com/ahmadrazza2001/backend-trynbuy/pkg/validator"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type Controller struct {
	service service.ProductService
}

func CreateProductController(g *echo.Group, service service.ProductService, isLoggedIn echo.MiddlewareFunc) {
	c := Controller{
		service: service,
	}

	isVendor := middleware.RequireRole(domain.RoleVendor, domain.RoleAdmin)
	isAdmin := middleware.RequireRole(domain.RoleAdmin)

	products := g.Group("/products", isLoggedIn)
	products.POST("", c.AddProduct)
	products.GET("", c.GetAllProducts, isAdmin)
	products.GET("/search", c.SearchProducts)
	products.GET("/mine/public", c.GetMyPublicProducts)
	products.GET("/mine/private", c.GetMyPrivateProducts)
	products.PATCH("/:id", c.UpdateProduct, isVendor)
	products.PATCH("/:id/delete", c.DeleteProduct, isVendor)
	products.PATCH("/:id/make-private", c.MakePrivate)
	products.PATCH("/:id/make-public", c.MakePublic)
}

func callerID(e echo.Context) (string, bool) {
	userID, _, ok := utils.ExtractTokenUser(e)
	return userID, ok
}

// bindProductRequest returns errs.ErrClient for malformed bodies and the
// validator error for payloads that fail validation.
func bindProductRequest(e echo.Context, component string) (payload dto.ProductRequest, err error) {
	if err = e.Bind(&payload); err != nil {
		log.Ctx(e.Request().Context()).Error().Err(err).Str("component", component).Msg("")
		return payload, errs.ErrClient
	}

	if err = e.Validate(&payload); err != nil {
		return payload, err
	}

	return payload, nil
}

func writeBindError(e echo.Context, err error) error {
	if fields := validator.FieldErrors(err); fields != nil {
		return response.WriteErrorResponse(e, errs.ErrClient, fields)
	}
	return response.WriteErrorResponse(e, errs.ErrClient, nil)
}

func (c *Controller) AddProduct(e echo.Context) error {
	userID, ok := callerID(e)
	if !ok {
		return response.WriteErrorResponse(e, errs.ErrNotLoggedIn, nil)
	}

	payload, err := bindProductRequest(e, "AddProduct")
	if err != nil {
		return writeBindError(e, err)
	}

	id, err := c.service.AddProduct(e.Request().Context(), userID, payload)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteCreatedResponse(e, "Product created successfully", dto.ProductCreatedResponse{ID: id})
}

func (c *Controller) UpdateProduct(e echo.Context) error {
	userID, ok := callerID(e)
	if !ok {
		return response.WriteErrorResponse(e, errs.ErrNotLoggedIn, nil)
	}

	payload, err := bindProductRequest(e, "UpdateProduct")
	if err != nil {
		return writeBindError(e, err)
	}

	payload.ID = e.Param("id")
	err = c.service.UpdateProduct(e.Request().Context(), userID, payload)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "Product updated successfully", nil)
}

func (c *Controller) DeleteProduct(e echo.Context) error {
	userID, ok := callerID(e)
	if !ok {
		return response.WriteErrorResponse(e, errs.ErrNotLoggedIn, nil)
	}

	err := c.service.DeleteProduct(e.Request().Context(), userID, e.Param("id"))
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "Product deleted successfully", nil)
}

func (c *Controller) SearchProducts(e echo.Context) error {
	var param pkgdto.Filter
	if err := e.Bind(&param); err != nil {
		log.Ctx(e.Request().Context()).Error().Err(err).Str("component", "SearchProducts").Msg("")
		return response.WriteErrorResponse(e, errs.ErrClient, nil)
	}

	if err := e.Validate(&param); err != nil {
		return writeBindError(e, err)
	}

	data, err := c.service.SearchProducts(e.Request().Context(), param)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "Products found!", data)
}

func (c *Controller) GetMyPublicProducts(e echo.Context) error {
	userID, ok := callerID(e)
	if !ok {
		return response.WriteErrorResponse(e, errs.ErrNotLoggedIn, nil)
	}

	data, err := c.service.GetMyPublicProducts(e.Request().Context(), userID)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "My Public Products Found!", data)
}

func (c *Controller) GetMyPrivateProducts(e echo.Context) error {
	userID, ok := callerID(e)
	if !ok {
		return response.WriteErrorResponse(e, errs.ErrNotLoggedIn, nil)
	}

	data, err := c.service.GetMyPrivateProducts(e.Request().Context(), userID)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "My Private Products Found!", data)
}

func (c *Controller) GetAllProducts(e echo.Context) error {
	var param pkgdto.Filter
	if err := e.Bind(&param); err != nil {
		log.Ctx(e.Request().Context()).Error().Err(err).Str("component", "GetAllProducts").Msg("")
		return response.WriteErrorResponse(e, errs.ErrClient, nil)
	}

	if err := e.Validate(&param); err != nil {
		return writeBindError(e, err)
	}

	data, err := c.service.GetAllProducts(e.Request().Context(), param)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "Products Found!", data)
}

func (c *Controller) MakePrivate(e echo.Context) error {
	userID, ok := callerID(e)
	if !ok {
		return response.WriteErrorResponse(e, errs.ErrNotLoggedIn, nil)
	}

	result := c.service.MakePrivate(e.Request().Context(), userID, e.Param("id"))
	if err := result.Err(); err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "Product successfully moved from public to private", nil)
}

func (c *Controller) MakePublic(e echo.Context) error {
	userID, ok := callerID(e)
	if !ok {
		return response.WriteErrorResponse(e, errs.ErrNotLoggedIn, nil)
	}

	result := c.service.MakePublic(e.Request().Context(), userID, e.Param("id"))
	if err := result.Err(); err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "Product successfully moved from private to public", nil)
}
