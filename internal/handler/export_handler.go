package handler

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/employee_directory/internal/domain"
	"github.com/locvowork/employee_directory/internal/export"
	"github.com/locvowork/employee_directory/internal/gql"
	"github.com/locvowork/employee_directory/internal/logger"
)

type EmployeeLister interface {
	ListEmployees(ctx context.Context, filter domain.EmployeeFilter) ([]domain.Employee, error)
}

// ExportHandler serves the admin spreadsheet download of the directory.
type ExportHandler struct {
	resolver CallerResolver
	svc      EmployeeLister
	statuses StatusMapper
}

func NewExportHandler(resolver CallerResolver, svc EmployeeLister, statuses StatusMapper) *ExportHandler {
	return &ExportHandler{resolver: resolver, svc: svc, statuses: statuses}
}

// ExportEmployees accepts the GetEmployees filters as query parameters.
func (h *ExportHandler) ExportEmployees(c echo.Context) error {
	ctx := c.Request().Context()
	c.Set(ctxKeyOperation, "ExportEmployees")

	caller, err := h.resolver.Resolve(ctx, c.Request().Header.Get(echo.HeaderAuthorization))
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(ctxKeyCaller, caller)
	if !caller.IsAdmin() {
		return h.fail(c, domain.Forbidden("Unauthorized: Admin access required"))
	}

	filter, err := exportFilter(c)
	if err != nil {
		return h.fail(c, err)
	}
	employees, err := h.svc.ListEmployees(ctx, filter)
	if err != nil {
		return h.fail(c, err)
	}

	buf := new(bytes.Buffer)
	if err := export.WriteEmployees(buf, employees); err != nil {
		return h.fail(c, domain.StoreError(err))
	}
	logger.InfoLog(ctx, "Exported %d employees", len(employees))

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="employees.xlsx"`)
	return c.Blob(http.StatusOK, export.ContentType, buf.Bytes())
}

func exportFilter(c echo.Context) (domain.EmployeeFilter, error) {
	var filter domain.EmployeeFilter
	if class := c.QueryParam("class"); class != "" {
		filter.Class = &class
	}

	var err error
	if filter.IsActive, err = queryBool(c, "isActive"); err != nil {
		return filter, err
	}
	if filter.Flagged, err = queryBool(c, "flagged"); err != nil {
		return filter, err
	}
	if sortBy := c.QueryParam("sortBy"); sortBy != "" {
		asc, err := queryBool(c, "ascending")
		if err != nil {
			return filter, err
		}
		filter.Sort = &domain.SortOrder{Column: sortBy, Ascending: asc == nil || *asc}
	}
	return filter, nil
}

func queryBool(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, domain.InvalidDocument("Invalid variables: %s must be a boolean", name)
	}
	return &b, nil
}

func (h *ExportHandler) fail(c echo.Context, err error) error {
	resp := gql.Failure(err)
	c.Set(ctxKeyErrorCode, resp.Code())
	if resp.Code() == domain.CodeStoreError {
		logger.ErrorLog(c.Request().Context(), "export failed", err)
	}
	return c.JSON(h.statuses.Status(resp.Code()), resp)
}
