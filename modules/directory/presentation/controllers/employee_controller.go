package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/peopleforge/peopleforge/modules/directory/domain/aggregates/employee"
	"github.com/peopleforge/peopleforge/modules/directory/presentation/mappers"
	"github.com/peopleforge/peopleforge/modules/directory/services"
	"github.com/peopleforge/peopleforge/pkg/application"
	"github.com/peopleforge/peopleforge/pkg/composables"
	"github.com/peopleforge/peopleforge/pkg/middleware"
)

type EmployeeController struct {
	employees *services.EmployeeService
	basePath  string
}

func NewEmployeeController(app application.Application) application.Controller {
	return &EmployeeController{
		employees: app.Service(services.EmployeeService{}).(*services.EmployeeService),
		basePath:  "/directory/api",
	}
}

func (c *EmployeeController) Key() string {
	return c.basePath
}

func (c *EmployeeController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.RequireActor())
	router.HandleFunc("/employees", c.List).Methods(http.MethodGet)
	router.HandleFunc("/employees/{id}", c.GetByID).Methods(http.MethodGet)
}

// List pages through the directory, newest first. An email query parameter
// narrows the result to the one matching account.
func (c *EmployeeController) List(w http.ResponseWriter, r *http.Request) {
	if email := strings.TrimSpace(r.URL.Query().Get("email")); email != "" {
		found, err := c.employees.GetByEmail(r.Context(), email)
		switch {
		case errors.Is(err, employee.ErrNotFound):
			writeJSON(w, http.StatusOK, map[string]any{"items": []mappers.EmployeeResponse{}, "total": 0})
		case err != nil:
			writeAPIError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error")
		default:
			writeJSON(w, http.StatusOK, map[string]any{
				"items": []mappers.EmployeeResponse{mappers.EmployeeToResponse(found)},
				"total": 1,
			})
		}
		return
	}

	params := composables.UsePaginated(r)
	employees, total, err := c.employees.GetPaginated(r.Context(), &employee.FindParams{
		Limit:  params.Limit,
		Offset: params.Offset,
	})
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": mappers.EmployeesToResponses(employees),
		"total": total,
	})
}

func (c *EmployeeController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusNotFound, "EMPLOYEE_NOT_FOUND", "invalid employee id")
		return
	}

	found, err := c.employees.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, employee.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "EMPLOYEE_NOT_FOUND", "employee not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, mappers.EmployeeToResponse(found))
}
