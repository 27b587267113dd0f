package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"taskdesk.org/internal/audit"
	"taskdesk.org/internal/auth"
	"taskdesk.org/internal/todo"
)

type createTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (a *API) handleTodosCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createTodo(w, r)
	case http.MethodGet:
		a.listTodos(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet)
	}
}

func (a *API) handleTodoResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/todos/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		a.updateTodo(w, r, id)
	case http.MethodDelete:
		a.deleteTodo(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) createTodo(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "no principal in request context")
		return
	}

	var req createTodoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := a.todos.Create(r.Context(), todo.CreateParams{
		OwnerID:     owner,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		handleTodoError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "todo.create", map[string]any{"todo_id": created.ID})

	w.Header().Set("Location", "/v1/todos/"+created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) listTodos(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "no principal in request context")
		return
	}

	items, err := a.todos.List(r.Context(), owner)
	if err != nil {
		handleTodoError(w, r, err)
		return
	}
	if items == nil {
		items = []todo.Todo{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) updateTodo(w http.ResponseWriter, r *http.Request, id string) {
	owner, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "no principal in request context")
		return
	}

	var patch todo.Patch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := a.todos.Update(r.Context(), id, owner, patch)
	if err != nil {
		handleTodoError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "todo.update", map[string]any{"todo_id": id})

	writeJSON(w, http.StatusOK, updated)
}

func (a *API) deleteTodo(w http.ResponseWriter, r *http.Request, id string) {
	owner, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "no principal in request context")
		return
	}

	if err := a.todos.Delete(r.Context(), id, owner); err != nil {
		handleTodoError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "todo.delete", map[string]any{"todo_id": id})

	w.WriteHeader(http.StatusNoContent)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

func handleTodoError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, todo.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, todo.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "todo not found")
	case errors.Is(err, todo.ErrStorageUnavailable):
		writeError(w, r, http.StatusInternalServerError, "storage unavailable")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}
