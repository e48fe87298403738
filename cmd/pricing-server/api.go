package main

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mardens-inc/dbcommon/httperr"
	"github.com/mardens-inc/dbcommon/webserver"
)

// api holds the pricing API's dependencies: the shared pool and the
// error renderer.
type api struct {
	pool   *sql.DB
	render *httperr.Renderer
}

func newAPI(pool *sql.DB, render *httperr.Renderer) *api {
	return &api{pool: pool, render: render}
}

// Routes returns the API subrouter, mounted under /api.
func (a *api) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/health", a.health)
	r.Get("/items", a.render.Handler(a.listItems))
	r.Get("/items/{id}", a.render.Handler(a.getItem))
	return r
}

// health reports pool connectivity for load balancers.
// GET /api/health
func (a *api) health(w http.ResponseWriter, r *http.Request) {
	if err := a.pool.PingContext(r.Context()); err != nil {
		webserver.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "error",
			"database": "disconnected",
		})
		return
	}
	webserver.WriteJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"database": "connected",
	})
}

// item is a row in the pricing items table.
type item struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// listItems returns the first page of items.
// GET /api/items
func (a *api) listItems(w http.ResponseWriter, r *http.Request) error {
	rows, err := a.pool.QueryContext(r.Context(),
		"SELECT id, name, price FROM items ORDER BY id LIMIT 50")
	if err != nil {
		return httperr.SQL(err)
	}
	defer rows.Close()

	items := []item{}
	for rows.Next() {
		var it item
		if err := rows.Scan(&it.ID, &it.Name, &it.Price); err != nil {
			return httperr.SQL(err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return httperr.SQL(err)
	}

	webserver.WriteJSON(w, http.StatusOK, items)
	return nil
}

// getItem returns one item by id.
// GET /api/items/{id}
func (a *api) getItem(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")

	var it item
	err := a.pool.QueryRowContext(r.Context(),
		"SELECT id, name, price FROM items WHERE id = ?", id).
		Scan(&it.ID, &it.Name, &it.Price)
	if err == sql.ErrNoRows {
		return httperr.Appf(http.StatusNotFound, "item %s not found", id)
	}
	if err != nil {
		return httperr.SQL(err)
	}

	webserver.WriteJSON(w, http.StatusOK, it)
	return nil
}
