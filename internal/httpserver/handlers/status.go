package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/fleetview/internal/httpserver/deps"
)

// statusResponse is shaped for a DataTables front end
type statusResponse struct {
	Draw            int        `json:"draw"`
	RecordsTotal    int        `json:"recordsTotal"`
	RecordsFiltered int        `json:"recordsFiltered"`
	Data            [][]string `json:"data"`
	ColumnTitles    []string   `json:"column_titles"`
}

// Status returns the current version matrix
func Status(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		table := d.Projector.Project()

		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, statusResponse{
			Draw:            1,
			RecordsTotal:    table.RecordsTotal,
			RecordsFiltered: table.RecordsTotal,
			Data:            table.Rows,
			ColumnTitles:    table.ColumnTitles,
		})
	}
}
