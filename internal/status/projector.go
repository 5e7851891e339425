package status

import (
	"sort"

	"github.com/MrSnakeDoc/fleetview/internal/domain"
	"github.com/MrSnakeDoc/fleetview/internal/index"
)

// ApplicationColumn is the title of the first column
const ApplicationColumn = "application"

// Table is the tabular projection of the matrix
type Table struct {
	ColumnTitles []string   // ApplicationColumn, then active spaces sorted
	Rows         [][]string // one row per application, cells aligned with ColumnTitles
	RecordsTotal int
}

// Projector renders the matrix as a table of labels
type Projector struct {
	matrix *index.Matrix
}

// NewProjector creates a projector over matrix
func NewProjector(matrix *index.Matrix) *Projector {
	return &Projector{matrix: matrix}
}

// Project takes a snapshot of the matrix and renders it.
// Inactive spaces are not columns; applications without any observation
// are not rows.
func (p *Projector) Project() Table {
	return Render(p.matrix.Snapshot())
}

// Render projects a snapshot
func Render(snap index.Snapshot) Table {
	spaces := make([]string, 0, len(snap.Spaces))
	for space, count := range snap.Spaces {
		if count > 0 {
			spaces = append(spaces, space)
		}
	}
	sort.Strings(spaces)

	rows := make([][]string, 0, len(snap.Applications))
	for _, app := range snap.Applications {
		cells := snap.Cells[app]
		if len(cells) == 0 {
			continue
		}

		row := make([]string, 0, len(spaces)+1)
		row = append(row, app)
		for _, space := range spaces {
			row = append(row, domain.Label(cells[space]))
		}
		rows = append(rows, row)
	}

	return Table{
		ColumnTitles: append([]string{ApplicationColumn}, spaces...),
		Rows:         rows,
		RecordsTotal: len(rows),
	}
}
