// Package trackview renders polymer track snapshots as a stack of fixed-
// width strips, one row per active polymer (a genome and each of its live
// transcripts), each position colored by what currently occupies it.
package trackview

import (
	"fmt"
	"html/template"
	"strings"
	"sync"

	channerics "github.com/niceyeti/channerics/channels"

	"polytrace/server/fastview"
	"polytrace/simrun"
)

// Cell is one position along one polymer's track: a single square in the
// rendered strip.
type Cell struct {
	Track string
	Pos   int
	Fill  string
}

// Convert transforms a batch of simrun snapshots into the view-model
// TrackView consumes: one row of Cells per polymer, ordered by Pos.
func Convert(snapshots []simrun.Snapshot) (rows [][]Cell) {
	rows = make([][]Cell, len(snapshots))
	for i, snap := range snapshots {
		row := make([]Cell, len(snap.Render))
		for pos, r := range snap.Render {
			row[pos] = Cell{
				Track: snap.Name,
				Pos:   pos,
				Fill:  fillFor(r),
			}
		}
		rows[i] = row
	}
	return
}

func fillFor(symbol rune) string {
	switch symbol {
	case 'x':
		return "lightgray"
	case 'o':
		return "white"
	default:
		return "steelblue"
	}
}

// TrackView is the fastview.ViewComponent rendering every active polymer as
// a labeled strip of colored cells, updated as simulation snapshots arrive.
type TrackView struct {
	id      string
	updates <-chan []fastview.EleUpdate
	mu      sync.Mutex
	last    [][]Cell
}

// NewTrackView wires a channel of converted Cell rows into a live view.
func NewTrackView(done <-chan struct{}, rows <-chan [][]Cell) fastview.ViewComponent {
	id := "trackview"
	tv := &TrackView{id: template.HTMLEscapeString(id)}
	tv.updates = channerics.Convert(done, rows, tv.onUpdate)
	return tv
}

// Updates returns the channel of element diffs pushed to connected clients.
func (tv *TrackView) Updates() <-chan []fastview.EleUpdate {
	return tv.updates
}

func cellID(track string, pos int) string {
	return fmt.Sprintf("%s-%d", strings.ReplaceAll(track, " ", "_"), pos)
}

func (tv *TrackView) onUpdate(rows [][]Cell) (updates []fastview.EleUpdate) {
	tv.mu.Lock()
	tv.last = rows
	tv.mu.Unlock()

	for _, row := range rows {
		for _, cell := range row {
			updates = append(updates, fastview.EleUpdate{
				EleId: cellID(cell.Track, cell.Pos),
				Ops: []fastview.Op{
					{Key: "fill", Value: cell.Fill},
				},
			})
		}
	}
	return
}

// Parse renders the initial strip markup: one <rect> per cell, per track
// row, so that subsequent updates only ever need to set the fill attribute.
func (tv *TrackView) Parse(t *template.Template) (name string, err error) {
	name = tv.id
	const cellDim = 12

	_, err = t.Parse(
		`{{ define "` + name + `" }}
		<div style="padding:20px;">
			{{ range $ri, $row := . }}
				<svg width="{{ mult (len $row) ` + fmt.Sprintf("%d", cellDim) + `}}px" height="` + fmt.Sprintf("%d", cellDim) + `px"
					style="display:block;margin-bottom:4px;shape-rendering:crispEdges;">
					{{ range $ci, $cell := $row }}
						<rect id="{{ $cell.Track }}-{{ $cell.Pos }}"
							x="{{ mult $ci ` + fmt.Sprintf("%d", cellDim) + `}}" y="0"
							width="` + fmt.Sprintf("%d", cellDim) + `" height="` + fmt.Sprintf("%d", cellDim) + `"
							fill="{{ $cell.Fill }}" />
					{{ end }}
				</svg>
			{{ end }}
		</div>
		{{ end }}`)
	return
}
