// Package rootview assembles the single page served to a browser: the
// TrackView plus the websocket bootstrap script that receives its updates.
package rootview

import (
	"context"
	"html/template"
	"log"
	"time"

	channerics "github.com/niceyeti/channerics/channels"

	"polytrace/server/fastview"
	"polytrace/server/trackview"
	"polytrace/simrun"
)

// RootView is the main page's index.html: the container for every view
// component and the channel wiring between them.
type RootView struct {
	views   []fastview.ViewComponent
	updates <-chan []fastview.EleUpdate
}

// NewRootView builds the page's views on construction, same shape as the
// teacher's root_view: one converted view-model stream, broadcast to every
// registered view, fanned back in and rate-limited before reaching clients.
func NewRootView(
	ctx context.Context,
	initialSnapshots []simrun.Snapshot,
	snapshotUpdates <-chan []simrun.Snapshot,
) *RootView {
	views, err := fastview.NewViewBuilder[[]simrun.Snapshot, [][]trackview.Cell]().
		WithContext(ctx).
		WithModel(snapshotUpdates, trackview.Convert).
		WithView(func(
			done <-chan struct{},
			rows <-chan [][]trackview.Cell,
		) fastview.ViewComponent {
			return trackview.NewTrackView(done, rows)
		}).
		Build()
	if err != nil {
		log.Fatal(err)
	}

	updates := fanIn(ctx.Done(), views)

	return &RootView{
		views:   views,
		updates: updates,
	}
}

// Updates returns the main ele-update channel aggregating every view.
func (rv *RootView) Updates() <-chan []fastview.EleUpdate {
	return rv.updates
}

// Parse builds the page template, including the client websocket bootstrap
// script, and the func-map child views may rely on.
func (rv *RootView) Parse(parent *template.Template) (name string, err error) {
	rt := parent.Funcs(template.FuncMap{
		"add":  func(i, j int) int { return i + j },
		"sub":  func(i, j int) int { return i - j },
		"mult": func(i, j int) int { return i * j },
		"div":  func(i, j int) int { return i / j },
	})

	var viewTemplates []string
	for _, vc := range rv.views {
		tname, parseErr := vc.Parse(rt)
		if parseErr != nil {
			return "", parseErr
		}
		viewTemplates = append(viewTemplates, tname)
	}

	var bodySpec string
	for _, tname := range viewTemplates {
		bodySpec += `{{ template "` + tname + `" . }}`
	}

	name = "mainpage"
	indexTemplate := `
	{{ define "` + name + `" }}
	<!DOCTYPE html>
	<html>
		<head>
			<link rel="icon" href="data:,">
			<script>
				const ws = new WebSocket("ws://" + window.location.host + "/ws");
				ws.onopen = function (event) {
					console.log("Web socket opened")
				};
				ws.onerror = function (event) {
					console.log('WebSocket error: ', event);
				};
				ws.onmessage = function (event) {
					items = JSON.parse(event.data)
					for (const update of items) {
						const ele = document.getElementById(update.EleId)
						if (!ele) { continue }
						for (const op of update.Ops) {
							if (op.Key === "textContent") {
								ele.textContent = op.Value;
							} else {
								ele.setAttribute(op.Key, op.Value)
							}
						}
					}
				}
			</script>
		</head>
		<body>
		` + bodySpec + `
		</body></html>
	{{ end }}
	`

	_, err = rt.Parse(indexTemplate)
	return
}

// fanIn aggregates every view's ele-update channel into one, batched and
// rate-limited.
func fanIn(done <-chan struct{}, views []fastview.ViewComponent) <-chan []fastview.EleUpdate {
	inputs := make([]<-chan []fastview.EleUpdate, len(views))
	for i, view := range views {
		inputs[i] = view.Updates()
	}
	return batchify(done, channerics.Merge(done, inputs...), time.Millisecond*20)
}

// batchify coalesces updates received within rate, keeping only the latest
// value per element id, so redundant intermediate updates are never sent.
func batchify(
	done <-chan struct{},
	source <-chan []fastview.EleUpdate,
	rate time.Duration,
) <-chan []fastview.EleUpdate {
	output := make(chan []fastview.EleUpdate)

	go func() {
		defer close(output)

		data := map[string]fastview.EleUpdate{}
		last := time.Now()
		for updates := range channerics.OrDone(done, source) {
			for _, update := range updates {
				data[update.EleId] = update
			}

			if time.Since(last) > rate && len(updates) > 0 {
				select {
				case output <- slicedVals(data):
					data = map[string]fastview.EleUpdate{}
					last = time.Now()
				case <-done:
					return
				}
			}
		}
	}()

	return output
}

func slicedVals[T1 comparable, T2 any](mp map[T1]T2) (sliced []T2) {
	for _, v := range mp {
		sliced = append(sliced, v)
	}
	return
}
