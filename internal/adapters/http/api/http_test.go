package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/scorecard/internal/adapters/http/api"
	"github.com/okian/scorecard/internal/adapters/ws"
	service "github.com/okian/scorecard/internal/app"
	"github.com/okian/scorecard/internal/domain/round"
	"github.com/okian/scorecard/internal/domain/types"
	"github.com/okian/scorecard/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// brokenDeps fails every round read with an unexpected error.
type brokenDeps struct {
	api.Dependencies
}

func (brokenDeps) Round(context.Context, string) (types.RoundView, error) {
	return types.RoundView{}, errors.New("disk on fire")
}

func newMux(deps api.Dependencies, watcher api.Watcher) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, watcher).Register(context.Background(), mux)
	return mux
}

func do(mux http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeView(w *httptest.ResponseRecorder) types.RoundView {
	var v types.RoundView
	So(json.Unmarshal(w.Body.Bytes(), &v), ShouldBeNil)
	return v
}

func decodeError(w *httptest.ResponseRecorder) errorBody {
	var e errorBody
	So(json.Unmarshal(w.Body.Bytes(), &e), ShouldBeNil)
	return e
}

func TestServer_Rounds(t *testing.T) {
	Convey("Given an API server backed by a running service", t, func() {
		svc := service.New()
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		mux := newMux(svc, nil)

		w := do(mux, http.MethodPost, "/rounds", `{"players":["Ana","Ben"],"course":"Venice","order_mode":"fixed"}`)
		So(w.Code, ShouldEqual, http.StatusCreated)
		started := decodeView(w)
		base := "/rounds/" + started.ID

		Convey("Then the created round is returned", func() {
			So(w.Header().Get("Location"), ShouldEqual, base)
			So(started.Version, ShouldEqual, 1)
			So(started.Round.CourseName, ShouldEqual, "Venice")
			So(started.CurrentPlayer.Name, ShouldEqual, "Ana")
			So(started.CurrentHole.Number, ShouldEqual, 1)

			got := decodeView(do(mux, http.MethodGet, base, ""))
			So(got.ID, ShouldEqual, started.ID)

			list := do(mux, http.MethodGet, "/rounds", "")
			var summaries []types.RoundSummary
			So(json.Unmarshal(list.Body.Bytes(), &summaries), ShouldBeNil)
			So(summaries, ShouldHaveLength, 1)
			So(summaries[0].Players, ShouldEqual, 2)
		})

		Convey("When a score is recorded", func() {
			w := do(mux, http.MethodPost, base+"/scores", `{"strokes":"4"}`)

			Convey("Then the turn passes", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				v := decodeView(w)
				So(v.Version, ShouldEqual, 2)
				So(v.CurrentPlayer.Name, ShouldEqual, "Ben")
				So(v.Round.Players[0].Total, ShouldEqual, 4)
			})
		})

		Convey("When a score submission is retried", func() {
			first := do(mux, http.MethodPost, base+"/scores", `{"strokes":3}`, "Idempotency-Key", "k1")
			second := do(mux, http.MethodPost, base+"/scores", `{"strokes":3}`, "Idempotency-Key", "k1")

			Convey("Then it is applied once", func() {
				So(first.Code, ShouldEqual, http.StatusOK)
				So(second.Code, ShouldEqual, http.StatusOK)
				So(decodeView(first).Duplicate, ShouldBeFalse)
				v := decodeView(second)
				So(v.Duplicate, ShouldBeTrue)
				So(v.Version, ShouldEqual, 2)
			})
		})

		Convey("When the strokes are not a number", func() {
			w := do(mux, http.MethodPost, base+"/scores", `{"strokes":"abc"}`)

			Convey("Then a validation error is returned", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				e := decodeError(w)
				So(e.Code, ShouldEqual, "validation_error")
				So(e.Message, ShouldEqual, "indicate the number of shots")
			})
		})

		Convey("When the body is malformed", func() {
			So(decodeError(do(mux, http.MethodPost, base+"/scores", `{"strokes":`)).Code, ShouldEqual, "bad_request")
			So(decodeError(do(mux, http.MethodPost, base+"/scores", `{"shots":4}`)).Code, ShouldEqual, "bad_request")
			So(decodeError(do(mux, http.MethodPost, base+"/scores", "")).Code, ShouldEqual, "bad_request")
		})

		Convey("When a recorded score is edited", func() {
			do(mux, http.MethodPost, base+"/scores", `{"strokes":4}`)

			begin := do(mux, http.MethodPost, base+"/players/0/holes/1/edit", "")
			So(begin.Code, ShouldEqual, http.StatusOK)
			So(decodeView(begin).Round.Players[0].Score[0].IsEditing, ShouldBeTrue)

			cancel := do(mux, http.MethodDelete, base+"/edit", "")
			So(cancel.Code, ShouldEqual, http.StatusOK)
			So(decodeView(cancel).Round.Players[0].Score[0].IsEditing, ShouldBeFalse)

			edit := do(mux, http.MethodPut, base+"/players/0/holes/1", `{"strokes":2}`)

			Convey("Then the total follows the new strokes", func() {
				So(edit.Code, ShouldEqual, http.StatusOK)
				v := decodeView(edit)
				So(v.Round.Players[0].Total, ShouldEqual, 2)
				So(v.CurrentPlayer.Name, ShouldEqual, "Ben")
			})

			Convey("And unplayed or malformed holes are rejected", func() {
				So(do(mux, http.MethodPut, base+"/players/0/holes/5", `{"strokes":2}`).Code, ShouldEqual, http.StatusNotFound)
				So(do(mux, http.MethodPut, base+"/players/0/holes/19", `{"strokes":2}`).Code, ShouldEqual, http.StatusNotFound)
				So(decodeError(do(mux, http.MethodPut, base+"/players/0/holes/x", `{"strokes":2}`)).Code, ShouldEqual, "bad_request")
				So(decodeError(do(mux, http.MethodPut, base+"/players/7/holes/1", `{"strokes":2}`)).Code, ShouldEqual, "not_found")
			})
		})

		Convey("When a player is removed", func() {
			w := do(mux, http.MethodDelete, base+"/players/0", "")

			Convey("Then the remaining player is up", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				v := decodeView(w)
				So(v.Round.Players, ShouldHaveLength, 1)
				So(v.CurrentPlayer.Name, ShouldEqual, "Ben")

				adv := do(mux, http.MethodPost, base+"/advance", "")
				So(adv.Code, ShouldEqual, http.StatusOK)
				So(decodeView(adv).Round.CurrentHoleIndex, ShouldEqual, 0)
			})
		})

		Convey("When the result is requested before the end", func() {
			w := do(mux, http.MethodGet, base+"/result", "")

			Convey("Then the round state conflicts", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(decodeError(w).Code, ShouldEqual, "invalid_state")
			})
		})

		Convey("When the round is played to the end", func() {
			for h := 0; h < round.HoleCount; h++ {
				do(mux, http.MethodPost, base+"/scores", `{"strokes":3}`)
				do(mux, http.MethodPost, base+"/scores", `{"strokes":2}`)
			}
			w := do(mux, http.MethodGet, base+"/result", "")

			Convey("Then the winner is announced", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var res types.ResultView
				So(json.Unmarshal(w.Body.Bytes(), &res), ShouldBeNil)
				So(res.Title, ShouldEqual, "Congratulations, Ben! 🏆")
				So(res.Winners, ShouldHaveLength, 1)
				So(res.Standings, ShouldHaveLength, 2)

				late := do(mux, http.MethodPost, base+"/scores", `{"strokes":3}`)
				So(late.Code, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("When the round is discarded", func() {
			So(do(mux, http.MethodDelete, base, "").Code, ShouldEqual, http.StatusNoContent)

			Convey("Then it is gone", func() {
				w := do(mux, http.MethodGet, base, "")
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(decodeError(w).Code, ShouldEqual, "not_found")
				So(do(mux, http.MethodDelete, base, "").Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When a round request is invalid", func() {
			noPlayers := do(mux, http.MethodPost, "/rounds", `{"players":[],"pars":[3,3,3,3,3,3,3,3,3,3,3,3,3,3,3,3,3,3]}`)
			So(noPlayers.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(noPlayers).Code, ShouldEqual, "validation_error")

			shortPars := do(mux, http.MethodPost, "/rounds", `{"players":["Ana"],"pars":[3,3]}`)
			So(decodeError(shortPars).Code, ShouldEqual, "validation_error")

			unknown := do(mux, http.MethodPost, "/rounds", `{"players":["Ana"],"course":"Nowhere"}`)
			So(unknown.Code, ShouldEqual, http.StatusNotFound)

			wordPar := do(mux, http.MethodPost, "/rounds", `{"players":["Ana"],"pars":["x",3,3,3,3,3,3,3,3,3,3,3,3,3,3,3,3,3]}`)
			So(wordPar.Code, ShouldEqual, http.StatusBadRequest)
			e := decodeError(wordPar)
			So(e.Code, ShouldEqual, "validation_error")
			So(e.Message, ShouldEqual, "hole 1: indicate the par")

			nullPar := do(mux, http.MethodPost, "/rounds", `{"players":["Ana"],"pars":[3,null,3,3,3,3,3,3,3,3,3,3,3,3,3,3,3,3]}`)
			So(decodeError(nullPar).Code, ShouldEqual, "validation_error")
		})

		Convey("When pars are sent as numeric strings", func() {
			w := do(mux, http.MethodPost, "/rounds", `{"players":["Ana"],"pars":["4"," 3",3,3,3,3,3,3,3,3,3,3,3,3,3,3,3,5]}`)

			Convey("Then they are accepted", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				var v api.RoundView
				So(json.Unmarshal(w.Body.Bytes(), &v), ShouldBeNil)
				So(v.Round.Holes[0].Par, ShouldEqual, 4)
				So(v.Round.Holes[1].Par, ShouldEqual, 3)
				So(v.Round.Holes[17].Par, ShouldEqual, 5)
			})
		})

		Convey("When a route is called with the wrong method", func() {
			So(do(mux, http.MethodPatch, "/rounds", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestServer_Support(t *testing.T) {
	Convey("Given an API server", t, func() {
		svc := service.New()
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		mux := newMux(svc, nil)

		Convey("Then the course catalog is listed", func() {
			w := do(mux, http.MethodGet, "/courses", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var courses []api.Course
			So(json.Unmarshal(w.Body.Bytes(), &courses), ShouldBeNil)
			So(len(courses), ShouldBeGreaterThan, 0)
			So(courses[0].Easy, ShouldHaveLength, round.HoleCount)
		})

		Convey("Then stats are served as JSON", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var stats map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
			So(stats["started"], ShouldEqual, true)
			So(stats, ShouldContainKey, "uptimeSeconds")
		})

		Convey("Then metrics are served on /healthz", func() {
			do(mux, http.MethodGet, "/courses", "")
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "scorecard_rounds_http_requests_total")
		})

		Convey("Then the feed is unavailable without a watcher", func() {
			So(do(mux, http.MethodGet, "/rounds/x/watch", "").Code, ShouldEqual, http.StatusNotImplemented)
		})
	})

	Convey("Given a service that has not started", t, func() {
		mux := newMux(service.New(), nil)

		Convey("Then requests are refused", func() {
			w := do(mux, http.MethodGet, "/rounds", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(decodeError(w).Code, ShouldEqual, "unavailable")
		})
	})

	Convey("Given dependencies that fail unexpectedly", t, func() {
		mux := newMux(brokenDeps{}, nil)

		Convey("Then an internal error is returned", func() {
			w := do(mux, http.MethodGet, "/rounds/x", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			e := decodeError(w)
			So(e.Code, ShouldEqual, "internal_error")
			So(e.Message, ShouldContainSubstring, "disk on fire")
		})
	})
}

func TestServer_Watch(t *testing.T) {
	Convey("Given a server with a scoreboard feed", t, func() {
		hub := ws.NewHub()
		defer hub.Close()
		svc := service.New(service.WithPublisher(hub))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()

		srv := httptest.NewServer(newMux(svc, hub))
		defer srv.Close()
		url := "ws" + strings.TrimPrefix(srv.URL, "http")

		res := do(srv.Config.Handler, http.MethodPost, "/rounds", `{"players":["Ana"],"pars":[3,3,3,3,3,3,3,3,3,3,3,3,3,3,3,3,3,3]}`)
		So(res.Code, ShouldEqual, http.StatusCreated)
		id := decodeView(res).ID

		Convey("When a client watches the round", func() {
			conn, _, err := websocket.DefaultDialer.Dial(url+"/rounds/"+id+"/watch", nil)
			So(err, ShouldBeNil)
			defer conn.Close()

			read := func() ws.Message {
				So(conn.SetReadDeadline(time.Now().Add(2*time.Second)), ShouldBeNil)
				var msg ws.Message
				So(conn.ReadJSON(&msg), ShouldBeNil)
				return msg
			}

			Convey("Then it receives the current view and every update", func() {
				first := read()
				So(first.Event, ShouldEqual, ws.EventRound)
				So(first.Round.Version, ShouldEqual, 1)

				do(srv.Config.Handler, http.MethodPost, "/rounds/"+id+"/scores", `{"strokes":2}`)
				next := read()
				So(next.Round.Version, ShouldEqual, 2)
				So(next.Round.Round.CurrentHoleIndex, ShouldEqual, 1)

				do(srv.Config.Handler, http.MethodDelete, "/rounds/"+id, "")
				So(read().Event, ShouldEqual, ws.EventRoundDiscarded)
			})
		})

		Convey("When a client watches an unknown round", func() {
			_, resp, err := websocket.DefaultDialer.Dial(url+"/rounds/missing/watch", nil)

			Convey("Then the handshake is refused", func() {
				So(err, ShouldNotBeNil)
				So(resp, ShouldNotBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}
