package web

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jaminalder/tic-tac-toe-timetravel/internal/app"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts Options) (*app.Service, http.Handler) {
	t.Helper()
	s := app.NewService()
	h := NewServer(s, opts)
	return s, h
}

func postForm(h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestIndexPage(t *testing.T) {
	_, h := newTestServer(t, Options{})
	rr := get(h, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "<!doctype html>")
	assert.Contains(t, body, "<form")
	assert.Contains(t, body, `action="/game"`)
}

func TestIndexResumesSessionFromCookie(t *testing.T) {
	svc, h := newTestServer(t, Options{})
	sess := svc.CreateSession()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: sess.ID})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/game/"+sess.ID, rr.Header().Get("Location"))

	// stale cookie falls back to the index page
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "gone"})
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCreateRedirectsToGame(t *testing.T) {
	svc, h := newTestServer(t, Options{})
	rr := postForm(h, "/game", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	loc := rr.Result().Header.Get("Location")
	require.True(t, strings.HasPrefix(loc, "/game/"), loc)

	var cookie string
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookie {
			cookie = c.Value
		}
	}
	assert.Equal(t, strings.TrimPrefix(loc, "/game/"), cookie)
	_, ok := svc.Get(cookie)
	assert.True(t, ok)
}

func TestGamePage(t *testing.T) {
	svc, h := newTestServer(t, Options{})
	sess := svc.CreateSession()

	rr := get(h, "/game/"+url.PathEscape(sess.ID))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	// SSE wiring present
	assert.Contains(t, body, `hx-ext="sse"`)
	assert.Contains(t, body, "/game/"+sess.ID+"/events")
	assert.Contains(t, body, `id="board"`)
	assert.Contains(t, body, "Next player: X")
	assert.Contains(t, body, "You are at move #0")
	assert.Equal(t, 9, strings.Count(body, `name="i"`))
}

func TestGamePageNotFound(t *testing.T) {
	_, h := newTestServer(t, Options{})
	assert.Equal(t, http.StatusNotFound, get(h, "/game/missing").Code)
	assert.Equal(t, http.StatusNotFound, postForm(h, "/game/missing/play", url.Values{"i": {"0"}}).Code)
	assert.Equal(t, http.StatusNotFound, postForm(h, "/game/missing/restart", nil).Code)
	assert.Equal(t, http.StatusNotFound, get(h, "/game/missing/state").Code)
	assert.Equal(t, http.StatusNotFound, get(h, "/game/missing/events").Code)
}

func TestPlayEndpointUpdatesStateAndReturnsFragment(t *testing.T) {
	svc, h := newTestServer(t, Options{})
	sess := svc.CreateSession()

	rr := postForm(h, "/game/"+sess.ID+"/play", url.Values{"i": {"4"}})
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `id="board"`)
	assert.Contains(t, body, "Next player: O")
	assert.Contains(t, body, "You are at move #1")

	// row/column form is accepted too
	rr = postForm(h, "/game/"+sess.ID+"/play", url.Values{"r": {"0"}, "c": {"0"}})
	require.Equal(t, http.StatusOK, rr.Code)

	latest, _ := svc.Get(sess.ID)
	assert.Equal(t, 2, latest.CurrentMove())
	assert.Equal(t, "X", latest.CurrentGrid()[4].String())
	assert.Equal(t, "O", latest.CurrentGrid()[0].String())
}

func TestRejectedMoveIsSilentByDefault(t *testing.T) {
	svc, h := newTestServer(t, Options{})
	sess := svc.CreateSession()
	postForm(h, "/game/"+sess.ID+"/play", url.Values{"i": {"4"}})

	rr := postForm(h, "/game/"+sess.ID+"/play", url.Values{"i": {"4"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), `class="alert"`)
	assert.Contains(t, rr.Body.String(), "Next player: O")

	rr = postForm(h, "/game/"+sess.ID+"/play", url.Values{"i": {"abc"}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), `class="alert"`)

	latest, _ := svc.Get(sess.ID)
	assert.Equal(t, 1, latest.CurrentMove())
}

func TestRejectedMoveShowsErrorWhenEnabled(t *testing.T) {
	svc, h := newTestServer(t, Options{ShowErrors: true})
	sess := svc.CreateSession()
	postForm(h, "/game/"+sess.ID+"/play", url.Values{"i": {"4"}})

	rr := postForm(h, "/game/"+sess.ID+"/play", url.Values{"i": {"4"}})
	assert.Contains(t, rr.Body.String(), "Cell is occupied")

	rr = postForm(h, "/game/"+sess.ID+"/play", url.Values{"r": {"3"}, "c": {"0"}})
	assert.Contains(t, rr.Body.String(), "Out of bounds")

	rr = postForm(h, "/game/"+sess.ID+"/jump", url.Values{"move": {"9"}})
	assert.Contains(t, rr.Body.String(), "No such move")
}

func TestGameOverBlocksPlay(t *testing.T) {
	svc, h := newTestServer(t, Options{ShowErrors: true})
	sess := svc.CreateSession()
	for _, i := range []string{"0", "1", "4", "2", "8"} {
		rr := postForm(h, "/game/"+sess.ID+"/play", url.Values{"i": {i}})
		require.Equal(t, http.StatusOK, rr.Code)
	}
	rr := postForm(h, "/game/"+sess.ID+"/play", url.Values{"i": {"3"}})
	body := rr.Body.String()
	assert.Contains(t, body, "Winner: X")
	assert.Contains(t, body, "Game is over")
	assert.Equal(t, 3, strings.Count(body, "square winning"))
}

func TestJumpRestartAndSort(t *testing.T) {
	svc, h := newTestServer(t, Options{})
	sess := svc.CreateSession()
	for _, i := range []string{"0", "1", "2"} {
		postForm(h, "/game/"+sess.ID+"/play", url.Values{"i": {i}})
	}

	rr := postForm(h, "/game/"+sess.ID+"/jump", url.Values{"move": {"1"}})
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "You are at move #1")
	assert.Contains(t, body, "Go to move #3 (0, 2)")
	assert.Contains(t, body, "Next player: O")

	rr = postForm(h, "/game/"+sess.ID+"/sort", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body = rr.Body.String()
	assert.Contains(t, body, "Sort: Desc")
	assert.Less(t, strings.Index(body, "Go to move #3"), strings.Index(body, "Go to game start"))

	rr = postForm(h, "/game/"+sess.ID+"/restart", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "You are at move #0")
	latest, _ := svc.Get(sess.ID)
	assert.Equal(t, 0, latest.Moves())
}

func TestStateEndpoint(t *testing.T) {
	svc, h := newTestServer(t, Options{})
	sess := svc.CreateSession()
	for _, i := range []int{0, 1, 4, 2, 8} {
		_, err := svc.Play(sess.ID, i)
		require.NoError(t, err)
	}

	rr := get(h, "/game/"+sess.ID+"/state")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var st stateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st))
	assert.Equal(t, sess.ID, st.ID)
	assert.Equal(t, "win", st.Status)
	assert.Equal(t, "X", st.Winner)
	assert.Equal(t, []int{0, 4, 8}, st.Line)
	assert.Equal(t, 5, st.CurrentMove)
	assert.Equal(t, [9]string{"X", "O", "O", "", "X", "", "", "", "X"}, st.Board)
	assert.Len(t, st.Moves, 6)
	assert.Equal(t, "asc", st.SortOrder)
}

func TestEventsEndpointSSEHeaders(t *testing.T) {
	_, h := newTestServer(t, Options{})
	// create a game via POST
	loc := postForm(h, "/game", nil).Result().Header.Get("Location")
	require.NotEmpty(t, loc, "missing redirect location")

	rr := get(h, loc+"/events")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Result().Header.Get("Content-Type"), "text/event-stream"))
}

func TestEventsStreamBoardUpdates(t *testing.T) {
	svc, h := newTestServer(t, Options{HeartbeatInterval: time.Hour})
	srv := httptest.NewServer(h)
	defer srv.Close()
	sess := svc.CreateSession()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/game/"+sess.ID+"/events", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/event-stream")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// the subscription exists once headers are flushed
	_, err = svc.Play(sess.ID, 4)
	require.NoError(t, err)

	sc := bufio.NewScanner(resp.Body)
	var sawEvent, sawStatus bool
	for sc.Scan() {
		line := sc.Text()
		if line == "event: board" {
			sawEvent = true
		}
		if sawEvent && strings.Contains(line, "Next player: O") {
			require.True(t, strings.HasPrefix(line, "data: "), line)
			sawStatus = true
			break
		}
	}
	assert.True(t, sawStatus, "board event not received")
}

func TestWriteEventFramesEveryLine(t *testing.T) {
	var buf bytes.Buffer
	writeEvent(&buf, "board", []byte("<div>\n<p>x</p>\n</div>"))
	assert.Equal(t, "event: board\ndata: <div>\ndata: <p>x</p>\ndata: </div>\n\n", buf.String())
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := app.NewService(app.WithMetrics(app.NewMetrics(reg)))
	h := NewServer(svc, Options{Gatherer: reg})
	svc.CreateSession()

	rr := get(h, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "tictactoe_sessions_created_total 1")

	_, h = newTestServer(t, Options{})
	assert.Equal(t, http.StatusNotFound, get(h, "/metrics").Code)
}
