package web

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"time"
)

type templates struct {
	game  *template.Template
	board *template.Template
	index *template.Template
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>TicTacToe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
<style>
.board-row{display:flex}
.board-row form{margin:0}
.square{width:48px;height:48px;font-size:24px;font-weight:bold}
.square.winning{background:#fde68a}
.alert{color:#b91c1c}
</style>
</head><body>{{template "content" .}}</body></html>`))
	// Define the board template within the same set so game can include it
	template.Must(base.New("board").Parse(boardTemplate))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>TicTacToe</h1><form action="/game" method="post"><button>New game</button></form>`))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div class="game" hx-ext="sse" hx-sse="connect:/game/{{.ID}}/events">
  <div hx-sse="swap:board">{{template "board" .}}</div>
</div>`))
	// Standalone board template used for fragment rendering
	board := template.Must(template.New("board_only").Parse(boardTemplate))
	return &templates{game: game, board: board, index: index}
}

// renderTemplate executes t, or the named template in t's set when name is set.
func renderTemplate(log *slog.Logger, t *template.Template, name string, data any) []byte {
	var buf bytes.Buffer
	var err error
	if name == "" {
		err = t.Execute(&buf, data)
	} else {
		err = t.ExecuteTemplate(&buf, name, data)
	}
	if err != nil {
		log.Error("render template", "template", t.Name(), "name", name, "error", err)
	}
	return buf.Bytes()
}

const boardTemplate = `
<div id="board">
  <div class="status">{{.Status}}</div>
  {{if .Error}}
  <div class="alert">{{.Error}}</div>
  {{end}}
  <div class="game-board">
  {{range .Rows}}
  <div class="board-row">
    {{range .}}
      <form hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post">
        <input type="hidden" name="i" value="{{.Index}}">
        <button type="submit" class="square{{if .Winning}} winning{{end}}">{{.Value}}</button>
      </form>
    {{end}}
  </div>
  {{end}}
  </div>
  <div class="game-controls">
    <form hx-post="/game/{{.ID}}/restart" hx-target="#board" hx-swap="outerHTML" method="post"><button type="submit">Restart</button></form>
    <form hx-post="/game/{{.ID}}/sort" hx-target="#board" hx-swap="outerHTML" method="post"><button type="submit">{{.SortLabel}}</button></form>
  </div>
  <div class="game-info">
    <h3>Move History</h3>
    <ol class="moves">
    {{range .Moves}}
      <li>
      {{if .Current}}
        <div>{{.Label}}</div>
      {{else}}
        <form hx-post="/game/{{$.ID}}/jump" hx-target="#board" hx-swap="outerHTML" method="post">
          <input type="hidden" name="move" value="{{.Move}}">
          <button type="submit">{{.Label}}</button>
        </form>
      {{end}}
      </li>
    {{end}}
    </ol>
  </div>
</div>
`

const sessionCookie = "session_id"

// sessionFromCookie returns the session id remembered by the browser, if any.
func sessionFromCookie(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func setSessionCookie(w http.ResponseWriter, id string, ttl time.Duration) {
	c := &http.Cookie{Name: sessionCookie, Value: id, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode}
	if ttl > 0 {
		c.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, c)
}
