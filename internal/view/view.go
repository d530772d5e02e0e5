// Package view は埋め込みテンプレートによるHTMLページの描画を提供する。
package view

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/tweetlog/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(
	template.New("").Funcs(template.FuncMap{
		"formatTime": formatTime,
	}).ParseFS(templateFS, "templates/*.html"),
)

// IndexData はトップページの表示内容。Userがnilの場合は未サインイン表示になる。
type IndexData struct {
	User *model.User
}

// ProfileData はプロフィールページの表示内容。
type ProfileData struct {
	User  *model.User
	Posts []model.Post
}

// ErrorData はエラーページの表示内容。
type ErrorData struct {
	Status int
	Error  *model.PageError
}

// StatusText はステータスコードの説明文を返す。
func (d ErrorData) StatusText() string {
	return http.StatusText(d.Status)
}

// RenderIndex はトップページを200で描画する。
func RenderIndex(w http.ResponseWriter, data IndexData) {
	render(w, http.StatusOK, "index.html", data)
}

// RenderProfile はプロフィールページを200で描画する。
func RenderProfile(w http.ResponseWriter, data ProfileData) {
	render(w, http.StatusOK, "profile.html", data)
}

// RenderError は指定ステータスでエラーページを描画する。
func RenderError(w http.ResponseWriter, status int, pageErr *model.PageError) {
	render(w, status, "error.html", ErrorData{Status: status, Error: pageErr})
}

// render はテンプレートをバッファに描画してからレスポンスを書き込む。
// 描画に失敗した場合は部分的なHTMLを返さず500を返す。
func render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("failed to render template",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
