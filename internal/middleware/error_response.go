// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"net/http"

	"github.com/hitoshi/tweetlog/internal/model"
	"github.com/hitoshi/tweetlog/internal/view"
)

// WriteErrorPage はエラーページを指定ステータスで書き込む。
// すべてのページで一貫したエラー表示を提供する。
func WriteErrorPage(w http.ResponseWriter, statusCode int, pageErr *model.PageError) {
	view.RenderError(w, statusCode, pageErr)
}

// WriteInternalServerError は内部サーバーエラーのページを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorPage(w, http.StatusInternalServerError, model.NewInternalError())
}
