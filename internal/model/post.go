package model

import (
	"html/template"
	"time"
)

// Post はプロバイダーのタイムラインに含まれる1件の投稿を表す。
// ページ表示1回分のためだけに取得し、永続化しない。
type Post struct {
	ID               string
	Text             string
	HTML             template.HTML // サニタイズ済みのText
	AuthorScreenName string
	CreatedAt        time.Time
}
