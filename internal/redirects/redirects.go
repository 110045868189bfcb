// Package redirects はクライアント指定のリダイレクト先を検証・正規化します。
// オープンリダイレクト対策として「安全と確認できた同一オリジンの相対パス」
// 以外はすべて既定のパスへ倒します（deny by default）。
package redirects

import (
	"net/url"
	"strings"
)

// DefaultRedirect は検証に失敗した場合や未指定の場合の遷移先です。
const DefaultRedirect = "/dashboard"

// placeholderOrigin は相対URLとして解決できるかの確認にだけ使うダミーのオリジンです。
var placeholderOrigin = &url.URL{Scheme: "http", Host: "example.com"}

// Extract はクエリパラメータから redirect_uri を取り出します。
// 同名パラメータが複数ある場合は先頭の値を採用します。副作用はありません。
func Extract(query url.Values) (string, bool) {
	values, ok := query["redirect_uri"]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Resolve は候補を検証し、安全な相対パスであればそのまま返します。
// 以下のいずれかに該当する場合は DefaultRedirect を返します。
//   - 空文字列
//   - "/" で始まらない
//   - "..", "//", "\" のいずれかを含む
//   - ダミーのオリジンに対して相対URLとして解決できない、
//     または解決結果が別オリジンになる（絶対URL・プロトコル相対URLを弾く）
func Resolve(candidate string) string {
	if candidate == "" {
		return DefaultRedirect
	}

	if !strings.HasPrefix(candidate, "/") {
		return DefaultRedirect
	}

	if strings.Contains(candidate, "..") ||
		strings.Contains(candidate, "//") ||
		strings.Contains(candidate, "\\") {
		return DefaultRedirect
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return DefaultRedirect
	}
	resolved := placeholderOrigin.ResolveReference(parsed)
	if resolved.Scheme != placeholderOrigin.Scheme || resolved.Host != placeholderOrigin.Host {
		return DefaultRedirect
	}

	return candidate
}

// BuildAbsoluteURL は信頼済みのフロントエンドURLに相対パスを連結します。
func BuildAbsoluteURL(frontendURL, relativePath string) string {
	return strings.TrimSuffix(frontendURL, "/") + relativePath
}
