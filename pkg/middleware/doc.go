// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// パニックリカバリ、CORS設定、リクエストID付与に加え、モックバックエンドが
// ベアラー資格情報（JWT）を発行・検証するためのヘルパーを含む。
// ゲートウェイ自身は資格情報を不透明な文字列として扱うため、JWT検証は
// バックエンド側でのみ使用される。
package middleware
