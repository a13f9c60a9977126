// Package httpclient はゲートウェイおよびバックエンドへのHTTP通信を行う
// クライアントを提供する。
//
// ログインの中継、whoAmIのプロフィール照会、モデレーションエンジンによる
// /proxy 経由の状態遷移リクエストなど、本システムの発信側HTTP通信を統一する。
// 資格情報の付与（ベアラーヘッダーまたはセッションクッキー）はオプションで
// 構成し、エラーは到達失敗（GatewayError）と非2xx応答（StatusError）に分類する。
package httpclient
