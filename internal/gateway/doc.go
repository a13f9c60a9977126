// Package gateway は管理画面とバックエンドAPIの間に立つBFFゲートウェイを提供する。
//
// 役割は3つある。
//   - 資格情報交換: ログインを中継し、取得したベアラー資格情報を
//     HttpOnlyクッキーに格納する。資格情報そのものはレスポンスボディに含めない。
//   - プロキシ: /proxy/* 配下のリクエストをバックエンドの /api/v1/* へ転送し、
//     クッキーからベアラー資格情報を注入する。
//   - ルートガード: /admin 配下のページについてセッションクッキーの有無だけを
//     検査し、未ログインならログインページへリダイレクトする。
//     クッキーの中身は検証しない。偽造クッキーで画面遷移はできても、
//     APIは上流の認証で拒否されるため実害はない。
package gateway
