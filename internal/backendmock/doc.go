// Package backendmock はゲートウェイが消費するバックエンド契約を実装する
// 開発・結合テスト用の上流サービスを提供する。
//
// 本物のバックエンドは外部システムであり、本リポジトリの対象外である。
// このモックは認証（ベアラー資格情報の発行とプロフィール照会）、証言の
// モデレーション状態機械、寄付トランザクションの検証を契約通りに実装し、
// 状態の正本としてSQLiteに永続化する。証言の否認（reject）エンドポイントは
// 実際の契約に存在しないため、このモックにも意図的に存在しない。
package backendmock
