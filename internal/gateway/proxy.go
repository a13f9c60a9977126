package gateway

import (
	"bytes"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httputil"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/hopehub/internal/session"
)

// handleProxy は /proxy/* 配下のリクエストをバックエンドへ転送するハンドラを返す。
func (s *Server) handleProxy() gin.HandlerFunc {
	return func(c *gin.Context) {
		// multipartボディは新しい境界文字列で再構築する。それ以外のボディは
		// 一切手を加えずそのまま流す
		if err := rebuildMultipartBody(c.Request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "multipartボディの解析に失敗しました"})
			return
		}
		s.proxy.ServeHTTP(c.Writer, c.Request)
	}
}

// newReverseProxy はバックエンドへのリバースプロキシを生成する。
//
// 転送時のヘッダー処理は次の通り。
//   - パスの /proxy 接頭辞を取り除き、バックエンドの /api/v1 配下へ写す。
//     クエリ文字列はそのまま維持する。
//   - 受信したCookieヘッダーは転送しない。セッションクッキーは
//     ブラウザとゲートウェイの間だけの契約であり、上流に漏らさない。
//   - クライアントが付けたAuthorizationヘッダーは破棄し、セッションクッキーの
//     資格情報から導出したベアラーヘッダーだけを注入する。
func (s *Server) newReverseProxy() *httputil.ReverseProxy {
	backend := s.backend
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			subPath := strings.TrimPrefix(pr.In.URL.Path, "/proxy")

			pr.Out.URL.Scheme = backend.Scheme
			pr.Out.URL.Host = backend.Host
			pr.Out.URL.Path = "/api/v1" + subPath
			pr.Out.URL.RawQuery = pr.In.URL.RawQuery
			pr.Out.Host = backend.Host

			pr.Out.Header.Del("Cookie")
			pr.Out.Header.Del("Authorization")
			if credential, ok := session.CredentialFromRequest(pr.In); ok {
				pr.Out.Header.Set("Authorization", "Bearer "+credential)
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			// 上流のURLなど内部情報をクライアントに漏らさない
			log.Printf("[ERROR] プロキシ転送に失敗しました: %v", err)
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusBadGateway)
			if _, werr := w.Write([]byte(`{"error":"バックエンドに接続できません"}`)); werr != nil {
				log.Printf("[ERROR] エラーレスポンスの書き込みに失敗しました: %v", werr)
			}
		},
	}
}

// rebuildMultipartBody はmultipart/form-dataのボディを新しい境界文字列で
// 再構築する。各パートのヘッダーと内容は維持される。
// multipart以外のリクエストには何もしない。
func rebuildMultipartBody(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody {
		return nil
	}
	mediaType, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		return nil
	}
	boundary, ok := params["boundary"]
	if !ok {
		return nil
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	reader := multipart.NewReader(req.Body, boundary)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		dst, err := writer.CreatePart(part.Header)
		if err != nil {
			return err
		}
		if _, err := io.Copy(dst, part); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req.Body = io.NopCloser(&buf)
	req.ContentLength = int64(buf.Len())
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return nil
}
