package session

import (
	"context"
	"log"

	"github.com/yourusername/account-portal/internal/authapi"
)

// TokenSource はセッショントークンの読み取り元です。通常は *Store を渡します。
type TokenSource interface {
	Read() (string, bool)
}

// VerifyClient はセッション検証に必要な外部APIの操作です。
type VerifyClient interface {
	VerifySession(ctx context.Context, session string) (*authapi.UserSession, error)
}

// Verifier はセッショントークンを外部APIで検証し、ユーザー情報を解決します。
type Verifier struct {
	source TokenSource
	api    VerifyClient
	logger *log.Logger
}

// NewVerifier は Verifier を作成します。
func NewVerifier(source TokenSource, api VerifyClient, logger *log.Logger) *Verifier {
	if logger == nil {
		logger = log.Default()
	}
	return &Verifier{
		source: source,
		api:    api,
		logger: logger,
	}
}

// Verify は現在のセッションを検証して UserSession を返します。
// クッキーが無い場合はネットワーク呼び出しをせずに nil を返します。
// 非2xx応答・通信エラー・タイムアウトはすべて nil に畳み込み、警告ログのみ残します。
// 無効になったクッキーの削除は行いません。Verifier はクッキーを変更できない
// 読み取り専用のコンテキストでも動作する必要があるため、削除は呼び出し側の責務です。
func (v *Verifier) Verify(ctx context.Context) *authapi.UserSession {
	token, ok := v.source.Read()
	if !ok {
		return nil
	}

	userSession, err := v.api.VerifySession(ctx, token)
	if err != nil {
		v.logger.Printf("WARN: session verification failed: %v", err)
		return nil
	}
	return userSession
}

// IsAuthenticated は有効なセッションが存在するかどうかを返します。
func (v *Verifier) IsAuthenticated(ctx context.Context) bool {
	return v.Verify(ctx) != nil
}

// CurrentUser は現在のセッションに紐づくユーザーを返します。未認証なら nil です。
func (v *Verifier) CurrentUser(ctx context.Context) *authapi.User {
	userSession := v.Verify(ctx)
	if userSession == nil {
		return nil
	}
	return &userSession.User
}
