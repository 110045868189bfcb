package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/yourusername/account-portal/internal/authapi"
	"github.com/yourusername/account-portal/internal/redirects"
)

// FlowKind はログイン・サインアップ・ログアウト各フローの結果種別です。
// 成功時の画面遷移はハンドラー側の判断とし、フロー関数は結果を返すだけにします。
type FlowKind string

const (
	FlowSuccess           FlowKind = "success"
	FlowValidationFailure FlowKind = "validation_failure" // ローカルのスキーマ検証で失敗（ネットワーク未到達）
	FlowDomainFailure     FlowKind = "domain_failure"     // 既知の意味を持つ非2xx（404/401/409）
	FlowUpstreamFailure   FlowKind = "upstream_failure"   // 意味を解釈できない非2xx
	FlowTransportFailure  FlowKind = "transport_failure"  // 通信エラー・タイムアウト
)

// LoginResult はログインフローの結果です。
// Form にはパスワードを除いた入力値がエコーバック用に入ります。
type LoginResult struct {
	Kind       FlowKind
	Errors     LoginFieldErrors
	Message    string
	Form       LoginForm
	RedirectTo string
}

// SignupResult はサインアップフローの結果です。
type SignupResult struct {
	Kind       FlowKind
	Errors     SignupFieldErrors
	Message    string
	Form       SignupForm
	RedirectTo string
}

// Client はフローが必要とする外部認証APIの操作です。
type Client interface {
	Authenticate(ctx context.Context, email, password string) (*authapi.AuthResult, error)
	CreateUser(ctx context.Context, firstName, lastName, email, password string) error
	Logout(ctx context.Context, session string) error
}

// SessionWriter はフローが操作するセッションクッキーの窓口です。
// 通常は *session.Store を渡します。
type SessionWriter interface {
	Create(token string, expiresAt time.Time)
	Read() (string, bool)
	Delete()
}

// Gateway はログイン・サインアップ・ログアウトの各フローを取りまとめます。
type Gateway struct {
	api    Client
	logger *log.Logger
}

// NewGateway は Gateway を作成します。
func NewGateway(api Client, logger *log.Logger) *Gateway {
	if logger == nil {
		logger = log.Default()
	}
	return &Gateway{
		api:    api,
		logger: logger,
	}
}

// Login は資格情報を検証し、成功時にセッションクッキーを作成します。
// 入力検証に失敗した場合はネットワーク呼び出しを行いません。
func (g *Gateway) Login(ctx context.Context, store SessionWriter, form LoginForm) LoginResult {
	if errs := ValidateLoginForm(&form); errs.HasErrors() {
		return LoginResult{
			Kind:   FlowValidationFailure,
			Errors: errs,
			Form:   echoLoginForm(form),
		}
	}

	result, err := g.api.Authenticate(ctx, form.Email, form.Password)
	if err != nil {
		var statusErr *authapi.StatusError
		if errors.As(err, &statusErr) {
			switch statusErr.Status {
			case http.StatusNotFound:
				return LoginResult{
					Kind:   FlowDomainFailure,
					Errors: LoginFieldErrors{Email: []string{"User not found"}},
					Form:   echoLoginForm(form),
				}
			case http.StatusUnauthorized:
				return LoginResult{
					Kind:   FlowDomainFailure,
					Errors: LoginFieldErrors{Password: []string{"Invalid password"}},
					Form:   echoLoginForm(form),
				}
			default:
				return LoginResult{
					Kind:    FlowUpstreamFailure,
					Message: fallbackMessage(statusErr.Message, "Authentication failed. Please try again."),
					Form:    echoLoginForm(form),
				}
			}
		}
		g.logger.Printf("WARN: login request failed: %v", err)
		return LoginResult{
			Kind:    FlowTransportFailure,
			Message: "Unable to connect to the server. Please check your connection and try again.",
			Form:    echoLoginForm(form),
		}
	}

	// 2xxでもセッション情報が欠けている応答は成功扱いにしない
	if result.Session == "" || result.SessionExpires.IsZero() {
		return LoginResult{
			Kind:    FlowUpstreamFailure,
			Message: "Authentication successful but no session created",
			Form:    echoLoginForm(form),
		}
	}

	// クッキー設定はログインフローの最後のステップなのでロールバック不要
	store.Create(result.Session, result.SessionExpires)
	return LoginResult{
		Kind:       FlowSuccess,
		RedirectTo: redirects.DefaultRedirect,
	}
}

// Signup は新規ユーザーを作成します。成功時はログインページへの遷移先を返し、
// redirect_uri が既定値と異なる場合のみクエリパラメータとして引き継ぎます。
func (g *Gateway) Signup(ctx context.Context, form SignupForm, redirectURI string) SignupResult {
	if errs := ValidateSignupForm(&form); errs.HasErrors() {
		return SignupResult{
			Kind:   FlowValidationFailure,
			Errors: errs,
			Form:   echoSignupForm(form),
		}
	}

	err := g.api.CreateUser(ctx, form.FirstName, form.LastName, form.Email, form.Password)
	if err != nil {
		var statusErr *authapi.StatusError
		if errors.As(err, &statusErr) {
			if statusErr.Status == http.StatusConflict {
				return SignupResult{
					Kind:   FlowDomainFailure,
					Errors: SignupFieldErrors{Email: []string{"Email already exists"}},
					Form:   echoSignupForm(form),
				}
			}
			return SignupResult{
				Kind:    FlowUpstreamFailure,
				Message: fallbackMessage(statusErr.Message, "Failed to create user"),
				Form:    echoSignupForm(form),
			}
		}
		g.logger.Printf("WARN: signup request failed: %v", err)
		return SignupResult{
			Kind:    FlowTransportFailure,
			Message: "Network error. Please try again.",
			Form:    echoSignupForm(form),
		}
	}

	target := redirects.Resolve(redirectURI)
	redirectTo := "/login"
	if target != redirects.DefaultRedirect {
		redirectTo += "?redirect_uri=" + url.QueryEscape(target)
	}
	return SignupResult{
		Kind:       FlowSuccess,
		RedirectTo: redirectTo,
	}
}

// Logout はセッションを破棄します。外部APIへの通知はベストエフォートで、
// 失敗してもログに残すだけでクッキーは必ず削除します。戻り値は遷移先です。
func (g *Gateway) Logout(ctx context.Context, store SessionWriter) string {
	if token, ok := store.Read(); ok {
		if err := g.api.Logout(ctx, token); err != nil {
			g.logger.Printf("WARN: logout notification failed: %v", err)
		}
	}
	store.Delete()
	return "/login"
}

// echoLoginForm はフォーム再表示用の値を返します。パスワードは含めません。
func echoLoginForm(form LoginForm) LoginForm {
	form.Password = ""
	return form
}

// echoSignupForm はフォーム再表示用の値を返します。パスワードは含めません。
func echoSignupForm(form SignupForm) SignupForm {
	form.Password = ""
	return form
}

func fallbackMessage(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
