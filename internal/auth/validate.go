package auth

import (
	"regexp"
	"strings"
)

// emailPattern は簡易的なメールアドレスの形式チェックです。
// 厳密なRFC準拠の判定は外部API側に委ね、ここでは明らかな入力ミスだけを弾きます。
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// LoginForm はログインフォームの入力値です。
// パスワードはバリデーション失敗時のフォーム再表示にも含めません。
type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"-"`
}

// SignupForm はサインアップフォームの入力値です。
type SignupForm struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"-"`
}

// LoginFieldErrors はログインフォームのフィールド別エラーです。
// フィールドは閉じた集合として定義し、文字列キーのマップは使いません。
type LoginFieldErrors struct {
	Email    []string `json:"email,omitempty"`
	Password []string `json:"password,omitempty"`
}

// HasErrors はいずれかのフィールドにエラーがあるかを返します。
func (e LoginFieldErrors) HasErrors() bool {
	return len(e.Email) > 0 || len(e.Password) > 0
}

// SignupFieldErrors はサインアップフォームのフィールド別エラーです。
type SignupFieldErrors struct {
	FirstName []string `json:"first_name,omitempty"`
	LastName  []string `json:"last_name,omitempty"`
	Email     []string `json:"email,omitempty"`
	Password  []string `json:"password,omitempty"`
}

// HasErrors はいずれかのフィールドにエラーがあるかを返します。
func (e SignupFieldErrors) HasErrors() bool {
	return len(e.FirstName) > 0 || len(e.LastName) > 0 ||
		len(e.Email) > 0 || len(e.Password) > 0
}

// ValidateLoginForm はログイン入力を検証します。入力値は前後の空白を除去した上で
// 書き換えます（外部APIへ送る値とエコーバックする値を一致させるため）。
func ValidateLoginForm(form *LoginForm) LoginFieldErrors {
	form.Email = strings.TrimSpace(form.Email)
	form.Password = strings.TrimSpace(form.Password)

	var errs LoginFieldErrors
	if form.Email == "" {
		errs.Email = append(errs.Email, "Please enter the email registered with your user account.")
	} else if !emailPattern.MatchString(form.Email) {
		errs.Email = append(errs.Email, "Please enter a valid email.")
	}
	if form.Password == "" {
		errs.Password = append(errs.Password, "Please enter the password registered with your user account.")
	}
	return errs
}

// ValidateSignupForm はサインアップ入力を検証します。
// パスワードは満たしていないルールだけを列挙します。
func ValidateSignupForm(form *SignupForm) SignupFieldErrors {
	form.FirstName = strings.TrimSpace(form.FirstName)
	form.LastName = strings.TrimSpace(form.LastName)
	form.Email = strings.TrimSpace(form.Email)
	form.Password = strings.TrimSpace(form.Password)

	var errs SignupFieldErrors
	if len([]rune(form.FirstName)) < 2 {
		errs.FirstName = append(errs.FirstName, "First name must be at least 2 characters long.")
	}
	if len([]rune(form.LastName)) < 2 {
		errs.LastName = append(errs.LastName, "Last name must be at least 2 characters long.")
	}
	if !emailPattern.MatchString(form.Email) {
		errs.Email = append(errs.Email, "Please enter a valid email.")
	}
	errs.Password = passwordRuleViolations(form.Password)
	return errs
}

// passwordRuleViolations はパスワードが満たしていないルールのメッセージを返します。
func passwordRuleViolations(password string) []string {
	var violations []string
	if len(password) < 8 {
		violations = append(violations, "Be at least 8 characters long")
	}
	var hasLetter, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	if !hasLetter {
		violations = append(violations, "Contain at least one letter.")
	}
	if !hasDigit {
		violations = append(violations, "Contain at least one number.")
	}
	if !hasSpecial {
		violations = append(violations, "Contain at least one special character.")
	}
	return violations
}
