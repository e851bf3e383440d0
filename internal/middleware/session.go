package middleware

import (
	"net/http"

	"edconnect_backend/internal/config"

	"github.com/gorilla/sessions"
)

// SessionUserKey 会话 cookie 中保存的用户 ID
const SessionUserKey = "user_id"

// NewSessionStore 返回签名 cookie 存储。release 模式下 cookie 需跨站携带，
// 必须同时设置 SameSite=None 和 Secure
func NewSessionStore(cfg *config.Config) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	maxAge := cfg.Session.MaxAgeHours * 3600
	if maxAge <= 0 {
		maxAge = 7 * 24 * 3600
	}
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.Server.IsRelease(),
		SameSite: http.SameSiteLaxMode,
	}
	if cfg.Server.IsRelease() {
		store.Options.SameSite = http.SameSiteNoneMode
	}
	return store
}
