package config

type SessionConfig interface {
	GetSessionSecret() string
	GetSessionCookieName() string
}

type Session struct{}

var _ SessionConfig = Session{}

// GetSessionSecret returns the secret used to encrypt the session
// cookie envelope. Must hold at least 32 bytes of entropy; the session
// store refuses to construct otherwise.
func (Session) GetSessionSecret() string {
	return GetEnv("SESSION_SECRET", "")
}

func (Session) GetSessionCookieName() string {
	return GetEnv("SESSION_COOKIE_NAME", "bff_session")
}
