package domain

// Identity is the minimal claim set embedded in every token, enough to
// resolve the caller without touching the store.
type Identity struct {
	UserID   string
	Username string
	Email    string
}

// TokenPair is the access/refresh pair handed out at registration, login,
// and refresh. Both tokens are signed, self-contained bearer tokens; no
// server-side record of them exists.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
