package auth

// Mode indica bajo qué partición opera la sesión.
type Mode string

const (
	ModeGuest Mode = "guest"
	ModeUser  Mode = "user"
)

// Session representa la sesión activa que se pasa explícitamente a los
// servicios (nada de estado ambiente). En modo guest, UserID queda vacío.
type Session struct {
	Mode   Mode
	UserID string
}

// Guest devuelve la sesión anónima.
func Guest() Session {
	return Session{Mode: ModeGuest}
}

// ForUser devuelve una sesión autenticada.
func ForUser(userID string) Session {
	return Session{Mode: ModeUser, UserID: userID}
}

// IsUser indica si la sesión está autenticada con un usuario concreto.
func (s Session) IsUser() bool {
	return s.Mode == ModeUser && s.UserID != ""
}

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
}
