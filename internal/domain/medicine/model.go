package medicine

import "time"

// OwnerMode indica la partición de persistencia local.
type OwnerMode string

const (
	OwnerGuest OwnerMode = "guest"
	OwnerUser  OwnerMode = "user"
)

// Owner es la clave de partición de los registros locales.
// En modo guest, UserID queda vacío.
type Owner struct {
	Mode   OwnerMode
	UserID string
}

// GuestOwner devuelve la partición anónima.
func GuestOwner() Owner {
	return Owner{Mode: OwnerGuest}
}

// UserOwner devuelve la partición de un usuario autenticado.
func UserOwner(userID string) Owner {
	return Owner{Mode: OwnerUser, UserID: userID}
}

// Item representa un régimen prescrito.
//
// Times guarda ocurrencias futuras ya resueltas (fecha+hora completas), no
// una regla recurrente: la resolución ocurre una sola vez al guardar. Se
// mantiene ordenado por hora del día ascendente y nunca contiene dos
// entradas con la misma hora:minuto.
type Item struct {
	ID            string
	Name          string
	Dose          string
	Times         []time.Time
	SelectedDates []string // YYYY-MM-DD; vacío = sin filtro de fechas
	Owner         Owner
	CreatedAt     time.Time
}

// HasOccurrence indica si el instante figura entre las ocurrencias vivas.
func (it Item) HasOccurrence(instant time.Time) bool {
	for _, t := range it.Times {
		if t.Equal(instant) {
			return true
		}
	}
	return false
}
