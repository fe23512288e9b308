package chat

import (
	"fmt"
	"math/rand/v2"

	domain "github.com/example/anon-chat-hub/domain/chat"
)

// defaultNames is the pool display names are drawn from.
var defaultNames = []string{
	"Abacaxi", "Acerola", "Bem-te-vi", "Beija-flor", "Boto", "Caju",
	"Canário", "Carcará", "Coruja", "Cupuaçu", "Curió", "Flamingo",
	"Gavião", "Goiaba", "Guaraná", "Jabuti", "Jabuticaba", "Jacaré",
	"Jaguar", "Jandaia", "Lobo-guará", "Mandacaru", "Maracujá", "Mico",
	"Onça", "Papagaio", "Pequi", "Pinguim", "Pitanga", "Quati",
	"Sabiá", "Saci", "Sagui", "Siriema", "Tamanduá", "Tatu",
	"Tucano", "Tuiuiú", "Uirapuru", "Umbu",
}

// NamePool draws display names at random from a fixed list.
type NamePool struct {
	names []string
	intn  func(n int) int
}

// NewNamePool creates a pool over names. An empty list falls back to the
// built-in pool.
func NewNamePool(names []string) *NamePool {
	if len(names) == 0 {
		names = defaultNames
	}
	pool := make([]string, len(names))
	copy(pool, names)
	return &NamePool{names: pool, intn: rand.IntN}
}

// Draw returns a random display name carrying the anonymous suffix.
func (p *NamePool) Draw() string {
	return fmt.Sprintf("%s %s", p.names[p.intn(len(p.names))], domain.AnonymousSuffix)
}

// Size returns the number of distinct base names.
func (p *NamePool) Size() int {
	return len(p.names)
}
