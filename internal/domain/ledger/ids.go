package ledger

import (
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/farmacia-stock/internal/domain/entity"
)

// movementSeqPerSecond cantidad de IDs por segundo antes de invadir el sello del segundo siguiente.
const movementSeqPerSecond = 1000

// MovementIDGenerator genera IDs de movimiento con la forma YYMMDDhhmmss seguido de 3 dígitos de secuencia.
// Son estrictamente crecientes (next = max(último+1, sello(now)*1000)), se ordenan por fecha de
// creación y se leen a simple vista. Dentro de un mismo store no colisionan.
type MovementIDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewMovementIDGenerator construye el generador; now nil usa time.Now.
func NewMovementIDGenerator(now func() time.Time) *MovementIDGenerator {
	if now == nil {
		now = time.Now
	}
	return &MovementIDGenerator{now: now}
}

// Observe informa un ID ya existente (p. ej. el máximo del store) para no volver a emitirlo.
func (g *MovementIDGenerator) Observe(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id > g.last {
		g.last = id
	}
}

// Next devuelve el siguiente ID.
func (g *MovementIDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	next := g.last + 1
	if stamp := TimestampStamp(g.now()) * movementSeqPerSecond; stamp > next {
		next = stamp
	}
	g.last = next
	return next
}

// TimestampStamp YYMMDDhhmmss como número.
func TimestampStamp(t time.Time) int64 {
	return int64(t.Year()%100)*10_000_000_000 +
		int64(t.Month())*100_000_000 +
		int64(t.Day())*1_000_000 +
		int64(t.Hour())*10_000 +
		int64(t.Minute())*100 +
		int64(t.Second())
}

// MaxMovementID mayor ID del log (0 si está vacío).
func MaxMovementID(movements []entity.Movement) int64 {
	var max int64
	for _, m := range movements {
		if m.ID > max {
			max = m.ID
		}
	}
	return max
}

// SortMovements orden canónico: ID descendente (más reciente primero).
func SortMovements(movements []entity.Movement) {
	sort.SliceStable(movements, func(i, j int) bool {
		return movements[i].ID > movements[j].ID
	})
}

// DateOf trunca a fecha (medianoche UTC del día calendario de t).
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
