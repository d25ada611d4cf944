package seed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-stock/internal/application/dto"
	"github.com/jhoicas/farmacia-stock/internal/application/ledger"
	"github.com/jhoicas/farmacia-stock/internal/application/usecase"
	"github.com/jhoicas/farmacia-stock/internal/domain/entity"
)

// ErrNotEmpty el backend ya tiene artículos o movimientos.
var ErrNotEmpty = errors.New("seed: el libro no está vacío")

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type demoArticle struct {
	in      ledger.ArticleInput
	created time.Time
	// cambios posteriores de precio (fecha → precio); el historial sale de aquí
	updates []priceChange
}

type priceChange struct {
	at    time.Time
	price decimal.Decimal
}

var demoArticles = []demoArticle{
	{
		in: ledger.ArticleInput{Code: "DOL1000", Name: "Doliprane 1000mg", Category: "Médicaments", Unit: "Boîte",
			Price: dec("25.50"), AlertThreshold: dec("10"), Description: "Paracétamol 1000mg, boîte de 8 comprimés"},
		created: day(2024, time.January, 10),
		updates: []priceChange{{at: day(2024, time.July, 15), price: dec("25.50")}},
	},
	{
		in: ledger.ArticleInput{Code: "SER005", Name: "Seringue 5ml", Category: "Fournitures", Unit: "Unité",
			Price: dec("2.00"), AlertThreshold: dec("100")},
		created: day(2024, time.January, 10),
	},
	{
		in: ledger.ArticleInput{Code: "COMP01", Name: "Compresses stériles", Category: "Consommables", Unit: "Paquet",
			Price: dec("15.00"), AlertThreshold: dec("20")},
		created: day(2024, time.January, 10),
	},
	{
		in: ledger.ArticleInput{Code: "GANT-M", Name: "Gants en latex", Category: "Fournitures", Unit: "Boîte",
			Price: dec("75"), AlertThreshold: dec("5"), Description: "Taille M"},
		created: day(2024, time.March, 1),
		updates: []priceChange{{at: day(2024, time.June, 1), price: dec("80")}},
	},
}

type demoMovement struct {
	article     int // índice en demoArticles
	typ         entity.MovementType
	qty         string
	at          time.Time
	ref         string
	party       string
	subcategory string
}

var demoMovements = []demoMovement{
	{0, entity.MovementIn, "50", day(2024, time.July, 1), "CMD-001", "Fournisseur A", ""},
	{1, entity.MovementIn, "500", day(2024, time.July, 1), "CMD-001", "Fournisseur A", ""},
	{0, entity.MovementOut, "5", day(2024, time.July, 5), "BS-001", "Service 1", "Dispensation Patient"},
	{2, entity.MovementIn, "30", day(2024, time.July, 6), "CMD-002", "Dépôt Central", ""},
	{1, entity.MovementOut, "100", day(2024, time.July, 8), "BS-002", "Service 1", "Dotation Service"},
	{0, entity.MovementOut, "10", day(2024, time.July, 10), "BS-003", "Service 1", "Dispensation Patient"},
}

var demoUsers = []dto.CreateUserRequest{
	{Username: "admin", Password: "admin", FirstName: "Admin", LastName: "User", Role: entity.RoleAdmin},
	{Username: "editor.user", Password: "password", FirstName: "Editor", LastName: "User", Role: entity.RoleEditor},
	{Username: "viewer.user", Password: "password", FirstName: "Viewer", LastName: "User", Role: entity.RoleViewer},
}

// clock reloj ajustable: cada alta del seed lleva la fecha histórica del dato.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) set(t time.Time) { c.mu.Lock(); c.t = t; c.mu.Unlock() }

func (c *clock) now() time.Time { c.mu.Lock(); defer c.mu.Unlock(); return c.t }

// Demo carga los datos de demostración pasando por el protocolo de mutación normal.
// Devuelve ErrNotEmpty si ya hay artículos o movimientos.
func Demo(ctx context.Context, store *ledger.Store, tx ledger.TxRunner, users *usecase.UserUseCase, log zerolog.Logger) error {
	if len(store.Articles()) > 0 || len(store.Movements()) > 0 {
		return ErrNotEmpty
	}

	var authorID string
	existing := make(map[string]string)
	for _, u := range store.Users() {
		existing[u.Username] = u.ID
	}
	for _, in := range demoUsers {
		id, ok := existing[in.Username]
		if !ok {
			u, err := users.Create(ctx, in)
			if err != nil {
				return fmt.Errorf("seed usuario %s: %w", in.Username, err)
			}
			id = u.ID
		}
		if in.Role == entity.RoleEditor {
			authorID = id
		}
	}

	clk := &clock{}
	svc := ledger.NewService(store, tx, ledger.WithClock(clk.now), ledger.WithLogger(log))

	ids := make([]int64, len(demoArticles))
	for i, da := range demoArticles {
		clk.set(da.created)
		a, err := svc.AddArticle(ctx, da.in)
		if err != nil {
			return fmt.Errorf("seed artículo %s: %w", da.in.Code, err)
		}
		for _, up := range da.updates {
			clk.set(up.at)
			next := *a
			next.Price = up.price
			if a, err = svc.UpdateArticle(ctx, next); err != nil {
				return fmt.Errorf("seed precio %s: %w", da.in.Code, err)
			}
		}
		ids[i] = a.ID
	}

	for _, dm := range demoMovements {
		clk.set(dm.at)
		_, err := svc.AddMovement(ctx, ledger.MovementInput{
			ArticleID:    ids[dm.article],
			UserID:       authorID,
			Type:         dm.typ,
			Quantity:     dec(dm.qty),
			Date:         dm.at,
			RefDoc:       dm.ref,
			SupplierDest: dm.party,
			Subcategory:  dm.subcategory,
		})
		if err != nil {
			return fmt.Errorf("seed movimiento %s: %w", dm.ref, err)
		}
	}

	log.Info().
		Int("articles", len(demoArticles)).
		Int("movements", len(demoMovements)).
		Int("users", len(demoUsers)).
		Msg("datos de demostración cargados")
	return nil
}
