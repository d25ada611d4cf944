// Package redis bus de cambios del libro entre instancias (pub/sub).
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/jhoicas/farmacia-stock/internal/application/ledger"
	"github.com/jhoicas/farmacia-stock/pkg/config"
)

var _ ledger.ChangeNotifier = (*Notifier)(nil)

// NewClient crea el cliente y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Notifier publica los cambios confirmados y entrega los de otras instancias.
type Notifier struct {
	client  *goredis.Client
	channel string
	source  string
	log     zerolog.Logger
}

// NewNotifier source identifica a esta instancia; sus propios mensajes se ignoran al recibir.
func NewNotifier(client *goredis.Client, channel, source string, log zerolog.Logger) *Notifier {
	return &Notifier{client: client, channel: channel, source: source, log: log}
}

// Publish envía el cambio como JSON.
func (n *Notifier) Publish(ctx context.Context, change ledger.Change) error {
	if change.Source == "" {
		change.Source = n.source
	}
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("codificar cambio: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", n.channel, err)
	}
	return nil
}

// Changes se suscribe al canal y devuelve los cambios de otras instancias.
// El canal se cierra cuando ctx termina.
func (n *Notifier) Changes(ctx context.Context) <-chan ledger.Change {
	out := make(chan ledger.Change, 16)
	sub := n.client.Subscribe(ctx, n.channel)
	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				change, ok := n.decode(msg.Payload)
				if !ok {
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// decode descarta mensajes ilegibles y los publicados por esta misma instancia.
func (n *Notifier) decode(payload string) (ledger.Change, bool) {
	var change ledger.Change
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		n.log.Warn().Err(err).Str("channel", n.channel).Msg("mensaje de cambio inválido")
		return change, false
	}
	if change.Source == n.source {
		return change, false
	}
	return change, true
}
