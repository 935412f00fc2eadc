package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

var _ inventory.StockCache = (*StockCache)(nil)

const (
	keyPrefix     = "stock:level:"
	versionPrefix = "stock:ver:"
	// versionTTL debe superar con holgura la duración de una lectura de la base.
	versionTTL = time.Hour
)

// setIfVersion escribe KEYS[1] solo si la generación en KEYS[2] (0 si no existe) es ARGV[2].
var setIfVersion = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[2] then
  return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

// StockCache caché de niveles de stock en Redis para consultas de pantalla.
// Cada par tiene una generación que Invalidate incrementa; Set descarta valores leídos
// de la base antes de una invalidación.
type StockCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewStockCache construye la caché. ttl <= 0 usa 30 segundos.
func NewStockCache(client redis.Cmdable, ttl time.Duration) *StockCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &StockCache{client: client, ttl: ttl}
}

// Get lee el valor y la generación del par en una sola llamada.
func (c *StockCache) Get(ctx context.Context, key entity.StockKey) (inventory.CachedLevel, error) {
	vals, err := c.client.MGet(ctx, Key(key), VersionKey(key)).Result()
	if err != nil {
		return inventory.CachedLevel{}, fmt.Errorf("redis mget: %w", err)
	}
	var out inventory.CachedLevel
	if raw, ok := vals[1].(string); ok {
		if out.Version, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return inventory.CachedLevel{}, fmt.Errorf("redis generación inválida %q: %w", raw, err)
		}
	}
	raw, ok := vals[0].(string)
	if !ok {
		return out, nil
	}
	if out.Quantity, err = decimal.NewFromString(raw); err != nil {
		return inventory.CachedLevel{Version: out.Version}, fmt.Errorf("redis valor inválido %q: %w", raw, err)
	}
	out.Hit = true
	return out, nil
}

// Set guarda la cantidad con el TTL configurado si la generación no cambió desde la lectura.
func (c *StockCache) Set(ctx context.Context, key entity.StockKey, qty decimal.Decimal, version int64) error {
	err := setIfVersion.Run(ctx, c.client,
		[]string{Key(key), VersionKey(key)},
		qty.String(), strconv.FormatInt(version, 10), c.ttl.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate incrementa la generación de cada par y borra su valor, en una transacción.
func (c *StockCache) Invalidate(ctx context.Context, keys ...entity.StockKey) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range keys {
			pipe.Incr(ctx, VersionKey(k))
			pipe.Expire(ctx, VersionKey(k), versionTTL)
			pipe.Del(ctx, Key(k))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate: %w", err)
	}
	return nil
}

// Key nombre de la clave Redis para un par (producto, bodega).
func Key(k entity.StockKey) string {
	return keyPrefix + k.ProductID + ":" + k.WarehouseID
}

// VersionKey nombre de la clave con la generación del par.
func VersionKey(k entity.StockKey) string {
	return versionPrefix + k.ProductID + ":" + k.WarehouseID
}
