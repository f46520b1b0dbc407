package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	valkey "github.com/valkey-io/valkey-go"

	"github.com/bnema/shelf/internal/application/port"
)

const valkeyPingTimeout = 5 * time.Second

// ValkeyConfig configures the valkey/redis backend.
type ValkeyConfig struct {
	Address   string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
}

// ValkeyBackend stores blobs in a valkey or redis server.
type ValkeyBackend struct {
	client valkey.Client
	prefix string
}

// NewValkeyBackend connects and pings the server.
func NewValkeyBackend(cfg ValkeyConfig) (*ValkeyBackend, error) {
	if cfg.Address == "" {
		return nil, errors.New("kvstore: valkey address required")
	}

	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{cfg.Address},
		Username:          cfg.Username,
		Password:          cfg.Password,
		SelectDB:          cfg.DB,
		AlwaysRESP2:       true,
		ForceSingleClient: true,
		DisableCache:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("kvstore: valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), valkeyPingTimeout)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("kvstore: valkey ping: %w", err)
	}

	return &ValkeyBackend{client: client, prefix: cfg.KeyPrefix}, nil
}

func (b *ValkeyBackend) Get(ctx context.Context, key string) ([]byte, error) {
	resp := b.client.Do(ctx, b.client.B().Get().Key(b.prefix+key).Build())
	if err := resp.Error(); err != nil {
		if errors.Is(err, valkey.Nil) {
			return nil, port.ErrKeyNotFound
		}
		return nil, fmt.Errorf("kvstore: valkey get: %w", err)
	}
	payload, err := resp.AsBytes()
	if err != nil {
		return nil, fmt.Errorf("kvstore: valkey get bytes: %w", err)
	}
	return payload, nil
}

func (b *ValkeyBackend) Set(ctx context.Context, key string, value []byte) error {
	cmd := b.client.B().Set().Key(b.prefix + key).Value(valkey.BinaryString(value)).Build()
	if err := b.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("kvstore: valkey set: %w", err)
	}
	return nil
}

func (b *ValkeyBackend) Delete(ctx context.Context, key string) error {
	if err := b.client.Do(ctx, b.client.B().Del().Key(b.prefix+key).Build()).Error(); err != nil {
		return fmt.Errorf("kvstore: valkey del: %w", err)
	}
	return nil
}

// Close releases the client connection.
func (b *ValkeyBackend) Close() {
	b.client.Close()
}
