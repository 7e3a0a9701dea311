package otpgate

import (
	"errors"

	internalaudit "github.com/otpgate/otpgate/internal/audit"
	"github.com/otpgate/otpgate/password"
	"github.com/otpgate/otpgate/token"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens until the engine serves its first request.
type Builder struct {
	config Config

	challenges ChallengeStore
	users      UserStore
	notifier   Notifier
	auditSink  AuditSink

	built bool
}

// New returns a Builder preloaded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the entire configuration tree.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithChallengeStore injects the ephemeral secret store.
func (b *Builder) WithChallengeStore(store ChallengeStore) *Builder {
	b.challenges = store
	return b
}

// WithRedis is a convenience for WithChallengeStore(NewRedisChallengeStore(client)).
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.challenges = NewRedisChallengeStore(client)
	return b
}

// WithUserStore injects the persistent identity collaborator.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.users = store
	return b
}

// WithNotifier injects the outbound OTP sender.
func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.notifier = n
	return b
}

// WithAuditSink injects the audit event receiver.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles in-process metric collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles latency histogram collection.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, wires the collaborators, and returns
// a ready Engine. A Builder may only be used once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.challenges == nil {
		return nil, errors.New("challenge store required")
	}
	if b.users == nil {
		return nil, errors.New("user store required")
	}
	if b.notifier == nil {
		return nil, errors.New("notifier required")
	}

	hasher, err := password.NewArgon2(password.Config{
		Memory:      cfg.Digest.Memory,
		Time:        cfg.Digest.Time,
		Parallelism: cfg.Digest.Parallelism,
		SaltLength:  cfg.Digest.SaltLength,
		KeyLength:   cfg.Digest.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	tm, err := token.NewManager(token.Config{
		SigningMethod: token.SigningMethod(cfg.Token.SigningMethod),
		Secret:        cloneBytes(cfg.Token.Secret),
		PrivateKey:    cloneBytes(cfg.Token.PrivateKey),
		PublicKey:     cloneBytes(cfg.Token.PublicKey),
		Issuer:        cfg.Token.Issuer,
		Audience:      cfg.Token.Audience,
		AccessTTL:     cfg.Token.AccessTTL,
		RefreshTTL:    cfg.Token.RefreshTTL,
		Leeway:        cfg.Token.Leeway,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:     cfg,
		challenges: b.challenges,
		users:      b.users,
		notifier:   b.notifier,
		hasher:     hasher,
		tokens:     tm,
		metrics:    NewMetrics(cfg.Metrics),
	}
	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	b.built = true

	return engine, nil
}
