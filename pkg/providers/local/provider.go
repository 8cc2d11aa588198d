package local

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/skybridge/skybridge/pkg/cloud"
	"github.com/skybridge/skybridge/pkg/config"
	"github.com/skybridge/skybridge/pkg/providers"
	"github.com/skybridge/skybridge/pkg/telemetry"
)

// Name is the registry name of this provider.
const Name = "local"

func init() {
	providers.MustRegister(Name, func(ctx context.Context, cfg *config.Config, tel *telemetry.Telemetry) (cloud.Provider, error) {
		return New(ctx, cfg, tel)
	})
}

// Provider is the SQLite-backed local provider.
type Provider struct {
	store     *Store
	limit     int
	bootDelay time.Duration
	log       *telemetry.Logger
	metrics   *telemetry.Metrics

	// ipSeq feeds the fake address allocator.
	ipSeq atomic.Uint32
}

// New opens the inventory database and builds the provider from the loaded
// configuration. A nil telemetry instance gets replaced by one built from
// the configuration, so tests and direct constructions stay cheap.
func New(ctx context.Context, cfg *config.Config, tel *telemetry.Telemetry) (*Provider, error) {
	if tel == nil {
		var err error
		tel, err = telemetry.NewTelemetry(&telemetry.Config{
			ServiceName:    "skybridge",
			ServiceVersion: "dev",
			Environment:    "local",
			Logging: telemetry.LoggingConfig{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
			},
			Metrics: telemetry.MetricsConfig{
				Enabled:       cfg.Metrics.Enabled,
				Namespace:     "skybridge",
				ListenAddress: cfg.Metrics.ListenAddress,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create telemetry: %w", err)
		}
	}

	store, err := OpenStore(ctx, cfg.Local.Path)
	if err != nil {
		return nil, err
	}

	limit := cfg.ResultLimit
	if limit <= 0 {
		limit = config.DefaultResultLimit
	}

	p := &Provider{
		store:     store,
		limit:     limit,
		bootDelay: cfg.Local.BootDelay.Std(),
		log:       tel.Logger.NewComponentLogger("provider.local"),
		metrics:   tel.Metrics,
	}
	p.log.WithField("path", cfg.Local.Path).Debug("local provider ready")
	return p, nil
}

// Name implements cloud.Provider.
func (p *Provider) Name() string { return Name }

// Compute implements cloud.Provider.
func (p *Provider) Compute() cloud.ComputeService { return &computeService{p: p} }

// BlockStore implements cloud.Provider.
func (p *Provider) BlockStore() cloud.BlockStoreService { return &blockStoreService{p: p} }

// Security implements cloud.Provider.
func (p *Provider) Security() cloud.SecurityService { return &securityService{p: p} }

// Close implements cloud.Provider.
func (p *Provider) Close() error { return p.store.Close() }

// transitionAt returns when a transition scheduled now should fire.
func (p *Provider) transitionAt() time.Time {
	return p.store.now().Add(p.bootDelay)
}

// nextPrivateIP and nextPublicIP hand out documentation-range addresses.
// They only need to be unique-ish within a process.

func (p *Provider) nextPrivateIP() string {
	n := p.ipSeq.Add(1)
	return fmt.Sprintf("10.40.%d.%d", (n/250)%250, n%250+2)
}

func (p *Provider) nextPublicIP() string {
	n := p.ipSeq.Add(1)
	return fmt.Sprintf("203.0.113.%d", n%250+2)
}

type computeService struct{ p *Provider }

func (c *computeService) Instances() cloud.InstanceService { return &instanceService{p: c.p} }
func (c *computeService) Images() cloud.ImageService       { return &imageService{p: c.p} }

type blockStoreService struct{ p *Provider }

func (b *blockStoreService) Volumes() cloud.VolumeService     { return &volumeService{p: b.p} }
func (b *blockStoreService) Snapshots() cloud.SnapshotService { return &snapshotService{p: b.p} }

type securityService struct{ p *Provider }

func (s *securityService) KeyPairs() cloud.KeyPairService { return &keyPairService{p: s.p} }
