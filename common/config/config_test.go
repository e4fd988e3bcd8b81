package config

import (
	"errors"
	"testing"

	"github.com/remixlabs/ledger/common/tier"
)

func TestParseTierSeed(t *testing.T) {
	seed := parseTierSeed("Jacob=mythic, Fan1=supporter ,malformed,=orphan,empty=")

	if len(seed) != 2 {
		t.Fatalf("expected 2 entries, got %d: %v", len(seed), seed)
	}
	if seed["Jacob"] != tier.Mythic {
		t.Errorf("Jacob = %s, want mythic", seed["Jacob"])
	}
	if seed["Fan1"] != tier.Supporter {
		t.Errorf("Fan1 = %s, want supporter", seed["Fan1"])
	}
}

func TestValidateRejectsUnknownSeedTier(t *testing.T) {
	cfg, err := Load("ledgerd")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cfg.Tiers.Seed = map[string]tier.Tier{"bad": "platinum"}
	if err := cfg.Validate(); !errors.Is(err, tier.ErrUnknownTier) {
		t.Errorf("expected ErrUnknownTier, got %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("ledgerd")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Service.Name != "ledgerd" {
		t.Errorf("service name = %s", cfg.Service.Name)
	}
	if cfg.Service.Port != 8080 {
		t.Errorf("default port = %d", cfg.Service.Port)
	}
	if cfg.Telemetry.PprofPort != 6060 {
		t.Errorf("default pprof port = %d", cfg.Telemetry.PprofPort)
	}
}
