package masking

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigCompiles(t *testing.T) {
	cfg := DefaultConfig()
	for _, name := range []string{TypeEmail, TypeMSISDN, TypeIDCard, TypePassport, TypeCreditCard, TypeAccount, TypeTaxID, TypePassword} {
		if len(cfg[name]) == 0 {
			t.Errorf("default config has no rules for %q", name)
		}
	}
	if _, err := NewMatcher(cfg); err != nil {
		t.Fatalf("default config does not compile: %v", err)
	}
}

func TestConfigClone(t *testing.T) {
	cfg := DefaultConfig()
	c := cfg.Clone()
	c[TypeEmail][0].MaskPattern = "changed"
	delete(c, TypePassword)

	if cfg[TypeEmail][0].MaskPattern == "changed" {
		t.Error("Clone shares rule slices with the original")
	}
	if _, ok := cfg[TypePassword]; !ok {
		t.Error("Clone shares the map with the original")
	}
	if Config(nil).Clone() != nil {
		t.Error("Clone of nil config should be nil")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "masks.yaml")
		doc := `masking:
  pin:
    - condition_regex: '^[0-9]{4}$'
      mask_pattern: 'xx00'
  email:
    - condition_regex: '^[^@]+@.+$'
      mask_pattern: '0xxx@xxx'
`
		if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile error: %v", err)
		}
		if len(cfg) != 2 {
			t.Fatalf("got %d masking types, want 2", len(cfg))
		}
		if got := cfg["pin"][0].MaskPattern; got != "xx00" {
			t.Errorf("pin pattern = %q", got)
		}
		if _, ok := cfg[TypePassword]; ok {
			t.Error("loaded config should replace the defaults, not merge with them")
		}

		m, err := NewMatcher(cfg)
		if err != nil {
			t.Fatalf("NewMatcher error: %v", err)
		}
		if got := m.MaskString("pin", "1234"); got != "xx34" {
			t.Errorf("pin masked to %q, want xx34", got)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfigFile(filepath.Join(dir, "absent.yaml")); err == nil {
			t.Error("expected an error for a missing file")
		}
	})

	t.Run("no rules", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yaml")
		if err := os.WriteFile(path, []byte("other: 1\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected an error for a file without masking rules")
		}
	})
}
