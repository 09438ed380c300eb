package masking

import (
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// Rule asks for one field of a log payload to be masked. Rules are built by
// callers per log call.
type Rule struct {
	MaskingType  string `json:"maskingType" koanf:"masking_type"`
	MaskingField string `json:"maskingField" koanf:"masking_field"`
	IsArray      bool   `json:"isArray,omitempty" koanf:"is_array"`
}

// PatternRule pairs a condition regex with the mask pattern applied when the
// regex matches.
type PatternRule struct {
	ConditionRegex string `json:"conditionRegex" koanf:"condition_regex"`
	MaskPattern    string `json:"maskPattern" koanf:"mask_pattern"`
}

// Config maps a masking type name to its ordered pattern rules. The first
// rule whose regex matches wins.
type Config map[string][]PatternRule

// Masking type names shipped in DefaultConfig.
const (
	TypeEmail      = "email"
	TypeMSISDN     = "msisdn"
	TypeIDCard     = "idcard"
	TypePassport   = "passport"
	TypeCreditCard = "creditcard"
	TypeAccount    = "account"
	TypeTaxID      = "taxid"
	TypePassword   = "password"
)

// DefaultConfig returns a fresh copy of the built-in masking rules.
func DefaultConfig() Config {
	return Config{
		TypeEmail: {
			{ConditionRegex: `^[^@\s]+@[^@\s]+\.[^@\s]+$`, MaskPattern: "000xx@xxx.xx.xx"},
		},
		TypeMSISDN: {
			{ConditionRegex: `^0[0-9]{9}$`, MaskPattern: "*000xxx0000"},
			{ConditionRegex: `^\+[0-9]{11}$`, MaskPattern: "+00xxxxx0000"},
			{ConditionRegex: `^[0-9]{11}$`, MaskPattern: "00xxxxx0000"},
		},
		TypeIDCard: {
			{ConditionRegex: `^[0-9]{13}$`, MaskPattern: "0XXXXXXXXXXXX"},
			{ConditionRegex: `^[0-9]-[0-9]{4}-[0-9]{5}-[0-9]{2}-[0-9]$`, MaskPattern: "0-XXXX-XXXXX-XX-X"},
		},
		TypePassport: {
			{ConditionRegex: `^[A-Za-z]{2}[0-9]{7}$`, MaskPattern: "00xxxxx00"},
			{ConditionRegex: `^[A-Za-z][0-9]{7,8}$`, MaskPattern: "0xxxxx00"},
		},
		TypeCreditCard: {
			{ConditionRegex: `^[0-9]{4}-[0-9]{4}-[0-9]{4}-[0-9]{4}$`, MaskPattern: "0000-xxxx-xxxx-0000"},
			{ConditionRegex: `^[0-9]{4} [0-9]{4} [0-9]{4} [0-9]{4}$`, MaskPattern: "0000 xxxx xxxx 0000"},
			{ConditionRegex: `^[0-9]{16}$`, MaskPattern: "000000xxxxxx0000"},
		},
		TypeAccount: {
			{ConditionRegex: `^[0-9]{3}-[0-9]-[0-9]{5}-[0-9]$`, MaskPattern: "xxx-x-x0000-0"},
			{ConditionRegex: `^[0-9]{10}$`, MaskPattern: "xxxxxx0000"},
		},
		TypeTaxID: {
			{ConditionRegex: `^[0-9]{13}$`, MaskPattern: "0xxxxxxxxx000"},
		},
		TypePassword: {
			{ConditionRegex: `.+`, MaskPattern: "********"},
		},
	}
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	if c == nil {
		return nil
	}
	out := make(Config, len(c))
	for k, rules := range c {
		out[k] = append([]PatternRule(nil), rules...)
	}
	return out
}

// LoadConfigFile reads a YAML masking config. The document carries the
// rules under a top-level "masking" key:
//
//	masking:
//	  email:
//	    - condition_regex: '^[^@]+@.+$'
//	      mask_pattern: '000xx@xxx.xx.xx'
//
// A loaded config replaces the defaults; it is not merged with them.
func LoadConfigFile(path string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "load masking config %s", path)
	}

	var cfg Config
	if err := k.Unmarshal("masking", &cfg); err != nil {
		return nil, errors.Wrapf(err, "decode masking config %s", path)
	}
	if len(cfg) == 0 {
		return nil, errors.Errorf("masking config %s defines no rules", path)
	}
	return cfg, nil
}
