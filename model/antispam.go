package model

import "fmt"

// RuleConfig holds the thresholds for a single antispam rule. Interval is the
// lookback window in seconds relative to the triggering message; Max is the
// threshold the accumulated metric must strictly exceed for the rule to fire.
// MaxConsecutive is only read by the newlines rule.
type RuleConfig struct {
	Interval       int `mapstructure:"interval"`
	Max            int `mapstructure:"max"`
	MaxConsecutive int `mapstructure:"max_consecutive"`
}

// PunishmentConfig describes the sanction antispam issues per offending member.
type PunishmentConfig struct {
	Type            string `mapstructure:"type"`
	DurationSeconds int    `mapstructure:"duration_seconds"`
}

// AntiSpamConfig is the static configuration of the antispam subsystem,
// loaded once at startup and immutable afterwards.
type AntiSpamConfig struct {
	Enabled           bool                  `mapstructure:"enabled"`
	CacheChannels     int                   `mapstructure:"cache_channels"`
	CacheMessages     int                   `mapstructure:"cache_messages"`
	FlushDelaySeconds int                   `mapstructure:"flush_delay_seconds"`
	Punishment        PunishmentConfig      `mapstructure:"punishment"`
	Rules             map[string]RuleConfig `mapstructure:"rules"`
}

// MaxInterval returns the largest interval across all configured rules. The
// message window kept per channel never needs to reach further back than this.
func (c AntiSpamConfig) MaxInterval() int {
	max := 0
	for _, rc := range c.Rules {
		if rc.Interval > max {
			max = rc.Interval
		}
	}
	return max
}

// Validate checks every configured rule against the set of known rule names
// and rejects thresholds that could never be evaluated meaningfully. It
// returns one error per offending entry; an empty result means the subsystem
// is safe to enable.
func (c AntiSpamConfig) Validate(known func(name string) bool) []error {
	var errs []error
	for name, rc := range c.Rules {
		if !known(name) {
			errs = append(errs, fmt.Errorf("antispam rule %q: no such rule", name))
			continue
		}
		if rc.Interval <= 0 {
			errs = append(errs, fmt.Errorf("antispam rule %q: interval must be positive, got %d", name, rc.Interval))
		}
		if rc.Max < 0 {
			errs = append(errs, fmt.Errorf("antispam rule %q: max must not be negative, got %d", name, rc.Max))
		}
		if name == "newlines" && rc.MaxConsecutive < 0 {
			errs = append(errs, fmt.Errorf("antispam rule %q: max_consecutive must not be negative, got %d", name, rc.MaxConsecutive))
		}
	}
	if c.Punishment.Type != "" && c.Punishment.Type != InfractionMute {
		errs = append(errs, fmt.Errorf("antispam punishment type %q is not supported", c.Punishment.Type))
	}
	return errs
}
