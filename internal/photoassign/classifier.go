package photoassign

import (
	"fmt"
	"strings"
)

// Categorizer maps a menu item name to at most one bucket.
type Categorizer interface {
	Classify(name string) (string, bool)
}

type Rule struct {
	Bucket   string   `json:"bucket" yaml:"bucket"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// Classifier tests rules in their configured order; the first rule with a
// keyword contained in the lower-cased name wins.
type Classifier struct {
	rules []Rule
}

func NewClassifier(rules []Rule) (*Classifier, error) {
	out := make([]Rule, 0, len(rules))
	for i, rule := range rules {
		bucket := strings.TrimSpace(rule.Bucket)
		if bucket == "" {
			return nil, ConfigError(ErrRuleInvalid, fmt.Sprintf("rule %d has no bucket", i), map[string]any{"rule": i})
		}
		keywords := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if len(keywords) == 0 {
			return nil, ConfigError(ErrRuleInvalid, fmt.Sprintf("rule %d for bucket %s has no keywords", i, bucket), map[string]any{
				"rule":   i,
				"bucket": bucket,
			})
		}
		out = append(out, Rule{Bucket: bucket, Keywords: keywords})
	}
	return &Classifier{rules: out}, nil
}

func (c *Classifier) Classify(name string) (string, bool) {
	if c == nil {
		return "", false
	}
	lower := strings.ToLower(name)
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Bucket, true
			}
		}
	}
	return "", false
}

func (c *Classifier) Rules() []Rule {
	if c == nil {
		return nil
	}
	out := make([]Rule, len(c.rules))
	for i, rule := range c.rules {
		out[i] = Rule{Bucket: rule.Bucket, Keywords: append([]string(nil), rule.Keywords...)}
	}
	return out
}

// CheckBuckets reports the first rule whose bucket is not declared in pool.
func (c *Classifier) CheckBuckets(pool *Pool) error {
	if c == nil || pool == nil {
		return nil
	}
	for i, rule := range c.rules {
		if _, ok := pool.Bucket(rule.Bucket); !ok {
			return ConfigError(ErrRuleUnknownBucket, fmt.Sprintf("rule %d references undeclared bucket %s", i, rule.Bucket), map[string]any{
				"rule":   i,
				"bucket": rule.Bucket,
			})
		}
	}
	return nil
}
