package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ScheduleFile is the optional YAML override for scheduler settings:
//
//	timezone: Asia/Kolkata
//	cron:
//	  daily: "0 5 0 * * *"
//	  weekly: "0 15 0 * * MON"
//	  monthly: "0 30 0 1 * *"
//	pairs: [GBP/INR, AED/INR]
type ScheduleFile struct {
	Timezone string `yaml:"timezone"`
	Cron     struct {
		Daily   string `yaml:"daily"`
		Weekly  string `yaml:"weekly"`
		Monthly string `yaml:"monthly"`
	} `yaml:"cron"`
	Pairs []string `yaml:"pairs"`
}

func LoadScheduleFile(path string) (ScheduleFile, error) {
	var sf ScheduleFile
	b, err := os.ReadFile(path)
	if err != nil {
		return sf, fmt.Errorf("read schedule file: %w", err)
	}
	if err := yaml.Unmarshal(b, &sf); err != nil {
		return sf, fmt.Errorf("parse schedule file: %w", err)
	}
	return sf, nil
}

// applyTo fills fields the environment left empty.
func (sf ScheduleFile) applyTo(cfg *Config) {
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&cfg.TZName, sf.Timezone)
	fill(&cfg.CronDaily, sf.Cron.Daily)
	fill(&cfg.CronWeekly, sf.Cron.Weekly)
	fill(&cfg.CronMonthly, sf.Cron.Monthly)
	fill(&cfg.TrackedPairs, strings.Join(sf.Pairs, ","))
}
