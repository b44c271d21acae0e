package config

import (
	"os"
	"sync"
)

type BrokerConfig struct {
	URL           string
	AnalysisQueue string
	EventExchange string
	MaxRetries    int
}

var (
	brokerConfig *BrokerConfig
	brokerOnce   sync.Once
)

func LoadBrokerConfig() *BrokerConfig {
	brokerOnce.Do(func() {
		brokerConfig = &BrokerConfig{
			URL:           os.Getenv("RABBITMQ_URL"),
			AnalysisQueue: getenvDefault("ANALYSIS_QUEUE", "interview_analysis"),
			EventExchange: getenvDefault("APPLICATION_EVENTS_EXCHANGE", "application_updates"),
			MaxRetries:    envInt("ANALYSIS_MAX_RETRIES", 3),
		}
	})
	return brokerConfig
}

func (c *BrokerConfig) Enabled() bool {
	return c.URL != ""
}
