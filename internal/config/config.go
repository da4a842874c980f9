package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Env        string `yaml:"env" env-default:"prod"`
	HTTPServer `yaml:"http_server"`

	AWSRegion string `yaml:"aws_region" env-default:"us-east-1"`
	TableName string `yaml:"table_name" env-required:"true"`

	// HistoryStart is the first month with CNC data, dd/mm/yyyy.
	HistoryStart string `yaml:"history_start" env-default:"01/10/2024"`

	// FrontendOrigins are the dashboard SPA origins allowed by CORS.
	FrontendOrigins []string `yaml:"frontend_origins" env-default:"http://localhost:8081,http://localhost:5173"`

	// Pricing maps a business to its unit price per drilled millimeter.
	// Values are decimal strings so billing math never touches float64.
	Pricing map[string]string `yaml:"pricing"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env-default:"localhost:4001"`
	Timeout     time.Duration `yaml:"timeout"  env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout"  env-default:"60s"`
}

func MustConfig() *Config {
	var cfg Config

	path := "./config/local.yaml"

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return &cfg
}

// UnitPrices parses the pricing block. Unknown businesses simply have no
// price and their cost is reported as zero.
func (c *Config) UnitPrices() (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal, len(c.Pricing))
	for business, raw := range c.Pricing {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, err
		}
		prices[business] = price
	}
	return prices, nil
}
