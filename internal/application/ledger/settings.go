package ledger

import (
	"fmt"

	"github.com/Apolo151/tourist-village-app-sub000/internal/domain/shared/valueobject"
	"github.com/Apolo151/tourist-village-app-sub000/internal/infrastructure/config"
)

// ConfigFromSettings builds the aggregator settings from the loaded configuration
func ConfigFromSettings(s config.LedgerConfig) (Config, error) {
	cfg := Config{
		FetchTimeout:       s.FetchTimeout,
		IncludeCompanyPaid: s.IncludeCompanyPaid,
		ZeroFill:           s.ZeroFill,
	}
	for _, code := range s.ReportCurrencies {
		c, err := valueobject.ParseCurrency(code)
		if err != nil {
			return Config{}, fmt.Errorf("ledger report currencies: %w", err)
		}
		cfg.ReportCurrencies = append(cfg.ReportCurrencies, c)
	}
	if len(cfg.ReportCurrencies) == 0 {
		cfg.ReportCurrencies = valueobject.SupportedCurrencies()
	}
	return cfg, nil
}
