package app

import (
	"github.com/riskibarqy/betstats/external/apifootball"
	"github.com/riskibarqy/betstats/external/csvarchive"
	"github.com/riskibarqy/betstats/external/footballdata"
	"github.com/riskibarqy/betstats/external/httpfetch"
	"github.com/riskibarqy/betstats/external/oddsapi"
	"github.com/riskibarqy/betstats/external/scraper"
	"github.com/riskibarqy/betstats/internal/config"
	"github.com/riskibarqy/betstats/internal/domain/fixture"
	"github.com/riskibarqy/betstats/internal/platform/keypool"
	"github.com/riskibarqy/betstats/internal/platform/logging"
	"github.com/riskibarqy/betstats/internal/usecase"
)

// sourceSet holds one adapter per provider. Metered adapters share a
// credential pool each; every adapter gets its own breaker.
type sourceSet struct {
	footballData *footballdata.Client
	apiFootball  *apifootball.Client
	oddsAPI      *oddsapi.Client
	csvArchive   *csvarchive.Client
	scraper      *scraper.Client

	footballDataPool *keypool.Pool
	apiFootballPool  *keypool.Pool
	oddsAPIPool      *keypool.Pool
}

func newSources(cfg config.Config, tracker keypool.QuotaTracker, logger *logging.Logger) sourceSet {
	newPool := func(name string, provider config.ProviderConfig) *keypool.Pool {
		return keypool.New(name, provider.Credentials, tracker, keypool.WithLogger(logger))
	}
	newHTTP := func(name string) *httpfetch.Client {
		return httpfetch.New(httpfetch.Config{
			Name:           name,
			Timeout:        cfg.ProviderTimeout,
			MaxRetries:     cfg.ProviderMaxRetries,
			Logger:         logger,
			CircuitBreaker: cfg.ProviderCircuit,
		})
	}

	set := sourceSet{
		footballDataPool: newPool(fixture.SourceFootballData, cfg.FootballData),
		apiFootballPool:  newPool(fixture.SourceAPIFootball, cfg.APIFootball),
		oddsAPIPool:      newPool(fixture.SourceOddsAPI, cfg.OddsAPI),
	}
	set.footballData = footballdata.NewClient(footballdata.ClientConfig{
		BaseURL: cfg.FootballData.BaseURL,
		HTTP:    newHTTP(fixture.SourceFootballData),
		Pool:    set.footballDataPool,
		Logger:  logger,
	})
	set.apiFootball = apifootball.NewClient(apifootball.ClientConfig{
		BaseURL: cfg.APIFootball.BaseURL,
		HTTP:    newHTTP(fixture.SourceAPIFootball),
		Pool:    set.apiFootballPool,
		Logger:  logger,
	})
	set.oddsAPI = oddsapi.NewClient(oddsapi.ClientConfig{
		BaseURL: cfg.OddsAPI.BaseURL,
		HTTP:    newHTTP(fixture.SourceOddsAPI),
		Pool:    set.oddsAPIPool,
		Logger:  logger,
	})
	set.csvArchive = csvarchive.NewClient(csvarchive.ClientConfig{
		BaseURL: cfg.CSVArchiveBaseURL,
		HTTP:    newHTTP(fixture.SourceCSVArchive),
		Logger:  logger,
	})
	set.scraper = scraper.NewClient(scraper.ClientConfig{
		HTTP: httpfetch.New(httpfetch.Config{
			Name:           fixture.SourceScraper,
			Timeout:        cfg.ScraperTimeout,
			MaxRetries:     cfg.ProviderMaxRetries,
			UserAgent:      cfg.ScraperUserAgent,
			Logger:         logger,
			CircuitBreaker: cfg.ProviderCircuit,
		}),
		Logger: logger,
	})
	return set
}

// chains orders sources per mode: richest data first, free fallbacks last.
func (s sourceSet) chains(logger *logging.Logger) map[usecase.IngestMode]usecase.SourceChain {
	return map[usecase.IngestMode]usecase.SourceChain{
		usecase.ModeSeason:   usecase.NewSourceChain(logger, s.footballData, s.apiFootball, s.csvArchive, s.scraper),
		usecase.ModeLive:     usecase.NewSourceChain(logger, s.footballData, s.apiFootball),
		usecase.ModeUpcoming: usecase.NewSourceChain(logger, s.footballData, s.apiFootball, s.oddsAPI),
		usecase.ModeRecent:   usecase.NewSourceChain(logger, s.oddsAPI, s.csvArchive, s.scraper),
	}
}

func (s sourceSet) pools() []*keypool.Pool {
	return []*keypool.Pool{s.footballDataPool, s.apiFootballPool, s.oddsAPIPool}
}
