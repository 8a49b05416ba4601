package assumptions

import (
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

var (
	serviceURL string
	cache      sync.Map
	client     *http.Client
)

func init() {
	serviceURL = os.Getenv("ASSUMPTIONS_SERVICE_URL")
	if serviceURL != "" {
		client = &http.Client{
			Timeout: 2 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
}

type remoteSet struct {
	Source           string   `json:"source"`
	EquityReturn     *float64 `json:"equity_return"`
	BondReturn       *float64 `json:"bond_return"`
	CashReturn       *float64 `json:"cash_return"`
	EquityVolatility *float64 `json:"equity_volatility"`
	BondVolatility   *float64 `json:"bond_volatility"`
	CashVolatility   *float64 `json:"cash_volatility"`
	InflationRate    *float64 `json:"inflation_rate"`
}

// fetchRemote looks up the assumption overrides published for a
// market data source. Uses caching and falls back silently when no
// service is configured or the fetch fails.
func fetchRemote(source string) (remoteSet, bool) {
	if serviceURL == "" {
		return remoteSet{}, false
	}

	if cached, ok := cache.Load(source); ok {
		return cached.(remoteSet), true
	}

	resp, err := client.Get(serviceURL + "/assumptions/" + source)
	if err != nil {
		return remoteSet{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return remoteSet{}, false
	}

	var rs remoteSet
	if err := json.NewDecoder(resp.Body).Decode(&rs); err != nil {
		return remoteSet{}, false
	}
	cache.Store(source, rs)
	return rs, true
}

func mergeRemote(set Set, rs remoteSet) Set {
	if rs.EquityReturn != nil {
		set.EquityReturn = *rs.EquityReturn
	}
	if rs.BondReturn != nil {
		set.BondReturn = *rs.BondReturn
	}
	if rs.CashReturn != nil {
		set.CashReturn = *rs.CashReturn
	}
	if rs.EquityVolatility != nil {
		set.EquityVolatility = *rs.EquityVolatility
	}
	if rs.BondVolatility != nil {
		set.BondVolatility = *rs.BondVolatility
	}
	if rs.CashVolatility != nil {
		set.CashVolatility = *rs.CashVolatility
	}
	if rs.InflationRate != nil {
		set.InflationRate = *rs.InflationRate
	}
	return set
}
