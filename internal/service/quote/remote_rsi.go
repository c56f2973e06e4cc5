package quote

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"RsiWatch/internal/domain/models"
	"RsiWatch/internal/service/indicator"
	xhttp "RsiWatch/pkg/http"
	applogger "RsiWatch/pkg/logger"
)

// RemoteRSISource asks a service that computes RSI server-side:
// GET {base}/rsi?symbol=<canonical>&period=<n> -> {"symbol","rsi","period"}.
type RemoteRSISource struct {
	client *xhttp.Client
	opts   *options
}

func NewRemoteRSISource(client *xhttp.Client, opts ...Option) *RemoteRSISource {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	o.baseURL = strings.TrimRight(o.baseURL, "/")
	return &RemoteRSISource{client: client, opts: o}
}

type rsiResponse struct {
	Symbol string   `json:"symbol"`
	RSI    *float64 `json:"rsi"`
	Period int      `json:"period"`
}

func (s *RemoteRSISource) FetchRSI(ctx context.Context, symbol string, period int) (models.RsiReading, error) {
	if period <= 0 {
		period = indicator.DefaultPeriod
	}
	canonical, err := Normalize(s.opts.resolver, symbol)
	if err != nil {
		return models.RsiReading{}, err
	}

	var resp rsiResponse
	err = s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.opts.baseURL + "/rsi",
		QueryParams: map[string][]string{
			"symbol": {canonical},
			"period": {strconv.Itoa(period)},
		},
	}, &resp)
	if err != nil {
		return models.RsiReading{}, models.NetworkError(symbol, err)
	}

	if resp.RSI == nil {
		return models.RsiReading{}, models.NetworkError(symbol, fmt.Errorf("malformed response: missing rsi"))
	}
	v := *resp.RSI
	if math.IsNaN(v) || v < 0 || v > 100 {
		return models.RsiReading{}, models.NetworkError(symbol, fmt.Errorf("malformed response: rsi %v out of range", v))
	}
	if resp.Period != 0 && resp.Period != period {
		s.opts.log.Warn("rsi service answered with a different period",
			applogger.String("symbol", canonical), applogger.Int("requested", period), applogger.Int("got", resp.Period))
	}

	s.opts.log.Debug("rsi fetched", applogger.String("symbol", canonical), applogger.Float64("rsi", v))
	return models.RsiReading{Symbol: symbol, RSI: v, Period: period}, nil
}
