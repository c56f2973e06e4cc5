package quote

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"RsiWatch/internal/domain/models"
	"RsiWatch/internal/service/indicator"
	xhttp "RsiWatch/pkg/http"
	applogger "RsiWatch/pkg/logger"

	"github.com/shopspring/decimal"
)

const (
	minOutputSize = 60
	maxOutputSize = 500
)

// TwelveDataSource fetches daily closes from the Twelve Data time_series API and
// computes RSI locally.
type TwelveDataSource struct {
	client *xhttp.Client
	opts   *options
}

func NewTwelveDataSource(client *xhttp.Client, opts ...Option) *TwelveDataSource {
	o := defaultOptions()
	o.baseURL = "https://api.twelvedata.com"
	for _, opt := range opts {
		opt(o)
	}
	o.baseURL = strings.TrimRight(o.baseURL, "/")
	return &TwelveDataSource{client: client, opts: o}
}

type timeSeriesResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Values  []struct {
		Datetime string `json:"datetime"`
		Close    string `json:"close"`
	} `json:"values"`
}

func (s *TwelveDataSource) FetchRSI(ctx context.Context, symbol string, period int) (models.RsiReading, error) {
	if period <= 0 {
		period = indicator.DefaultPeriod
	}
	closes, err := s.FetchDailyCloses(ctx, symbol, s.outputSize(period))
	if err != nil {
		return models.RsiReading{}, err
	}

	v, ok := indicator.ComputeLatestRSI(closes, period)
	if !ok {
		return models.RsiReading{}, models.InsufficientDataError(symbol, len(closes), indicator.MinCloses(period))
	}
	return models.RsiReading{Symbol: symbol, RSI: v, Period: period}, nil
}

// FetchDailyCloses returns positive daily closes, oldest first.
func (s *TwelveDataSource) FetchDailyCloses(ctx context.Context, symbol string, outputSize int) ([]decimal.Decimal, error) {
	canonical, err := Normalize(s.opts.resolver, symbol)
	if err != nil {
		return nil, err
	}

	var resp timeSeriesResponse
	err = s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.opts.baseURL + "/time_series",
		QueryParams: map[string][]string{
			"symbol":     {canonical},
			"interval":   {"1day"},
			"outputsize": {strconv.Itoa(outputSize)},
			"apikey":     {s.opts.apiKey},
		},
	}, &resp)
	if err != nil {
		return nil, models.NetworkError(symbol, err)
	}
	if resp.Status == "error" {
		msg := resp.Message
		if msg == "" {
			msg = "twelve data error"
		}
		return nil, models.NetworkError(symbol, errors.New(msg))
	}

	// payload is newest first
	closes := make([]decimal.Decimal, 0, len(resp.Values))
	for i := len(resp.Values) - 1; i >= 0; i-- {
		c, err := decimal.NewFromString(strings.TrimSpace(resp.Values[i].Close))
		if err != nil || !c.IsPositive() {
			continue
		}
		closes = append(closes, c)
	}

	s.opts.log.Debug("closes fetched", applogger.String("symbol", canonical), applogger.Int("count", len(closes)))
	return closes, nil
}

func (s *TwelveDataSource) outputSize(period int) int {
	n := s.opts.outputSize
	if n < minOutputSize {
		n = minOutputSize
	}
	if n > maxOutputSize {
		n = maxOutputSize
	}
	if need := indicator.MinCloses(period); n < need {
		n = need
	}
	return n
}
