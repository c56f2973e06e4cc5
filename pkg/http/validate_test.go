package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type addRequest struct {
	Query string `json:"query" validate:"required,symbol"`
	Limit int    `query:"limit" json:"limit" default:"15" validate:"gte=1,lte=100"`
}

func TestReadAndValidateRequest(t *testing.T) {
	tests := []struct {
		name   string
		method string
		url    string
		body   string
		code   string
		field  string
		limit  int
	}{
		{name: "valid with default", url: "/", body: `{"query":"삼성전자"}`, limit: 15},
		{name: "query param", method: http.MethodGet, url: "/?limit=50", body: `{"query":"KT"}`, limit: 50},
		{name: "missing", url: "/", body: `{}`, code: "ERR_REQUIRED", field: "query"},
		{name: "comma", url: "/", body: `{"query":"KT,LG"}`, code: "ERR_SYMBOL", field: "query"},
		{name: "limit too large", method: http.MethodGet, url: "/?limit=1000", body: `{"query":"KT"}`, code: "ERR_LTE", field: "limit"},
		{name: "bad json", url: "/", body: `{"query":`, code: "ERR_UNKNOWN"},
	}

	e := echo.New()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			method := tc.method
			if method == "" {
				method = http.MethodPost
			}
			req := httptest.NewRequest(method, tc.url, strings.NewReader(tc.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			c := e.NewContext(req, httptest.NewRecorder())

			var r addRequest
			res := ReadAndValidateRequest(c, &r)
			if tc.code == "" {
				if res != nil {
					t.Fatalf("unexpected errors: %+v", res)
				}
				if r.Limit != tc.limit {
					t.Fatalf("limit = %d, want %d", r.Limit, tc.limit)
				}
				return
			}
			errs, ok := res.([]ValidationError)
			if !ok || len(errs) != 1 {
				t.Fatalf("expected one validation error, got %+v", res)
			}
			if errs[0].Code != tc.code || errs[0].Field != tc.field {
				t.Fatalf("got %s/%s, want %s/%s", errs[0].Code, errs[0].Field, tc.code, tc.field)
			}
		})
	}
}
