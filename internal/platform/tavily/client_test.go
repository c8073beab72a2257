package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(code int, body string) *http.Response {
	return &http.Response{
		StatusCode: code,
		Header:     make(http.Header),
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

func TestSearchRequestShapeAndResults(t *testing.T) {
	var captured searchRequest
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.URL.String() != "https://api.tavily.com/search" {
			t.Errorf("url: got=%q", r.URL.String())
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode: %v", err)
		}
		return jsonResponse(http.StatusOK, `{"query":"q","results":[
			{"title":" Lịch thi ","url":"https://vhu.edu.vn/a","content":"Thi ngày 20/6","score":0.9},
			{"title":"Tin tức","url":"https://vhu.edu.vn/b","content":"Học bổng","score":0.5}
		]}`), nil
	})}
	c := NewClient(nil, Config{APIKey: "tvly-key"}, hc)

	got, err := c.Search(context.Background(), "lịch thi VHU", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if captured.APIKey != "tvly-key" || captured.MaxResults != 3 || captured.SearchDepth != "basic" || captured.IncludeAnswer {
		t.Fatalf("request: got=%+v", captured)
	}
	if len(got) != 2 || got[0].Title != "Lịch thi" || got[1].URL != "https://vhu.edu.vn/b" {
		t.Fatalf("results: got=%+v", got)
	}
}

func TestSearchMissingKey(t *testing.T) {
	c := NewClient(nil, Config{}, &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		t.Errorf("no request expected")
		return nil, errors.New("unexpected")
	})})
	if _, err := c.Search(context.Background(), "x", 3); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got=%v", err)
	}
}

func TestSearchNon200(t *testing.T) {
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnauthorized, `{"detail":"invalid key"}`), nil
	})}
	c := NewClient(nil, Config{APIKey: "bad"}, hc)
	if _, err := c.Search(context.Background(), "x", 3); err == nil {
		t.Fatalf("expected error on 401")
	}
}
