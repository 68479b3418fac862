package apihttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shopscout/searchservice/internal/domain"
	"shopscout/searchservice/internal/search"
)

type fakeSearchService struct {
	result         domain.SearchResult
	err            error
	shoppingResult domain.SearchResult
	shoppingErr    error
	lastRequest    domain.SearchRequest
	retailers      []string
}

func (f *fakeSearchService) Search(_ context.Context, request domain.SearchRequest) (domain.SearchResult, error) {
	f.lastRequest = request
	return f.result, f.err
}

func (f *fakeSearchService) SearchShopping(_ context.Context, request domain.SearchRequest) (domain.SearchResult, error) {
	f.lastRequest = request
	return f.shoppingResult, f.shoppingErr
}

func (f *fakeSearchService) Retailers() []string { return f.retailers }

func doRequest(t *testing.T, handler http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(method, target, nil))
	return recorder
}

func decodeError(t *testing.T, body []byte) (string, string) {
	t.Helper()
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return payload.Error.Code, payload.Error.Message
}

func TestHandleSearch(t *testing.T) {
	service := &fakeSearchService{
		result: domain.SearchResult{
			Query: "iphone 16",
			Platforms: []domain.PlatformGroup{{
				Platform: "Amazon",
				Products: []domain.Product{{Name: "Apple iPhone 16", Price: 79900, Retailer: "Amazon"}},
			}},
			Retailers: []domain.RetailerStatus{{Name: "Amazon", OK: true, Count: 1, Stage: "schema"}},
		},
	}
	handler := NewServer(service).Handler()

	recorder := doRequest(t, handler, http.MethodGet, "/search?q=iphone+16&limit=3&nocache=1&exclude_accessories=true")
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}

	if service.lastRequest.Query != "iphone 16" || service.lastRequest.Limit != 3 {
		t.Fatalf("unexpected request: %#v", service.lastRequest)
	}
	if !service.lastRequest.NoCache || !service.lastRequest.ExcludeAccessories {
		t.Fatalf("flags not parsed: %#v", service.lastRequest)
	}

	var result domain.SearchResult
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Query != "iphone 16" || len(result.Platforms) != 1 {
		t.Fatalf("unexpected result: %#v", result)
	}
	if got := recorder.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Errorf("content type = %q", got)
	}
}

func TestHandleSearchMissingQuery(t *testing.T) {
	handler := NewServer(&fakeSearchService{}).Handler()
	recorder := doRequest(t, handler, http.MethodGet, "/search")
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", recorder.Code)
	}
	code, _ := decodeError(t, recorder.Body.Bytes())
	if code != "invalid_request" {
		t.Fatalf("error code = %q", code)
	}
}

func TestHandleSearchInvalidLimit(t *testing.T) {
	handler := NewServer(&fakeSearchService{}).Handler()
	for _, limit := range []string{"0", "-2", "abc"} {
		recorder := doRequest(t, handler, http.MethodGet, "/search?q=iphone&limit="+limit)
		if recorder.Code != http.StatusBadRequest {
			t.Errorf("limit=%q: status = %d", limit, recorder.Code)
		}
	}
}

func TestHandleSearchErrorMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{search.ErrInvalidQuery, http.StatusBadRequest, "invalid_request"},
		{search.ErrNoRetailers, http.StatusServiceUnavailable, "service_unavailable"},
		{context.DeadlineExceeded, http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		handler := NewServer(&fakeSearchService{err: tt.err}).Handler()
		recorder := doRequest(t, handler, http.MethodGet, "/search?q=iphone+16")
		if recorder.Code != tt.wantStatus {
			t.Errorf("%v: status = %d, want %d", tt.err, recorder.Code, tt.wantStatus)
			continue
		}
		code, _ := decodeError(t, recorder.Body.Bytes())
		if code != tt.wantCode {
			t.Errorf("%v: error code = %q, want %q", tt.err, code, tt.wantCode)
		}
	}
}

func TestHandleSearchShoppingNotConfigured(t *testing.T) {
	handler := NewServer(&fakeSearchService{shoppingErr: search.ErrNotConfigured}).Handler()
	recorder := doRequest(t, handler, http.MethodGet, "/search/shopping?q=iphone+16")
	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", recorder.Code)
	}
	code, message := decodeError(t, recorder.Body.Bytes())
	if code != "service_unavailable" {
		t.Fatalf("error code = %q", code)
	}
	if message != search.ErrNotConfigured.Error() {
		t.Fatalf("error message = %q", message)
	}
}

func TestHandleSearchShopping(t *testing.T) {
	service := &fakeSearchService{
		shoppingResult: domain.SearchResult{
			Query:     "iphone 16",
			Retailers: []domain.RetailerStatus{{Name: "shopping", OK: true, Count: 5, Stage: "api"}},
		},
	}
	handler := NewServer(service).Handler()
	recorder := doRequest(t, handler, http.MethodGet, "/search/shopping?q=iphone+16")
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}
}

func TestHandleSearchMethodNotAllowed(t *testing.T) {
	handler := NewServer(&fakeSearchService{}).Handler()
	for _, target := range []string{"/search?q=iphone", "/search/shopping?q=iphone", "/search/retailers"} {
		recorder := doRequest(t, handler, http.MethodPost, target)
		if recorder.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: status = %d", target, recorder.Code)
		}
	}
}

func TestHandleSearchQueryTooLong(t *testing.T) {
	handler := NewServer(&fakeSearchService{}).Handler()
	long := make([]byte, maxQueryLength+1)
	for i := range long {
		long[i] = 'a'
	}
	recorder := doRequest(t, handler, http.MethodGet, "/search?q="+string(long))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", recorder.Code)
	}
}

func TestHandleRetailers(t *testing.T) {
	handler := NewServer(&fakeSearchService{retailers: []string{"Amazon", "Flipkart"}}).Handler()
	recorder := doRequest(t, handler, http.MethodGet, "/search/retailers")
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	var payload struct {
		Retailers []string `json:"retailers"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Retailers) != 2 || payload.Retailers[0] != "Amazon" {
		t.Fatalf("retailers = %v", payload.Retailers)
	}
}

func TestHandleHealth(t *testing.T) {
	handler := NewServer(&fakeSearchService{}).Handler()
	recorder := doRequest(t, handler, http.MethodGet, "/health")
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["status"] != "ok" {
		t.Fatalf("health payload = %v", payload)
	}
}

func TestHandleUnknownPath(t *testing.T) {
	handler := NewServer(&fakeSearchService{}).Handler()
	recorder := doRequest(t, handler, http.MethodGet, "/search/unknown")
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d", recorder.Code)
	}
}
