package catalog

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/shopcart-backend/pkg/errors"
)

func TestClientFetchProductRequest(t *testing.T) {
	const expectedURL = "http://catalog.test/products/5"
	respBody := `{"id":5,"title":"Gold Ring","price":9.99,"description":"A ring","category":"jewelery","image":"http://img.test/ring.png"}`

	var capturedURL string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client := NewClient(WithBaseURL("http://catalog.test"), WithHTTPClient(&http.Client{Transport: rt}))

	product, err := client.FetchProduct(context.Background(), 5)
	if err != nil {
		t.Fatalf("fetch product: %v", err)
	}
	if capturedURL != expectedURL {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if product.ID != 5 || product.Title != "Gold Ring" {
		t.Fatalf("unexpected product %+v", product)
	}
	if product.Price.String() != "9.99" {
		t.Fatalf("unexpected price %s", product.Price)
	}
}

func TestClientFetchProductEmptyBodyIsNotFound(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("")),
			Header:     http.Header{},
		}, nil
	})

	client := NewClient(WithBaseURL("http://catalog.test"), WithHTTPClient(&http.Client{Transport: rt}))

	_, err := client.FetchProduct(context.Background(), 999)
	if err == nil {
		t.Fatalf("expected error for missing product")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found code, got %s", pkgerrors.As(err).Code())
	}
}

func TestClientFetchProduct404IsNotFound(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader("")),
			Header:     http.Header{},
		}, nil
	})

	client := NewClient(WithBaseURL("http://catalog.test"), WithHTTPClient(&http.Client{Transport: rt}))

	_, err := client.FetchProduct(context.Background(), 42)
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found code, got %v", err)
	}
}

func TestClientFetchProductUpstreamFailure(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusInternalServerError,
			Body:       io.NopCloser(strings.NewReader("boom")),
			Header:     http.Header{},
		}, nil
	})

	client := NewClient(WithBaseURL("http://catalog.test"), WithHTTPClient(&http.Client{Transport: rt}))

	_, err := client.FetchProduct(context.Background(), 5)
	if pkgerrors.As(err).Code() != pkgerrors.CodeUpstream {
		t.Fatalf("expected upstream code, got %v", err)
	}
}

func TestClientFetchProductMalformedBodyIsUpstream(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"id":"not-a-number"`)),
			Header:     http.Header{},
		}, nil
	})

	client := NewClient(WithBaseURL("http://catalog.test"), WithHTTPClient(&http.Client{Transport: rt}))

	_, err := client.FetchProduct(context.Background(), 5)
	if pkgerrors.As(err).Code() != pkgerrors.CodeUpstream {
		t.Fatalf("expected upstream code, got %v", err)
	}
}

func TestClientFetchProductTimeout(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		<-req.Context().Done()
		return nil, req.Context().Err()
	})

	client := NewClient(WithBaseURL("http://catalog.test"), WithHTTPClient(&http.Client{Transport: rt}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.FetchProduct(ctx, 5)
	if pkgerrors.As(err).Code() != pkgerrors.CodeUpstreamTimeout {
		t.Fatalf("expected upstream-timeout code, got %v", err)
	}
}

func TestClientFetchAllProducts(t *testing.T) {
	respBody := `[{"id":1,"title":"Shirt","price":22.3},{"id":2,"title":"Jacket","price":109.95}]`

	var capturedURL string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(respBody)),
			Header:     http.Header{},
		}, nil
	})

	client := NewClient(WithBaseURL("http://catalog.test"), WithHTTPClient(&http.Client{Transport: rt}))

	products, err := client.FetchAllProducts(context.Background())
	if err != nil {
		t.Fatalf("fetch all products: %v", err)
	}
	if capturedURL != "http://catalog.test/products" {
		t.Fatalf("unexpected URL %q", capturedURL)
	}
	if len(products) != 2 || products[1].Title != "Jacket" {
		t.Fatalf("unexpected products %+v", products)
	}
}

func TestClientFetchProductRejectsNonPositiveID(t *testing.T) {
	client := NewClient(WithBaseURL("http://catalog.test"))
	_, err := client.FetchProduct(context.Background(), 0)
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
