package request

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"gopkg.in/h2non/gock.v1"

	"github.com/stretchr/testify/assert"

	"github.com/bxcodec/faker/v3"

	"github.com/evgeny-myasishchev/money-manager/pkg/lib-core-golang/diag"
)

func TestDo(t *testing.T) {
	defer gock.Off()
	baseURL := "http://" + faker.DomainName()
	logger := diag.CreateLogger()

	type tcFn func(*testing.T)
	tests := []func() (string, tcFn){
		func() (string, tcFn) {
			return "should send the request and return response", func(t *testing.T) {
				expectedBody := faker.Sentence()

				gock.New(baseURL).
					Get("/").
					Reply(200).
					BodyString(expectedBody)

				resp := Do(context.TODO(), Get(baseURL), withLogger(logger))
				if !assert.True(t, gock.IsDone(), "No request performed") {
					return
				}

				respVal, err := resp()
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, 200, respVal.StatusCode)

				actualBody, err := resp.ReadAll()
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, expectedBody, string(actualBody))
			}
		},
		func() (string, tcFn) {
			return "should send json payload with headers and decode response", func(t *testing.T) {
				payload := map[string]interface{}{"description": faker.Sentence()}
				headerVal := faker.Word()
				want := map[string]interface{}{"id": faker.UUIDHyphenated()}

				gock.New(baseURL).
					Post("/v1/items").
					MatchHeader("X-Owner", headerVal).
					MatchType("json").
					JSON(payload).
					Reply(201).
					JSON(want)

				var got map[string]interface{}
				err := Do(context.TODO(), Post(baseURL+"/v1/items", payload).WithHeader("X-Owner", headerVal)).DecodeJSON(&got)
				if !assert.NoError(t, err) {
					return
				}
				assert.True(t, gock.IsDone())
				assert.Equal(t, want, got)
			}
		},
		func() (string, tcFn) {
			return "should send put and delete requests", func(t *testing.T) {
				gock.New(baseURL).Put("/v1/items/1").Reply(200).JSON(map[string]string{})
				gock.New(baseURL).Delete("/v1/items/1").Reply(204)

				assert.NoError(t, Do(context.TODO(), Put(baseURL+"/v1/items/1", map[string]string{})).Discard())
				assert.NoError(t, Do(context.TODO(), Delete(baseURL+"/v1/items/1")).DecodeJSON(&struct{}{}))
				assert.True(t, gock.IsDone())
			}
		},
		func() (string, tcFn) {
			return "should fail with structured http error if not 2xx", func(t *testing.T) {
				want := &HTTPError{
					StatusCode: http.StatusConflict,
					Status:     http.StatusText(http.StatusConflict),
					Message:    faker.Sentence(),
					Kind:       "kind-" + faker.Word(),
					Field:      "field-" + faker.Word(),
				}
				gock.New(baseURL).Get("/v1/conflict").Reply(http.StatusConflict).JSON(want)

				_, err := Do(context.TODO(), Get(baseURL+"/v1/conflict"))()
				assert.Equal(t, want, err)
			}
		},
		func() (string, tcFn) {
			return "should fail with plain http error if body is not json", func(t *testing.T) {
				body := faker.Sentence()
				gock.New(baseURL).Get("/v1/broken").Reply(http.StatusBadGateway).BodyString(body)

				_, err := Do(context.TODO(), Get(baseURL+"/v1/broken")).ReadAll()
				assert.Equal(t, &HTTPError{
					StatusCode: http.StatusBadGateway,
					Status:     http.StatusText(http.StatusBadGateway),
					Message:    body,
				}, err)
			}
		},
		func() (string, tcFn) {
			return "should send with a given client", func(t *testing.T) {
				body := faker.Sentence()
				var gotURL string
				client := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
					gotURL = req.URL.String()
					return &http.Response{
						StatusCode: http.StatusOK,
						Body:       io.NopCloser(strings.NewReader(body)),
						Header:     http.Header{},
						Request:    req,
					}, nil
				})}

				got, err := Do(context.TODO(), Get(baseURL+"/v1/custom"), WithClient(client)).ReadAll()
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, body, string(got))
				assert.Equal(t, baseURL+"/v1/custom", gotURL)
			}
		},
		func() (string, tcFn) {
			return "should fail if request can not be created", func(t *testing.T) {
				_, err := Do(context.TODO(), Get("://bad-url"))()
				assert.Error(t, err)
			}
		},
	}
	for _, tt := range tests {
		t.Run(tt())
	}
}

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
