package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/money-manager/pkg/lib-core-golang/diag"
)

var defaultLogger = diag.CreateLogger()

type sendCfg struct {
	logger diag.Logger
	client *http.Client
}

// SendOpt is a send specific option
type SendOpt func(cfg *sendCfg)

func withLogger(logger diag.Logger) SendOpt {
	return func(cfg *sendCfg) {
		cfg.logger = logger
	}
}

// WithClient sends requests with a given client instead of a default one
func WithClient(client *http.Client) SendOpt {
	return func(cfg *sendCfg) {
		cfg.client = client
	}
}

// HTTPError is a non 2xx response. Fields are taken from
// the json body when the server responded with a structured error
type HTTPError struct {
	StatusCode int    `json:"statusCode"`
	Status     string `json:"error"`
	Message    string `json:"message"`
	Kind       string `json:"kind,omitempty"`
	Field      string `json:"field,omitempty"`
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("[%v](%v): %v", e.StatusCode, e.Status, e.Message)
}

// NewHTTPErrorFromResponse builds an error from the response and closes the body
func NewHTTPErrorFromResponse(res *http.Response) error {
	defer res.Body.Close()
	httpErr := &HTTPError{}
	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "Failed to read error response (%v)", res.Status)
	}
	if jsonErr := json.Unmarshal(body, httpErr); jsonErr != nil {
		httpErr.Message = string(body)
	}
	httpErr.StatusCode = res.StatusCode
	if httpErr.Status == "" {
		httpErr.Status = http.StatusText(res.StatusCode)
	}
	return httpErr
}

// ReqFactory is a function that creates an instance of a request
type ReqFactory func() (*http.Request, error)

// WithHeader returns a factory that sets a header on a created request
func (f ReqFactory) WithHeader(key, value string) ReqFactory {
	return func() (*http.Request, error) {
		req, err := f()
		if err != nil {
			return nil, err
		}
		req.Header.Set(key, value)
		return req, nil
	}
}

// Get creates a new req factory that creates a get request for given url
func Get(url string) ReqFactory {
	return func() (*http.Request, error) {
		return http.NewRequest("GET", url, nil)
	}
}

// Delete creates a new req factory that creates a delete request for given url
func Delete(url string) ReqFactory {
	return func() (*http.Request, error) {
		return http.NewRequest("DELETE", url, nil)
	}
}

func withJSONBody(method string, url string, payload interface{}) ReqFactory {
	return func() (*http.Request, error) {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to marshal %v %v payload", method, url)
		}
		req, err := http.NewRequest(method, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("content-type", "application/json")
		return req, nil
	}
}

// Post creates a new req factory that creates a post request with json payload
func Post(url string, payload interface{}) ReqFactory {
	return withJSONBody("POST", url, payload)
}

// Put creates a new req factory that creates a put request with json payload
func Put(url string, payload interface{}) ReqFactory {
	return withJSONBody("PUT", url, payload)
}

// ResFactory is a function that holds a request result with a response or error
type ResFactory func() (*http.Response, error)

// ReadAll will read entire body as a byte array
func (f ResFactory) ReadAll() ([]byte, error) {
	res, err := f()
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	return ioutil.ReadAll(res.Body)
}

// DecodeJSON will decode response body into the receiver
func (f ResFactory) DecodeJSON(receiver interface{}) error {
	res, err := f()
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(receiver); err != nil && err != io.EOF {
		return errors.Wrap(err, "Failed to decode response")
	}
	return nil
}

// Discard will drain and close the response body
func (f ResFactory) Discard() error {
	res, err := f()
	if err != nil {
		return err
	}
	defer res.Body.Close()
	_, err = io.Copy(ioutil.Discard, res.Body)
	return err
}

func newResFactory(res *http.Response, err error) ResFactory {
	if err == nil && res.StatusCode >= 300 {
		err = NewHTTPErrorFromResponse(res)
		res = nil
	}
	return func() (*http.Response, error) {
		return res, err
	}
}

// Do will send the request. Will fail if response status is other than 2xx
func Do(ctx context.Context, factory ReqFactory, opts ...SendOpt) ResFactory {
	cfg := sendCfg{
		logger: defaultLogger,
		client: &http.Client{Transport: http.DefaultTransport},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	req, err := factory()
	if err != nil {
		return newResFactory(nil, err)
	}
	req = req.WithContext(ctx)
	startedAt := time.Now()
	res, err := cfg.client.Do(req)
	if err != nil {
		cfg.logger.WithError(err).Info(ctx, "%v %v failed", req.Method, req.URL)
		return newResFactory(nil, err)
	}
	cfg.logger.
		WithData(diag.MsgData{
			"statusCode": res.StatusCode,
			"duration":   time.Since(startedAt).String(),
		}).
		Debug(ctx, "%v %v completed", req.Method, req.URL)
	return newResFactory(res, nil)
}
