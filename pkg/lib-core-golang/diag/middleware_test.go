package diag

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/bxcodec/faker/v3"
	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/assert"
)

type loggedEntry struct {
	ctx  context.Context
	msg  string
	data MsgData
}

// recordingLogger keeps entries in memory. Data is attached to the next entry only
type recordingLogger struct {
	entries []loggedEntry
	data    MsgData
}

func (l *recordingLogger) log(ctx context.Context, msg string, args ...interface{}) {
	l.entries = append(l.entries, loggedEntry{ctx: ctx, msg: fmt.Sprintf(msg, args...), data: l.data})
	l.data = nil
}

func (l *recordingLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, msg, args...)
}

func (l *recordingLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, msg, args...)
}

func (l *recordingLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, msg, args...)
}

func (l *recordingLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.log(ctx, msg, args...)
}

func (l *recordingLogger) WithError(err error) Logger {
	return l
}

func (l *recordingLogger) WithData(data MsgData) Logger {
	l.data = data
	return l
}

func obfuscated(value string) string {
	return fmt.Sprint("*obfuscated, length=", len(value), "*")
}

func TestRequestIDMiddleware(t *testing.T) {
	type testCase struct {
		name   string
		req    *http.Request
		setup  []requestIDMiddlewareSetup
		assert func(t *testing.T, requestID string, recorder *httptest.ResponseRecorder)
	}
	tests := []func() testCase{
		func() testCase {
			requestID := uuid.NewV4().String()
			req := httptest.NewRequest("GET", "/v1/transactions", nil)
			req.Header.Add("X-Request-ID", requestID)
			return testCase{
				name: "reuse incoming request id",
				req:  req,
				assert: func(t *testing.T, got string, recorder *httptest.ResponseRecorder) {
					assert.Equal(t, requestID, got)
					assert.Equal(t, requestID, recorder.Header().Get("X-Request-ID"))
				},
			}
		},
		func() testCase {
			requestID := uuid.NewV4()
			return testCase{
				name: "generate request id",
				req:  httptest.NewRequest("POST", "/v1/transactions", nil),
				setup: []requestIDMiddlewareSetup{
					func(cfg *requestIDMiddlewareCfg) {
						cfg.newUUID = func() uuid.UUID { return requestID }
					},
				},
				assert: func(t *testing.T, got string, recorder *httptest.ResponseRecorder) {
					assert.Equal(t, requestID.String(), got)
					assert.Equal(t, requestID.String(), recorder.Header().Get("X-Request-ID"))
				},
			}
		},
		func() testCase {
			return testCase{
				name: "generate request id with defaults",
				req:  httptest.NewRequest("GET", "/v1/summary", nil),
				assert: func(t *testing.T, got string, recorder *httptest.ResponseRecorder) {
					_, err := uuid.FromString(got)
					assert.NoError(t, err)
				},
			}
		},
	}
	for _, tt := range tests {
		tt := tt()
		t.Run(tt.name, func(t *testing.T) {
			var got string
			next := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				got = RequestIDValue(req.Context())
			})
			recorder := httptest.NewRecorder()
			NewRequestIDMiddleware(tt.setup...)(next).ServeHTTP(recorder, tt.req)
			tt.assert(t, got, recorder)
		})
	}
}

func TestLogRequestsMiddleware(t *testing.T) {
	rand.Seed(time.Now().UnixNano())

	type testCase struct {
		name   string
		req    *http.Request
		opts   []LogRequestsMiddlewareOpt
		next   http.HandlerFunc
		assert func(t *testing.T, req *http.Request, entries []loggedEntry)
	}
	noop := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {})

	tests := []func() testCase{
		func() testCase {
			path := "/v1/transactions/" + faker.UUIDHyphenated()
			req := httptest.NewRequest("PUT", path+"?window=weekly&division="+faker.Word(), nil)
			req.Header.Set("User-Agent", "wallet/"+faker.Word())
			req.Header.Add("X-Trace", faker.Word())
			req.Header.Add("X-Trace", faker.Word())
			remoteIP := faker.IPv4()
			remotePort := strconv.Itoa(1024 + rand.Intn(60000))
			req.RemoteAddr = remoteIP + ":" + remotePort

			statuses := []int{http.StatusOK, http.StatusBadRequest, http.StatusConflict, http.StatusServiceUnavailable}
			status := statuses[rand.Intn(len(statuses))]
			duration := time.Duration(rand.Int63n(1000)) * time.Millisecond
			memory := rand.Float64()
			started := time.Now()
			times := []time.Time{started, started.Add(duration)}
			return testCase{
				name: "log begin and end of the request",
				req:  req,
				opts: []LogRequestsMiddlewareOpt{func(cfg *logRequestsMiddlewareCfg) {
					cfg.runtimeMemMb = func() float64 { return memory }
					cfg.now = func() time.Time {
						now := times[0]
						times = times[1:]
						return now
					}
				}},
				next: func(w http.ResponseWriter, req *http.Request) {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(status)
				},
				assert: func(t *testing.T, req *http.Request, entries []loggedEntry) {
					assert.Equal(t, []loggedEntry{
						{
							ctx: req.Context(),
							msg: "BEGIN REQ: PUT " + path,
							data: MsgData{
								"method":        "PUT",
								"url":           req.URL.RequestURI(),
								"path":          path,
								"userAgent":     req.UserAgent(),
								"query":         flattenAndObfuscate(req.URL.Query()),
								"headers":       flattenAndObfuscate(req.Header),
								"remoteAddress": remoteIP,
								"remotePort":    remotePort,
								"memoryUsageMb": memory,
							},
						},
						{
							ctx: req.Context(),
							msg: fmt.Sprintf("END REQ: %v - %v", status, path),
							data: MsgData{
								"statusCode":    status,
								"headers":       map[string]string{"Content-Type": "application/json"},
								"duration":      duration.Seconds(),
								"memoryUsageMb": memory,
							},
						},
					}, entries)
				},
			}
		},
		func() testCase {
			return testCase{
				name: "report 200 when status is not written",
				req:  httptest.NewRequest("GET", "/v1/summary", nil),
				next: noop,
				assert: func(t *testing.T, req *http.Request, entries []loggedEntry) {
					if assert.Len(t, entries, 2) {
						assert.Equal(t, "END REQ: 200 - /v1/summary", entries[1].msg)
						assert.Equal(t, http.StatusOK, entries[1].data["statusCode"])
					}
				},
			}
		},
		func() testCase {
			path := "/v1/internal/" + faker.Word()
			return testCase{
				name: "skip ignored paths",
				req:  httptest.NewRequest("GET", path, nil),
				opts: []LogRequestsMiddlewareOpt{IgnorePath(path)},
				next: noop,
				assert: func(t *testing.T, req *http.Request, entries []loggedEntry) {
					assert.Empty(t, entries)
				},
			}
		},
		func() testCase {
			return testCase{
				name: "skip ping",
				req:  httptest.NewRequest("GET", "/v1/healthcheck/ping", nil),
				next: noop,
				assert: func(t *testing.T, req *http.Request, entries []loggedEntry) {
					assert.Empty(t, entries)
				},
			}
		},
		func() testCase {
			return testCase{
				name: "skip metrics scrape",
				req:  httptest.NewRequest("GET", "/metrics", nil),
				next: noop,
				assert: func(t *testing.T, req *http.Request, entries []loggedEntry) {
					assert.Empty(t, entries)
				},
			}
		},
		func() testCase {
			token := faker.UUIDDigit()
			owner := faker.Email()
			req := httptest.NewRequest("GET", "/v1/transactions", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("X-Owner", owner)
			return testCase{
				name: "obfuscate authorization and given headers",
				req:  req,
				opts: []LogRequestsMiddlewareOpt{ObfuscateHeaders("X-Owner")},
				next: noop,
				assert: func(t *testing.T, req *http.Request, entries []loggedEntry) {
					if !assert.Len(t, entries, 2) {
						return
					}
					headers := entries[0].data["headers"].(map[string]string)
					assert.Equal(t, obfuscated("Bearer "+token), headers["Authorization"])
					assert.Equal(t, obfuscated(owner), headers["X-Owner"])
				},
			}
		},
		func() testCase {
			remoteIP := faker.IPv4()
			req := httptest.NewRequest("GET", "/v1/transactions", nil)
			req.RemoteAddr = remoteIP
			return testCase{
				name: "warn on remote address without port",
				req:  req,
				next: noop,
				assert: func(t *testing.T, req *http.Request, entries []loggedEntry) {
					if !assert.Len(t, entries, 3) {
						return
					}
					assert.Equal(t, "Can not parse remote addr: "+remoteIP, entries[0].msg)
					assert.Equal(t, remoteIP, entries[1].data["remoteAddress"])
					assert.Equal(t, "", entries[1].data["remotePort"])
				},
			}
		},
	}
	for _, tt := range tests {
		tt := tt()
		t.Run(tt.name, func(t *testing.T) {
			logger := &recordingLogger{}
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				nextCalled = true
				tt.next(w, req)
			})
			mw := NewLogRequestsMiddleware(append([]LogRequestsMiddlewareOpt{WithLogger(logger)}, tt.opts...)...)
			mw(next).ServeHTTP(httptest.NewRecorder(), tt.req)
			assert.True(t, nextCalled, "Next should have been called")
			tt.assert(t, tt.req, logger.entries)
		})
	}
}

func Test_flattenAndObfuscate(t *testing.T) {
	owner := faker.Email()
	values := map[string][]string{
		"Accept":  {"application/json"},
		"X-Trace": {"first", "second"},
		"X-Owner": {owner},
	}
	assert.Equal(t, map[string]string{
		"Accept":  "application/json",
		"X-Trace": "first, second",
		"X-Owner": owner,
	}, flattenAndObfuscate(values))
	assert.Equal(t, map[string]string{
		"Accept":  "application/json",
		"X-Trace": "first, second",
		"X-Owner": obfuscated(owner),
	}, flattenAndObfuscate(values, "X-Owner", "X-Missing"))
}
