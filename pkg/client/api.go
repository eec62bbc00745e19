package client

import (
	"context"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/money-manager/pkg/ledger"
	"github.com/evgeny-myasishchev/money-manager/pkg/lib-core-golang/request"
	"github.com/evgeny-myasishchev/money-manager/pkg/types"
)

const ownerHeader = "X-Owner"

// Query narrows listed transactions. Empty values mean no restriction
type Query struct {
	Window   ledger.Window
	Division string
}

func (q Query) encode() string {
	values := url.Values{}
	if q.Window != "" {
		values.Set("window", string(q.Window))
	}
	if q.Division != "" {
		values.Set("division", q.Division)
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

// API is an interface to communicate with the ledger server
type API interface {
	ListTransactions(ctx context.Context, query Query) ([]ledger.Row, error)
	Summary(ctx context.Context, query Query) (*ledger.Summary, error)
	CreateTransaction(ctx context.Context, input ledger.Input) (*ledger.Transaction, error)
	CreateTransfer(ctx context.Context, input ledger.Input) (*ledger.Transfer, error)
	UpdateTransaction(ctx context.Context, id string, patch ledger.Patch) (*ledger.Row, error)
	DeleteTransaction(ctx context.Context, id string) error
}

type api struct {
	baseURL string
	owner   string
	idToken types.IDToken
	opts    []request.SendOpt
}

func (a *api) authorize(factory request.ReqFactory) request.ReqFactory {
	if a.idToken != "" {
		return factory.WithHeader("Authorization", "Bearer "+a.idToken.Value())
	}
	return factory.WithHeader(ownerHeader, a.owner)
}

func (a *api) do(ctx context.Context, factory request.ReqFactory) request.ResFactory {
	return request.Do(ctx, a.authorize(factory), a.opts...)
}

func (a *api) ListTransactions(ctx context.Context, query Query) ([]ledger.Row, error) {
	var rows []ledger.Row
	if err := a.do(ctx, request.Get(a.baseURL+"/v1/transactions"+query.encode())).DecodeJSON(&rows); err != nil {
		return nil, errors.Wrap(err, "Failed to list transactions")
	}
	return rows, nil
}

func (a *api) Summary(ctx context.Context, query Query) (*ledger.Summary, error) {
	var summary ledger.Summary
	if err := a.do(ctx, request.Get(a.baseURL+"/v1/summary"+query.encode())).DecodeJSON(&summary); err != nil {
		return nil, errors.Wrap(err, "Failed to get summary")
	}
	return &summary, nil
}

func (a *api) CreateTransaction(ctx context.Context, input ledger.Input) (*ledger.Transaction, error) {
	if ledger.Type(strings.ToUpper(string(input.Type))) == ledger.TypeTransfer {
		return nil, errors.New("Transfers should be created with CreateTransfer")
	}
	var trx ledger.Transaction
	if err := a.do(ctx, request.Post(a.baseURL+"/v1/transactions", input)).DecodeJSON(&trx); err != nil {
		return nil, errors.Wrap(err, "Failed to create transaction")
	}
	return &trx, nil
}

func (a *api) CreateTransfer(ctx context.Context, input ledger.Input) (*ledger.Transfer, error) {
	input.Type = ledger.TypeTransfer
	var transfer ledger.Transfer
	if err := a.do(ctx, request.Post(a.baseURL+"/v1/transactions", input)).DecodeJSON(&transfer); err != nil {
		return nil, errors.Wrap(err, "Failed to create transfer")
	}
	return &transfer, nil
}

func (a *api) UpdateTransaction(ctx context.Context, id string, patch ledger.Patch) (*ledger.Row, error) {
	var row ledger.Row
	if err := a.do(ctx, request.Put(a.baseURL+"/v1/transactions/"+url.PathEscape(id), patch)).DecodeJSON(&row); err != nil {
		return nil, errors.Wrapf(err, "Failed to update transaction %v", id)
	}
	return &row, nil
}

func (a *api) DeleteTransaction(ctx context.Context, id string) error {
	if err := a.do(ctx, request.Delete(a.baseURL+"/v1/transactions/"+url.PathEscape(id))).Discard(); err != nil {
		return errors.Wrapf(err, "Failed to delete transaction %v", id)
	}
	return nil
}

// APIOpt is an option of the api
type APIOpt func(a *api)

// WithOwner identifies requests with the owner header
func WithOwner(owner string) APIOpt {
	return func(a *api) {
		a.owner = owner
	}
}

// WithIDToken identifies requests with a bearer id token. Takes precedence over the owner
func WithIDToken(idToken types.IDToken) APIOpt {
	return func(a *api) {
		a.idToken = idToken
	}
}

// WithSendOpts sets options of every request sent
func WithSendOpts(opts ...request.SendOpt) APIOpt {
	return func(a *api) {
		a.opts = append(a.opts, opts...)
	}
}

// NewAPI returns an instance of the ledger server API
func NewAPI(baseURL string, opts ...APIOpt) (API, error) {
	a := &api{baseURL: strings.TrimRight(baseURL, "/")}
	for _, opt := range opts {
		opt(a)
	}
	if a.baseURL == "" {
		return nil, errors.New("Ledger API url is required")
	}
	if a.owner == "" && a.idToken == "" {
		return nil, errors.New("Owner or ID token is required")
	}
	return a, nil
}
