package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/money-manager/pkg/ledger"
	"github.com/evgeny-myasishchev/money-manager/pkg/lib-core-golang/router"
)

type handlers struct {
	engine ledger.Engine
	now    func() time.Time
}

type listParams struct {
	window   ledger.Window
	division string
}

func bindWindow(rawValue string) (interface{}, error) {
	window, err := ledger.ParseWindow(rawValue)
	if err != nil {
		return nil, toHTTPError(err)
	}
	return window, nil
}

func (h *handlers) ping(w http.ResponseWriter, req *http.Request, toolkit router.HandlerToolkit) error {
	return toolkit.WriteJSON(map[string]string{"status": "ok"})
}

func (h *handlers) windowed(req *http.Request, toolkit router.HandlerToolkit, owner string) ([]ledger.Transaction, time.Time, error) {
	var params listParams
	if err := toolkit.BindParams().
		QueryParam("window").Custom(&params.window, bindWindow).
		QueryParam("division").String(&params.division).
		Validate(&params); err != nil {
		return nil, time.Time{}, err
	}
	var opts []ledger.ListOpt
	if params.division != "" {
		opts = append(opts, ledger.WithDivision(params.division))
	}
	txs, err := h.engine.ListByOwner(req.Context(), owner, opts...)
	if err != nil {
		return nil, time.Time{}, err
	}
	now := h.now()
	return ledger.Filter(txs, params.window, now), now, nil
}

func (h *handlers) listTransactions(w http.ResponseWriter, req *http.Request, toolkit router.HandlerToolkit, owner string) error {
	txs, now, err := h.windowed(req, toolkit, owner)
	if err != nil {
		return err
	}
	return toolkit.WriteJSON(ledger.Rows(txs, now))
}

func (h *handlers) summary(w http.ResponseWriter, req *http.Request, toolkit router.HandlerToolkit, owner string) error {
	txs, _, err := h.windowed(req, toolkit, owner)
	if err != nil {
		return err
	}
	return toolkit.WriteJSON(ledger.Summarize(txs))
}

// bindPayload reports malformed json as a validation failure of the payload
func bindPayload(req *http.Request, toolkit router.HandlerToolkit, receiver interface{}) error {
	if err := toolkit.BindPayload(receiver); err != nil {
		var httpErr router.HTTPError
		if errors.As(err, &httpErr) {
			return err
		}
		logger.WithError(err).Info(req.Context(), "Failed to parse payload")
		return &ledger.ValidationError{Field: "payload", Reason: "must be a valid json object"}
	}
	return nil
}

func (h *handlers) createTransaction(w http.ResponseWriter, req *http.Request, toolkit router.HandlerToolkit, owner string) error {
	var input ledger.Input
	if err := bindPayload(req, toolkit, &input); err != nil {
		return err
	}
	if ledger.Type(strings.ToUpper(strings.TrimSpace(string(input.Type)))) == ledger.TypeTransfer {
		transfer, err := h.engine.CreateTransfer(req.Context(), owner, input)
		if err != nil {
			return err
		}
		return toolkit.WriteJSON(transfer, toolkit.WithStatus(http.StatusCreated))
	}
	trx, err := h.engine.Create(req.Context(), owner, input)
	if err != nil {
		return err
	}
	return toolkit.WriteJSON(trx, toolkit.WithStatus(http.StatusCreated))
}

func (h *handlers) transactionID(toolkit router.HandlerToolkit) (string, error) {
	var params struct {
		ID string `validate:"required"`
	}
	if err := toolkit.BindParams().PathParam("id").String(&params.ID).Validate(&params); err != nil {
		return "", err
	}
	return params.ID, nil
}

func (h *handlers) updateTransaction(w http.ResponseWriter, req *http.Request, toolkit router.HandlerToolkit, owner string) error {
	id, err := h.transactionID(toolkit)
	if err != nil {
		return err
	}
	var patch ledger.Patch
	if err := bindPayload(req, toolkit, &patch); err != nil {
		return err
	}
	trx, err := h.engine.Update(req.Context(), owner, id, patch)
	if err != nil {
		return err
	}
	return toolkit.WriteJSON(ledger.Row{Transaction: *trx, EditStatus: ledger.EditStatusOf(*trx, h.now())})
}

func (h *handlers) deleteTransaction(w http.ResponseWriter, req *http.Request, toolkit router.HandlerToolkit, owner string) error {
	id, err := h.transactionID(toolkit)
	if err != nil {
		return err
	}
	if err := h.engine.Delete(req.Context(), owner, id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
