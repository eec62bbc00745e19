package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/bxcodec/faker/v3"
	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/evgeny-myasishchev/money-manager/pkg/dal"
	"github.com/evgeny-myasishchev/money-manager/pkg/dal/mocks"
	"github.com/evgeny-myasishchev/money-manager/pkg/metrics/memory"
)

func newMockEngine(t *testing.T, opts ...EngineOpt) (Engine, *mocks.MockStorage, *memory.Collector) {
	ctrl := gomock.NewController(t)
	storage := mocks.NewMockStorage(ctrl)
	collector := memory.NewCollector()
	engine := NewEngine(append([]EngineOpt{
		WithStorage(storage),
		WithMetrics(collector),
		WithRetryDelay(0),
	}, opts...)...)
	return engine, storage, collector
}

func transferInput() Input {
	input := randomInput(TypeTransfer)
	input.ToDivision = "Office"
	return input
}

func TestEngine_CreateTransfer_Compensation(t *testing.T) {
	ctx := context.Background()
	type testCase struct {
		name   string
		setup  func(storage *mocks.MockStorage, owner string)
		assert func(t *testing.T, collector *memory.Collector)
	}
	tests := []func() testCase{
		func() testCase {
			var debitID string
			return testCase{
				name: "remove debit when credit fails",
				setup: func(storage *mocks.MockStorage, owner string) {
					gomock.InOrder(
						storage.EXPECT().InsertTransaction(gomock.Any(), gomock.Any()).
							DoAndReturn(func(ctx context.Context, dto *dal.TransactionDTO) error {
								debitID = dto.ID
								assert.Equal(t, string(LegOut), dto.Leg)
								return nil
							}),
						storage.EXPECT().InsertTransaction(gomock.Any(), gomock.Any()).
							Return(errors.New("insert failed")),
						storage.EXPECT().DeleteTransaction(gomock.Any(), owner, gomock.Any()).
							DoAndReturn(func(ctx context.Context, owner string, id string) error {
								assert.Equal(t, debitID, id)
								return nil
							}),
					)
				},
				assert: func(t *testing.T, collector *memory.Collector) {
					assert.Equal(t, int64(1), collector.Compensations(true))
				},
			}
		},
		func() testCase {
			return testCase{
				name: "report failed compensation",
				setup: func(storage *mocks.MockStorage, owner string) {
					gomock.InOrder(
						storage.EXPECT().InsertTransaction(gomock.Any(), gomock.Any()).Return(nil),
						storage.EXPECT().InsertTransaction(gomock.Any(), gomock.Any()).
							Return(errors.New("insert failed")),
						storage.EXPECT().DeleteTransaction(gomock.Any(), owner, gomock.Any()).
							Return(errors.New("delete failed")),
					)
				},
				assert: func(t *testing.T, collector *memory.Collector) {
					assert.Equal(t, int64(1), collector.Compensations(false))
				},
			}
		},
		func() testCase {
			return testCase{
				name: "nothing to compensate when debit fails",
				setup: func(storage *mocks.MockStorage, owner string) {
					storage.EXPECT().InsertTransaction(gomock.Any(), gomock.Any()).
						Return(&dal.UnavailableError{Op: "insert transaction", Cause: errors.New("busy")})
				},
				assert: func(t *testing.T, collector *memory.Collector) {
					assert.Equal(t, int64(0), collector.Compensations(true))
					assert.Equal(t, int64(0), collector.Compensations(false))
				},
			}
		},
	}
	for _, tt := range tests {
		tt := tt()
		t.Run(tt.name, func(t *testing.T) {
			engine, storage, collector := newMockEngine(t)
			owner := faker.Email()
			tt.setup(storage, owner)

			got, err := engine.CreateTransfer(ctx, owner, transferInput())
			assert.Nil(t, got)
			var failed *TransferFailedError
			assert.True(t, errors.As(err, &failed), "Unexpected error: %v", err)
			kind, _ := KindOf(err)
			assert.Equal(t, KindTransferFailed, kind)
			assert.Equal(t, int64(0), collector.Transactions(string(TypeTransfer)))
			tt.assert(t, collector)
		})
	}
}

func TestEngine_ValidationNeverReachesStore(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newMockEngine(t)
	owner := faker.Email()

	input := randomInput(TypeIncome)
	input.Description = ""
	_, err := engine.Create(ctx, owner, input)
	assert.Equal(t, &ValidationError{Field: "description", Reason: "is required"}, err)

	transfer := transferInput()
	transfer.ToDivision = transfer.Division
	_, err = engine.CreateTransfer(ctx, owner, transfer)
	kind, _ := KindOf(err)
	assert.Equal(t, KindValidation, kind)
}

func TestEngine_ListByOwner_Retries(t *testing.T) {
	ctx := context.Background()
	unavailable := func() error {
		return &dal.UnavailableError{Op: "list transactions", Cause: errors.New("database is locked")}
	}
	type testCase struct {
		name   string
		opts   []EngineOpt
		setup  func(storage *mocks.MockStorage, owner string)
		assert func(t *testing.T, got []Transaction, err error, collector *memory.Collector)
	}
	tests := []func() testCase{
		func() testCase {
			return testCase{
				name: "recover after transient failures",
				setup: func(storage *mocks.MockStorage, owner string) {
					gomock.InOrder(
						storage.EXPECT().ListTransactionsByOwner(gomock.Any(), owner).Return(nil, unavailable()).Times(2),
						storage.EXPECT().ListTransactionsByOwner(gomock.Any(), owner).Return([]dal.TransactionDTO{
							{ID: "trx-1", Owner: owner, Type: "INCOME", Amount: "10.5", CreatedAt: time.Now()},
						}, nil),
					)
				},
				assert: func(t *testing.T, got []Transaction, err error, collector *memory.Collector) {
					if !assert.NoError(t, err) || !assert.Len(t, got, 1) {
						return
					}
					assert.Equal(t, "10.5", got[0].Amount.String())
					assert.Equal(t, int64(2), collector.Operation("list transactions").Retries)
				},
			}
		},
		func() testCase {
			return testCase{
				name: "give up after configured attempts",
				opts: []EngineOpt{WithReadRetries(2)},
				setup: func(storage *mocks.MockStorage, owner string) {
					storage.EXPECT().ListTransactionsByOwner(gomock.Any(), owner).Return(nil, unavailable()).Times(2)
				},
				assert: func(t *testing.T, got []Transaction, err error, collector *memory.Collector) {
					var storeErr *StoreUnavailableError
					if assert.True(t, errors.As(err, &storeErr), "Unexpected error: %v", err) {
						assert.Equal(t, "list transactions", storeErr.Op)
					}
					assert.Equal(t, int64(1), collector.Operation("list transactions").Retries)
					assert.Equal(t, memory.OperationStats{Calls: 1, Failures: 1}, collector.Operation("list"))
				},
			}
		},
		func() testCase {
			return testCase{
				name: "do not retry other errors",
				setup: func(storage *mocks.MockStorage, owner string) {
					storage.EXPECT().ListTransactionsByOwner(gomock.Any(), owner).Return(nil, errors.New("syntax error"))
				},
				assert: func(t *testing.T, got []Transaction, err error, collector *memory.Collector) {
					assert.EqualError(t, err, "Failed to list transactions: syntax error")
					_, ok := KindOf(err)
					assert.False(t, ok)
				},
			}
		},
		func() testCase {
			return testCase{
				name: "fail on broken amount",
				setup: func(storage *mocks.MockStorage, owner string) {
					storage.EXPECT().ListTransactionsByOwner(gomock.Any(), owner).Return([]dal.TransactionDTO{
						{ID: "trx-1", Owner: owner, Type: "INCOME", Amount: "ten"},
					}, nil)
				},
				assert: func(t *testing.T, got []Transaction, err error, collector *memory.Collector) {
					assert.Error(t, err)
					assert.Nil(t, got)
				},
			}
		},
	}
	for _, tt := range tests {
		tt := tt()
		t.Run(tt.name, func(t *testing.T) {
			engine, storage, collector := newMockEngine(t, tt.opts...)
			owner := faker.Email()
			tt.setup(storage, owner)
			got, err := engine.ListByOwner(ctx, owner)
			tt.assert(t, got, err, collector)
		})
	}
}

func TestEngine_ListByOwner_RetryCanceled(t *testing.T) {
	engine, storage, _ := newMockEngine(t, WithRetryDelay(time.Hour))
	owner := faker.Email()
	ctx, cancel := context.WithCancel(context.Background())
	storage.EXPECT().ListTransactionsByOwner(gomock.Any(), owner).
		DoAndReturn(func(context.Context, string) ([]dal.TransactionDTO, error) {
			cancel()
			return nil, &dal.UnavailableError{Op: "list transactions", Cause: errors.New("busy")}
		})

	_, err := engine.ListByOwner(ctx, owner)
	assert.Equal(t, context.Canceled, errors.Cause(err))
}

func TestEngine_Update_RetriesRead(t *testing.T) {
	now := time.Now().UTC()
	engine, storage, _ := newMockEngine(t, WithNow(func() time.Time { return now }))
	owner := faker.Email()
	existing := &dal.TransactionDTO{
		ID:          "trx-" + faker.Word(),
		Owner:       owner,
		Type:        "EXPENSE",
		Amount:      "5",
		Description: "coffee",
		Category:    DefaultCategory,
		Division:    DefaultDivision,
		CreatedAt:   now.Add(-time.Hour),
	}
	gomock.InOrder(
		storage.EXPECT().GetTransaction(gomock.Any(), owner, existing.ID).
			Return(nil, &dal.UnavailableError{Op: "get transaction", Cause: errors.New("busy")}),
		storage.EXPECT().GetTransaction(gomock.Any(), owner, existing.ID).Return(existing, nil),
		storage.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, dto *dal.TransactionDTO) error {
				assert.Equal(t, "6", dto.Amount)
				assert.Equal(t, existing.ID, dto.ID)
				return nil
			}),
	)

	got, err := engine.Update(context.Background(), owner, existing.ID, Patch{Amount: NewRawAmount("6")})
	if assert.NoError(t, err) {
		assert.Equal(t, "coffee", got.Description)
	}
}

func TestEngine_Delete_TransferCompensation(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	legsOf := func(owner string) []dal.TransactionDTO {
		transferID := "transfer-" + faker.Word()
		leg := dal.TransactionDTO{
			Owner:       owner,
			Type:        string(TypeTransfer),
			Amount:      "20",
			Description: "savings",
			Category:    DefaultCategory,
			Division:    DefaultDivision,
			ToDivision:  "Savings",
			TransferID:  transferID,
			CreatedAt:   now.Add(-time.Hour),
		}
		debit, credit := leg, leg
		debit.ID, debit.Leg = "debit-"+faker.Word(), string(LegOut)
		credit.ID, credit.Leg = "credit-"+faker.Word(), string(LegIn)
		return []dal.TransactionDTO{debit, credit}
	}
	type testCase struct {
		name   string
		setup  func(storage *mocks.MockStorage, legs []dal.TransactionDTO)
		assert func(t *testing.T, err error, collector *memory.Collector)
	}
	tests := []func() testCase{
		func() testCase {
			return testCase{
				name: "delete both legs",
				setup: func(storage *mocks.MockStorage, legs []dal.TransactionDTO) {
					storage.EXPECT().DeleteTransaction(gomock.Any(), legs[0].Owner, legs[0].ID).Return(nil)
					storage.EXPECT().DeleteTransaction(gomock.Any(), legs[1].Owner, legs[1].ID).Return(nil)
				},
				assert: func(t *testing.T, err error, collector *memory.Collector) {
					assert.NoError(t, err)
					assert.Equal(t, int64(0), collector.Compensations(true))
				},
			}
		},
		func() testCase {
			return testCase{
				name: "restore debit when credit delete fails",
				setup: func(storage *mocks.MockStorage, legs []dal.TransactionDTO) {
					gomock.InOrder(
						storage.EXPECT().DeleteTransaction(gomock.Any(), legs[0].Owner, legs[0].ID).Return(nil),
						storage.EXPECT().DeleteTransaction(gomock.Any(), legs[1].Owner, legs[1].ID).
							Return(errors.New("delete failed")),
						storage.EXPECT().InsertTransaction(gomock.Any(), gomock.Any()).
							DoAndReturn(func(ctx context.Context, dto *dal.TransactionDTO) error {
								assert.Equal(t, legs[0].ID, dto.ID)
								assert.Equal(t, string(LegOut), dto.Leg)
								assert.Equal(t, legs[0].TransferID, dto.TransferID)
								return nil
							}),
					)
				},
				assert: func(t *testing.T, err error, collector *memory.Collector) {
					assert.EqualError(t, err, "Failed to delete transfer: delete failed")
					assert.Equal(t, int64(1), collector.Compensations(true))
				},
			}
		},
		func() testCase {
			return testCase{
				name: "report failed restore",
				setup: func(storage *mocks.MockStorage, legs []dal.TransactionDTO) {
					gomock.InOrder(
						storage.EXPECT().DeleteTransaction(gomock.Any(), legs[0].Owner, legs[0].ID).Return(nil),
						storage.EXPECT().DeleteTransaction(gomock.Any(), legs[1].Owner, legs[1].ID).
							Return(errors.New("delete failed")),
						storage.EXPECT().InsertTransaction(gomock.Any(), gomock.Any()).
							Return(errors.New("insert failed")),
					)
				},
				assert: func(t *testing.T, err error, collector *memory.Collector) {
					assert.Error(t, err)
					assert.Equal(t, int64(1), collector.Compensations(false))
				},
			}
		},
		func() testCase {
			return testCase{
				name: "nothing to restore when first delete fails",
				setup: func(storage *mocks.MockStorage, legs []dal.TransactionDTO) {
					storage.EXPECT().DeleteTransaction(gomock.Any(), legs[0].Owner, legs[0].ID).
						Return(errors.New("delete failed"))
				},
				assert: func(t *testing.T, err error, collector *memory.Collector) {
					assert.Error(t, err)
					assert.Equal(t, int64(0), collector.Compensations(true))
					assert.Equal(t, int64(0), collector.Compensations(false))
				},
			}
		},
	}
	for _, tt := range tests {
		tt := tt()
		t.Run(tt.name, func(t *testing.T) {
			engine, storage, collector := newMockEngine(t, WithNow(func() time.Time { return now }))
			owner := faker.Email()
			legs := legsOf(owner)
			debit := legs[0]
			storage.EXPECT().GetTransaction(gomock.Any(), owner, debit.ID).Return(&debit, nil)
			storage.EXPECT().ListTransactionsByOwner(gomock.Any(), owner).Return(legs, nil)
			tt.setup(storage, legs)

			err := engine.Delete(ctx, owner, debit.ID)
			tt.assert(t, err, collector)
		})
	}
}
