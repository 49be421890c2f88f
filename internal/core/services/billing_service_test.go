package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/auwerk/otus-service-billing/internal/apperrors"
	"github.com/auwerk/otus-service-billing/internal/core/domain"
	portsrepo "github.com/auwerk/otus-service-billing/internal/core/ports/repositories"
	portssvc "github.com/auwerk/otus-service-billing/internal/core/ports/services"
	"github.com/auwerk/otus-service-billing/internal/core/services"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

// Ensure MockAccountRepository implements portsrepo.AccountRepositoryWithTx
var _ portsrepo.AccountRepositoryWithTx = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockAccountRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockAccountRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByUserName(ctx context.Context, userName string) (*domain.Account, error) {
	args := m.Called(ctx, userName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByUserNameForUpdate(ctx context.Context, tx pgx.Tx, userName string) (*domain.Account, error) {
	args := m.Called(ctx, tx, userName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateBalanceInTx(ctx context.Context, tx pgx.Tx, accountID string, balance decimal.Decimal) error {
	args := m.Called(ctx, tx, accountID, balance)
	return args.Error(0)
}

func (m *MockAccountRepository) DeleteAccountInTx(ctx context.Context, tx pgx.Tx, accountID string) error {
	args := m.Called(ctx, tx, accountID)
	return args.Error(0)
}

// --- Mock OperationRepository ---
type MockOperationRepository struct {
	mock.Mock
}

var _ portsrepo.OperationRepositoryFacade = (*MockOperationRepository)(nil)

func (m *MockOperationRepository) FindOperationByID(ctx context.Context, operationID string) (*domain.Operation, error) {
	args := m.Called(ctx, operationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Operation), args.Error(1)
}

func (m *MockOperationRepository) FindOperationsByAccountID(ctx context.Context, accountID string) ([]domain.Operation, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Operation), args.Error(1)
}

func (m *MockOperationRepository) InsertOperationInTx(ctx context.Context, tx pgx.Tx, operation domain.Operation) (string, error) {
	args := m.Called(ctx, tx, operation)
	return args.String(0), args.Error(1)
}

func (m *MockOperationRepository) CountByRelatedToInTx(ctx context.Context, tx pgx.Tx, operationID string) (int64, error) {
	args := m.Called(ctx, tx, operationID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOperationRepository) DeleteOperationsByAccountIDInTx(ctx context.Context, tx pgx.Tx, accountID string) error {
	args := m.Called(ctx, tx, accountID)
	return args.Error(0)
}

// --- Test Suite Setup ---
type BillingServiceTestSuite struct {
	suite.Suite
	mockAccountRepo   *MockAccountRepository
	mockOperationRepo *MockOperationRepository
	service           portssvc.BillingSvcFacade
	userName          string
	account           domain.Account
}

func (suite *BillingServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockOperationRepo = new(MockOperationRepository)
	suite.service = services.NewBillingService(suite.mockAccountRepo, suite.mockOperationRepo)

	suite.userName = "alice"
	suite.account = domain.Account{
		AccountID: uuid.NewString(),
		UserName:  suite.userName,
		Balance:   decimal.NewFromInt(100),
		CreatedAt: time.Now().UTC(),
	}
}

// expectTx wires up Begin and the deferred Rollback for a single transactional call.
// The mocked transaction handle is nil; the service only threads it through.
func (suite *BillingServiceTestSuite) expectTx(ctx context.Context) {
	suite.mockAccountRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockAccountRepo.On("Rollback", ctx, nil).Return(nil).Once()
}

// balanceEquals matches a decimal argument by value rather than representation.
func balanceEquals(expected decimal.Decimal) interface{} {
	return mock.MatchedBy(func(actual decimal.Decimal) bool {
		return actual.Equal(expected)
	})
}

// --- CreateAccount ---

func (suite *BillingServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()

	suite.mockAccountRepo.On("FindAccountByUserName", ctx, suite.userName).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.MatchedBy(func(a domain.Account) bool {
		return a.UserName == suite.userName && a.Balance.IsZero() && a.AccountID != ""
	})).Return(nil).Once()

	accountID, err := suite.service.CreateAccount(ctx, suite.userName)

	suite.Require().NoError(err)
	suite.NotEmpty(accountID)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *BillingServiceTestSuite) TestCreateAccount_AlreadyExists() {
	ctx := context.Background()

	suite.mockAccountRepo.On("FindAccountByUserName", ctx, suite.userName).Return(&suite.account, nil).Once()

	_, err := suite.service.CreateAccount(ctx, suite.userName)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountAlreadyExists)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *BillingServiceTestSuite) TestCreateAccount_LostRaceOnSave() {
	ctx := context.Background()

	suite.mockAccountRepo.On("FindAccountByUserName", ctx, suite.userName).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.CreateAccount(ctx, suite.userName)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountAlreadyExists)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

// --- GetAccount ---

func (suite *BillingServiceTestSuite) TestGetAccount_WithOperations() {
	ctx := context.Background()
	operations := []domain.Operation{
		{OperationID: uuid.NewString(), AccountID: suite.account.AccountID, Type: domain.Credit, Amount: decimal.NewFromInt(100)},
		{OperationID: uuid.NewString(), AccountID: suite.account.AccountID, Type: domain.Withdraw, Amount: decimal.NewFromInt(30)},
	}

	suite.mockAccountRepo.On("FindAccountByUserName", ctx, suite.userName).Return(&suite.account, nil).Once()
	suite.mockOperationRepo.On("FindOperationsByAccountID", ctx, suite.account.AccountID).Return(operations, nil).Once()

	account, err := suite.service.GetAccount(ctx, suite.userName, true)

	suite.Require().NoError(err)
	suite.Require().NotNil(account)
	suite.Equal(suite.account.AccountID, account.AccountID)
	suite.Len(account.Operations, 2)
	suite.mockOperationRepo.AssertExpectations(suite.T())
}

func (suite *BillingServiceTestSuite) TestGetAccount_WithoutOperations() {
	ctx := context.Background()

	suite.mockAccountRepo.On("FindAccountByUserName", ctx, suite.userName).Return(&suite.account, nil).Once()

	account, err := suite.service.GetAccount(ctx, suite.userName, false)

	suite.Require().NoError(err)
	suite.Nil(account.Operations)
	suite.mockOperationRepo.AssertNotCalled(suite.T(), "FindOperationsByAccountID", mock.Anything, mock.Anything)
}

func (suite *BillingServiceTestSuite) TestGetAccount_NotFound() {
	ctx := context.Background()

	suite.mockAccountRepo.On("FindAccountByUserName", ctx, suite.userName).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetAccount(ctx, suite.userName, true)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountNotFound)
}

// --- ExecuteOperation ---

func (suite *BillingServiceTestSuite) TestExecuteOperation_CreditSuccess() {
	ctx := context.Background()
	amount := decimal.NewFromInt(25)
	newOperationID := uuid.NewString()

	suite.expectTx(ctx)
	suite.mockAccountRepo.On("FindAccountByUserNameForUpdate", ctx, nil, suite.userName).Return(&suite.account, nil).Once()
	suite.mockAccountRepo.On("UpdateBalanceInTx", ctx, nil, suite.account.AccountID, balanceEquals(decimal.NewFromInt(125))).Return(nil).Once()
	suite.mockOperationRepo.On("InsertOperationInTx", ctx, nil, mock.MatchedBy(func(op domain.Operation) bool {
		return op.AccountID == suite.account.AccountID &&
			op.Type == domain.Credit &&
			op.Amount.Equal(amount) &&
			op.RelatedTo == nil
	})).Return(newOperationID, nil).Once()
	suite.mockAccountRepo.On("Commit", ctx, nil).Return(nil).Once()

	operationID, err := suite.service.ExecuteOperation(ctx, suite.userName, domain.Credit, amount, "top up")

	suite.Require().NoError(err)
	suite.Equal(newOperationID, operationID)
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockOperationRepo.AssertExpectations(suite.T())
}

func (suite *BillingServiceTestSuite) TestExecuteOperation_WithdrawToZero() {
	ctx := context.Background()
	amount := decimal.NewFromInt(100)

	suite.expectTx(ctx)
	suite.mockAccountRepo.On("FindAccountByUserNameForUpdate", ctx, nil, suite.userName).Return(&suite.account, nil).Once()
	suite.mockAccountRepo.On("UpdateBalanceInTx", ctx, nil, suite.account.AccountID, balanceEquals(decimal.Zero)).Return(nil).Once()
	suite.mockOperationRepo.On("InsertOperationInTx", ctx, nil, mock.AnythingOfType("domain.Operation")).Return(uuid.NewString(), nil).Once()
	suite.mockAccountRepo.On("Commit", ctx, nil).Return(nil).Once()

	_, err := suite.service.ExecuteOperation(ctx, suite.userName, domain.Withdraw, amount, "drain")

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *BillingServiceTestSuite) TestExecuteOperation_InsufficientBalance() {
	ctx := context.Background()
	amount := decimal.NewFromInt(150)

	suite.expectTx(ctx)
	suite.mockAccountRepo.On("FindAccountByUserNameForUpdate", ctx, nil, suite.userName).Return(&suite.account, nil).Once()

	_, err := suite.service.ExecuteOperation(ctx, suite.userName, domain.Withdraw, amount, "too much")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInsufficientBalance)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateBalanceInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockOperationRepo.AssertNotCalled(suite.T(), "InsertOperationInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *BillingServiceTestSuite) TestExecuteOperation_NonPositiveAmount() {
	ctx := context.Background()

	_, err := suite.service.ExecuteOperation(ctx, suite.userName, domain.Credit, decimal.Zero, "nothing")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNonPositiveAmount)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *BillingServiceTestSuite) TestExecuteOperation_AccountNotFound() {
	ctx := context.Background()

	suite.expectTx(ctx)
	suite.mockAccountRepo.On("FindAccountByUserNameForUpdate", ctx, nil, suite.userName).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.ExecuteOperation(ctx, suite.userName, domain.Credit, decimal.NewFromInt(5), "")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountNotFound)
}

func (suite *BillingServiceTestSuite) TestExecuteOperation_CommitError() {
	ctx := context.Background()
	commitErr := assert.AnError

	suite.expectTx(ctx)
	suite.mockAccountRepo.On("FindAccountByUserNameForUpdate", ctx, nil, suite.userName).Return(&suite.account, nil).Once()
	suite.mockAccountRepo.On("UpdateBalanceInTx", ctx, nil, suite.account.AccountID, mock.Anything).Return(nil).Once()
	suite.mockOperationRepo.On("InsertOperationInTx", ctx, nil, mock.AnythingOfType("domain.Operation")).Return(uuid.NewString(), nil).Once()
	suite.mockAccountRepo.On("Commit", ctx, nil).Return(commitErr).Once()

	_, err := suite.service.ExecuteOperation(ctx, suite.userName, domain.Credit, decimal.NewFromInt(5), "")

	suite.Require().Error(err)
	suite.ErrorIs(err, commitErr)
}

// --- CancelOperation ---

func (suite *BillingServiceTestSuite) TestCancelOperation_Success() {
	ctx := context.Background()
	original := domain.Operation{
		OperationID: uuid.NewString(),
		AccountID:   suite.account.AccountID,
		Type:        domain.Credit,
		Amount:      decimal.NewFromInt(25),
		CreatedAt:   time.Now().UTC(),
	}
	reversalID := uuid.NewString()

	suite.expectTx(ctx)
	suite.mockOperationRepo.On("FindOperationByID", ctx, original.OperationID).Return(&original, nil).Once()
	suite.mockAccountRepo.On("FindAccountByIDForUpdate", ctx, nil, suite.account.AccountID).Return(&suite.account, nil).Once()
	suite.mockOperationRepo.On("CountByRelatedToInTx", ctx, nil, original.OperationID).Return(int64(0), nil).Once()
	suite.mockAccountRepo.On("UpdateBalanceInTx", ctx, nil, suite.account.AccountID, balanceEquals(decimal.NewFromInt(75))).Return(nil).Once()
	suite.mockOperationRepo.On("InsertOperationInTx", ctx, nil, mock.MatchedBy(func(op domain.Operation) bool {
		return op.Type == domain.Withdraw &&
			op.Amount.Equal(original.Amount) &&
			op.RelatedTo != nil && *op.RelatedTo == original.OperationID
	})).Return(reversalID, nil).Once()
	suite.mockAccountRepo.On("Commit", ctx, nil).Return(nil).Once()

	gotID, err := suite.service.CancelOperation(ctx, suite.userName, original.OperationID, "undo top up")

	suite.Require().NoError(err)
	suite.Equal(reversalID, gotID)
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockOperationRepo.AssertExpectations(suite.T())
}

func (suite *BillingServiceTestSuite) TestCancelOperation_ReversalNotCancelable() {
	ctx := context.Background()
	originalID := uuid.NewString()
	reversal := domain.Operation{
		OperationID: uuid.NewString(),
		AccountID:   suite.account.AccountID,
		Type:        domain.Withdraw,
		Amount:      decimal.NewFromInt(25),
		RelatedTo:   &originalID,
	}

	suite.expectTx(ctx)
	suite.mockOperationRepo.On("FindOperationByID", ctx, reversal.OperationID).Return(&reversal, nil).Once()

	_, err := suite.service.CancelOperation(ctx, suite.userName, reversal.OperationID, "")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrOperationAlreadyCanceled)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "FindAccountByIDForUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BillingServiceTestSuite) TestCancelOperation_SecondCancelRejected() {
	ctx := context.Background()
	original := domain.Operation{
		OperationID: uuid.NewString(),
		AccountID:   suite.account.AccountID,
		Type:        domain.Credit,
		Amount:      decimal.NewFromInt(25),
	}

	suite.expectTx(ctx)
	suite.mockOperationRepo.On("FindOperationByID", ctx, original.OperationID).Return(&original, nil).Once()
	suite.mockAccountRepo.On("FindAccountByIDForUpdate", ctx, nil, suite.account.AccountID).Return(&suite.account, nil).Once()
	suite.mockOperationRepo.On("CountByRelatedToInTx", ctx, nil, original.OperationID).Return(int64(1), nil).Once()

	_, err := suite.service.CancelOperation(ctx, suite.userName, original.OperationID, "")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrOperationAlreadyCanceled)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateBalanceInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *BillingServiceTestSuite) TestCancelOperation_DifferentUser() {
	ctx := context.Background()
	original := domain.Operation{
		OperationID: uuid.NewString(),
		AccountID:   suite.account.AccountID,
		Type:        domain.Credit,
		Amount:      decimal.NewFromInt(25),
	}

	suite.expectTx(ctx)
	suite.mockOperationRepo.On("FindOperationByID", ctx, original.OperationID).Return(&original, nil).Once()
	suite.mockAccountRepo.On("FindAccountByIDForUpdate", ctx, nil, suite.account.AccountID).Return(&suite.account, nil).Once()

	_, err := suite.service.CancelOperation(ctx, "mallory", original.OperationID, "")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrOperationExecutedByDifferentUser)
	suite.mockOperationRepo.AssertNotCalled(suite.T(), "CountByRelatedToInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateBalanceInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BillingServiceTestSuite) TestCancelOperation_OperationNotFound() {
	ctx := context.Background()
	operationID := uuid.NewString()

	suite.expectTx(ctx)
	suite.mockOperationRepo.On("FindOperationByID", ctx, operationID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.CancelOperation(ctx, suite.userName, operationID, "")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrOperationNotFound)
}

func (suite *BillingServiceTestSuite) TestCancelOperation_CreditAlreadySpent() {
	ctx := context.Background()
	// Canceling a CREDIT of 100 when only 50 remains would drive the balance
	// negative, so the cancellation is rejected.
	original := domain.Operation{
		OperationID: uuid.NewString(),
		AccountID:   suite.account.AccountID,
		Type:        domain.Credit,
		Amount:      decimal.NewFromInt(100),
	}
	suite.account.Balance = decimal.NewFromInt(50)

	suite.expectTx(ctx)
	suite.mockOperationRepo.On("FindOperationByID", ctx, original.OperationID).Return(&original, nil).Once()
	suite.mockAccountRepo.On("FindAccountByIDForUpdate", ctx, nil, suite.account.AccountID).Return(&suite.account, nil).Once()
	suite.mockOperationRepo.On("CountByRelatedToInTx", ctx, nil, original.OperationID).Return(int64(0), nil).Once()

	_, err := suite.service.CancelOperation(ctx, suite.userName, original.OperationID, "")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInsufficientBalance)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateBalanceInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- DeleteAccount ---

func (suite *BillingServiceTestSuite) TestDeleteAccount_Success() {
	ctx := context.Background()

	suite.expectTx(ctx)
	suite.mockAccountRepo.On("FindAccountByUserNameForUpdate", ctx, nil, suite.userName).Return(&suite.account, nil).Once()
	suite.mockOperationRepo.On("DeleteOperationsByAccountIDInTx", ctx, nil, suite.account.AccountID).Return(nil).Once()
	suite.mockAccountRepo.On("DeleteAccountInTx", ctx, nil, suite.account.AccountID).Return(nil).Once()
	suite.mockAccountRepo.On("Commit", ctx, nil).Return(nil).Once()

	err := suite.service.DeleteAccount(ctx, suite.userName)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockOperationRepo.AssertExpectations(suite.T())
}

func (suite *BillingServiceTestSuite) TestDeleteAccount_NotFound() {
	ctx := context.Background()

	suite.expectTx(ctx)
	suite.mockAccountRepo.On("FindAccountByUserNameForUpdate", ctx, nil, suite.userName).Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.DeleteAccount(ctx, suite.userName)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAccountNotFound)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "DeleteAccountInTx", mock.Anything, mock.Anything, mock.Anything)
}

// --- Full scenario ---

// TestWithdrawThenCancelRestoresBalance walks the full lifecycle: drain the
// balance, get refused on the next withdrawal, then cancel the first one and
// see the balance restored by a linked CREDIT of the same amount.
func (suite *BillingServiceTestSuite) TestWithdrawThenCancelRestoresBalance() {
	ctx := context.Background()
	suite.account.Balance = decimal.NewFromInt(10)
	withdrawalID := uuid.NewString()

	// Step 1: withdraw the full balance of 10.
	suite.expectTx(ctx)
	suite.mockAccountRepo.On("FindAccountByUserNameForUpdate", ctx, nil, suite.userName).Return(&suite.account, nil).Once()
	suite.mockAccountRepo.On("UpdateBalanceInTx", ctx, nil, suite.account.AccountID, balanceEquals(decimal.Zero)).Return(nil).Once()
	suite.mockOperationRepo.On("InsertOperationInTx", ctx, nil, mock.MatchedBy(func(op domain.Operation) bool {
		return op.Type == domain.Withdraw && op.Amount.Equal(decimal.NewFromInt(10))
	})).Return(withdrawalID, nil).Once()
	suite.mockAccountRepo.On("Commit", ctx, nil).Return(nil).Once()

	opID, err := suite.service.ExecuteOperation(ctx, suite.userName, domain.Withdraw, decimal.NewFromInt(10), "spend it all")
	suite.Require().NoError(err)
	suite.Equal(withdrawalID, opID)

	// Step 2: one more unit is refused, nothing mutated.
	drained := suite.account
	drained.Balance = decimal.Zero
	suite.expectTx(ctx)
	suite.mockAccountRepo.On("FindAccountByUserNameForUpdate", ctx, nil, suite.userName).Return(&drained, nil).Once()

	_, err = suite.service.ExecuteOperation(ctx, suite.userName, domain.Withdraw, decimal.NewFromInt(1), "one more")
	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInsufficientBalance)

	// Step 3: cancel the withdrawal; a CREDIT of 10 linked to it restores the balance.
	withdrawal := domain.Operation{
		OperationID: withdrawalID,
		AccountID:   suite.account.AccountID,
		Type:        domain.Withdraw,
		Amount:      decimal.NewFromInt(10),
	}
	suite.expectTx(ctx)
	suite.mockOperationRepo.On("FindOperationByID", ctx, withdrawalID).Return(&withdrawal, nil).Once()
	suite.mockAccountRepo.On("FindAccountByIDForUpdate", ctx, nil, suite.account.AccountID).Return(&drained, nil).Once()
	suite.mockOperationRepo.On("CountByRelatedToInTx", ctx, nil, withdrawalID).Return(int64(0), nil).Once()
	suite.mockAccountRepo.On("UpdateBalanceInTx", ctx, nil, suite.account.AccountID, balanceEquals(decimal.NewFromInt(10))).Return(nil).Once()
	suite.mockOperationRepo.On("InsertOperationInTx", ctx, nil, mock.MatchedBy(func(op domain.Operation) bool {
		return op.Type == domain.Credit &&
			op.Amount.Equal(decimal.NewFromInt(10)) &&
			op.RelatedTo != nil && *op.RelatedTo == withdrawalID
	})).Return(uuid.NewString(), nil).Once()
	suite.mockAccountRepo.On("Commit", ctx, nil).Return(nil).Once()

	_, err = suite.service.CancelOperation(ctx, suite.userName, withdrawalID, "refund")
	suite.Require().NoError(err)

	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockOperationRepo.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestBillingService(t *testing.T) {
	suite.Run(t, new(BillingServiceTestSuite))
}
