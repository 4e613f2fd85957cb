package handlers_test

import (
	"net/http"
	"strings"
	"time"

	"github.com/gestionale-jos/jos_backend/internal/apperrors"
	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	"github.com/gestionale-jos/jos_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func testUser(id string, role domain.UserRole) *domain.User {
	return &domain.User{
		UserID:   id,
		Username: strings.ToLower(id),
		Name:     "Mario Rossi",
		Role:     role,
		AuditFields: domain.AuditFields{
			CreatedAt: time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC),
		},
	}
}

// --- Login ---

func (suite *HandlerTestSuite) TestLogin_Success() {
	user := testUser(testUserID, domain.RoleOperator)
	expiresAt := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	suite.users.On("AuthenticateUser", mock.Anything, "mario", "segreto123").Return(user, nil).Once()
	suite.tokens.On("GenerateAccessToken", mock.Anything, user).Return("signed-token", expiresAt, nil).Once()

	w := suite.doAnonymous(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Username: "mario", Password: "segreto123"})

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.LoginResponse
	suite.decode(w, &resp)
	suite.Equal("signed-token", resp.Token)
	suite.True(expiresAt.Equal(resp.ExpiresAt))
	suite.Equal(testUserID, resp.User.UserID)
}

func (suite *HandlerTestSuite) TestLogin_WrongPassword() {
	suite.users.On("AuthenticateUser", mock.Anything, "mario", "sbagliata").
		Return(nil, apperrors.NewUnauthorizedError("invalid credentials")).Once()

	w := suite.doAnonymous(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Username: "mario", Password: "sbagliata"})

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal("Invalid username or password", suite.errorMessage(w))
	suite.tokens.AssertNotCalled(suite.T(), "GenerateAccessToken", mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestLogin_MissingFields() {
	w := suite.doAnonymous(http.MethodPost, "/api/v1/auth/login", `{"username":"mario"}`)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestLogin_RateLimited() {
	suite.users.On("AuthenticateUser", mock.Anything, "mario", "sbagliata").
		Return(nil, apperrors.ErrUnauthorized).Times(5)

	for i := 0; i < 5; i++ {
		w := suite.doAnonymous(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Username: "mario", Password: "sbagliata"})
		suite.Equal(http.StatusUnauthorized, w.Code)
	}

	w := suite.doAnonymous(http.MethodPost, "/api/v1/auth/login", dto.LoginRequest{Username: "mario", Password: "sbagliata"})
	suite.Equal(http.StatusTooManyRequests, w.Code)
}

// --- Users ---

func (suite *HandlerTestSuite) TestGetMe() {
	suite.users.On("GetUserByID", mock.Anything, testUserID).Return(testUser(testUserID, domain.RoleOperator), nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/users/me", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.UserResponse
	suite.decode(w, &resp)
	suite.Equal(domain.RoleOperator, resp.Role)
}

func (suite *HandlerTestSuite) TestGetMe_DeletedUser() {
	user := testUser(testUserID, domain.RoleOperator)
	deletedAt := time.Now()
	user.DeletedAt = &deletedAt
	suite.users.On("GetUserByID", mock.Anything, testUserID).Return(user, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/users/me", nil)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestListUsers_ForbiddenForOperator() {
	suite.users.On("AuthorizeUserRole", mock.Anything, testUserID, domain.RoleAdmin).
		Return(apperrors.NewAppError(http.StatusForbidden, "admin role required", apperrors.ErrForbidden)).Once()

	w := suite.do(http.MethodGet, "/api/v1/users", nil)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.users.AssertNotCalled(suite.T(), "ListUsers", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestListUsers_Admin() {
	suite.users.On("AuthorizeUserRole", mock.Anything, testUserID, domain.RoleAdmin).Return(nil).Once()
	suite.users.On("ListUsers", mock.Anything, 20, 0).
		Return([]domain.User{*testUser("a", domain.RoleAdmin), *testUser("b", domain.RoleOperator)}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/users", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListUsersResponse
	suite.decode(w, &resp)
	suite.Len(resp.Users, 2)
}

func (suite *HandlerTestSuite) TestGetUser_OwnAccountSkipsRoleCheck() {
	suite.users.On("GetUserByID", mock.Anything, testUserID).Return(testUser(testUserID, domain.RoleOperator), nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/users/"+testUserID, nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.users.AssertNotCalled(suite.T(), "AuthorizeUserRole", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestCreateUser_InvalidRole() {
	w := suite.do(http.MethodPost, "/api/v1/users", map[string]any{
		"username": "luigi",
		"password": "password123",
		"name":     "Luigi",
		"role":     "owner",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestCreateUser_DuplicateUsername() {
	suite.users.On("CreateUser", mock.Anything, mock.MatchedBy(func(req dto.CreateUserRequest) bool {
		return req.Username == "luigi"
	}), testUserID).Return(nil, apperrors.ErrDuplicate).Once()

	w := suite.do(http.MethodPost, "/api/v1/users", map[string]any{
		"username": "luigi",
		"password": "password123",
		"name":     "Luigi",
	})

	suite.Equal(http.StatusConflict, w.Code)
}

// --- Dashboard and reference data ---

func (suite *HandlerTestSuite) TestDashboard() {
	stats := &domain.DashboardStats{
		Date:        "2026-03-02",
		DayOpened:   true,
		CashBalance: decimal.NewFromInt(350),
		CardToday:   decimal.NewFromInt(80),
	}
	suite.reporting.On("Dashboard", mock.Anything, "2026-03-02").Return(stats, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/dashboard?date=2026-03-02", nil)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var resp domain.DashboardStats
	suite.decode(w, &resp)
	suite.True(resp.DayOpened)
	suite.True(resp.CashBalance.Equal(decimal.NewFromInt(350)))
}

func (suite *HandlerTestSuite) TestReferenceData() {
	w := suite.do(http.MethodGet, "/api/v1/reference", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ReferenceDataResponse
	suite.decode(w, &resp)
	suite.NotEmpty(resp.VATCodes)
	suite.NotEmpty(resp.FiscalRegimes)
	suite.Equal(domain.IncomeCategories, resp.IncomeCategories)
}

func (suite *HandlerTestSuite) TestHealth() {
	w := suite.doAnonymous(http.MethodGet, "/health", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}
