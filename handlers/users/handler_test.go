package users

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"locaspace-backend/testutils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()

	log.SetOutput(io.Discard)

	exitCode := m.Run()

	log.SetOutput(os.Stdout)

	os.Exit(exitCode)
}

const (
	testUserID = "f47ac10b-58cc-4372-a567-0e02b2c3d479"
	testPlanID = "3d594650-3436-11e5-bf21-0800200c9a66"
)

func freePlanRows(mock sqlmock.Sqlmock) *sqlmock.Rows {
	return mock.NewRows([]string{"id", "name", "monthly_price", "annual_price", "tier", "rank", "status"}).
		AddRow(testPlanID, "Découverte", 0.0, 0.0, "FREE", 0, "ACTIVE")
}

func freePlanBenefitRows(mock sqlmock.Sqlmock) *sqlmock.Rows {
	return mock.NewRows([]string{"id", "plan_id", "kind", "quota", "position"}).
		AddRow("b1", testPlanID, "MEDIUM_PRESTATIONS", 1, 0)
}

func TestCreateUser_CreatesDefaultFreeSubscription(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users" (.+) RETURNING "id"`).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow(testUserID))
	mock.ExpectCommit()

	// Résolution du plan gratuit par défaut, avantages compris
	mock.ExpectQuery(`SELECT \* FROM "plans" WHERE tier = \$1 AND status = \$2`).
		WillReturnRows(freePlanRows(mock))
	mock.ExpectQuery(`SELECT \* FROM "plan_benefits"`).
		WillReturnRows(freePlanBenefitRows(mock))

	// subscriptions.Create recharge l'utilisateur et le plan
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(mock.NewRows([]string{"id", "email"}).AddRow(testUserID, "new@example.com"))
	mock.ExpectQuery(`SELECT \* FROM "plans" WHERE id = \$1`).
		WillReturnRows(freePlanRows(mock))
	mock.ExpectQuery(`SELECT \* FROM "plan_benefits"`).
		WillReturnRows(freePlanBenefitRows(mock))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "subscriptions" (.+) RETURNING "id"`).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow("sub-1"))
	mock.ExpectCommit()

	r := testutils.SetupTestRouter()
	r.POST("/user", CreateUser)

	body, _ := json.Marshal(map[string]string{
		"email":    "new@example.com",
		"password": "secret123",
		"username": "newcomer",
	})
	req, _ := http.NewRequest(http.MethodPost, "/user", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusCreated, resp.Code)

	var respBody map[string]interface{}
	json.Unmarshal(resp.Body.Bytes(), &respBody)
	assert.Equal(t, "new@example.com", respBody["email"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_InvalidInput(t *testing.T) {
	r := testutils.SetupTestRouter()
	r.POST("/user", CreateUser)

	req, _ := http.NewRequest(http.MethodPost, "/user", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateUser_DefaultFreePlanMissing(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users" (.+) RETURNING "id"`).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow(testUserID))
	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT \* FROM "plans" WHERE tier = \$1 AND status = \$2`).
		WillReturnError(gorm.ErrRecordNotFound)

	r := testutils.SetupTestRouter()
	r.POST("/user", CreateUser)

	body, _ := json.Marshal(map[string]string{
		"email":    "new@example.com",
		"password": "secret123",
	})
	req, _ := http.NewRequest(http.MethodPost, "/user", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestLogin_Success(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(mock.NewRows([]string{"id", "email", "password", "role"}).
			AddRow(testUserID, "renter@example.com", string(hashed), "RENTER"))

	r := testutils.SetupTestRouter()
	r.POST("/login", Login)

	body, _ := json.Marshal(map[string]string{
		"email":    "renter@example.com",
		"password": "secret123",
	})
	req, _ := http.NewRequest(http.MethodPost, "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)

	var respBody map[string]string
	json.Unmarshal(resp.Body.Bytes(), &respBody)
	assert.NotEmpty(t, respBody["token"])
}

func TestLogin_WrongPassword(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(mock.NewRows([]string{"id", "email", "password"}).
			AddRow(testUserID, "renter@example.com", string(hashed)))

	r := testutils.SetupTestRouter()
	r.POST("/login", Login)

	body, _ := json.Marshal(map[string]string{
		"email":    "renter@example.com",
		"password": "wrong-password",
	})
	req, _ := http.NewRequest(http.MethodPost, "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogin_UnknownEmail(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)

	r := testutils.SetupTestRouter()
	r.POST("/login", Login)

	body, _ := json.Marshal(map[string]string{
		"email":    "ghost@example.com",
		"password": "whatever",
	})
	req, _ := http.NewRequest(http.MethodPost, "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestDeleteUser_RemovesSubscription(t *testing.T) {
	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(mock.NewRows([]string{"id", "email"}).AddRow(testUserID, "renter@example.com"))

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "subscriptions" WHERE user_id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "users"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r := testutils.SetupTestRouter()
	r.DELETE("/user/:id", DeleteUser)

	req, _ := http.NewRequest(http.MethodDelete, "/user/"+testUserID, nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
