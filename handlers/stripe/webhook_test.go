package stripe

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"locaspace-backend/testutils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	testutils.InitTestMain()

	log.SetOutput(io.Discard)

	exitCode := m.Run()

	log.SetOutput(os.Stdout)

	os.Exit(exitCode)
}

const webhookSecret = "whsec_test_secret"

func signedRequest(t *testing.T, payload []byte) *http.Request {
	t.Helper()

	now := time.Now()
	signature := webhook.ComputeSignature(now, payload, webhookSecret)
	header := fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(signature))

	req, _ := http.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", header)
	return req
}

func sessionEvent(eventType, sessionID string) []byte {
	return []byte(fmt.Sprintf(
		`{"type":%q,"api_version":%q,"data":{"object":{"id":%q}}}`,
		eventType, stripe.APIVersion, sessionID))
}

func TestStripeWebhookHandler_RejectsBadSignature(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", webhookSecret)

	r := testutils.SetupTestRouter()
	r.POST("/webhooks/stripe", StripeWebhookHandler)

	req, _ := http.NewRequest(http.MethodPost, "/webhooks/stripe",
		bytes.NewBuffer(sessionEvent("checkout.session.completed", "cs_test_1")))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestStripeWebhookHandler_CompletedSessionSettlesIntervention(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", webhookSecret)

	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "interventions" WHERE payment_session_id = \$1 AND status = \$2`).
		WillReturnRows(mock.NewRows([]string{"id", "renter_id", "status", "payment_session_id"}).
			AddRow("int-1", "user-1", "PENDING", "cs_test_1"))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "interventions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r := testutils.SetupTestRouter()
	r.POST("/webhooks/stripe", StripeWebhookHandler)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, signedRequest(t, sessionEvent("checkout.session.completed", "cs_test_1")))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStripeWebhookHandler_CompletedSessionForSubscriptionOnlyLogs(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", webhookSecret)

	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "interventions" WHERE payment_session_id = \$1 AND status = \$2`).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectQuery(`SELECT \* FROM "subscriptions" WHERE payment_session_id = \$1`).
		WillReturnRows(mock.NewRows([]string{"id", "user_id", "payment_session_id"}).
			AddRow("sub-1", "user-1", "cs_test_2"))

	r := testutils.SetupTestRouter()
	r.POST("/webhooks/stripe", StripeWebhookHandler)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, signedRequest(t, sessionEvent("checkout.session.completed", "cs_test_2")))

	// Les droits sont accordés au changement de plan, aucune écriture ici
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStripeWebhookHandler_ExpiredSessionReleasesIntervention(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", webhookSecret)

	_, mock, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "interventions" WHERE payment_session_id = \$1 AND status = \$2`).
		WillReturnRows(mock.NewRows([]string{"id", "renter_id", "status", "payment_session_id"}).
			AddRow("int-1", "user-1", "PENDING", "cs_test_3"))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "interventions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	r := testutils.SetupTestRouter()
	r.POST("/webhooks/stripe", StripeWebhookHandler)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, signedRequest(t, sessionEvent("checkout.session.expired", "cs_test_3")))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStripeWebhookHandler_IgnoresUnhandledEvent(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", webhookSecret)

	r := testutils.SetupTestRouter()
	r.POST("/webhooks/stripe", StripeWebhookHandler)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, signedRequest(t, sessionEvent("invoice.payment_succeeded", "cs_test_4")))

	assert.Equal(t, http.StatusOK, resp.Code)
}
