package echoapi

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/shoyeabaslam/kcet-cams-sub000/core"
	"github.com/shoyeabaslam/kcet-cams-sub000/core/admission"
	testutil "github.com/shoyeabaslam/kcet-cams-sub000/tests"
)

func TestAppHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantCode     int
		wantShutdown bool
	}{
		{name: "validation", err: errors.Wrap(core.NewValidationError(admission.ErrNegativeLedger), "adjusting"), wantCode: http.StatusBadRequest},
		{name: "duplicate receipt", err: errors.Wrap(admission.ErrDuplicateReceipt, "paying"), wantCode: http.StatusConflict},
		{name: "conflict", err: admission.ErrConcurrencyConflict, wantCode: http.StatusConflict},
		{name: "no fee structure", err: admission.ErrNoFeeStructureAssigned, wantCode: http.StatusUnprocessableEntity},
		{name: "not found", err: admission.ErrStudentNotFound, wantCode: http.StatusNotFound},
		{name: "storage", err: errors.New("disk full"), wantCode: http.StatusInternalServerError},
		{name: "database closed", err: errors.Wrap(core.NewShutdownError("database connection closed"), "paying"), wantCode: http.StatusInternalServerError, wantShutdown: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var signaled bool
			handler := newAppHTTPErrorHandler(testutil.NewLogger(), testutil.NewTranslator(), func() { signaled = true })

			e := echo.New()
			rec := httptest.NewRecorder()
			ctx := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
			handler(tt.err, ctx)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantShutdown, signaled)
		})
	}
}

func TestServer_signalShutdown(t *testing.T) {
	s := &Server{shutdown: make(chan os.Signal, 1)}
	s.signalShutdown()
	s.signalShutdown() // does not block when a signal is pending

	select {
	case <-s.ShutdownSignal():
	default:
		t.Fatal("no shutdown signal")
	}
}
