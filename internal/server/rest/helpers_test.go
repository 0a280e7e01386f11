package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/userdirectory/internal/common"
	"github.com/dmitrijs2005/userdirectory/internal/logging"
	"github.com/dmitrijs2005/userdirectory/internal/server/models"
	"github.com/dmitrijs2005/userdirectory/internal/server/services"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

type fakeUsers struct {
	gotParams models.SearchParams
	gotID     int64
	gotBatch  []json.RawMessage
	gotFields models.Fields
	patched   bool

	searchOut []models.User
	searchErr error
	getOut    *models.User
	getErr    error
	createOut *services.CreateResult
	createErr error
	updateOut *models.User
	updateErr error
	deleteErr error
	statsOut  *models.Statistics
	statsErr  error
}

func (f *fakeUsers) Search(_ context.Context, p models.SearchParams) ([]models.User, error) {
	f.gotParams = p
	return f.searchOut, f.searchErr
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	f.gotID = id
	return f.getOut, f.getErr
}

func (f *fakeUsers) CreateUsersJSON(_ context.Context, batch []json.RawMessage) (*services.CreateResult, error) {
	f.gotBatch = batch
	return f.createOut, f.createErr
}

func (f *fakeUsers) Update(_ context.Context, id int64, fields models.Fields) (*models.User, error) {
	f.gotID, f.gotFields = id, fields
	return f.updateOut, f.updateErr
}

func (f *fakeUsers) Patch(_ context.Context, id int64, fields models.Fields) (*models.User, error) {
	f.gotID, f.gotFields, f.patched = id, fields, true
	return f.updateOut, f.updateErr
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	f.gotID = id
	return f.deleteErr
}

func (f *fakeUsers) Statistics(context.Context) (*models.Statistics, error) {
	return f.statsOut, f.statsErr
}

// fakeAuth accepts "Bearer good" and rejects everything else with verifyErr.
type fakeAuth struct {
	token     string
	loginErr  error
	verifyErr error
}

func (f *fakeAuth) Login(context.Context, string, string) (string, error) {
	return f.token, f.loginErr
}

func (f *fakeAuth) VerifyHeader(_ context.Context, header string) (string, error) {
	if header == "Bearer good" {
		return "admin", nil
	}
	if f.verifyErr != nil {
		return "", f.verifyErr
	}
	return "", common.ErrMissingAuthHeader
}

func newTestServer(us UserService, as AuthService, opts Options) *RESTServer {
	return NewRESTServer(":0", logging.NewJSONLogger(io.Discard, "error"), us, as, opts)
}

type response struct {
	status int
	body   string
	header http.Header
}

func do(t *testing.T, s *RESTServer, method, path, body string, headers ...string) response {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return response{status: resp.StatusCode, body: string(b), header: resp.Header}
}

var authHeader = []string{common.AuthorizationHeaderName, "Bearer good"}
