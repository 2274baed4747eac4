package sim

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/benefitsqa/dashboard-e2e/internal/config"
	"github.com/benefitsqa/dashboard-e2e/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSimConfig() config.SimConfig {
	return config.SimConfig{
		Addr:      "127.0.0.1:0",
		BasePath:  "/Prod",
		Username:  "employer",
		Password:  "s3cret!",
		JWTSecret: "test-secret",
		TokenTTL:  time.Minute,
	}
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := New(testSimConfig(), logging.Null())
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

// newClient follows redirects and keeps cookies, like a browser.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func login(t *testing.T, c *http.Client, ts *httptest.Server, user, pass string) *http.Response {
	t.Helper()
	resp, err := c.PostForm(ts.URL+"/Prod/Account/Login", url.Values{"Username": {user}, "Password": {pass}})
	require.NoError(t, err)
	return resp
}

func doJSON(t *testing.T, c *http.Client, method, u string, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, u, r)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.Do(req)
	require.NoError(t, err)
	return resp
}

func TestLoginPage(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t)

	resp, err := c.Get(ts.URL + "/Prod/Account/Login")
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<title>Log In - Paylocity Benefits Dashboard</title>")
	assert.Contains(t, body, `id="Username"`)
	assert.Contains(t, body, `id="Password"`)
	assert.Contains(t, body, `type="submit"`)
	assert.Contains(t, body, "text-danger validation-summary-valid")
	assert.Contains(t, body, "navbar-brand")
}

func TestLoginRejected(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name string
		user string
		pass string
		want string
	}{
		{"wrong password", "employer", "nope", "The specified username or password is incorrect."},
		{"unknown user", "someone", "s3cret!", "The specified username or password is incorrect."},
		{"empty fields", "", "", "The Username field is required."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t)
			resp := login(t, c, ts, tt.user, tt.pass)
			body := readBody(t, resp)

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.True(t, strings.HasSuffix(resp.Request.URL.Path, "/Account/Login"))
			assert.Contains(t, body, "validation-summary-errors")
			assert.Contains(t, body, tt.want)
		})
	}
}

func TestLoginAndDashboard(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t)

	resp := login(t, c, ts, "employer", "s3cret!")
	body := readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/Prod/Benefits", resp.Request.URL.Path)
	assert.Contains(t, body, "<title>Employees - Paylocity Benefits Dashboard</title>")
	for _, id := range []string{"employeesTable", "add", "employeeModal", "deleteModal", "addEmployee", "updateEmployee", "deleteEmployee", "firstName", "lastName", "dependants"} {
		assert.Contains(t, body, `id="`+id+`"`)
	}

	t.Run("login page redirects once logged in", func(t *testing.T) {
		resp, err := c.Get(ts.URL + "/Prod/Account/Login")
		require.NoError(t, err)
		readBody(t, resp)
		assert.Equal(t, "/Prod/Benefits", resp.Request.URL.Path)
	})

	t.Run("logout ends the session", func(t *testing.T) {
		resp, err := c.Get(ts.URL + "/Prod/Account/LogOut")
		require.NoError(t, err)
		readBody(t, resp)
		assert.Equal(t, "/Prod/Account/Login", resp.Request.URL.Path)

		resp, err = c.Get(ts.URL + "/Prod/Benefits")
		require.NoError(t, err)
		readBody(t, resp)
		assert.Equal(t, "/Prod/Account/Login", resp.Request.URL.Path)
	})
}

func TestDashboardRequiresSession(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t)

	resp, err := c.Get(ts.URL + "/Prod/Benefits")
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, "/Prod/Account/Login", resp.Request.URL.Path)

	resp = doJSON(t, c, http.MethodGet, ts.URL+"/Prod/api/employees", "")
	readBody(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestEmployeeAPI(t *testing.T) {
	s, ts := newTestServer(t)
	c := newClient(t)
	readBody(t, login(t, c, ts, "employer", "s3cret!"))
	api := ts.URL + "/Prod/api/employees"

	resp := doJSON(t, c, http.MethodGet, api, "")
	assert.JSONEq(t, `[]`, readBody(t, resp))

	resp = doJSON(t, c, http.MethodPost, api, `{"firstName":"John","lastName":"Doe","dependants":2}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created employeeView
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &created))
	assert.Equal(t, "John", created.FirstName)
	assert.InDelta(t, 76.92, created.BenefitsCost, 0.001)
	assert.InDelta(t, 1923.08, created.Net, 0.001)
	assert.InDelta(t, 2000.00, created.Gross, 0.001)
	assert.Equal(t, 1, s.Store().Count())

	t.Run("validation errors name the fields", func(t *testing.T) {
		resp := doJSON(t, c, http.MethodPost, api, `{"firstName":"","lastName":"Doe","dependants":40}`)
		body := readBody(t, resp)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, `"firstName"`)
		assert.Contains(t, body, `"dependants"`)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp := doJSON(t, c, http.MethodPost, api, `{"firstName":`)
		readBody(t, resp)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("get and update", func(t *testing.T) {
		resp := doJSON(t, c, http.MethodPut, api+"/"+created.ID, `{"firstName":"Janet","lastName":"Johnson","dependants":0}`)
		readBody(t, resp)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = doJSON(t, c, http.MethodGet, api+"/"+created.ID, "")
		var got employeeView
		require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &got))
		assert.Equal(t, "Janet", got.FirstName)
		assert.InDelta(t, 38.46, got.BenefitsCost, 0.001)
	})

	t.Run("delete", func(t *testing.T) {
		resp := doJSON(t, c, http.MethodDelete, api+"/"+created.ID, "")
		readBody(t, resp)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp = doJSON(t, c, http.MethodDelete, api+"/"+created.ID, "")
		readBody(t, resp)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestHealthAndMetrics(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t)
	readBody(t, login(t, c, ts, "employer", "wrong"))

	resp, err := c.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","employees":0}`, readBody(t, resp))

	resp, err = c.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Contains(t, body, `benefits_sim_logins_total{result="failure"} 1`)
	assert.Contains(t, body, "benefits_sim_http_requests_total")
	assert.Contains(t, body, "benefits_sim_employees 0")
}

func TestLoginURL(t *testing.T) {
	s, err := New(testSimConfig(), logging.Null())
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000/Prod/Account/Login", s.LoginURL("http://127.0.0.1:9000/"))
}
